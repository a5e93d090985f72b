package routeros

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/HerbHall/leasesync/pkg/models"
	"go.uber.org/zap"
)

// leasePath is the REST resource holding the DHCP server lease table.
const leasePath = "/rest/ip/dhcp-server/lease"

// RESTClient fetches leases over the router's REST management API
// using HTTP basic auth with the stored credentials.
type RESTClient struct {
	httpClient *http.Client
	port       int
	useTLS     bool
	logger     *zap.Logger
}

// NewRESTClient creates the structured (primary) lease transport.
// A zero timeout defaults to 10 seconds.
func NewRESTClient(timeout time.Duration, port int, useTLS bool, logger *zap.Logger) *RESTClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if port == 0 {
		if useTLS {
			port = 443
		} else {
			port = 80
		}
	}
	transport := http.DefaultTransport
	if useTLS {
		// Routers ship self-signed management certificates.
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // G402: router management certs are self-signed
		}
	}
	return &RESTClient{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		port:       port,
		useTLS:     useTLS,
		logger:     logger,
	}
}

// Name implements LeaseTransport.
func (c *RESTClient) Name() string { return "rest" }

// restLease mirrors one lease object in the REST response.
type restLease struct {
	ID         string `json:".id"`
	Address    string `json:"address"`
	MACAddress string `json:"mac-address"`
	HostName   string `json:"host-name"`
	Comment    string `json:"comment"`
	Status     string `json:"status"`
	Dynamic    string `json:"dynamic"`
}

// restError is the explicit error shape the API returns instead of a
// result list.
type restError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// FetchLeases implements LeaseTransport.
func (c *RESTClient) FetchLeases(ctx context.Context, router *models.Router) ([]models.Lease, error) {
	scheme := "http"
	if c.useTLS {
		scheme = "https"
	}
	url := scheme + "://" + net.JoinHostPort(router.Address, strconv.Itoa(c.port)) + leasePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(router.Username, router.Secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get %s: %w", leasePath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr restError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("router API returned %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("router API returned %d", resp.StatusCode)
	}

	// A well-formed result is a JSON array. Some firmware returns a
	// 200 with an error object instead; treat that as unavailable.
	var raw []restLease
	if err := json.Unmarshal(body, &raw); err != nil {
		var apiErr restError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("router API error: %s", apiErr.Message)
		}
		return nil, fmt.Errorf("malformed lease response: %w", err)
	}

	leases := make([]models.Lease, 0, len(raw))
	for _, l := range raw {
		leases = append(leases, models.Lease{
			MACAddress: l.MACAddress,
			IPAddress:  l.Address,
			Comment:    l.Comment,
			Status:     l.Status,
		})
	}

	c.logger.Debug("fetched leases via REST",
		zap.String("router", router.Name),
		zap.Int("count", len(leases)),
	)
	return leases, nil
}
