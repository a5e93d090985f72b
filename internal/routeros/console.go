package routeros

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/HerbHall/leasesync/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

// leaseListCommand is the fixed console command for the lease table.
const leaseListCommand = "/ip dhcp-server lease print terse"

// ConsoleClient fetches leases by opening an interactive SSH session
// on the router and parsing the terse print output. It is the
// fallback transport for routers whose REST API is disabled or on
// firmware too old to provide one.
type ConsoleClient struct {
	port    int
	timeout time.Duration
	logger  *zap.Logger

	// sshDial is the function used to establish SSH connections.
	// Defaults to ssh.Dial; overridden in tests.
	sshDial func(network, addr string, config *ssh.ClientConfig) (*ssh.Client, error)
}

// NewConsoleClient creates the console (fallback) lease transport.
// A zero timeout defaults to 10 seconds; a zero port to 22.
func NewConsoleClient(timeout time.Duration, port int, logger *zap.Logger) *ConsoleClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if port == 0 {
		port = 22
	}
	return &ConsoleClient{port: port, timeout: timeout, logger: logger}
}

// Name implements LeaseTransport.
func (c *ConsoleClient) Name() string { return "console" }

// FetchLeases implements LeaseTransport.
func (c *ConsoleClient) FetchLeases(ctx context.Context, router *models.Router) ([]models.Lease, error) {
	addr := net.JoinHostPort(router.Address, strconv.Itoa(c.port))
	config := &ssh.ClientConfig{
		User: router.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(router.Secret),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // G106: routers rotate host keys on reset; pinning is an operator burden here
		Timeout:         c.timeout,
	}

	dial := c.sshDial
	if dial == nil {
		dial = ssh.Dial
	}
	client, err := dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", addr, err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("ssh session: %w", err)
	}
	defer session.Close()

	// Session.Output has no context support; close the client when
	// the context expires so the read unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-done:
		}
	}()

	output, err := session.Output(leaseListCommand)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("console command timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("run %q: %w", leaseListCommand, err)
	}

	leases, err := ParseTerse(string(output))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched leases via console",
		zap.String("router", router.Name),
		zap.Int("count", len(leases)),
	)
	return leases, nil
}
