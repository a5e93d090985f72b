package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/HerbHall/leasesync/pkg/models"
)

// ClientMatcher reduces a client display name to the key used for
// lease-to-client matching. Keeping the policy behind an interface lets
// the heuristic be replaced with a stable subscriber ID later without
// touching the reconciliation loop.
type ClientMatcher interface {
	Key(name string) string
}

// CommentMatcher keys clients by the first two whitespace-separated
// tokens of their name, lowercased. This mirrors how names are derived
// from lease comments, so existing clients and incoming leases land on
// the same key space. Two tenants whose comments share the same first
// two words collapse to one client; that is the accepted weakness of
// comment-based identity.
type CommentMatcher struct{}

// Key implements ClientMatcher.
func (CommentMatcher) Key(name string) string {
	tokens := strings.Fields(name)
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	return strings.ToLower(strings.Join(tokens, " "))
}

var _ ClientMatcher = CommentMatcher{}

// Index is an in-memory snapshot of the inventory used to resolve
// leases during a reconciliation pass. It is built once per pass and
// mutated in place as the pass creates records, so later leases in the
// same pass see the clients and devices earlier leases created.
type Index struct {
	matcher       ClientMatcher
	clientsByName map[string]*models.Client
	devicesByMAC  map[string]*models.Device
	networks      []models.Network
}

// BuildIndex loads the full inventory and keys it for lease resolution.
// A nil matcher defaults to CommentMatcher.
func BuildIndex(ctx context.Context, s *Store, m ClientMatcher) (*Index, error) {
	if m == nil {
		m = CommentMatcher{}
	}
	clients, err := s.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	devices, err := s.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	networks, err := s.ListNetworks(ctx)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	idx := &Index{
		matcher:       m,
		clientsByName: make(map[string]*models.Client, len(clients)),
		devicesByMAC:  make(map[string]*models.Device, len(devices)),
		networks:      networks,
	}
	for i := range clients {
		idx.clientsByName[m.Key(clients[i].Name)] = &clients[i]
	}
	for i := range devices {
		idx.devicesByMAC[strings.ToLower(devices[i].MACAddress)] = &devices[i]
	}
	return idx, nil
}

// ClientByName returns the client whose matcher key equals the key of
// the given name, or nil.
func (idx *Index) ClientByName(name string) *models.Client {
	return idx.clientsByName[idx.matcher.Key(name)]
}

// DeviceByMAC returns the device with the given MAC, or nil.
func (idx *Index) DeviceByMAC(mac string) *models.Device {
	return idx.devicesByMAC[strings.ToLower(mac)]
}

// AddClient records a freshly created client so later leases in the
// same pass resolve to it instead of creating a duplicate.
func (idx *Index) AddClient(c *models.Client) {
	idx.clientsByName[idx.matcher.Key(c.Name)] = c
}

// AddDevice records a freshly created device.
func (idx *Index) AddDevice(d *models.Device) {
	idx.devicesByMAC[strings.ToLower(d.MACAddress)] = d
}

// Networks returns the network list loaded at build time.
func (idx *Index) Networks() []models.Network {
	return idx.networks
}
