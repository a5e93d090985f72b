package models

import "time"

// Client is a billable subscriber. Matching identity for
// reconciliation is the derived display name (first two
// whitespace-separated tokens of the lease comment), a deliberate
// weak heuristic carried over from the operator workflow.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Device is a subscriber device keyed by MAC address. MACAddress is
// unique across the device set and is the stable identity across
// reconciliation passes.
type Device struct {
	ID          string    `json:"id"`
	MACAddress  string    `json:"mac_address"`
	IPAddress   string    `json:"ip_address"`
	DisplayName string    `json:"display_name"`
	ClientID    string    `json:"client_id,omitempty"`
	NetworkID   string    `json:"network_id,omitempty"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
}
