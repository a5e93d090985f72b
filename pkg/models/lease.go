package models

// Lease is a DHCP assignment record as reported by a router. It is
// transient: leases exist only for the duration of one reconciliation
// pass and are never persisted as-is.
type Lease struct {
	MACAddress string `json:"mac_address"`
	IPAddress  string `json:"ip_address"`
	Comment    string `json:"comment,omitempty"`
	Status     string `json:"status,omitempty"`
}

// NormalizedLease is the canonical form of a Lease after MAC
// normalization, comment tokenization, and the generic-device check.
type NormalizedLease struct {
	MACAddress      string `json:"mac_address"`
	IPAddress       string `json:"ip_address"`
	Comment         string `json:"comment,omitempty"`
	DerivedName     string `json:"derived_name"`
	AddressFragment string `json:"address_fragment,omitempty"`
	Generic         bool   `json:"generic"`
}
