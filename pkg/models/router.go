// Package models defines the shared data types for LeaseSync.
package models

import "time"

// Router identifies one pollable router and the credentials used to
// reach its management API. Created and edited by operators; the
// reconciliation engine only reads it.
type Router struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Username  string    `json:"username"`
	Secret    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Network is a subnet owned by one router. The engine only tests
// membership against it; networks are never mutated by a pass.
type Network struct {
	ID            string `json:"id"`
	CIDR          string `json:"cidr"`
	RouterID      string `json:"router_id"`
	InterfaceName string `json:"interface_name,omitempty"`
}
