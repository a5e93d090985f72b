package models

import (
	"fmt"
	"time"
)

// Mode selects which create/update operations a reconciliation pass
// is permitted to perform.
type Mode string

const (
	// ModePreview reports what would happen without writing anything.
	ModePreview Mode = "preview"
	// ModeImport creates missing clients and devices only.
	ModeImport Mode = "import"
	// ModeUpdate overwrites existing devices only.
	ModeUpdate Mode = "update"
	// ModeImportUpdate both creates and updates.
	ModeImportUpdate Mode = "import_update"
)

// ParseMode validates a mode string from the API or CLI.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePreview, ModeImport, ModeUpdate, ModeImportUpdate:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid mode %q: must be one of preview, import, update, import_update", s)
}

// CanImport reports whether the mode permits creating clients and devices.
func (m Mode) CanImport() bool {
	return m == ModeImport || m == ModeImportUpdate
}

// CanUpdate reports whether the mode permits overwriting existing devices.
func (m Mode) CanUpdate() bool {
	return m == ModeUpdate || m == ModeImportUpdate
}

// Action describes the outcome of processing one lease step.
type Action string

const (
	ActionNone        Action = ""
	ActionCreated     Action = "created"
	ActionWouldCreate Action = "would-create"
	ActionUpdated     Action = "updated"
	ActionWouldUpdate Action = "would-update"
	ActionExists      Action = "exists"
	ActionSkipped     Action = "skipped"
)

// ReconciliationAction is the per-lease audit record emitted by a
// pass, one per normalized lease regardless of outcome.
type ReconciliationAction struct {
	RouterID     string `json:"router_id"`
	MACAddress   string `json:"mac_address"`
	IPAddress    string `json:"ip_address"`
	Comment      string `json:"comment,omitempty"`
	ClientAction Action `json:"client_action,omitempty"`
	DeviceAction Action `json:"device_action,omitempty"`
	NetworkID    string `json:"network_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Counters aggregates the outcome of one pass.
type Counters struct {
	CreatedClients int `json:"created_clients"`
	CreatedDevices int `json:"created_devices"`
	UpdatedDevices int `json:"updated_devices"`
	Skipped        int `json:"skipped"`
	Errors         int `json:"errors"`
}

// RouterError records a per-router acquisition failure. A router
// error never aborts a pass; it is reported alongside the results.
type RouterError struct {
	RouterID string `json:"router_id"`
	Router   string `json:"router"`
	Message  string `json:"message"`
}

// Pass is the persisted record of one reconciliation pass.
type Pass struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
	Counters  Counters  `json:"counters"`
	ErrorMsg  string    `json:"error_msg,omitempty"`
}

// PassResult is the full return value of one reconciliation pass:
// the per-lease audit trail, the aggregate counters, and any
// per-router acquisition errors.
type PassResult struct {
	PassID   string                 `json:"pass_id,omitempty"`
	Mode     Mode                   `json:"mode"`
	Actions  []ReconciliationAction `json:"actions"`
	Counters Counters               `json:"counters"`
	Errors   []RouterError          `json:"errors"`
}
