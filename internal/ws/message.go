package ws

import (
	"time"

	"github.com/HerbHall/leasesync/pkg/models"
)

// MessageType discriminates WebSocket messages.
type MessageType string

const (
	MessagePassStarted   MessageType = "pass.started"
	MessageLeaseAction   MessageType = "pass.lease_action"
	MessageRouterError   MessageType = "pass.router_error"
	MessagePassCompleted MessageType = "pass.completed"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      MessageType `json:"type"`
	PassID    string      `json:"pass_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// PassStartedData is the payload for pass.started messages.
type PassStartedData struct {
	Mode    string `json:"mode"`
	Routers int    `json:"routers"`
}

// LeaseActionData is the payload for pass.lease_action messages.
type LeaseActionData struct {
	Action models.ReconciliationAction `json:"action"`
}

// RouterErrorData is the payload for pass.router_error messages.
type RouterErrorData struct {
	RouterID string `json:"router_id"`
	Router   string `json:"router"`
	Error    string `json:"error"`
}

// PassCompletedData is the payload for pass.completed messages.
type PassCompletedData struct {
	Mode     string          `json:"mode"`
	Counters models.Counters `json:"counters"`
	Errors   int             `json:"errors"`
}
