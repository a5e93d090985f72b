package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/HerbHall/leasesync/internal/event"
	"github.com/HerbHall/leasesync/pkg/models"
)

// Handler provides WebSocket endpoints for real-time pass updates.
type Handler struct {
	hub    *Hub
	bus    *event.Bus
	logger *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler and subscribes to pass events.
func NewHandler(bus *event.Bus, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:    NewHub(logger),
		bus:    bus,
		logger: logger,
	}
	h.subscribeToEvents()
	return h
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/passes", h.handlePassStream)
}

// handlePassStream upgrades the connection to WebSocket and streams
// reconciliation pass events until the client disconnects.
func (h *Handler) handlePassStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan Message, 256),
		logger: h.logger,
	}

	h.hub.Register(client)

	// Run read and write pumps. When either exits, clean up.
	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	// readPump blocks until client disconnects.
	client.readPump(ctx)

	// Client disconnected -- stop write pump and unregister.
	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

// subscribeToEvents forwards reconciliation events to all connected
// WebSocket clients.
func (h *Handler) subscribeToEvents() {
	if h.bus == nil {
		return
	}

	h.bus.Subscribe(event.TopicPassStarted, func(_ context.Context, e event.Event) {
		payload, ok := e.Payload.(map[string]any)
		if !ok {
			return
		}
		passID, _ := payload["pass_id"].(string)
		mode, _ := payload["mode"].(string)
		routers, _ := payload["routers"].(int)
		h.hub.Broadcast(Message{
			Type:      MessagePassStarted,
			PassID:    passID,
			Timestamp: e.Timestamp,
			Data: PassStartedData{
				Mode:    mode,
				Routers: routers,
			},
		})
	})

	h.bus.Subscribe(event.TopicLeaseAction, func(_ context.Context, e event.Event) {
		action, ok := e.Payload.(models.ReconciliationAction)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageLeaseAction,
			Timestamp: e.Timestamp,
			Data:      LeaseActionData{Action: action},
		})
	})

	h.bus.Subscribe(event.TopicRouterError, func(_ context.Context, e event.Event) {
		payload, ok := e.Payload.(map[string]any)
		if !ok {
			return
		}
		routerID, _ := payload["router_id"].(string)
		router, _ := payload["router"].(string)
		errMsg, _ := payload["error"].(string)
		h.hub.Broadcast(Message{
			Type:      MessageRouterError,
			Timestamp: e.Timestamp,
			Data: RouterErrorData{
				RouterID: routerID,
				Router:   router,
				Error:    errMsg,
			},
		})
	})

	h.bus.Subscribe(event.TopicPassCompleted, func(_ context.Context, e event.Event) {
		result, ok := e.Payload.(*models.PassResult)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessagePassCompleted,
			PassID:    result.PassID,
			Timestamp: e.Timestamp,
			Data: PassCompletedData{
				Mode:     string(result.Mode),
				Counters: result.Counters,
				Errors:   len(result.Errors),
			},
		})
	})

	h.logger.Info("subscribed to reconciliation events for WebSocket broadcasting")
}
