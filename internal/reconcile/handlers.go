package reconcile

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/HerbHall/leasesync/internal/inventory"
	"github.com/HerbHall/leasesync/internal/server"
	"github.com/HerbHall/leasesync/pkg/models"
)

// API exposes reconciliation and inventory management over HTTP.
type API struct {
	engine *Engine
	store  *inventory.Store
	logger *zap.Logger
}

// NewAPI wires the HTTP handlers for the reconciliation surface.
func NewAPI(engine *Engine, store *inventory.Store, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{engine: engine, store: store, logger: logger}
}

var _ server.RouteRegistrar = (*API)(nil)

// RegisterRoutes implements server.RouteRegistrar.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/reconcile", a.handleReconcile)
	mux.HandleFunc("GET /api/v1/passes", a.handleListPasses)
	mux.HandleFunc("GET /api/v1/passes/{id}", a.handleGetPass)
	mux.HandleFunc("GET /api/v1/routers", a.handleListRouters)
	mux.HandleFunc("POST /api/v1/routers", a.handleCreateRouter)
	mux.HandleFunc("DELETE /api/v1/routers/{id}", a.handleDeleteRouter)
	mux.HandleFunc("GET /api/v1/networks", a.handleListNetworks)
	mux.HandleFunc("POST /api/v1/networks", a.handleCreateNetwork)
	mux.HandleFunc("GET /api/v1/clients", a.handleListClients)
	mux.HandleFunc("GET /api/v1/devices", a.handleListDevices)
}

// ReconcileRequest is the body of POST /api/v1/reconcile.
type ReconcileRequest struct {
	Mode      string   `json:"mode"`
	RouterIDs []string `json:"router_ids,omitempty"`
}

func (a *API) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body: "+err.Error(), r.URL.Path)
		return
	}
	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}

	result, err := a.engine.Reconcile(r.Context(), mode, req.RouterIDs)
	if err != nil {
		a.logger.Error("reconcile failed", zap.Error(err))
		server.InternalError(w, err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleListPasses(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	passes, err := a.store.ListPasses(r.Context(), limit, offset)
	if err != nil {
		server.InternalError(w, err.Error(), r.URL.Path)
		return
	}
	if passes == nil {
		passes = []models.Pass{}
	}
	writeJSON(w, http.StatusOK, passes)
}

// PassDetail is the response of GET /api/v1/passes/{id}: the pass
// record with its full per-lease audit trail.
type PassDetail struct {
	models.Pass
	Actions []models.ReconciliationAction `json:"actions"`
}

func (a *API) handleGetPass(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	pass, err := a.store.GetPass(r.Context(), id)
	if err != nil {
		server.InternalError(w, err.Error(), r.URL.Path)
		return
	}
	if pass == nil {
		server.NotFound(w, "pass not found", r.URL.Path)
		return
	}
	actions, err := a.store.ListActions(r.Context(), id)
	if err != nil {
		server.InternalError(w, err.Error(), r.URL.Path)
		return
	}
	if actions == nil {
		actions = []models.ReconciliationAction{}
	}
	writeJSON(w, http.StatusOK, PassDetail{Pass: *pass, Actions: actions})
}

func (a *API) handleListRouters(w http.ResponseWriter, r *http.Request) {
	routers, err := a.store.ListRouters(r.Context())
	if err != nil {
		server.InternalError(w, err.Error(), r.URL.Path)
		return
	}
	if routers == nil {
		routers = []models.Router{}
	}
	writeJSON(w, http.StatusOK, routers)
}

// CreateRouterRequest is the body of POST /api/v1/routers. The secret
// is accepted on create but never echoed back.
type CreateRouterRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

func (a *API) handleCreateRouter(w http.ResponseWriter, r *http.Request) {
	var req CreateRouterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body: "+err.Error(), r.URL.Path)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" {
		server.BadRequest(w, "name is required", r.URL.Path)
		return
	}
	if req.Address == "" || !validHost(req.Address) {
		server.BadRequest(w, "address must be a valid IP or hostname", r.URL.Path)
		return
	}

	router := &models.Router{
		Name:     req.Name,
		Address:  req.Address,
		Username: req.Username,
		Secret:   req.Secret,
	}
	if err := a.store.CreateRouter(r.Context(), router); err != nil {
		server.InternalError(w, err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, router)
}

func (a *API) handleDeleteRouter(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteRouter(r.Context(), r.PathValue("id")); err != nil {
		server.NotFound(w, "router not found", r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListNetworks(w http.ResponseWriter, r *http.Request) {
	networks, err := a.store.ListNetworks(r.Context())
	if err != nil {
		server.InternalError(w, err.Error(), r.URL.Path)
		return
	}
	if networks == nil {
		networks = []models.Network{}
	}
	writeJSON(w, http.StatusOK, networks)
}

// CreateNetworkRequest is the body of POST /api/v1/networks.
type CreateNetworkRequest struct {
	CIDR          string `json:"cidr"`
	RouterID      string `json:"router_id"`
	InterfaceName string `json:"interface_name"`
}

func (a *API) handleCreateNetwork(w http.ResponseWriter, r *http.Request) {
	var req CreateNetworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body: "+err.Error(), r.URL.Path)
		return
	}
	if _, _, err := net.ParseCIDR(req.CIDR); err != nil {
		server.BadRequest(w, "cidr must be a valid subnet in CIDR notation", r.URL.Path)
		return
	}
	router, err := a.store.GetRouter(r.Context(), req.RouterID)
	if err != nil {
		server.InternalError(w, err.Error(), r.URL.Path)
		return
	}
	if router == nil {
		server.BadRequest(w, "router_id does not refer to a configured router", r.URL.Path)
		return
	}

	network := &models.Network{
		CIDR:          req.CIDR,
		RouterID:      req.RouterID,
		InterfaceName: req.InterfaceName,
	}
	if err := a.store.CreateNetwork(r.Context(), network); err != nil {
		server.InternalError(w, err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, network)
}

func (a *API) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := a.store.ListClients(r.Context())
	if err != nil {
		server.InternalError(w, err.Error(), r.URL.Path)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (a *API) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := a.store.ListDevices(r.Context())
	if err != nil {
		server.InternalError(w, err.Error(), r.URL.Path)
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// validHost accepts an IP address or a plausible DNS name.
func validHost(s string) bool {
	if net.ParseIP(s) != nil {
		return true
	}
	if len(s) > 253 || strings.ContainsAny(s, " /:@") {
		return false
	}
	return true
}
