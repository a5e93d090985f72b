package reconcile

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/leasesync/internal/event"
	"github.com/HerbHall/leasesync/internal/inventory"
	"github.com/HerbHall/leasesync/internal/routeros"
	"github.com/HerbHall/leasesync/pkg/models"
)

// Config tunes one reconciliation pass.
type Config struct {
	// FetchConcurrency bounds how many routers are polled at once.
	// Embedded routers handle few concurrent management sessions.
	FetchConcurrency int
	// TransportTimeout caps each router's fetch, both transports
	// included.
	TransportTimeout time.Duration
	// PingPrecheck skips the transports entirely for routers that do
	// not answer an ICMP echo, using PingTimeout per probe.
	PingPrecheck bool
	PingTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = 4
	}
	if c.TransportTimeout <= 0 {
		c.TransportTimeout = 10 * time.Second
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = 2 * time.Second
	}
	return c
}

// Engine runs reconciliation passes: concurrent lease fetches across
// routers, then a single-threaded matching loop over the results.
type Engine struct {
	store   *inventory.Store
	fetcher routeros.Fetcher
	matcher inventory.ClientMatcher
	bus     *event.Bus
	logger  *zap.Logger
	cfg     Config
}

// NewEngine wires a reconciliation engine. A nil matcher defaults to
// the comment-based heuristic; a nil bus disables event publishing.
func NewEngine(store *inventory.Store, fetcher routeros.Fetcher, matcher inventory.ClientMatcher, bus *event.Bus, logger *zap.Logger, cfg Config) *Engine {
	if matcher == nil {
		matcher = inventory.CommentMatcher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:   store,
		fetcher: fetcher,
		matcher: matcher,
		bus:     bus,
		logger:  logger,
		cfg:     cfg.withDefaults(),
	}
}

type fetchResult struct {
	router models.Router
	leases []models.Lease
	via    string
	err    error
}

// Reconcile runs one pass in the given mode. An empty routerIDs polls
// every configured router. Only a failure to load the inventory (or to
// open the pass's audit record) is returned as an error; per-router
// and per-lease failures degrade to entries in the result.
func (e *Engine) Reconcile(ctx context.Context, mode models.Mode, routerIDs []string) (*models.PassResult, error) {
	start := time.Now()

	routers, err := e.store.ListRouters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list routers: %w", err)
	}
	result := &models.PassResult{Mode: mode}
	routers = filterRouters(routers, routerIDs, result)

	idx, err := inventory.BuildIndex(ctx, e.store, e.matcher)
	if err != nil {
		return nil, err
	}

	var pass *models.Pass
	if mode != models.ModePreview {
		pass = &models.Pass{Mode: mode}
		if err := e.store.CreatePass(ctx, pass); err != nil {
			return nil, err
		}
		result.PassID = pass.ID
	}

	e.publish(ctx, event.TopicPassStarted, map[string]any{
		"pass_id": result.PassID,
		"mode":    string(mode),
		"routers": len(routers),
	})
	e.logger.Info("pass started",
		zap.String("mode", string(mode)),
		zap.Int("routers", len(routers)))

	results := e.fetchAll(ctx, routers)

	for i := range results {
		fr := &results[i]
		if fr.err != nil {
			routerErrors.Inc()
			result.Errors = append(result.Errors, models.RouterError{
				RouterID: fr.router.ID,
				Router:   fr.router.Name,
				Message:  fr.err.Error(),
			})
			result.Counters.Errors++
			e.logger.Warn("router unavailable",
				zap.String("router", fr.router.Name),
				zap.Error(fr.err))
			e.publish(ctx, event.TopicRouterError, map[string]any{
				"router_id": fr.router.ID,
				"router":    fr.router.Name,
				"error":     fr.err.Error(),
			})
			continue
		}
		e.logger.Debug("leases fetched",
			zap.String("router", fr.router.Name),
			zap.String("via", fr.via),
			zap.Int("leases", len(fr.leases)))
		for _, lease := range fr.leases {
			e.processLease(ctx, mode, idx, &fr.router, lease, result)
		}
	}

	if pass != nil {
		pass.Counters = result.Counters
		if err := e.store.FinishPass(ctx, pass); err != nil {
			e.logger.Error("finish pass", zap.Error(err))
		}
	}

	passesTotal.WithLabelValues(string(mode)).Inc()
	passDuration.Observe(time.Since(start).Seconds())
	e.publish(ctx, event.TopicPassCompleted, result)
	e.logger.Info("pass completed",
		zap.String("mode", string(mode)),
		zap.Int("created_clients", result.Counters.CreatedClients),
		zap.Int("created_devices", result.Counters.CreatedDevices),
		zap.Int("updated_devices", result.Counters.UpdatedDevices),
		zap.Int("skipped", result.Counters.Skipped),
		zap.Int("errors", result.Counters.Errors),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// fetchAll polls the routers through a bounded worker pool. A
// cancelled context stops new polls from starting; routers never
// polled surface as per-router errors in the results.
func (e *Engine) fetchAll(ctx context.Context, routers []models.Router) []fetchResult {
	results := make([]fetchResult, len(routers))
	sem := make(chan struct{}, e.cfg.FetchConcurrency)
	var wg sync.WaitGroup

	for i := range routers {
		results[i].router = routers[i]
		if ctx.Err() != nil {
			results[i].err = fmt.Errorf("poll not started: %w", ctx.Err())
			continue
		}
		select {
		case <-ctx.Done():
			results[i].err = fmt.Errorf("poll not started: %w", ctx.Err())
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(r *fetchResult) {
			defer wg.Done()
			defer func() { <-sem }()
			r.leases, r.via, r.err = e.fetchOne(ctx, &r.router)
		}(&results[i])
	}
	wg.Wait()
	return results
}

func (e *Engine) fetchOne(ctx context.Context, router *models.Router) ([]models.Lease, string, error) {
	if e.cfg.PingPrecheck {
		reachable, err := routeros.Probe(ctx, router.Address, e.cfg.PingTimeout)
		// An inconclusive probe (no ICMP permission, resolver error)
		// falls through to the transports.
		if err == nil && !reachable {
			return nil, "", fmt.Errorf("host %s did not answer ping", router.Address)
		}
	}
	fctx, cancel := context.WithTimeout(ctx, e.cfg.TransportTimeout)
	defer cancel()
	return e.fetcher.FetchLeases(fctx, router)
}

func (e *Engine) processLease(ctx context.Context, mode models.Mode, idx *inventory.Index, router *models.Router, lease models.Lease, result *models.PassResult) {
	n, err := Normalize(lease)
	if err != nil {
		result.Counters.Skipped++
		leasesProcessed.WithLabelValues("malformed").Inc()
		e.record(ctx, result, models.ReconciliationAction{
			RouterID:   router.ID,
			MACAddress: strings.ToLower(lease.MACAddress),
			IPAddress:  lease.IPAddress,
			Comment:    lease.Comment,
			Error:      err.Error(),
		})
		return
	}
	if n.Generic {
		result.Counters.Skipped++
		leasesProcessed.WithLabelValues("generic").Inc()
		e.record(ctx, result, models.ReconciliationAction{
			RouterID:     router.ID,
			MACAddress:   n.MACAddress,
			IPAddress:    n.IPAddress,
			Comment:      n.Comment,
			DeviceAction: models.ActionSkipped,
		})
		return
	}

	action := models.ReconciliationAction{
		RouterID:   router.ID,
		MACAddress: n.MACAddress,
		IPAddress:  n.IPAddress,
		Comment:    n.Comment,
		NetworkID:  e.resolveNetwork(idx, router.ID, n.IPAddress),
	}

	client := idx.ClientByName(n.DerivedName)
	action.ClientAction = decideClient(mode, client != nil)
	var clientID string
	if client != nil {
		clientID = client.ID
	}
	switch action.ClientAction {
	case models.ActionCreated:
		created, err := e.store.CreateClient(ctx, n.DerivedName)
		if err != nil {
			// Without the client the device create would dangle, so
			// the device step is not attempted for this lease.
			action.Error = fmt.Sprintf("create client: %v", err)
			result.Counters.Errors++
			leasesProcessed.WithLabelValues("error").Inc()
			e.record(ctx, result, action)
			return
		}
		idx.AddClient(created)
		clientID = created.ID
		result.Counters.CreatedClients++
	case models.ActionWouldCreate:
		result.Counters.CreatedClients++
	}

	device := idx.DeviceByMAC(n.MACAddress)
	action.DeviceAction = decideDevice(mode, device != nil)
	displayName := n.DerivedName + " - " + n.MACAddress
	switch action.DeviceAction {
	case models.ActionCreated:
		d := &models.Device{
			MACAddress:  n.MACAddress,
			IPAddress:   n.IPAddress,
			DisplayName: displayName,
			ClientID:    clientID,
			NetworkID:   action.NetworkID,
		}
		if err := e.store.CreateDevice(ctx, d); err != nil {
			action.Error = fmt.Sprintf("create device: %v", err)
			result.Counters.Errors++
		} else {
			idx.AddDevice(d)
			result.Counters.CreatedDevices++
		}
	case models.ActionWouldCreate:
		result.Counters.CreatedDevices++
	case models.ActionUpdated:
		u := inventory.DeviceUpdate{
			ClientID:    clientID,
			IPAddress:   n.IPAddress,
			DisplayName: displayName,
			NetworkID:   action.NetworkID,
		}
		if err := e.store.UpdateDevice(ctx, device.ID, u); err != nil {
			action.Error = fmt.Sprintf("update device: %v", err)
			result.Counters.Errors++
		} else {
			device.ClientID = u.ClientID
			device.IPAddress = u.IPAddress
			device.DisplayName = u.DisplayName
			device.NetworkID = u.NetworkID
			result.Counters.UpdatedDevices++
		}
	case models.ActionWouldUpdate:
		result.Counters.UpdatedDevices++
	case models.ActionSkipped:
		result.Counters.Skipped++
	}

	if action.Error != "" {
		leasesProcessed.WithLabelValues("error").Inc()
	} else {
		leasesProcessed.WithLabelValues("reconciled").Inc()
	}
	e.record(ctx, result, action)
}

// resolveNetwork returns the first of the router's networks whose
// subnet contains ip. Overlapping subnets resolve by declaration
// order only.
func (e *Engine) resolveNetwork(idx *inventory.Index, routerID, ip string) string {
	for _, n := range idx.Networks() {
		if n.RouterID == routerID && BelongsTo(ip, n.CIDR) {
			return n.ID
		}
	}
	return ""
}

func (e *Engine) record(ctx context.Context, result *models.PassResult, action models.ReconciliationAction) {
	result.Actions = append(result.Actions, action)
	if result.PassID != "" {
		if err := e.store.InsertAction(ctx, result.PassID, &action); err != nil {
			e.logger.Error("insert pass action", zap.Error(err))
		}
	}
	e.publish(ctx, event.TopicLeaseAction, action)
}

func (e *Engine) publish(ctx context.Context, topic string, payload any) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(ctx, event.Event{
		Topic:     topic,
		Source:    "reconcile",
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// filterRouters restricts routers to the requested IDs. Requested IDs
// with no matching router are reported as router errors rather than
// ignored.
func filterRouters(routers []models.Router, ids []string, result *models.PassResult) []models.Router {
	if len(ids) == 0 {
		return routers
	}
	byID := make(map[string]models.Router, len(routers))
	for _, r := range routers {
		byID[r.ID] = r
	}
	selected := make([]models.Router, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			result.Errors = append(result.Errors, models.RouterError{
				RouterID: id,
				Message:  "unknown router id",
			})
			result.Counters.Errors++
			continue
		}
		selected = append(selected, r)
	}
	return selected
}
