// Package routeros acquires DHCP lease tables from RouterOS-style
// routers over two transports: the REST management API (primary) and
// an interactive SSH console session (fallback).
package routeros

import (
	"context"
	"fmt"

	"github.com/HerbHall/leasesync/pkg/models"
	"go.uber.org/zap"
)

// LeaseTransport fetches the current DHCP lease table from one router.
type LeaseTransport interface {
	// Name identifies the transport in logs and pass results.
	Name() string
	// FetchLeases returns the router's current lease table. Any
	// transport-level failure (auth, timeout, malformed response)
	// is returned as an error; it is never fatal to a pass.
	FetchLeases(ctx context.Context, router *models.Router) ([]models.Lease, error)
}

// Fetcher is the acquisition interface consumed by the reconciliation
// engine. The via return value reports which transport ultimately
// served the request.
type Fetcher interface {
	FetchLeases(ctx context.Context, router *models.Router) (leases []models.Lease, via string, err error)
}

// Fallback tries the primary transport first and falls back to the
// secondary only when the primary fails or yields zero leases. The two
// transports are never mixed within a single router's poll.
type Fallback struct {
	primary   LeaseTransport
	secondary LeaseTransport
	logger    *zap.Logger
}

// NewFallback creates a Fallback over the given transports.
func NewFallback(primary, secondary LeaseTransport, logger *zap.Logger) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

// FetchLeases implements Fetcher.
func (f *Fallback) FetchLeases(ctx context.Context, router *models.Router) ([]models.Lease, string, error) {
	leases, primaryErr := f.primary.FetchLeases(ctx, router)
	if primaryErr == nil && len(leases) > 0 {
		transportFetches.WithLabelValues(f.primary.Name(), "ok").Inc()
		return leases, f.primary.Name(), nil
	}
	if primaryErr != nil {
		transportFetches.WithLabelValues(f.primary.Name(), "error").Inc()
		f.logger.Warn("primary transport failed, falling back",
			zap.String("router", router.Name),
			zap.String("transport", f.primary.Name()),
			zap.Error(primaryErr),
		)
	} else {
		f.logger.Debug("primary transport returned no leases, trying fallback",
			zap.String("router", router.Name),
		)
	}

	transportFallbacks.Inc()

	fleases, secondaryErr := f.secondary.FetchLeases(ctx, router)
	if secondaryErr == nil {
		transportFetches.WithLabelValues(f.secondary.Name(), "ok").Inc()
		if len(fleases) == 0 && primaryErr == nil {
			// Both transports reachable, the router genuinely has no
			// leases. Attribute the empty result to the primary.
			return leases, f.primary.Name(), nil
		}
		return fleases, f.secondary.Name(), nil
	}
	transportFetches.WithLabelValues(f.secondary.Name(), "error").Inc()

	if primaryErr == nil {
		// Primary succeeded with an empty table; the fallback failing
		// does not make the router unavailable.
		return leases, f.primary.Name(), nil
	}

	return nil, "", fmt.Errorf("%s: %v; %s: %w",
		f.primary.Name(), primaryErr, f.secondary.Name(), secondaryErr)
}
