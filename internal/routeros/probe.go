package routeros

import (
	"context"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Probe sends a single ICMP echo to the host and reports whether a
// reply arrived. A non-nil error means the probe itself could not run
// (no raw socket permission, resolution failure); callers should
// treat that as inconclusive rather than unreachable.
func Probe(ctx context.Context, host string, timeout time.Duration) (bool, error) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return false, err
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(runtime.GOOS == "windows")

	if err := pinger.RunWithContext(ctx); err != nil {
		return false, err
	}
	return pinger.Statistics().PacketsRecv > 0, nil
}
