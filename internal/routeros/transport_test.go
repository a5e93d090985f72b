package routeros

import (
	"context"
	"errors"
	"testing"

	"github.com/HerbHall/leasesync/pkg/models"
	"go.uber.org/zap"
)

// fakeTransport returns canned leases or an error.
type fakeTransport struct {
	name   string
	leases []models.Lease
	err    error
	calls  int
}

func (f *fakeTransport) Name() string { return f.name }

func (f *fakeTransport) FetchLeases(_ context.Context, _ *models.Router) ([]models.Lease, error) {
	f.calls++
	return f.leases, f.err
}

func someLeases(n int) []models.Lease {
	leases := make([]models.Lease, n)
	for i := range leases {
		leases[i] = models.Lease{MACAddress: "aa:bb:cc:dd:ee:00", IPAddress: "10.0.0.1"}
	}
	return leases
}

func TestFallback_PrimaryServes(t *testing.T) {
	primary := &fakeTransport{name: "rest", leases: someLeases(2)}
	secondary := &fakeTransport{name: "console"}
	f := NewFallback(primary, secondary, zap.NewNop())

	leases, via, err := f.FetchLeases(context.Background(), &models.Router{Name: "r"})
	if err != nil {
		t.Fatalf("FetchLeases: %v", err)
	}
	if via != "rest" {
		t.Errorf("via = %q, want rest", via)
	}
	if len(leases) != 2 {
		t.Errorf("got %d leases, want 2", len(leases))
	}
	if secondary.calls != 0 {
		t.Error("secondary transport should not be called when primary serves")
	}
}

func TestFallback_PrimaryFailsSecondaryServes(t *testing.T) {
	primary := &fakeTransport{name: "rest", err: errors.New("connection refused")}
	secondary := &fakeTransport{name: "console", leases: someLeases(3)}
	f := NewFallback(primary, secondary, zap.NewNop())

	leases, via, err := f.FetchLeases(context.Background(), &models.Router{Name: "r"})
	if err != nil {
		t.Fatalf("FetchLeases: %v", err)
	}
	if via != "console" {
		t.Errorf("via = %q, want console", via)
	}
	if len(leases) != 3 {
		t.Errorf("got %d leases, want 3", len(leases))
	}
}

func TestFallback_PrimaryEmptyTriggersSecondary(t *testing.T) {
	primary := &fakeTransport{name: "rest"}
	secondary := &fakeTransport{name: "console", leases: someLeases(1)}
	f := NewFallback(primary, secondary, zap.NewNop())

	leases, via, err := f.FetchLeases(context.Background(), &models.Router{Name: "r"})
	if err != nil {
		t.Fatalf("FetchLeases: %v", err)
	}
	if via != "console" {
		t.Errorf("via = %q, want console", via)
	}
	if len(leases) != 1 {
		t.Errorf("got %d leases, want 1", len(leases))
	}
}

func TestFallback_BothEmptyIsNotAnError(t *testing.T) {
	primary := &fakeTransport{name: "rest"}
	secondary := &fakeTransport{name: "console"}
	f := NewFallback(primary, secondary, zap.NewNop())

	leases, via, err := f.FetchLeases(context.Background(), &models.Router{Name: "r"})
	if err != nil {
		t.Fatalf("FetchLeases: %v", err)
	}
	if via != "rest" {
		t.Errorf("via = %q, want rest", via)
	}
	if len(leases) != 0 {
		t.Errorf("got %d leases, want 0", len(leases))
	}
}

func TestFallback_PrimaryEmptySecondaryFails(t *testing.T) {
	primary := &fakeTransport{name: "rest"}
	secondary := &fakeTransport{name: "console", err: errors.New("ssh refused")}
	f := NewFallback(primary, secondary, zap.NewNop())

	leases, via, err := f.FetchLeases(context.Background(), &models.Router{Name: "r"})
	if err != nil {
		t.Fatalf("an empty primary result is authoritative when the fallback fails: %v", err)
	}
	if via != "rest" {
		t.Errorf("via = %q, want rest", via)
	}
	if len(leases) != 0 {
		t.Errorf("got %d leases, want 0", len(leases))
	}
}

func TestFallback_BothFail(t *testing.T) {
	primary := &fakeTransport{name: "rest", err: errors.New("timeout")}
	secondary := &fakeTransport{name: "console", err: errors.New("auth failed")}
	f := NewFallback(primary, secondary, zap.NewNop())

	_, _, err := f.FetchLeases(context.Background(), &models.Router{Name: "r"})
	if err == nil {
		t.Fatal("expected error when both transports fail")
	}
}
