package inventory

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/HerbHall/leasesync/internal/store"
	"github.com/HerbHall/leasesync/pkg/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.db")
	db, err := store.New(path)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := NewStore(context.Background(), db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestRouterCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	r := &models.Router{Name: "edge-1", Address: "192.0.2.1", Username: "api", Secret: "hunter2"}
	if err := s.CreateRouter(ctx, r); err != nil {
		t.Fatalf("CreateRouter: %v", err)
	}
	if r.ID == "" {
		t.Fatal("CreateRouter did not assign an ID")
	}

	got, err := s.GetRouter(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRouter: %v", err)
	}
	if got == nil || got.Name != "edge-1" || got.Secret != "hunter2" {
		t.Errorf("GetRouter = %+v, want edge-1", got)
	}

	routers, err := s.ListRouters(ctx)
	if err != nil {
		t.Fatalf("ListRouters: %v", err)
	}
	if len(routers) != 1 {
		t.Fatalf("ListRouters returned %d routers, want 1", len(routers))
	}

	if err := s.DeleteRouter(ctx, r.ID); err != nil {
		t.Fatalf("DeleteRouter: %v", err)
	}
	if err := s.DeleteRouter(ctx, r.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("DeleteRouter on missing router = %v, want sql.ErrNoRows", err)
	}
}

func TestGetRouter_not_found(t *testing.T) {
	s := testStore(t)
	got, err := s.GetRouter(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("GetRouter: %v", err)
	}
	if got != nil {
		t.Errorf("GetRouter = %+v, want nil", got)
	}
}

func TestNetworks(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	r := &models.Router{Name: "edge-1", Address: "192.0.2.1"}
	if err := s.CreateRouter(ctx, r); err != nil {
		t.Fatalf("CreateRouter: %v", err)
	}
	n := &models.Network{CIDR: "10.0.0.0/24", RouterID: r.ID, InterfaceName: "bridge-lan"}
	if err := s.CreateNetwork(ctx, n); err != nil {
		t.Fatalf("CreateNetwork: %v", err)
	}

	networks, err := s.ListNetworks(ctx)
	if err != nil {
		t.Fatalf("ListNetworks: %v", err)
	}
	if len(networks) != 1 || networks[0].CIDR != "10.0.0.0/24" {
		t.Errorf("ListNetworks = %+v, want single 10.0.0.0/24", networks)
	}
}

func TestCreateClient(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, "Smith Apt4")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if c.ID == "" || c.Name != "Smith Apt4" {
		t.Errorf("CreateClient = %+v", c)
	}

	clients, err := s.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(clients) != 1 {
		t.Fatalf("ListClients returned %d clients, want 1", len(clients))
	}
}

func TestDeviceLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, "Smith Apt4")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	d := &models.Device{
		MACAddress:  "aa:bb:cc:dd:ee:01",
		IPAddress:   "10.0.0.42",
		DisplayName: "Smith Apt4 - aa:bb:cc:dd:ee:01",
		ClientID:    c.ID,
	}
	if err := s.CreateDevice(ctx, d); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}

	t.Run("duplicate MAC rejected", func(t *testing.T) {
		dup := &models.Device{MACAddress: "aa:bb:cc:dd:ee:01"}
		if err := s.CreateDevice(ctx, dup); err == nil {
			t.Error("expected unique constraint error for duplicate MAC")
		}
	})

	t.Run("update overwrites observed fields", func(t *testing.T) {
		err := s.UpdateDevice(ctx, d.ID, DeviceUpdate{
			ClientID:    c.ID,
			IPAddress:   "10.0.0.99",
			DisplayName: "Smith Apt4 - aa:bb:cc:dd:ee:01",
		})
		if err != nil {
			t.Fatalf("UpdateDevice: %v", err)
		}
		got, err := s.GetDeviceByMAC(ctx, "aa:bb:cc:dd:ee:01")
		if err != nil {
			t.Fatalf("GetDeviceByMAC: %v", err)
		}
		if got.IPAddress != "10.0.0.99" {
			t.Errorf("IPAddress = %q, want 10.0.0.99", got.IPAddress)
		}
		if got.NetworkID != "" {
			t.Errorf("NetworkID = %q, want empty after overwrite", got.NetworkID)
		}
		if !got.LastSeen.After(got.FirstSeen) && !got.LastSeen.Equal(got.FirstSeen) {
			t.Error("last_seen was not bumped")
		}
	})

	t.Run("update missing device", func(t *testing.T) {
		err := s.UpdateDevice(ctx, "no-such-id", DeviceUpdate{})
		if !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("UpdateDevice = %v, want sql.ErrNoRows", err)
		}
	})

	devices, err := s.ListDevices(ctx)
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("ListDevices returned %d devices, want 1", len(devices))
	}
}

func TestPassAudit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := &models.Pass{Mode: models.ModeImport}
	if err := s.CreatePass(ctx, p); err != nil {
		t.Fatalf("CreatePass: %v", err)
	}

	a := &models.ReconciliationAction{
		RouterID:     "r1",
		MACAddress:   "aa:bb:cc:dd:ee:01",
		IPAddress:    "10.0.0.42",
		Comment:      "Smith Apt4",
		ClientAction: models.ActionCreated,
		DeviceAction: models.ActionCreated,
	}
	if err := s.InsertAction(ctx, p.ID, a); err != nil {
		t.Fatalf("InsertAction: %v", err)
	}

	p.Counters = models.Counters{CreatedClients: 1, CreatedDevices: 1}
	if err := s.FinishPass(ctx, p); err != nil {
		t.Fatalf("FinishPass: %v", err)
	}

	got, err := s.GetPass(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPass: %v", err)
	}
	if got == nil {
		t.Fatal("GetPass returned nil")
	}
	if got.Mode != models.ModeImport {
		t.Errorf("Mode = %q, want import", got.Mode)
	}
	if got.Counters.CreatedClients != 1 || got.Counters.CreatedDevices != 1 {
		t.Errorf("Counters = %+v, want 1 created client and device", got.Counters)
	}
	if got.EndedAt.IsZero() {
		t.Error("EndedAt not recorded")
	}

	actions, err := s.ListActions(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListActions: %v", err)
	}
	if len(actions) != 1 || actions[0].ClientAction != models.ActionCreated {
		t.Errorf("ListActions = %+v, want one created action", actions)
	}

	passes, err := s.ListPasses(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListPasses: %v", err)
	}
	if len(passes) != 1 {
		t.Fatalf("ListPasses returned %d passes, want 1", len(passes))
	}
}

func TestGetPass_not_found(t *testing.T) {
	s := testStore(t)
	got, err := s.GetPass(context.Background(), "no-such-pass")
	if err != nil {
		t.Fatalf("GetPass: %v", err)
	}
	if got != nil {
		t.Errorf("GetPass = %+v, want nil", got)
	}
}
