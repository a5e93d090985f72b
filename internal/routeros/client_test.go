package routeros

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/HerbHall/leasesync/pkg/models"
	"go.uber.org/zap"
)

// testRESTClient points a RESTClient at the httptest server.
func testRESTClient(t *testing.T, srv *httptest.Server) (*RESTClient, *models.Router) {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse test server url: %v", err)
	}
	port, _ := strconv.Atoi(u.Port())
	c := NewRESTClient(2*time.Second, port, false, zap.NewNop())
	router := &models.Router{
		ID:       "r1",
		Name:     "edge-1",
		Address:  u.Hostname(),
		Username: "api",
		Secret:   "secret",
	}
	return c, router
}

func TestRESTClient_FetchLeases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/ip/dhcp-server/lease" {
			http.NotFound(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "api" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{".id":"*1","address":"10.0.0.42","mac-address":"AA:BB:CC:DD:EE:01","comment":"Smith Apt4","status":"bound"},
			{".id":"*2","address":"10.0.0.43","mac-address":"AA:BB:CC:DD:EE:02","status":"bound"}
		]`))
	}))
	defer srv.Close()

	c, router := testRESTClient(t, srv)
	leases, err := c.FetchLeases(context.Background(), router)
	if err != nil {
		t.Fatalf("FetchLeases: %v", err)
	}
	if len(leases) != 2 {
		t.Fatalf("got %d leases, want 2", len(leases))
	}
	if leases[0].Comment != "Smith Apt4" {
		t.Errorf("comment = %q, want %q", leases[0].Comment, "Smith Apt4")
	}
	if leases[0].IPAddress != "10.0.0.42" {
		t.Errorf("ip = %q, want 10.0.0.42", leases[0].IPAddress)
	}
}

func TestRESTClient_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":401,"message":"unauthorized"}`))
	}))
	defer srv.Close()

	c, router := testRESTClient(t, srv)
	if _, err := c.FetchLeases(context.Background(), router); err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestRESTClient_ErrorObjectWithOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":400,"message":"unknown path"}`))
	}))
	defer srv.Close()

	c, router := testRESTClient(t, srv)
	if _, err := c.FetchLeases(context.Background(), router); err == nil {
		t.Fatal("expected error for error-object response")
	}
}

func TestRESTClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c, router := testRESTClient(t, srv)
	if _, err := c.FetchLeases(context.Background(), router); err == nil {
		t.Fatal("expected error for malformed response")
	}
}

func TestRESTClient_Unreachable(t *testing.T) {
	c := NewRESTClient(200*time.Millisecond, 18080, false, zap.NewNop())
	router := &models.Router{Name: "dead", Address: "127.0.0.1", Username: "u", Secret: "s"}
	if _, err := c.FetchLeases(context.Background(), router); err == nil {
		t.Fatal("expected error for unreachable router")
	}
}
