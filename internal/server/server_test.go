package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/wwolkers/librenms-inventory/pkg/inventory"
)

func testInventory() *inventory.Inventory {
	inv := inventory.New()
	inv.AddGroup("core")
	inv.AddHost("core", inventory.Host{
		Name: "router1",
		Vars: map[string]any{"ansible_host": "10.0.0.1", "ansible_network_os": "ios"},
	})
	return inv
}

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	res, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("failed to GET %s: %v", path, err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return res.StatusCode, string(body)
}

func TestHealthz(t *testing.T) {
	s := New("", func(ctx context.Context) (*inventory.Inventory, error) {
		t.Errorf("healthz must not build the inventory")
		return nil, nil
	})
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	code, body := get(t, srv, "/healthz")
	if code != http.StatusOK || strings.TrimSpace(body) != "ok" {
		t.Fatalf("unexpected healthz response: %d %q", code, body)
	}
}

func TestInventory(t *testing.T) {
	var builds atomic.Int32
	s := New("", func(ctx context.Context) (*inventory.Inventory, error) {
		builds.Add(1)
		return testInventory(), nil
	})
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	code, body := get(t, srv, "/inventory")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var doc map[string]map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if _, ok := doc["_meta"]["hostvars"]; !ok {
		t.Fatalf("missing _meta.hostvars in %s", body)
	}
	if hosts := fmt.Sprint(doc["core"]["hosts"]); hosts != "[router1]" {
		t.Fatalf("unexpected core hosts: %s", hosts)
	}

	// trailing slashes are stripped and every request rebuilds
	if code, _ := get(t, srv, "/inventory/"); code != http.StatusOK {
		t.Fatalf("expected 200 with trailing slash, got %d", code)
	}
	if n := builds.Load(); n != 2 {
		t.Fatalf("expected 2 builds, got %d", n)
	}
}

func TestInventoryHost(t *testing.T) {
	s := New("", func(ctx context.Context) (*inventory.Inventory, error) {
		return testInventory(), nil
	})
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	code, body := get(t, srv, "/inventory/hosts/router1")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var vars map[string]any
	if err := json.Unmarshal([]byte(body), &vars); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if vars["ansible_host"] != "10.0.0.1" {
		t.Fatalf("unexpected host vars: %v", vars)
	}

	_, body = get(t, srv, "/inventory/hosts/unknown")
	if strings.TrimSpace(body) != "{}" {
		t.Fatalf("expected empty object for unknown host, got %q", body)
	}
}

func TestInventoryBuildFailure(t *testing.T) {
	s := New("", func(ctx context.Context) (*inventory.Inventory, error) {
		return nil, fmt.Errorf("failed to list device groups: connection refused")
	})
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	code, body := get(t, srv, "/inventory")
	if code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", code)
	}
	if !strings.Contains(body, "connection refused") {
		t.Fatalf("expected error in body, got %q", body)
	}
}
