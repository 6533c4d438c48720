package inventory

import (
	"encoding/json"
	"testing"
)

func TestMarshalJSON(t *testing.T) {
	inv := New()
	inv.AddHost("core-1", Host{Name: "R1", Vars: map[string]any{"ansible_host": "10.0.0.1", "remote_device_id": int64(1)}})
	inv.AddGroup("core-2")

	b, err := json.Marshal(inv)
	if err != nil {
		t.Fatalf("failed to marshal inventory: %v", err)
	}
	want := `{"_meta":{"hostvars":{"R1":{"ansible_host":"10.0.0.1","remote_device_id":1}}},` +
		`"all":{"hosts":["R1"],"vars":{}},` +
		`"core-1":{"children":[],"hosts":["R1"]},` +
		`"core-2":{"children":[],"hosts":[]}}`
	if string(b) != want {
		t.Errorf("unexpected document:\n got: %s\nwant: %s", b, want)
	}
}

func TestEmptyInventory(t *testing.T) {
	b, err := json.Marshal(New())
	if err != nil {
		t.Fatalf("failed to marshal inventory: %v", err)
	}
	want := `{"_meta":{"hostvars":{}},"all":{"hosts":[],"vars":{}}}`
	if string(b) != want {
		t.Errorf("unexpected document:\n got: %s\nwant: %s", b, want)
	}
}

func TestAddHostMembership(t *testing.T) {
	inv := New()
	inv.AddHost("core-1", Host{Name: "R1", Vars: map[string]any{"a": 1}})
	inv.AddHost("core-2", Host{Name: "R1", Vars: map[string]any{"b": 2}})
	inv.AddHost("core-1", Host{Name: "R1", Vars: map[string]any{"c": 3}})

	if hosts := inv.Hosts(); !equalStrings(hosts, []string{"R1"}) {
		t.Errorf("expected all.hosts [R1], got %v", hosts)
	}
	for _, name := range []string{"core-1", "core-2"} {
		if g, _ := inv.Group(name); !equalStrings(g.Hosts, []string{"R1"}) {
			t.Errorf("expected %s hosts [R1], got %v", name, g.Hosts)
		}
	}
	vars, _ := inv.HostVars("R1")
	if len(vars) != 1 || vars["c"] != 3 {
		t.Errorf("expected only the last variables, got %v", vars)
	}
	if err := inv.Validate(); err != nil {
		t.Errorf("expected a consistent inventory, got %v", err)
	}
}

func TestHostDocument(t *testing.T) {
	inv := New()
	inv.AddHost("core-1", Host{Name: "R1", Vars: map[string]any{"ansible_host": "10.0.0.1"}})
	if doc := inv.HostDocument("R1"); doc["ansible_host"] != "10.0.0.1" {
		t.Errorf("unexpected host document: %v", doc)
	}
	if doc := inv.HostDocument("nope"); doc == nil || len(doc) != 0 {
		t.Errorf("expected an empty object for an unknown host, got %#v", doc)
	}
}

func TestValidateDetectsOrphans(t *testing.T) {
	inv := New()
	inv.AddHost("core-1", Host{Name: "R1", Vars: map[string]any{}})
	g, _ := inv.Group("core-1")
	g.Hosts = append(g.Hosts, "ghost")
	if err := inv.Validate(); err == nil {
		t.Errorf("expected a host without variables to be reported")
	}

	inv = New()
	inv.AddHost("core-1", Host{Name: "R1", Vars: map[string]any{}})
	g, _ = inv.Group("core-1")
	g.Hosts = nil
	if err := inv.Validate(); err == nil {
		t.Errorf("expected a host outside every group to be reported")
	}
}

func TestDigestIsStable(t *testing.T) {
	build := func(order []string) *Inventory {
		inv := New()
		for _, g := range order {
			inv.AddGroup(g)
		}
		inv.AddHost("core-1", Host{Name: "R1", Vars: map[string]any{"z": 1, "a": "x"}})
		return inv
	}
	d1, err := build([]string{"core-1", "edge-1"}).Digest()
	if err != nil {
		t.Fatalf("failed to compute digest: %v", err)
	}
	d2, err := build([]string{"edge-1", "core-1"}).Digest()
	if err != nil {
		t.Fatalf("failed to compute digest: %v", err)
	}
	if d1 != d2 {
		t.Errorf("expected equal digests, got %s and %s", d1, d2)
	}
	if len(d1) != 64 {
		t.Errorf("expected a hex sha256 digest, got %q", d1)
	}

	other := build([]string{"core-1"})
	d3, _ := other.Digest()
	if d3 == d1 {
		t.Errorf("expected a different inventory to have a different digest")
	}
}
