package inventory

import (
	"reflect"
	"testing"

	"github.com/wwolkers/librenms-inventory/pkg/librenms"
)

func TestHostNameFallback(t *testing.T) {
	m := NewMapper()
	dev := librenms.NewDevice(map[string]any{"sysName": "", "hostname": "sw1"})
	if got := m.HostName(dev); got != "sw1" {
		t.Errorf("expected hostname fallback 'sw1', got %q", got)
	}
}

func TestHostNameTransliteration(t *testing.T) {
	m := NewMapper()
	tests := map[string]string{
		"Café-Core":  "Cafe-Core",
		"Zürich-R1":  "Zurich-R1",
		"plain-name": "plain-name",
	}
	for sysName, want := range tests {
		dev := librenms.NewDevice(map[string]any{"sysName": sysName, "hostname": "10.0.0.1"})
		if got := m.HostName(dev); got != want {
			t.Errorf("HostName(%q) = %q, want %q", sysName, got, want)
		}
	}
}

func TestMapVariables(t *testing.T) {
	m := NewMapper()
	dev := librenms.NewDevice(map[string]any{
		"device_id": int64(4),
		"hostname":  "10.0.0.1",
		"sysName":   "R1",
		"os":        "iosxe",
		"disabled":  int64(0),
		"location":  "DC1",
	})
	host, ok := m.Map(dev)
	if !ok {
		t.Fatalf("expected enabled device to be mapped")
	}
	if host.Name != "R1" {
		t.Errorf("expected host name 'R1', got %q", host.Name)
	}
	want := map[string]any{
		"remote_device_id":   int64(4),
		"ansible_host":       "10.0.0.1",
		"remote_sysName":     "R1",
		"ansible_network_os": "ios",
		"remote_disabled":    int64(0),
		"remote_location":    "DC1",
	}
	if !reflect.DeepEqual(host.Vars, want) {
		t.Errorf("unexpected variables:\n got: %v\nwant: %v", host.Vars, want)
	}
}

func TestMapUnknownOSPassesThrough(t *testing.T) {
	m := NewMapper()
	host, ok := m.Map(librenms.NewDevice(map[string]any{"hostname": "sw1", "os": "junos"}))
	if !ok {
		t.Fatalf("expected device to be mapped")
	}
	if host.Vars[NetworkOSVariable] != "junos" {
		t.Errorf("expected unknown os to pass through, got %v", host.Vars[NetworkOSVariable])
	}
}

func TestMapCustomTables(t *testing.T) {
	m := &Mapper{
		ExcludeDisabled: true,
		VariablePrefix:  "libre_",
		VariableMap:     map[string]string{"hostname": "ansible_host", "type": "device_role"},
		OSMap:           DefaultOSMap,
	}
	host, ok := m.Map(librenms.NewDevice(map[string]any{"hostname": "sw1", "type": "network", "os": "iosxe"}))
	if !ok {
		t.Fatalf("expected device to be mapped")
	}
	want := map[string]any{"ansible_host": "sw1", "device_role": "network", "libre_os": "iosxe"}
	if !reflect.DeepEqual(host.Vars, want) {
		t.Errorf("unexpected variables:\n got: %v\nwant: %v", host.Vars, want)
	}
}

func TestMapDisabled(t *testing.T) {
	dev := librenms.NewDevice(map[string]any{"hostname": "sw1", "disabled": int64(1)})

	m := NewMapper()
	if _, ok := m.Map(dev); ok {
		t.Errorf("expected disabled device to be excluded")
	}

	m.ExcludeDisabled = false
	host, ok := m.Map(dev)
	if !ok {
		t.Fatalf("expected disabled device to be kept when exclusion is off")
	}
	if host.Vars["remote_disabled"] != int64(1) {
		t.Errorf("expected remote_disabled=1, got %v", host.Vars["remote_disabled"])
	}
}
