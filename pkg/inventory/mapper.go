package inventory

import (
	"github.com/mozillazg/go-unidecode"
	"github.com/wwolkers/librenms-inventory/pkg/librenms"
)

const (
	DefaultVariablePrefix = "remote_"
	NetworkOSVariable     = "ansible_network_os"
)

// DefaultVariableMap renames device attributes to the Ansible variables
// with the same meaning.
var DefaultVariableMap = map[string]string{
	"hostname": "ansible_host",
	"os":       NetworkOSVariable,
}

// DefaultOSMap translates LibreNMS OS names to Ansible network OS names.
var DefaultOSMap = map[string]string{
	"asa":   "asa",
	"ios":   "ios",
	"iosxe": "ios",
}

// Host is a device as it appears in the inventory.
type Host struct {
	Name string
	Vars map[string]any
}

// Mapper turns device records into inventory hosts.
type Mapper struct {
	ExcludeDisabled bool
	VariablePrefix  string
	VariableMap     map[string]string
	OSMap           map[string]string
}

// NewMapper() returns a Mapper using the default tables that excludes
// disabled devices.
func NewMapper() *Mapper {
	return &Mapper{
		ExcludeDisabled: true,
		VariablePrefix:  DefaultVariablePrefix,
		VariableMap:     DefaultVariableMap,
		OSMap:           DefaultOSMap,
	}
}

// HostName() returns the name a device is known by in the inventory: its
// sysName folded to ASCII, or its hostname when sysName is empty.
func (m *Mapper) HostName(dev librenms.Device) string {
	if dev.SysName != "" {
		return unidecode.Unidecode(dev.SysName)
	}
	return dev.Hostname
}

// VariableName() returns the host variable an attribute is stored under.
func (m *Mapper) VariableName(key string) string {
	if name, ok := m.VariableMap[key]; ok {
		return name
	}
	return m.VariablePrefix + key
}

// Map() converts dev into a host. It returns false when dev is excluded from
// the inventory. Every attribute of the device becomes a variable.
func (m *Mapper) Map(dev librenms.Device) (Host, bool) {
	if dev.Disabled > 0 && m.ExcludeDisabled {
		return Host{}, false
	}
	vars := make(map[string]any, len(dev.Attributes))
	for key, value := range dev.Attributes {
		name := m.VariableName(key)
		if name == NetworkOSVariable {
			if os, ok := value.(string); ok {
				if mapped, ok := m.OSMap[os]; ok {
					value = mapped
				}
			}
		}
		vars[name] = value
	}
	return Host{Name: m.HostName(dev), Vars: vars}, true
}
