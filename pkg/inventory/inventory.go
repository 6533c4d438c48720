// Package inventory builds an Ansible dynamic inventory from LibreNMS device
// groups.
//
// The produced document is the one Ansible expects from an inventory script
// called with --list:
//
//	{
//	    "_meta": {"hostvars": {"R1": {"ansible_host": "10.0.0.1"}}},
//	    "all": {"hosts": ["R1"], "vars": {}},
//	    "core-1": {"children": [], "hosts": ["R1"]}
//	}
package inventory

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	GroupAll  = "all"
	GroupMeta = "_meta"
)

// IsReservedGroup reports whether name collides with a top-level key of the
// inventory document.
func IsReservedGroup(name string) bool {
	return name == GroupAll || name == GroupMeta
}

type Group struct {
	Name     string
	Hosts    []string
	Children []string
}

// Inventory is the set of groups and hosts produced by a Builder. Hosts and
// children are kept in insertion order without duplicates.
type Inventory struct {
	groups   map[string]*Group
	hosts    []string
	hostvars map[string]map[string]any
}

func New() *Inventory {
	return &Inventory{
		groups:   make(map[string]*Group),
		hosts:    []string{},
		hostvars: make(map[string]map[string]any),
	}
}

// AddGroup() returns the group called name, creating it if needed.
func (inv *Inventory) AddGroup(name string) *Group {
	if g, ok := inv.groups[name]; ok {
		return g
	}
	g := &Group{Name: name, Hosts: []string{}, Children: []string{}}
	inv.groups[name] = g
	return g
}

// AddChild() records child as a child group of parent. Both are created if
// they do not exist yet.
func (inv *Inventory) AddChild(parent, child string) {
	g := inv.AddGroup(parent)
	inv.AddGroup(child)
	if !slices.Contains(g.Children, child) {
		g.Children = append(g.Children, child)
	}
}

// AddHost() puts host into group and into the global host list. Its
// variables replace any variables stored earlier under the same name.
func (inv *Inventory) AddHost(group string, host Host) {
	g := inv.AddGroup(group)
	if !slices.Contains(g.Hosts, host.Name) {
		g.Hosts = append(g.Hosts, host.Name)
	}
	if _, ok := inv.hostvars[host.Name]; !ok {
		inv.hosts = append(inv.hosts, host.Name)
	}
	inv.hostvars[host.Name] = host.Vars
}

// Groups() returns the group names in sorted order.
func (inv *Inventory) Groups() []string {
	names := maps.Keys(inv.groups)
	slices.Sort(names)
	return names
}

func (inv *Inventory) Group(name string) (*Group, bool) {
	g, ok := inv.groups[name]
	return g, ok
}

// Hosts() returns every host name in the order they were first added.
func (inv *Inventory) Hosts() []string {
	return slices.Clone(inv.hosts)
}

func (inv *Inventory) HostVars(name string) (map[string]any, bool) {
	vars, ok := inv.hostvars[name]
	return vars, ok
}

// Validate() checks that group members, the host list and the host
// variables all describe the same set of hosts.
func (inv *Inventory) Validate() error {
	if len(inv.hosts) != len(inv.hostvars) {
		return fmt.Errorf("host list has %d entries but %d hosts have variables", len(inv.hosts), len(inv.hostvars))
	}
	member := make(map[string]bool, len(inv.hosts))
	for _, g := range inv.groups {
		for _, h := range g.Hosts {
			if _, ok := inv.hostvars[h]; !ok {
				return fmt.Errorf("host %q in group %q has no variables", h, g.Name)
			}
			member[h] = true
		}
		for _, c := range g.Children {
			if _, ok := inv.groups[c]; !ok {
				return fmt.Errorf("group %q has undefined child %q", g.Name, c)
			}
		}
	}
	for _, h := range inv.hosts {
		if !member[h] {
			return fmt.Errorf("host %q is not a member of any group", h)
		}
	}
	return nil
}

// Document() returns the inventory as the nested maps Ansible reads.
func (inv *Inventory) Document() map[string]any {
	doc := make(map[string]any, len(inv.groups)+2)
	for name, g := range inv.groups {
		doc[name] = map[string]any{
			"hosts":    g.Hosts,
			"children": g.Children,
		}
	}
	hostvars := make(map[string]any, len(inv.hostvars))
	for name, vars := range inv.hostvars {
		hostvars[name] = vars
	}
	doc[GroupMeta] = map[string]any{"hostvars": hostvars}
	doc[GroupAll] = map[string]any{
		"hosts": inv.hosts,
		"vars":  map[string]any{},
	}
	return doc
}

func (inv *Inventory) MarshalJSON() ([]byte, error) {
	return json.Marshal(inv.Document())
}

// HostDocument() returns the variables of host for an inventory script
// called with --host. Unknown hosts get an empty object.
func (inv *Inventory) HostDocument(host string) map[string]any {
	if vars, ok := inv.hostvars[host]; ok {
		return vars
	}
	return map[string]any{}
}

// Digest() returns the sha256 of the RFC 8785 canonical form of the
// document, which is stable across runs that produce the same inventory.
func (inv *Inventory) Digest() (string, error) {
	raw, err := inv.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to marshal inventory: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize inventory: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
