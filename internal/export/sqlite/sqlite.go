// Package sqlite writes a built inventory to a SQLite database so it can be
// queried with SQL or shipped to tools that do not read Ansible JSON.
//
// Every export replaces the previous contents of the database; it holds one
// inventory at a time.
package sqlite

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/wwolkers/librenms-inventory/internal/format"
	"github.com/wwolkers/librenms-inventory/pkg/inventory"
)

const schema = `
CREATE TABLE IF NOT EXISTS inventory_runs (
	id 			TEXT NOT NULL PRIMARY KEY,
	created 	TIMESTAMP NOT NULL,
	digest 		TEXT NOT NULL,
	host_count 	INTEGER NOT NULL,
	group_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS inventory_groups (
	name 		TEXT NOT NULL PRIMARY KEY,
	children 	TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS inventory_hosts (
	name 		TEXT NOT NULL PRIMARY KEY,
	position 	INTEGER NOT NULL,
	vars 		TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS inventory_group_hosts (
	group_name 	TEXT NOT NULL,
	host 		TEXT NOT NULL,
	position 	INTEGER NOT NULL,
	PRIMARY KEY (group_name, host)
);
`

type Run struct {
	ID         string    `db:"id"`
	Created    time.Time `db:"created"`
	Digest     string    `db:"digest"`
	HostCount  int       `db:"host_count"`
	GroupCount int       `db:"group_count"`
}

type groupRow struct {
	Name     string `db:"name"`
	Children string `db:"children"`
}

type hostRow struct {
	Name     string `db:"name"`
	Position int    `db:"position"`
	Vars     string `db:"vars"`
}

type memberRow struct {
	Group    string `db:"group_name"`
	Host     string `db:"host"`
	Position int    `db:"position"`
}

// Snapshot is the content of an exported database.
type Snapshot struct {
	Run      Run
	Groups   map[string]inventory.Group
	Hosts    []string
	HostVars map[string]map[string]any
}

func CreateIfNotExists(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

// Export() replaces the contents of the database at path with inv.
func Export(path string, runID uuid.UUID, inv *inventory.Inventory) error {
	digest, err := inv.Digest()
	if err != nil {
		return err
	}

	db, err := CreateIfNotExists(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"inventory_runs", "inventory_groups", "inventory_hosts", "inventory_group_hosts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	run := Run{
		ID:         runID.String(),
		Created:    time.Now().UTC(),
		Digest:     digest,
		HostCount:  len(inv.Hosts()),
		GroupCount: len(inv.Groups()),
	}
	if _, err := tx.NamedExec(`INSERT INTO inventory_runs (id, created, digest, host_count, group_count)
		VALUES (:id, :created, :digest, :host_count, :group_count);`, &run); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, name := range inv.Hosts() {
		vars, _ := inv.HostVars(name)
		b, err := json.Marshal(vars)
		if err != nil {
			return fmt.Errorf("failed to marshal variables of host %q: %w", name, err)
		}
		row := hostRow{Name: name, Position: i, Vars: string(b)}
		if _, err := tx.NamedExec(`INSERT INTO inventory_hosts (name, position, vars)
			VALUES (:name, :position, :vars);`, &row); err != nil {
			return fmt.Errorf("failed to insert host %q: %w", name, err)
		}
	}

	for _, name := range inv.Groups() {
		g, _ := inv.Group(name)
		children, err := json.Marshal(g.Children)
		if err != nil {
			return fmt.Errorf("failed to marshal children of group %q: %w", name, err)
		}
		if _, err := tx.NamedExec(`INSERT INTO inventory_groups (name, children) VALUES (:name, :children);`,
			&groupRow{Name: name, Children: string(children)}); err != nil {
			return fmt.Errorf("failed to insert group %q: %w", name, err)
		}
		for i, host := range g.Hosts {
			if _, err := tx.NamedExec(`INSERT INTO inventory_group_hosts (group_name, host, position)
				VALUES (:group_name, :host, :position);`, &memberRow{Group: name, Host: host, Position: i}); err != nil {
				return fmt.Errorf("failed to insert member %q of group %q: %w", host, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Load() reads back the inventory stored at path.
func Load(path string) (*Snapshot, error) {
	// check if path exists first to prevent creating the database
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no database found: %w", err)
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	snap := &Snapshot{
		Groups:   make(map[string]inventory.Group),
		Hosts:    []string{},
		HostVars: make(map[string]map[string]any),
	}
	if err := db.Get(&snap.Run, "SELECT * FROM inventory_runs LIMIT 1;"); err != nil {
		return nil, fmt.Errorf("failed to retrieve run: %w", err)
	}

	hosts := []hostRow{}
	if err := db.Select(&hosts, "SELECT name, position, vars FROM inventory_hosts ORDER BY position ASC;"); err != nil {
		return nil, fmt.Errorf("failed to retrieve hosts: %w", err)
	}
	for _, h := range hosts {
		vars := map[string]any{}
		if err := format.Unmarshal([]byte(h.Vars), &vars, format.FORMAT_JSON); err != nil {
			return nil, fmt.Errorf("failed to decode variables of host %q: %w", h.Name, err)
		}
		snap.Hosts = append(snap.Hosts, h.Name)
		snap.HostVars[h.Name] = vars
	}

	groups := []groupRow{}
	if err := db.Select(&groups, "SELECT name, children FROM inventory_groups ORDER BY name ASC;"); err != nil {
		return nil, fmt.Errorf("failed to retrieve groups: %w", err)
	}
	for _, g := range groups {
		group := inventory.Group{Name: g.Name, Hosts: []string{}, Children: []string{}}
		if err := format.Unmarshal([]byte(g.Children), &group.Children, format.FORMAT_JSON); err != nil {
			return nil, fmt.Errorf("failed to decode children of group %q: %w", g.Name, err)
		}
		snap.Groups[g.Name] = group
	}

	members := []memberRow{}
	if err := db.Select(&members, "SELECT group_name, host, position FROM inventory_group_hosts ORDER BY group_name ASC, position ASC;"); err != nil {
		return nil, fmt.Errorf("failed to retrieve group members: %w", err)
	}
	for _, m := range members {
		g := snap.Groups[m.Group]
		g.Hosts = append(g.Hosts, m.Host)
		snap.Groups[m.Group] = g
	}
	return snap, nil
}

// Verify() reads the database at path back and checks that it holds inv.
func Verify(path string, inv *inventory.Inventory) error {
	snap, err := Load(path)
	if err != nil {
		return err
	}
	digest, err := inv.Digest()
	if err != nil {
		return err
	}
	if snap.Run.Digest != digest {
		return fmt.Errorf("exported run %s has digest %s, expected %s", snap.Run.ID, snap.Run.Digest, digest)
	}
	if len(snap.Hosts) != len(inv.Hosts()) || len(snap.Groups) != len(inv.Groups()) {
		return fmt.Errorf("exported run %s has %d hosts and %d groups, expected %d and %d",
			snap.Run.ID, len(snap.Hosts), len(snap.Groups), len(inv.Hosts()), len(inv.Groups()))
	}
	return nil
}
