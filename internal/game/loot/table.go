// Package loot defines drop tables: the items a monster can drop and their
// per-kill rates, loaded from YAML.
package loot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dropcalc/internal/game/droprate"
	"github.com/cory-johannsen/dropcalc/internal/game/simulator"
)

// ItemDrop defines a single item entry in a drop table. Rate accepts any
// form droprate.ParseRate does, e.g. "1/358".
type ItemDrop struct {
	Item string `yaml:"item"`
	Rate string `yaml:"rate"`
}

// Table defines the drops of interest for one monster.
type Table struct {
	Monster string     `yaml:"monster"`
	Drops   []ItemDrop `yaml:"drops"`
}

// Validate checks that the drop table satisfies its invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff monster is non-empty, at least one drop is
// listed, every item name is non-empty and unique, and every rate parses.
func (t *Table) Validate() error {
	if t.Monster == "" {
		return fmt.Errorf("drop table: monster must not be empty")
	}
	if len(t.Drops) == 0 {
		return fmt.Errorf("drop table %q: at least one drop is required", t.Monster)
	}
	seen := make(map[string]bool, len(t.Drops))
	for i, d := range t.Drops {
		if d.Item == "" {
			return fmt.Errorf("drop table %q: drop[%d] must have a non-empty item", t.Monster, i)
		}
		if seen[d.Item] {
			return fmt.Errorf("drop table %q: duplicate item %q", t.Monster, d.Item)
		}
		seen[d.Item] = true
		if _, err := droprate.ParseRate(d.Rate); err != nil {
			return fmt.Errorf("drop table %q: item %q: %w", t.Monster, d.Item, err)
		}
	}
	return nil
}

// SimulatorDrops converts the table into simulator drops, in table order.
//
// Precondition: t should have passed Validate.
// Postcondition: Returns one Drop per table entry or the first rate error.
func (t *Table) SimulatorDrops() ([]simulator.Drop, error) {
	out := make([]simulator.Drop, 0, len(t.Drops))
	for _, d := range t.Drops {
		rate, err := droprate.ParseRate(d.Rate)
		if err != nil {
			return nil, fmt.Errorf("drop table %q: item %q: %w", t.Monster, d.Item, err)
		}
		out = append(out, simulator.Drop{Name: d.Item, Rate: rate})
	}
	return out, nil
}

// LoadTableFromBytes parses a single drop table from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Table.
// Postcondition: Returns a validated *Table, or an error.
func LoadTableFromBytes(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing drop table YAML: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTableFile reads and parses the drop table at path.
func LoadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	t, err := LoadTableFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return t, nil
}

// LoadTables reads all *.yaml files in dir and returns the parsed tables.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all tables or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTables(dir string) ([]*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading drop table dir %q: %w", dir, err)
	}

	var tables []*Table
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		t, err := LoadTableFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}
