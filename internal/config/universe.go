package config

import (
	"fmt"
	"os"
	"sort"

	yamlv2 "gopkg.in/yaml.v2"
)

// UniverseEntry describes one tradable symbol and its GICS-style segment.
type UniverseEntry struct {
	Ticker  string `yaml:"ticker"`
	Name    string `yaml:"name,omitempty"`
	Segment string `yaml:"segment"`
}

// Universe is the configured symbol list grouped by theme segment.
type Universe struct {
	Entries []UniverseEntry `yaml:"universe"`
}

// LoadUniverse reads a universe YAML file.
func LoadUniverse(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}
	var u Universe
	if err := yamlv2.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("parse universe: %w", err)
	}
	if len(u.Entries) == 0 {
		return nil, fmt.Errorf("universe %s is empty", path)
	}
	seen := make(map[string]struct{}, len(u.Entries))
	for _, e := range u.Entries {
		if e.Ticker == "" {
			return nil, fmt.Errorf("universe %s: entry with empty ticker", path)
		}
		if _, dup := seen[e.Ticker]; dup {
			return nil, fmt.Errorf("universe %s: duplicate ticker %s", path, e.Ticker)
		}
		seen[e.Ticker] = struct{}{}
	}
	return &u, nil
}

// Tickers returns the universe symbols sorted.
func (u *Universe) Tickers() []string {
	out := make([]string, 0, len(u.Entries))
	for _, e := range u.Entries {
		out = append(out, e.Ticker)
	}
	sort.Strings(out)
	return out
}

// Segments groups tickers by segment label, each group sorted.
func (u *Universe) Segments() map[string][]string {
	groups := make(map[string][]string)
	for _, e := range u.Entries {
		if e.Segment == "" {
			continue
		}
		groups[e.Segment] = append(groups[e.Segment], e.Ticker)
	}
	for _, g := range groups {
		sort.Strings(g)
	}
	return groups
}
