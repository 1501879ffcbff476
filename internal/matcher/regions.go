package matcher

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var defaultRegionsYAML []byte

// RegionEntry maps a city name to its broader region.
type RegionEntry struct {
	City   string `yaml:"city"`
	Region string `yaml:"region"`
}

// Regions is an ordered city -> region table. The first entry whose city
// occurs in a location wins.
type Regions struct {
	entries []RegionEntry
}

// ParseRegions decodes a YAML region table.
func ParseRegions(data []byte) (*Regions, error) {
	var doc struct {
		Regions []RegionEntry `yaml:"regions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse region table: %w", err)
	}

	r := &Regions{}
	for i, e := range doc.Regions {
		city := strings.ToLower(strings.TrimSpace(e.City))
		region := strings.ToLower(strings.TrimSpace(e.Region))
		if city == "" || region == "" {
			return nil, fmt.Errorf("region entry %d: city and region are required", i)
		}
		r.entries = append(r.entries, RegionEntry{City: city, Region: region})
	}
	return r, nil
}

// LoadRegions reads the region table at path, or the built-in table when
// path is empty.
func LoadRegions(path string) (*Regions, error) {
	if path == "" {
		return DefaultRegions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read region table: %w", err)
	}
	return ParseRegions(data)
}

// DefaultRegions returns the built-in table of Indian metro areas.
func DefaultRegions() *Regions {
	r, err := ParseRegions(defaultRegionsYAML)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the region of a free-form location, or "" when no city in
// the table occurs in it.
func (r *Regions) Lookup(location string) string {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" || r == nil {
		return ""
	}
	for _, e := range r.entries {
		if strings.Contains(loc, e.City) {
			return e.Region
		}
	}
	return ""
}

// Len returns the number of entries.
func (r *Regions) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
