// Package geo loads the India state boundary GeoJSON and reconciles its
// state names against the merged dataset, so choropleth joins never drop
// states silently.
package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/vandash/vandash/internal/dataset"
)

// FeatureCollection is the subset of GeoJSON the dashboard needs. Geometry
// is kept opaque and passed through to the map client untouched.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// stateNameKeys are the property keys seen across published India boundary
// files, tried in order.
var stateNameKeys = []string{"ST_NM", "st_nm", "state_name", "NAME_1"}

// StateName extracts the state label from a feature's properties.
func (f Feature) StateName() (string, bool) {
	for _, k := range stateNameKeys {
		if v, ok := f.Properties[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// Load parses a boundary file from disk. The raw bytes are retained so the
// map endpoint can serve the file verbatim.
func Load(path string) (*Boundaries, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	return Parse(raw)
}

// Parse decodes boundary bytes.
func Parse(raw []byte) (*Boundaries, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("parse geojson: unexpected type %q", fc.Type)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("parse geojson: no features")
	}
	return &Boundaries{Raw: raw, Collection: fc}, nil
}

// Boundaries couples the parsed collection with the bytes it came from.
type Boundaries struct {
	Raw        []byte
	Collection FeatureCollection
}

// States returns the normalized state names in the boundary file.
func (b *Boundaries) States() []string {
	seen := make(map[string]bool)
	for _, f := range b.Collection.Features {
		if name, ok := f.StateName(); ok {
			seen[dataset.CleanStateName(name)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Diff reports states present on only one side of the boundary/dataset
// join. Both lists are sorted; empty lists mean the choropleth is complete.
type Diff struct {
	BoundaryOnly []string
	DatasetOnly  []string
}

// DiffStates compares dataset state names against the boundary file.
func (b *Boundaries) DiffStates(datasetStates []string) Diff {
	boundary := make(map[string]bool)
	for _, s := range b.States() {
		boundary[s] = true
	}
	ds := make(map[string]bool)
	for _, s := range datasetStates {
		ds[dataset.CleanStateName(s)] = true
	}

	var d Diff
	for s := range boundary {
		if !ds[s] {
			d.BoundaryOnly = append(d.BoundaryOnly, s)
		}
	}
	for s := range ds {
		if !boundary[s] {
			d.DatasetOnly = append(d.DatasetOnly, s)
		}
	}
	sort.Strings(d.BoundaryOnly)
	sort.Strings(d.DatasetOnly)
	return d
}
