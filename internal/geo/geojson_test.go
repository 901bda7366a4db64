package geo

import (
	"testing"
)

const sampleGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "properties": {"ST_NM": "Kerala"}, "geometry": {"type": "Polygon", "coordinates": []}},
		{"type": "Feature", "properties": {"st_nm": "Odisha"}, "geometry": {"type": "Polygon", "coordinates": []}},
		{"type": "Feature", "properties": {"NAME_1": "West Bengal"}, "geometry": {"type": "Polygon", "coordinates": []}}
	]
}`

func TestParseAndStates(t *testing.T) {
	b, err := Parse([]byte(sampleGeoJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	states := b.States()
	want := []string{"Kerala", "Odisha", "West Bengal"}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("states[%d] = %q, want %q", i, states[i], want[i])
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte(`{"type": "Feature"}`)); err == nil {
		t.Error("expected error for non-collection")
	}
	if _, err := Parse([]byte(`{"type": "FeatureCollection", "features": []}`)); err == nil {
		t.Error("expected error for empty collection")
	}
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestDiffStates(t *testing.T) {
	b, err := Parse([]byte(sampleGeoJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// Orissa normalizes to Odisha and must not show up as a mismatch.
	d := b.DiffStates([]string{"Kerala", "Orissa", "Sikkim"})

	if len(d.DatasetOnly) != 1 || d.DatasetOnly[0] != "Sikkim" {
		t.Errorf("DatasetOnly = %v, want [Sikkim]", d.DatasetOnly)
	}
	if len(d.BoundaryOnly) != 1 || d.BoundaryOnly[0] != "West Bengal" {
		t.Errorf("BoundaryOnly = %v, want [West Bengal]", d.BoundaryOnly)
	}
}
