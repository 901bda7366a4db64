package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Missing-value policy: optional measures (tree cover, rainfall, mangrove,
// breakdown columns) are zero-filled; a row whose state key or primary
// value cannot be coerced is skipped with a warning. The policy is uniform
// across all sources; drop-vs-fill is never mixed per column.

// Row issue flags, recorded per skipped or adjusted row.
const (
	FlagAggregateRow = "aggregate_row"
	FlagMissingState = "missing_state"
	FlagBadNumber    = "bad_number"
	FlagDuplicateKey = "duplicate_key"
	FlagNegativeArea = "negative_area"
)

// RowIssue describes a non-fatal problem with one source row. Issues are
// logged and counted, never fatal.
type RowIssue struct {
	Source string
	Line   int // 1-based data row number, excluding the header
	State  string
	Flag   string
	Detail string
}

func (i RowIssue) String() string {
	s := fmt.Sprintf("%s row %d: %s", i.Source, i.Line, i.Flag)
	if i.State != "" {
		s += " state=" + i.State
	}
	if i.Detail != "" {
		s += " (" + i.Detail + ")"
	}
	return s
}

// ErrMissing marks an empty or placeholder numeric cell.
var ErrMissing = errors.New("missing value")

// ParseNumber coerces a numeric cell, stripping the comma grouping used in
// the published tables ("2,75,069"). Placeholder markers are reported as
// ErrMissing so callers can apply the zero-fill policy.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "--", "na", "n/a", "nil", "*":
		return 0, ErrMissing
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return v, nil
}

// stateAliases maps title-cased spellings seen across the sources to one
// canonical name, so the (state, year) join does not silently drop rows.
var stateAliases = map[string]string{
	"A & N Islands":                "Andaman & Nicobar Islands",
	"Andaman & Nicobar":            "Andaman & Nicobar Islands",
	"Andaman And Nicobar Islands":  "Andaman & Nicobar Islands",
	"Jammu And Kashmir":            "Jammu & Kashmir",
	"Jammu&Kashmir":                "Jammu & Kashmir",
	"Nct Of Delhi":                 "Delhi",
	"Delhi (Nct)":                  "Delhi",
	"Orissa":                       "Odisha",
	"Pondicherry":                  "Puducherry",
	"Uttaranchal":                  "Uttarakhand",
	"Dadra And Nagar Haveli":       "Dadra & Nagar Haveli",
	"Daman And Diu":                "Daman & Diu",
	"Chattisgarh":                  "Chhattisgarh",
}

// aggregateMarkers are row labels that represent sums rather than states.
var aggregateMarkers = map[string]bool{
	"total":           true,
	"grand total":     true,
	"all india":       true,
	"all india total": true,
	"india":           true,
	"total states":    true,
	"total uts":       true,
	"all states":      true,
}

// CleanStateName trims, title-cases and de-aliases a state label. An empty
// result means the row has no usable key.
func CleanStateName(name string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	s := strings.Join(words, " ")
	if canonical, ok := stateAliases[s]; ok {
		return canonical
	}
	return s
}

// IsAggregate reports whether a cleaned state label is a sum/total row.
func IsAggregate(name string) bool {
	return aggregateMarkers[strings.ToLower(strings.TrimSpace(name))]
}
