package query

import (
	"strings"
)

// All is the sentinel that disables a filter dimension
const All = "all"

// Filter narrows a view. Dimensions compose with AND; an empty or "all"
// value disables that dimension.
type Filter struct {
	Search    string `json:"search,omitempty"`
	Status    string `json:"status,omitempty"`
	Suite     string `json:"suite,omitempty"`
	ClassName string `json:"classname,omitempty"`
}

func active(v string) bool {
	return v != "" && v != All
}

// IsEmpty reports whether the filter lets every row through
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Search) == "" && !active(f.Status) && !active(f.Suite) && !active(f.ClassName)
}

// Match reports whether item passes every active dimension
func (f Filter) Match(item Filterable) bool {
	if !f.matchExact(item, FieldStatus, f.Status) ||
		!f.matchExact(item, FieldSuite, f.Suite) ||
		!f.matchExact(item, FieldClassName, f.ClassName) {
		return false
	}

	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	for _, v := range item.SearchValues() {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

func (f Filter) matchExact(item Filterable, field Field, want string) bool {
	if !active(want) {
		return true
	}
	got, err := item.GetStringValue(field)
	if err != nil {
		return false
	}
	return got == want
}

// Apply returns the rows matching f, preserving their order
func Apply[T Filterable](rows []T, f Filter) []T {
	if f.IsEmpty() {
		out := make([]T, len(rows))
		copy(out, rows)
		return out
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if f.Match(row) {
			out = append(out, row)
		}
	}
	return out
}
