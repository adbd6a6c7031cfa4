package progress

import "sort"

// Selection is the set of item ids chosen for a bulk transition. The zero
// value is an empty selection ready for use.
type Selection struct {
	ids map[string]bool
}

// NewSelection creates an empty selection
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]bool)}
}

// Toggle flips membership of id
func (s *Selection) Toggle(id string) {
	if s.ids[id] {
		delete(s.ids, id)
		return
	}
	s.init()
	s.ids[id] = true
}

// Select adds ids to the selection
func (s *Selection) Select(ids ...string) {
	s.init()
	for _, id := range ids {
		s.ids[id] = true
	}
}

// Contains reports whether id is selected
func (s *Selection) Contains(id string) bool {
	return s.ids[id]
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.ids = make(map[string]bool)
}

// Len returns the number of selected ids
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in sorted order
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Selection) init() {
	if s.ids == nil {
		s.ids = make(map[string]bool)
	}
}
