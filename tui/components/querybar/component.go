// Package querybar holds the filter, sort and page state of a list view
// and renders it as a one-line summary.
package querybar

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"junitdash/query"
	"junitdash/tui/styles"
)

// State is the view request a list screen recomputes its rows from
type State struct {
	Filter   query.Filter
	Sort     query.Sort
	Page     int
	PageSize int

	statuses []string
	suites   []string
}

// New creates a state cycling through statuses for the status filter
func New(pageSize int, statuses []string) *State {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	return &State{
		Sort:     query.DefaultSort,
		Page:     1,
		PageSize: pageSize,
		statuses: statuses,
	}
}

// SetSuites sets the values offered by the suite filter. A selected suite
// that no longer exists is reset to all.
func (s *State) SetSuites(suites []string) {
	s.suites = suites
	if s.Filter.Suite == "" || s.Filter.Suite == query.All {
		return
	}
	for _, v := range suites {
		if v == s.Filter.Suite {
			return
		}
	}
	s.Filter.Suite = ""
}

// Query returns the current request
func (s *State) Query() query.Query {
	return query.Query{Filter: s.Filter, Sort: s.Sort, Page: s.Page, PageSize: s.PageSize}
}

// Settle stores the page number a query actually returned after clamping
func (s *State) Settle(page int) {
	s.Page = page
}

func cycle(values []string, current string) string {
	if current == query.All {
		current = ""
	}
	if current == "" {
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}
	for i, v := range values {
		if v == current {
			if i+1 < len(values) {
				return values[i+1]
			}
			return ""
		}
	}
	return ""
}

// CycleStatus moves the status filter to the next value, then back to all
func (s *State) CycleStatus() {
	s.Filter.Status = cycle(s.statuses, s.Filter.Status)
}

// CycleSuite moves the suite filter to the next suite, then back to all
func (s *State) CycleSuite() {
	s.Filter.Suite = cycle(s.suites, s.Filter.Suite)
}

// CycleSort moves to the next sort field keeping the direction
func (s *State) CycleSort() {
	next := query.Fields[0]
	for i, f := range query.Fields {
		if f == s.Sort.Field && i+1 < len(query.Fields) {
			next = query.Fields[i+1]
		}
	}
	s.Sort.Field = next
}

// Reverse flips the sort direction
func (s *State) Reverse() {
	s.Sort = s.Sort.Toggle()
}

// SetSearch replaces the search term
func (s *State) SetSearch(term string) {
	s.Filter.Search = term
}

// Clear drops every filter and keeps sort and page
func (s *State) Clear() {
	s.Filter = query.Filter{}
}

// NextPage advances one page; the next query clamps it
func (s *State) NextPage() {
	s.Page++
}

// PrevPage goes back one page, never below 1
func (s *State) PrevPage() {
	if s.Page > 1 {
		s.Page--
	}
}

func orAll(v string) string {
	if v == "" {
		return query.All
	}
	return v
}

// View renders the state on one line
func (s *State) View() string {
	arrow := "↑"
	if s.Sort.Direction == query.Descending {
		arrow = "↓"
	}
	label := styles.LabelStyle.Render
	value := styles.ValueStyle.Render
	search := s.Filter.Search
	if search == "" {
		search = "-"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		label("search: "), value(search), "   ",
		label("status: "), value(orAll(s.Filter.Status)), "   ",
		label("suite: "), value(orAll(s.Filter.Suite)), "   ",
		label("sort: "), value(fmt.Sprintf("%s %s", s.Sort.Field, arrow)),
	)
}
