package testreport

import (
	"sort"
	"strings"
)

// Facet selects one component of a classified test path
type Facet string

const (
	FacetModule      Facet = "module"
	FacetPage        Facet = "page"
	FacetAccountType Facet = "accountType"
)

// PathInfo is the decomposition of an "e2e/<module>/<page>/<accountType>" test name
type PathInfo struct {
	Module      string `json:"module"`
	Page        string `json:"page"`
	AccountType string `json:"accountType"`
	FullPath    string `json:"fullPath"`
}

// Value returns the requested facet
func (p PathInfo) Value(f Facet) string {
	switch f {
	case FacetModule:
		return p.Module
	case FacetPage:
		return p.Page
	case FacetAccountType:
		return p.AccountType
	}
	return ""
}

// Classify decomposes a structured test name. Names that do not start with
// an "e2e" segment followed by at least three more segments do not classify.
func Classify(testName string) (*PathInfo, bool) {
	parts := strings.Split(testName, "/")
	if len(parts) < 4 || parts[0] != "e2e" {
		return nil, false
	}
	return &PathInfo{
		Module:      strings.ReplaceAll(parts[1], "_", " "),
		Page:        strings.ReplaceAll(parts[2], "_", " "),
		AccountType: parts[3],
		FullPath:    testName,
	}, true
}

// UniqueFacet returns the sorted unique values of one facet across names
func UniqueFacet(names []string, facet Facet) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, name := range names {
		info, ok := Classify(name)
		if !ok {
			continue
		}
		v := info.Value(facet)
		if seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// FacetGroup counts outcomes for one facet value
type FacetGroup struct {
	Value   string  `json:"value"`
	Passed  int     `json:"passed"`
	Failed  int     `json:"failed"`
	Skipped int     `json:"skipped"`
	Time    float64 `json:"time"`
}

// Total returns the number of tests in the group
func (g FacetGroup) Total() int {
	return g.Passed + g.Failed + g.Skipped
}

// GroupByFacet buckets classifiable records by one facet, sorted by value
func GroupByFacet(records []Record, facet Facet) []FacetGroup {
	index := make(map[string]int)
	groups := make([]FacetGroup, 0)
	for _, rec := range records {
		info, ok := Classify(rec.Name)
		if !ok {
			continue
		}
		v := info.Value(facet)
		i, exists := index[v]
		if !exists {
			i = len(groups)
			index[v] = i
			groups = append(groups, FacetGroup{Value: v})
		}
		switch rec.Status {
		case StatusFailed:
			groups[i].Failed++
		case StatusSkipped:
			groups[i].Skipped++
		default:
			groups[i].Passed++
		}
		groups[i].Time += rec.Time
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Value < groups[b].Value })
	return groups
}
