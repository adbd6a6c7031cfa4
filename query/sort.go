package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is the sort order
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts asc/desc and their long forms; empty means ascending
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("invalid sort direction %q", raw)
}

// Sort selects the column and direction of a view
type Sort struct {
	Field     Field     `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders by test name ascending
var DefaultSort = Sort{Field: FieldName, Direction: Ascending}

// Toggle flips the direction
func (s Sort) Toggle() Sort {
	if s.Direction == Descending {
		s.Direction = Ascending
	} else {
		s.Direction = Descending
	}
	return s
}

// SortRows returns a sorted copy of rows. Strings are compared with an
// English collator, time numerically. The sort is stable so ties keep their
// input order.
func SortRows[T Filterable](rows []T, s Sort) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	if s.Field == "" {
		return out
	}

	col := collate.New(language.English)
	sign := 1
	if s.Direction == Descending {
		sign = -1
	}

	slices.SortStableFunc(out, func(a, b T) int {
		return sign * compare(col, a, b, s.Field)
	})
	return out
}

// compare treats missing values as empty strings or zero
func compare(col *collate.Collator, a, b Filterable, field Field) int {
	if a.GetFieldType(field) == ColumnTypeNumerical {
		v1, _ := a.GetNumericalValue(field)
		v2, _ := b.GetNumericalValue(field)
		return cmp.Compare(v1, v2)
	}
	v1, _ := a.GetStringValue(field)
	v2, _ := b.GetStringValue(field)
	return col.CompareString(v1, v2)
}
