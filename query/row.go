// Package query filters, sorts and paginates flattened test records and
// derives the figures the dashboard displays. Every call recomputes its view
// from the rows it is given; nothing is cached between calls.
package query

import (
	"errors"
	"fmt"
	"strings"

	"junitdash/progress"
	"junitdash/testreport"
)

// Field names a column that can be filtered or sorted on
type Field string

const (
	FieldName      Field = "name"
	FieldSuite     Field = "suite"
	FieldClassName Field = "classname"
	FieldStatus    Field = "status"
	FieldTime      Field = "time"
)

// Fields lists the sortable columns
var Fields = []Field{FieldName, FieldSuite, FieldClassName, FieldStatus, FieldTime}

// ParseField converts user input to a Field
func ParseField(raw string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
}

// ColumnType tells whether a field compares as text or as a number
type ColumnType int

const (
	ColumnTypeString ColumnType = iota
	ColumnTypeNumerical
)

// ErrUnknownField is returned for fields a row does not expose
var ErrUnknownField = errors.New("unknown field")

// Filterable is anything the engine can filter and sort. Rows expose their
// column values plus the free-text fields a search term is matched against.
type Filterable interface {
	GetFieldType(field Field) ColumnType
	GetStringValue(field Field) (string, error)
	GetNumericalValue(field Field) (float64, error)
	SearchValues() []string
}

func fieldType(field Field) ColumnType {
	if field == FieldTime {
		return ColumnTypeNumerical
	}
	return ColumnTypeString
}

// TestRow is a row of the all-tests view
type TestRow struct {
	testreport.Record
}

// TestRows flattens report into rows in document order
func TestRows(report *testreport.Report) []TestRow {
	records := report.Records()
	rows := make([]TestRow, len(records))
	for i, rec := range records {
		rows[i] = TestRow{Record: rec}
	}
	return rows
}

func (r TestRow) GetFieldType(field Field) ColumnType {
	return fieldType(field)
}

func (r TestRow) GetStringValue(field Field) (string, error) {
	switch field {
	case FieldName:
		return r.Name, nil
	case FieldSuite:
		return r.Suite, nil
	case FieldClassName:
		return r.ClassName, nil
	case FieldStatus:
		return string(r.Status), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
}

func (r TestRow) GetNumericalValue(field Field) (float64, error) {
	if field == FieldTime {
		return r.Time, nil
	}
	return 0, fmt.Errorf("%w: %s is not numerical", ErrUnknownField, field)
}

func (r TestRow) SearchValues() []string {
	return []string{r.Name, r.Suite, r.ClassName}
}

// FailureRow is a row of the failures view. Its status column is the
// resolution state, not the test outcome.
type FailureRow struct {
	progress.Row
}

// FailureRows wraps tracker rows for querying
func FailureRows(rows []progress.Row) []FailureRow {
	out := make([]FailureRow, len(rows))
	for i, row := range rows {
		out[i] = FailureRow{Row: row}
	}
	return out
}

func (r FailureRow) GetFieldType(field Field) ColumnType {
	return fieldType(field)
}

func (r FailureRow) GetStringValue(field Field) (string, error) {
	switch field {
	case FieldName:
		return r.Name, nil
	case FieldSuite:
		return r.Suite, nil
	case FieldClassName:
		return r.ClassName, nil
	case FieldStatus:
		return string(r.Progress.Status), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
}

func (r FailureRow) GetNumericalValue(field Field) (float64, error) {
	if field == FieldTime {
		return r.Time, nil
	}
	return 0, fmt.Errorf("%w: %s is not numerical", ErrUnknownField, field)
}

func (r FailureRow) SearchValues() []string {
	return []string{r.Name, r.Suite, r.Progress.ErrorMessage, r.Progress.Notes, r.Progress.Assignee}
}
