package table

import (
	"errors"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrMissingColumn is returned when a requested column is not a header.
	ErrMissingColumn = errors.New("column not found")
	// ErrUnsupportedFormat is returned for file extensions other than
	// .csv, .xlsx and .json.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Table is an ordered list of rows sharing a header list.
type Table struct {
	Headers []string
	Rows    []*Row
}

// New returns an empty table with the given headers.
func New(headers ...string) *Table {
	return &Table{Headers: append([]string(nil), headers...)}
}

// FromRows builds a table whose headers are the union of all row columns
// in order of first appearance.
func FromRows(rows []*Row) *Table {
	t := &Table{Rows: rows}
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, r := range rows {
		for _, k := range r.keys {
			if seen.Add(k) {
				t.Headers = append(t.Headers, k)
			}
		}
	}
	return t
}

// Append adds r to the table.
func (t *Table) Append(r *Row) {
	t.Rows = append(t.Rows, r)
}

// HasColumn reports whether name is one of the headers.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Headers, name)
}

// RequireColumns returns an ErrMissingColumn error naming the first
// column absent from the headers.
func (t *Table) RequireColumns(names ...string) error {
	for _, n := range names {
		if n != "" && !t.HasColumn(n) {
			return fmt.Errorf("%w: %q", ErrMissingColumn, n)
		}
	}
	return nil
}

// Column returns the values of one column in row order.
func (t *Table) Column(name string) ([]string, error) {
	if err := t.RequireColumns(name); err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Value(name)
	}
	return out, nil
}

// Coord returns the spreadsheet coordinate ("B7") of a column value in
// the given zero-based data row; the header occupies row 1.
func (t *Table) Coord(column string, rowIndex int) string {
	col := slices.Index(t.Headers, column)
	if col < 0 {
		return ""
	}
	cell, err := excelize.CoordinatesToCellName(col+1, rowIndex+2)
	if err != nil {
		return ""
	}
	return cell
}
