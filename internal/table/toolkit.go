package table

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// MatchKind selects how a clause compares a cell with its value.
type MatchKind int

const (
	Contains MatchKind = iota
	Equals
	StartsWith
	EndsWith
)

// Clause tests one column. An empty Value matches any non-empty cell.
type Clause struct {
	Column string
	Value  string
}

// Condition holds clauses joined by "or".
type Condition []Clause

// Filter is one include or exclude option with its conditions. A row
// passes an include filter when every condition has a matching clause
// and fails an exclude filter when any clause matches.
type Filter struct {
	Kind       MatchKind
	Exclude    bool
	Conditions []Condition
}

var orSeparator = regexp.MustCompile(`(?i)\s+or\s+`)

// ParseCondition parses "col=value or col2=value2". A clause without "="
// only requires the column to be non-empty.
func ParseCondition(s string) (Condition, error) {
	var cond Condition
	for _, part := range orSeparator.Split(strings.TrimSpace(s), -1) {
		col, val, _ := strings.Cut(part, "=")
		col = strings.TrimSpace(col)
		if col == "" {
			return nil, fmt.Errorf("invalid filter condition %q: missing column name", s)
		}
		cond = append(cond, Clause{Column: col, Value: strings.TrimSpace(val)})
	}
	return cond, nil
}

func (c Clause) matches(kind MatchKind, r *Row) bool {
	cell := r.Value(c.Column)
	if c.Value == "" {
		return cell != ""
	}
	switch kind {
	case Equals:
		return cell == c.Value
	case StartsWith:
		return strings.HasPrefix(cell, c.Value)
	case EndsWith:
		return strings.HasSuffix(cell, c.Value)
	default:
		return strings.Contains(cell, c.Value)
	}
}

func (f Filter) anyMatch(cond Condition, r *Row) bool {
	for _, c := range cond {
		if c.matches(f.Kind, r) {
			return true
		}
	}
	return false
}

func (f Filter) keep(r *Row) bool {
	for _, cond := range f.Conditions {
		hit := f.anyMatch(cond, r)
		if f.Exclude && hit {
			return false
		}
		if !f.Exclude && !hit {
			return false
		}
	}
	return true
}

// Apply returns a table with the rows of t that pass every filter. All
// columns named by the filters must exist.
func (t *Table) Apply(filters ...Filter) (*Table, error) {
	for _, f := range filters {
		for _, cond := range f.Conditions {
			for _, c := range cond {
				if err := t.RequireColumns(c.Column); err != nil {
					return nil, err
				}
			}
		}
	}

	out := New(t.Headers...)
	for _, r := range t.Rows {
		keep := true
		for _, f := range filters {
			if !f.keep(r) {
				keep = false
				break
			}
		}
		if keep {
			out.Append(r)
		}
	}
	return out, nil
}

// KeepColumns returns a table with only the named columns, in the order
// given.
func (t *Table) KeepColumns(columns ...string) (*Table, error) {
	if err := t.RequireColumns(columns...); err != nil {
		return nil, err
	}
	out := New(columns...)
	for _, r := range t.Rows {
		nr := &Row{values: make(map[string]string, len(columns))}
		for _, c := range columns {
			nr.Set(c, r.Value(c))
		}
		out.Append(nr)
	}
	return out, nil
}

// RemoveColumns returns a table without the named columns. Unknown
// columns are ignored.
func (t *Table) RemoveColumns(columns ...string) *Table {
	drop := mapset.NewThreadUnsafeSet(columns...)
	out := New()
	for _, h := range t.Headers {
		if !drop.Contains(h) {
			out.Headers = append(out.Headers, h)
		}
	}
	for _, r := range t.Rows {
		nr := r.Clone()
		for _, c := range columns {
			nr.Delete(c)
		}
		out.Append(nr)
	}
	return out
}

// AddColumnPrefix returns a table whose column names all start with
// prefix.
func (t *Table) AddColumnPrefix(prefix string) *Table {
	out := New()
	for _, h := range t.Headers {
		out.Headers = append(out.Headers, prefix+h)
	}
	for _, r := range t.Rows {
		nr := &Row{values: make(map[string]string, r.Len())}
		for _, k := range r.keys {
			nr.Set(prefix+k, r.values[k])
		}
		out.Append(nr)
	}
	return out
}

// Concat stacks tables. The result headers are the union of all headers
// in order of first appearance and missing cells are empty.
func Concat(tables ...*Table) *Table {
	out := New()
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, t := range tables {
		for _, h := range t.Headers {
			if seen.Add(h) {
				out.Headers = append(out.Headers, h)
			}
		}
	}
	for _, t := range tables {
		for _, r := range t.Rows {
			nr := &Row{values: make(map[string]string, len(out.Headers))}
			for _, h := range out.Headers {
				nr.Set(h, r.Value(h))
			}
			out.Append(nr)
		}
	}
	return out
}

// Flatten merges the rows that share a value in column key into one row.
// Rows are sorted by key first, keeping input order among equal keys.
// Each merged cell lists the distinct non-empty lines of the merged rows,
// one per line, in order of appearance.
func (t *Table) Flatten(key string) (*Table, error) {
	if err := t.RequireColumns(key); err != nil {
		return nil, err
	}

	rows := slices.Clone(t.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Value(key) < rows[j].Value(key)
	})

	out := New(t.Headers...)
	var last *Row
	for _, r := range rows {
		if last == nil || r.Value(key) != last.Value(key) {
			last = r.Clone()
			out.Append(last)
			continue
		}
		for _, h := range t.Headers {
			last.Set(h, mergeLines(last.Value(h), r.Value(h)))
		}
	}
	return out, nil
}

func mergeLines(cell, add string) string {
	var lines []string
	if cell != "" {
		lines = splitLines(cell)
	}
	for _, l := range splitLines(add) {
		if l != "" && !slices.Contains(lines, l) {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Unflatten splits every row whose key cell holds several lines into one
// row per line. The other columns are copied as they are.
func (t *Table) Unflatten(key string) (*Table, error) {
	if err := t.RequireColumns(key); err != nil {
		return nil, err
	}

	out := New(t.Headers...)
	for _, r := range t.Rows {
		v := r.Value(key)
		if !strings.Contains(v, "\n") {
			out.Append(r.Clone())
			continue
		}
		for _, line := range strings.Split(v, "\n") {
			nr := r.Clone()
			nr.Set(key, line)
			out.Append(nr)
		}
	}
	return out, nil
}
