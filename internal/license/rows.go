package license

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/rezmoss/sctk/internal/expression"
	"github.com/rezmoss/sctk/internal/table"
)

// Columns appended by ProcessRows, in order.
const (
	ColumnCategory           = "ScanCode License Category"
	ColumnNormalizedCategory = "Normalized ScanCode License Category"
	ColumnShortName          = "ScanCode License Short Name"
	ColumnAttribution        = "Attribution"
	ColumnRedistribution     = "Redistribution"
	ColumnSPDX               = "SPDX Short Identifier"
)

// Headers lists the enrichment columns.
var Headers = []string{
	ColumnCategory,
	ColumnNormalizedCategory,
	ColumnShortName,
	ColumnAttribution,
	ColumnRedistribution,
	ColumnSPDX,
}

// KeyInfo locates one license key of an expression cell.
type KeyInfo struct {
	Coord string
	Key   string
}

// CollectKeys extracts the distinct keys of every expression in column.
// Newlines inside expressions are removed from the table in place.
// Empty and unparseable cells are reported as messages, not errors; the
// returned error is only set for a missing column.
func (e *Enricher) CollectKeys(tbl *table.Table, column string) ([]KeyInfo, []string, error) {
	if err := tbl.RequireColumns(column); err != nil {
		return nil, nil, err
	}

	var (
		infos      []KeyInfo
		messages   []string
		hasNewline bool
	)
	for i, row := range tbl.Rows {
		coord := tbl.Coord(column, i)
		value := row.Value(column)
		if strings.Contains(value, "\n") {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\n", ""))
			row.Set(column, value)
			hasNewline = true
		}
		if value == "" {
			messages = append(messages, "Empty license_expression value at "+coord)
			continue
		}

		parsed, err := expression.Parse(value)
		if err != nil {
			messages = append(messages, fmt.Sprintf("Failed to decode license_expression: %s at: %s", value, coord))
			continue
		}
		seen := mapset.NewThreadUnsafeSet[string]()
		for _, k := range parsed.Dedup().Keys() {
			if seen.Add(k) {
				infos = append(infos, KeyInfo{Coord: coord, Key: k})
			}
		}
	}
	if hasNewline {
		e.logger().WithField("column", column).Warn("newline characters in license expressions were removed")
	}
	return infos, messages, nil
}

// Validate reports every key of infos that is absent from the catalog.
func (c Catalog) Validate(infos []KeyInfo) []string {
	var messages []string
	for _, info := range infos {
		if _, ok := c[info.Key]; !ok {
			messages = append(messages, fmt.Sprintf("Invalid license_expression value: %q at coord: %q", info.Key, info.Coord))
		}
	}
	return messages
}

// Columns names the input columns used by ProcessRows. Expression is
// required. The override columns are optional: a non-empty value in one of
// them is kept instead of the generated value.
type Columns struct {
	Expression     string
	Owner          string
	Category       string
	ShortName      string
	Attribution    string
	Redistribution string
}

func (c Columns) names() []string {
	return []string{c.Expression, c.Owner, c.Category, c.ShortName, c.Attribution, c.Redistribution}
}

// ProcessRows returns a copy of tbl with the enrichment columns added to
// every row.
func (e *Enricher) ProcessRows(tbl *table.Table, cols Columns) (*table.Table, error) {
	if cols.Expression == "" {
		return nil, fmt.Errorf("%w: expression column is required", table.ErrMissingColumn)
	}
	if err := tbl.RequireColumns(cols.names()...); err != nil {
		return nil, err
	}

	out := table.New(tbl.Headers...)
	for _, h := range Headers {
		if !out.HasColumn(h) {
			out.Headers = append(out.Headers, h)
		}
	}

	for _, row := range tbl.Rows {
		res := e.Generate(row.Value(cols.Expression), lookup(row, cols.Owner))

		override(&res.ShortName, row, cols.ShortName)
		override(&res.Category, row, cols.Category)
		override(&res.Attribution, row, cols.Attribution)
		override(&res.Redistribution, row, cols.Redistribution)

		var normalized string
		if res.Category != "" {
			simplified, err := expression.Simplify(res.Category)
			if err != nil {
				e.logger().WithError(err).Warn("failed to simplify license category")
				simplified = res.Category
			}
			normalized = simplified
		}

		nr := row.Clone()
		nr.Set(ColumnCategory, res.Category)
		nr.Set(ColumnNormalizedCategory, normalized)
		nr.Set(ColumnShortName, res.ShortName)
		nr.Set(ColumnAttribution, res.Attribution)
		nr.Set(ColumnRedistribution, res.Redistribution)
		nr.Set(ColumnSPDX, res.SPDX)
		out.Append(nr)
	}
	return out, nil
}

func lookup(row *table.Row, column string) string {
	if column == "" {
		return ""
	}
	return row.Value(column)
}

func override(field *string, row *table.Row, column string) {
	if v := lookup(row, column); v != "" {
		*field = v
	}
}
