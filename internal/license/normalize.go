package license

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rezmoss/sctk/internal/expression"
	"github.com/rezmoss/sctk/internal/table"
)

// ColumnNormalizedExpression is appended by Normalize.
const ColumnNormalizedExpression = "normalized_license_expression"

// Normalize returns a copy of tbl with the deduplicated form of column in
// a normalized_license_expression column. Empty cells stay empty. Cells
// that fail to parse are logged and left empty.
func Normalize(tbl *table.Table, column string, log logrus.FieldLogger) (*table.Table, error) {
	if err := tbl.RequireColumns(column); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	out := table.New(tbl.Headers...)
	if !out.HasColumn(ColumnNormalizedExpression) {
		out.Headers = append(out.Headers, ColumnNormalizedExpression)
	}
	for i, row := range tbl.Rows {
		nr := row.Clone()
		nr.Set(ColumnNormalizedExpression, "")
		if value := strings.TrimSpace(row.Value(column)); value != "" {
			tree, err := expression.Parse(value)
			if err != nil {
				log.WithError(err).WithField("coord", tbl.Coord(column, i)).Warn("failed to normalize license expression")
			} else {
				nr.Set(ColumnNormalizedExpression, tree.Dedup().String())
			}
		}
		out.Append(nr)
	}
	return out, nil
}
