package analysis

import (
	"strconv"
	"strings"

	"github.com/rezmoss/sctk/internal/table"
)

// ColumnSummarizedCount is the count column prepended by Summarize.
const ColumnSummarizedCount = "Summarized Count"

// Summarize collapses rows sharing the same values in columns into one
// row with a leading "Summarized Count" column. Output rows keep the
// position of the first row of each group and carry the values of its
// last row. Values are compared after trimming whitespace.
func Summarize(tbl *table.Table, columns []string) (*table.Table, error) {
	if err := tbl.RequireColumns(columns...); err != nil {
		return nil, err
	}

	type group struct {
		count int
		row   *table.Row
	}
	var (
		order  []string
		groups = make(map[string]*group)
	)
	for _, r := range tbl.Rows {
		key := groupKey(r, columns)
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.count++
		g.row = r
	}

	out := table.New(append([]string{ColumnSummarizedCount}, tbl.Headers...)...)
	for _, key := range order {
		g := groups[key]
		nr := table.NewRow(ColumnSummarizedCount, strconv.Itoa(g.count))
		for _, h := range tbl.Headers {
			nr.Set(h, strings.TrimSpace(g.row.Value(h)))
		}
		out.Append(nr)
	}
	return out, nil
}

func groupKey(r *table.Row, columns []string) string {
	values := make([]string, len(columns))
	for i, c := range columns {
		values[i] = strings.TrimSpace(r.Value(c))
	}
	return strings.Join(values, "\x00")
}
