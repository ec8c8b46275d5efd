// Package pathmatch pairs rows of two tables whose path columns share a
// file name and scores how many trailing segments they have in common.
package pathmatch

import (
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/rezmoss/sctk/internal/table"
)

// Output columns added to the left row.
const (
	ColumnResolvedPrefix      = "resolved_"
	ColumnMatched             = "matched"
	ColumnScoreFromRight      = "matched_score_from_right"
	ColumnScoreFromLeft       = "matched_score_from_left"
	ColumnTotalSegments       = "total_path_segments_count"
	ColumnPercentageFromRight = "match_percentage_from_right"
	ColumnPercentageFromLeft  = "match_percentage_from_left"

	// CollisionPrefix is put in front of right columns whose name is
	// already used by the left table.
	CollisionPrefix = "matched_"
)

// Options configures Match.
type Options struct {
	// Key1 and Key2 name the path columns of the left and right tables.
	Key1 string
	Key2 string
	// BestMatchesOnly keeps, per left path, only the results with the
	// highest right score and among those the highest left score.
	BestMatchesOnly bool
}

// Result is one output row of Match. Right is nil when the left row had
// no candidate with the same file name; the score fields are then zero.
type Result struct {
	Left           *table.Row
	Right          *table.Row
	Matched        string
	ScoreFromRight int
	ScoreFromLeft  int
	TotalSegments  int

	row *table.Row
}

// IsMatch reports whether r pairs the left row with a right row.
func (r Result) IsMatch() bool {
	return r.Right != nil
}

// PercentageFromRight is ScoreFromRight relative to the left segment count.
func (r Result) PercentageFromRight() float64 {
	return percentage(r.ScoreFromRight, r.TotalSegments)
}

// PercentageFromLeft is ScoreFromLeft relative to the left segment count.
func (r Result) PercentageFromLeft() float64 {
	return percentage(r.ScoreFromLeft, r.TotalSegments)
}

// Row returns the flattened output row: the left columns, the resolved
// path, the match columns and the right columns.
func (r Result) Row() *table.Row {
	return r.row
}

func percentage(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// Headers returns the output column order for a match of tables with
// headers1 and headers2 on key1.
func Headers(headers1, headers2 []string, key1 string) []string {
	out := append([]string(nil), headers1...)
	out = append(out,
		ColumnResolvedPrefix+key1,
		ColumnMatched,
		ColumnScoreFromRight,
		ColumnScoreFromLeft,
		ColumnTotalSegments,
		ColumnPercentageFromRight,
		ColumnPercentageFromLeft,
	)
	for _, h := range headers2 {
		out = append(out, rightColumn(headers1, h))
	}
	return out
}

func rightColumn(headers1 []string, h string) string {
	for _, l := range headers1 {
		if l == h {
			return CollisionPrefix + h
		}
	}
	return h
}

type candidate struct {
	resolved string
	reversed []string
	rows     []*table.Row
}

// index groups right rows by file name, then by resolved path, both in
// order of first appearance.
type index map[string][]*candidate

func buildIndex(right *table.Table, key string) index {
	idx := make(index)
	for _, row := range right.Rows {
		resolved := Resolve(row.Value(key))
		if resolved == "" {
			continue
		}
		rev := reversedSegments(resolved)
		name := rev[0]

		var c *candidate
		for _, existing := range idx[name] {
			if existing.resolved == resolved {
				c = existing
				break
			}
		}
		if c == nil {
			c = &candidate{resolved: resolved, reversed: rev}
			idx[name] = append(idx[name], c)
		}
		c.rows = append(c.rows, row)
	}
	return idx
}

type scoreBucket struct {
	score   int
	results []Result
}

// group collects the results of every left row sharing one resolved path.
type group struct {
	segments []string
	buckets  []*scoreBucket
}

func (g *group) bucket(score int) *scoreBucket {
	for _, b := range g.buckets {
		if b.score == score {
			return b
		}
	}
	b := &scoreBucket{score: score}
	g.buckets = append(g.buckets, b)
	return b
}

// Match pairs every row of left with the rows of right whose Key2 path has
// the same file name as the row's Key1 path. The right score counts the
// trailing segments both paths share; the left score counts the segments
// a sequence matcher aligns between the two paths.
//
// Every left row appears in the output: rows without a candidate are
// returned once with empty match columns. Results are ordered by left
// path in order of first appearance, then by right score in order of
// first appearance. Identical result rows are reported once.
func Match(left, right *table.Table, opts Options) ([]Result, error) {
	if err := left.RequireColumns(opts.Key1); err != nil {
		return nil, err
	}
	if err := right.RequireColumns(opts.Key2); err != nil {
		return nil, err
	}

	idx := buildIndex(right, opts.Key2)
	resolvedKey1 := ColumnResolvedPrefix + opts.Key1

	var (
		groups []*group
		byPath = make(map[string]*group)
	)
	for _, lrow := range left.Rows {
		resolved := Resolve(lrow.Value(opts.Key1))
		rev := reversedSegments(resolved)

		lrow = lrow.Clone()
		lrow.Set(resolvedKey1, resolved)

		g := byPath[resolved]
		if g == nil {
			g = &group{}
			if resolved != "" {
				g.segments = strings.Split(resolved, "/")
			}
			byPath[resolved] = g
			groups = append(groups, g)
		}

		// An empty path has no file name to look up.
		var candidates []*candidate
		if len(rev) > 0 {
			candidates = idx[rev[0]]
		}
		if len(candidates) == 0 {
			b := g.bucket(0)
			b.results = append(b.results, Result{Left: lrow, row: lrow.Clone()})
			continue
		}

		for _, c := range candidates {
			score := commonPrefixLen(rev, c.reversed)
			for _, rrow := range c.rows {
				res := Result{
					Left:           lrow,
					Right:          rrow,
					Matched:        c.resolved,
					ScoreFromRight: score,
					TotalSegments:  len(rev),
				}
				res.row = flatten(res, left.Headers, right.Headers)

				b := g.bucket(score)
				if containsRow(b.results, res.row) {
					continue
				}
				b.results = append(b.results, res)
			}
		}
	}

	var out []Result
	for _, g := range groups {
		out = append(out, g.emit(opts.BestMatchesOnly)...)
	}
	return out, nil
}

func containsRow(results []Result, row *table.Row) bool {
	for _, r := range results {
		if r.row.Equal(row) {
			return true
		}
	}
	return false
}

func (g *group) emit(bestOnly bool) []Result {
	buckets := g.buckets
	if bestOnly && len(buckets) > 0 {
		best := buckets[0]
		for _, b := range buckets[1:] {
			if b.score > best.score {
				best = b
			}
		}
		buckets = []*scoreBucket{best}
	}

	var (
		out      []Result
		bestLeft int
		kept     []Result
	)
	for _, b := range buckets {
		for _, res := range b.results {
			if !res.IsMatch() {
				out = append(out, res)
				continue
			}

			res.ScoreFromLeft = leftScore(g.segments, strings.Split(res.Matched, "/"))
			res.row.Set(ColumnScoreFromLeft, strconv.Itoa(res.ScoreFromLeft))
			if res.TotalSegments > 0 {
				res.row.Set(ColumnPercentageFromLeft, formatPercentage(res.PercentageFromLeft()))
			}

			if !bestOnly {
				out = append(out, res)
				continue
			}
			switch {
			case res.ScoreFromLeft > bestLeft:
				bestLeft = res.ScoreFromLeft
				kept = []Result{res}
			case res.ScoreFromLeft == bestLeft:
				if !containsRow(kept, res.row) {
					kept = append(kept, res)
				}
			}
		}
	}
	return append(out, kept...)
}

// leftScore counts the segments of a and b that a sequence matcher pairs
// up, reading both paths from the root.
func leftScore(a, b []string) int {
	m := difflib.NewMatcher(a, b)
	n := 0
	for _, block := range m.GetMatchingBlocks() {
		n += block.Size
	}
	return n
}

func flatten(res Result, headers1, headers2 []string) *table.Row {
	row := res.Left.Clone()
	row.Set(ColumnMatched, res.Matched)
	row.Set(ColumnScoreFromRight, strconv.Itoa(res.ScoreFromRight))
	row.Set(ColumnTotalSegments, strconv.Itoa(res.TotalSegments))
	row.Set(ColumnPercentageFromRight, formatPercentage(res.PercentageFromRight()))
	for _, h := range headers2 {
		row.Set(rightColumn(headers1, h), res.Right.Value(h))
	}
	return row
}

// formatPercentage renders p the way spreadsheet consumers of this
// tool expect it: shortest round-trip digits, always with a fraction.
func formatPercentage(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ToTable lays results out under the Headers column order.
func ToTable(results []Result, headers1, headers2 []string, key1 string) *table.Table {
	out := table.New(Headers(headers1, headers2, key1)...)
	for _, r := range results {
		out.Append(r.Row())
	}
	return out
}
