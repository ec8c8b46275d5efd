package sysindex

import (
	"strings"

	"github.com/rezmoss/sctk/internal/table"
)

// Output columns of MatchTable.
const (
	ColumnResource       = "Resource"
	ColumnMatchedSuffix  = "matched_suffix"
	ColumnMatchedPackage = "matched_package"
)

// Match pairs a queried path with one package installing it. Suffix and
// Package are empty when no suffix of Path is indexed.
type Match struct {
	Path    string `json:"path"`
	Suffix  string `json:"suffix,omitempty"`
	Package string `json:"package,omitempty"`
}

// PathSuffixes returns the suffixes of path from the longest to the
// shortest, leaving out the bare file name.
func PathSuffixes(path string) []string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	suffixes := make([]string, 0, len(segments))
	for i := 0; i < len(segments)-1; i++ {
		suffixes = append(suffixes, strings.Join(segments[i:], "/"))
	}
	return suffixes
}

// Matches looks up each path by its longest indexed suffix. A path gets
// one Match per package of that suffix, or a single empty Match.
func (idx Index) Matches(paths []string) []Match {
	var out []Match
	for _, p := range paths {
		matched := false
		for _, suffix := range PathSuffixes(p) {
			for _, pkg := range idx[suffix] {
				out = append(out, Match{Path: p, Suffix: suffix, Package: pkg})
				matched = true
			}
			if matched {
				break
			}
		}
		if !matched {
			out = append(out, Match{Path: p})
		}
	}
	return out
}

// MatchTable lays matches out as Resource, matched_suffix and
// matched_package columns.
func MatchTable(matches []Match) *table.Table {
	out := table.New(ColumnResource, ColumnMatchedSuffix, ColumnMatchedPackage)
	for _, m := range matches {
		out.Append(table.NewRow(
			ColumnResource, m.Path,
			ColumnMatchedSuffix, m.Suffix,
			ColumnMatchedPackage, m.Package,
		))
	}
	return out
}
