package table

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func sample() *Table {
	return FromRows([]*Row{
		NewRow("Resource", "src/a.c", "License", "mit", "Owner", "Acme"),
		NewRow("Resource", "src/b.c", "License", "gpl-2.0", "Owner", ""),
		NewRow("Resource", "docs/readme", "License", "", "Owner", "Acme"),
	})
}

func TestRowOrder(t *testing.T) {
	r := NewRow("b", "1", "a", "2")
	r.Set("c", "3")
	r.Set("b", "9")
	assert.DeepEqual(t, r.Keys(), []string{"b", "a", "c"})
	assert.Equal(t, r.Value("b"), "9")

	r.Delete("a")
	assert.DeepEqual(t, r.Keys(), []string{"b", "c"})
	assert.Assert(t, !r.Has("a"))
}

func TestRowEqualIgnoresOrder(t *testing.T) {
	a := NewRow("x", "1", "y", "2")
	b := NewRow("y", "2", "x", "1")
	assert.Assert(t, a.Equal(b))
	b.Set("x", "3")
	assert.Assert(t, !a.Equal(b))
}

func TestRowJSONKeepsOrder(t *testing.T) {
	r := NewRow("z", "1", "a", "2")
	data, err := r.MarshalJSON()
	assert.NilError(t, err)
	assert.Equal(t, string(data), `{"z":"1","a":"2"}`)

	var back Row
	assert.NilError(t, back.UnmarshalJSON([]byte(`{"z":"1","a":2}`)))
	assert.DeepEqual(t, back.Keys(), []string{"z", "a"})
	assert.Equal(t, back.Value("a"), "2")
}

func TestReadCSVStripsBOM(t *testing.T) {
	in := "\ufeffResource,License,\nsrc/a.c,mit,extra\nsrc/b.c\n"
	tbl, err := ReadCSV(strings.NewReader(in))
	assert.NilError(t, err)
	assert.DeepEqual(t, tbl.Headers, []string{"Resource", "License"})
	assert.Assert(t, is.Len(tbl.Rows, 2))
	assert.Equal(t, tbl.Rows[0].Value("License"), "mit")
	assert.Equal(t, tbl.Rows[1].Value("License"), "")
	assert.Assert(t, tbl.Rows[1].Has("License"))
}

func TestWriteCSVSkipsBlankRows(t *testing.T) {
	tbl := New("a", "b")
	tbl.Append(NewRow("a", "1", "b", "2"))
	tbl.Append(NewRow("a", "", "b", ""))
	tbl.Append(NewRow("b", "3"))

	var buf bytes.Buffer
	assert.NilError(t, WriteCSV(&buf, tbl))
	assert.Equal(t, buf.String(), "\ufeffa,b\n1,2\n,3\n")
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.csv", "out.json", "out.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			assert.NilError(t, WriteFile(path, sample()))

			got, err := ReadFile(path, "")
			assert.NilError(t, err)
			assert.DeepEqual(t, got.Headers, sample().Headers)
			assert.Assert(t, is.Len(got.Rows, 3))
			for i, r := range got.Rows {
				assert.DeepEqual(t, r.Project(got.Headers), sample().Rows[i].Project(got.Headers))
			}
		})
	}
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := ReadFile("input.txt", "")
	assert.Assert(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestCoord(t *testing.T) {
	tbl := sample()
	assert.Equal(t, tbl.Coord("License", 0), "B2")
	assert.Equal(t, tbl.Coord("Owner", 2), "C4")
	assert.Equal(t, tbl.Coord("Missing", 0), "")
}

func TestParseCondition(t *testing.T) {
	cond, err := ParseCondition("License=mit or Owner OR  Resource = src/b.c")
	assert.NilError(t, err)
	want := Condition{
		{Column: "License", Value: "mit"},
		{Column: "Owner"},
		{Column: "Resource", Value: "src/b.c"},
	}
	if diff := cmp.Diff(want, cond); diff != "" {
		t.Errorf("condition mismatch (-want +got):\n%s", diff)
	}

	_, err = ParseCondition("=mit")
	assert.ErrorContains(t, err, "missing column name")
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		filters []Filter
		want    []string
	}{
		{
			name:    "include contains",
			filters: []Filter{{Kind: Contains, Conditions: []Condition{{{Column: "Resource", Value: "src"}}}}},
			want:    []string{"src/a.c", "src/b.c"},
		},
		{
			name:    "include non-empty",
			filters: []Filter{{Kind: Contains, Conditions: []Condition{{{Column: "Owner"}}}}},
			want:    []string{"src/a.c", "docs/readme"},
		},
		{
			name: "conditions are anded",
			filters: []Filter{{Kind: Contains, Conditions: []Condition{
				{{Column: "Owner"}},
				{{Column: "License"}},
			}}},
			want: []string{"src/a.c"},
		},
		{
			name: "clauses are ored",
			filters: []Filter{{Kind: Equals, Conditions: []Condition{
				{{Column: "License", Value: "mit"}, {Column: "License", Value: "gpl-2.0"}},
			}}},
			want: []string{"src/a.c", "src/b.c"},
		},
		{
			name:    "exclude",
			filters: []Filter{{Kind: Contains, Exclude: true, Conditions: []Condition{{{Column: "Resource", Value: "docs"}}}}},
			want:    []string{"src/a.c", "src/b.c"},
		},
		{
			name:    "exclude exact",
			filters: []Filter{{Kind: Equals, Exclude: true, Conditions: []Condition{{{Column: "License", Value: "mit"}}}}},
			want:    []string{"src/b.c", "docs/readme"},
		},
		{
			name:    "startswith",
			filters: []Filter{{Kind: StartsWith, Conditions: []Condition{{{Column: "License", Value: "gpl"}}}}},
			want:    []string{"src/b.c"},
		},
		{
			name:    "endswith",
			filters: []Filter{{Kind: EndsWith, Conditions: []Condition{{{Column: "Resource", Value: ".c"}}}}},
			want:    []string{"src/a.c", "src/b.c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sample().Apply(tt.filters...)
			assert.NilError(t, err)
			res, err := got.Column("Resource")
			assert.NilError(t, err)
			assert.DeepEqual(t, res, tt.want)
		})
	}
}

func TestApplyMissingColumn(t *testing.T) {
	_, err := sample().Apply(Filter{Conditions: []Condition{{{Column: "Nope"}}}})
	assert.Assert(t, errors.Is(err, ErrMissingColumn))
}

func TestKeepAndRemoveColumns(t *testing.T) {
	kept, err := sample().KeepColumns("Owner", "Resource")
	assert.NilError(t, err)
	assert.DeepEqual(t, kept.Headers, []string{"Owner", "Resource"})
	assert.DeepEqual(t, kept.Rows[0].Keys(), []string{"Owner", "Resource"})

	_, err = sample().KeepColumns("Nope")
	assert.Assert(t, errors.Is(err, ErrMissingColumn))

	removed := sample().RemoveColumns("License", "Nope")
	assert.DeepEqual(t, removed.Headers, []string{"Resource", "Owner"})
	assert.Assert(t, !removed.Rows[0].Has("License"))
}

func TestAddColumnPrefix(t *testing.T) {
	got := sample().AddColumnPrefix("left_")
	assert.DeepEqual(t, got.Headers, []string{"left_Resource", "left_License", "left_Owner"})
	assert.Equal(t, got.Rows[1].Value("left_License"), "gpl-2.0")
}

func TestConcat(t *testing.T) {
	a := FromRows([]*Row{NewRow("x", "1", "y", "2")})
	b := FromRows([]*Row{NewRow("z", "3", "x", "4")})
	got := Concat(a, b)
	assert.DeepEqual(t, got.Headers, []string{"x", "y", "z"})
	assert.DeepEqual(t, got.Rows[0].Project(got.Headers), []string{"1", "2", ""})
	assert.DeepEqual(t, got.Rows[1].Project(got.Headers), []string{"4", "", "3"})
}

func TestFlatten(t *testing.T) {
	in := FromRows([]*Row{
		NewRow("Package", "zlib", "License", "zlib", "Path", "/usr/lib/libz.so"),
		NewRow("Package", "busybox", "License", "gpl-2.0", "Path", "/bin/busybox"),
		NewRow("Package", "zlib", "License", "zlib", "Path", "/usr/include/zlib.h\n/usr/lib/libz.so"),
		NewRow("Package", "zlib", "License", "", "Path", "/usr/share/doc/zlib"),
	})

	got, err := in.Flatten("Package")
	assert.NilError(t, err)
	assert.DeepEqual(t, got.Headers, []string{"Package", "License", "Path"})

	var rows [][]string
	for _, r := range got.Rows {
		rows = append(rows, r.Project(got.Headers))
	}
	want := [][]string{
		{"busybox", "gpl-2.0", "/bin/busybox"},
		{"zlib", "zlib", "/usr/lib/libz.so\n/usr/include/zlib.h\n/usr/share/doc/zlib"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("flatten mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, in.Rows[0].Value("Path"), "/usr/lib/libz.so")

	_, err = in.Flatten("Nope")
	assert.Assert(t, errors.Is(err, ErrMissingColumn))
}

func TestUnflatten(t *testing.T) {
	in := FromRows([]*Row{
		NewRow("Path", "/bin/sh\n/bin/busybox", "Package", "busybox"),
		NewRow("Path", "/usr/lib/libz.so", "Package", "zlib"),
	})

	got, err := in.Unflatten("Path")
	assert.NilError(t, err)
	var rows [][]string
	for _, r := range got.Rows {
		rows = append(rows, r.Project(got.Headers))
	}
	want := [][]string{
		{"/bin/sh", "busybox"},
		{"/bin/busybox", "busybox"},
		{"/usr/lib/libz.so", "zlib"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("unflatten mismatch (-want +got):\n%s", diff)
	}

	// Unflattening a flattened key column restores one row per value.
	flat, err := got.Flatten("Package")
	assert.NilError(t, err)
	assert.Check(t, is.Len(flat.Rows, 2))
	back, err := flat.Unflatten("Path")
	assert.NilError(t, err)
	assert.Check(t, is.Len(back.Rows, 3))

	_, err = in.Unflatten("Nope")
	assert.Assert(t, errors.Is(err, ErrMissingColumn))
}
