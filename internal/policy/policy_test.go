package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rezmoss/sctk/internal/license"
	"github.com/rezmoss/sctk/internal/table"
)

var catalog = license.Catalog{
	"mit":     {Key: "mit", Category: "Permissive", AttributionRequired: true},
	"gpl-2.0": {Key: "gpl-2.0", Category: "Copyleft"},
	"bsd-new": {Key: "bsd-new", Category: "Permissive"},
}

func rows(exprs ...string) *table.Table {
	tbl := table.New("Name", DefaultExpressionColumn, license.ColumnAttribution)
	for _, e := range exprs {
		tbl.Append(table.NewRow("Name", "pkg", DefaultExpressionColumn, e, license.ColumnAttribution, ""))
	}
	return tbl
}

func rules(violations []Violation) []string {
	var out []string
	for _, v := range violations {
		out = append(out, v.Rule)
	}
	return out
}

func TestLoad(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		p, err := Load([]byte(`{"deny_categories": ["Copyleft"], "require_licenses": true}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.DenyCategories) != 1 || !p.RequireLicenses {
			t.Errorf("unexpected policy: %+v", p)
		}
		if !p.RequireLicenseData {
			t.Error("expected license data check on by default")
		}
	})

	t.Run("toml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.toml")
		data := "expression_column = \"License\"\ndeny_licenses = [\"gpl-2.0\"]\nrequire_license_data = false\n"
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}

		p, err := LoadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Policy{ExpressionColumn: "License", DenyLicenses: []string{"gpl-2.0"}}
		if diff := cmp.Diff(want, p); diff != "" {
			t.Errorf("policy mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := Load([]byte(`{`)); err == nil {
			t.Error("expected error")
		}
	})
}

func TestEvaluate(t *testing.T) {
	t.Run("invalid license", func(t *testing.T) {
		violations, err := Evaluate(rows("mit AND foo", "bsd-new"), Default(), catalog)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []Violation{{
			Rule:     "require_license_data",
			Message:  "Invalid license: foo",
			Severity: SeverityError,
			Row:      0,
		}}
		if diff := cmp.Diff(want, violations); diff != "" {
			t.Errorf("violations mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("reports each key once per row", func(t *testing.T) {
		violations, _ := Evaluate(rows("foo OR foo"), Default(), catalog)
		if len(violations) != 1 {
			t.Errorf("expected 1 violation, got %d", len(violations))
		}
	})

	t.Run("undecodable expression", func(t *testing.T) {
		violations, _ := Evaluate(rows("mit AND (bsd-new"), Default(), catalog)
		if diff := cmp.Diff([]string{"invalid_expression"}, rules(violations)); diff != "" {
			t.Errorf("rules mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("denied licenses and categories", func(t *testing.T) {
		p := Default()
		p.DenyLicenses = []string{"bsd-new"}
		p.DenyCategories = []string{"Copyleft"}

		violations, _ := Evaluate(rows("gpl-2.0 OR bsd-new"), p, catalog)

		want := []string{"deny_categories", "deny_licenses"}
		if diff := cmp.Diff(want, rules(violations)); diff != "" {
			t.Errorf("rules mismatch (-want +got):\n%s", diff)
		}
		if violations[0].Message != "Denied category: Copyleft (gpl-2.0)" {
			t.Errorf("unexpected message %q", violations[0].Message)
		}
	})

	t.Run("empty expression", func(t *testing.T) {
		p := Default()
		violations, _ := Evaluate(rows(""), p, catalog)
		if len(violations) != 0 {
			t.Errorf("expected no violations, got %v", violations)
		}

		p.RequireLicenses = true
		violations, _ = Evaluate(rows(""), p, catalog)
		if diff := cmp.Diff([]string{"require_licenses"}, rules(violations)); diff != "" {
			t.Errorf("rules mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("attribution is a warning", func(t *testing.T) {
		p := Default()
		p.RequireAttributionColumn = true

		tbl := rows("mit", "mit")
		tbl.Rows[1].Set(license.ColumnAttribution, license.Marked)

		violations, _ := Evaluate(tbl, p, catalog)
		if len(violations) != 1 {
			t.Fatalf("expected 1 violation, got %d", len(violations))
		}
		if violations[0].Severity != SeverityWarning || violations[0].Row != 0 {
			t.Errorf("unexpected violation %+v", violations[0])
		}
		if HasErrors(violations) {
			t.Error("expected no errors")
		}
	})

	t.Run("missing column", func(t *testing.T) {
		p := Default()
		p.ExpressionColumn = "License"
		if _, err := Evaluate(rows("mit"), p, catalog); err == nil {
			t.Error("expected error for missing column")
		}
	})
}

func TestAnnotate(t *testing.T) {
	tbl := rows(" foo AND bar ", "mit")
	violations, err := Evaluate(tbl, Default(), catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := Annotate(tbl, violations)

	wantHeaders := []string{ColumnAttention, "Name", DefaultExpressionColumn, license.ColumnAttribution}
	if diff := cmp.Diff(wantHeaders, out.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if got := out.Rows[0].Value(ColumnAttention); got != "Invalid license: foo\nInvalid license: bar" {
		t.Errorf("unexpected attention %q", got)
	}
	if got := out.Rows[0].Value(DefaultExpressionColumn); got != "foo AND bar" {
		t.Errorf("expected trimmed value, got %q", got)
	}
	if got := out.Rows[1].Value(ColumnAttention); got != "" {
		t.Errorf("expected empty attention, got %q", got)
	}
}

func TestHasErrors(t *testing.T) {
	if HasErrors(nil) {
		t.Error("expected no errors for nil")
	}
	if !HasErrors([]Violation{{Severity: SeverityWarning}, {Severity: SeverityError}}) {
		t.Error("expected errors")
	}
}
