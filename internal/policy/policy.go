package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/rezmoss/sctk/internal/expression"
	"github.com/rezmoss/sctk/internal/license"
	"github.com/rezmoss/sctk/internal/table"
)

// ColumnAttention is the column prepended by Annotate.
const ColumnAttention = "Attention"

// DefaultExpressionColumn is checked when a policy names no column.
const DefaultExpressionColumn = "license_expression"

// Policy defines rules for checking BOM rows
type Policy struct {
	// Column holding the license expression of each row
	ExpressionColumn string `json:"expression_column,omitempty" toml:"expression_column,omitempty"`

	// License rules
	DenyLicenses       []string `json:"deny_licenses,omitempty" toml:"deny_licenses,omitempty"`
	DenyCategories     []string `json:"deny_categories,omitempty" toml:"deny_categories,omitempty"`
	RequireLicenses    bool     `json:"require_licenses,omitempty" toml:"require_licenses,omitempty"`
	RequireLicenseData bool     `json:"require_license_data,omitempty" toml:"require_license_data,omitempty"` // Fail on keys missing from license data

	// Warning rules - these produce warnings, not failures
	RequireAttributionColumn bool     `json:"require_attribution_column,omitempty" toml:"require_attribution_column,omitempty"` // Warn if a license needs attribution and the Attribution cell is empty
	RequiredColumns          []string `json:"required_columns,omitempty" toml:"required_columns,omitempty"`
}

// Default checks every license key against the license data, which is
// what the checker does without a policy file.
func Default() Policy {
	return Policy{ExpressionColumn: DefaultExpressionColumn, RequireLicenseData: true}
}

// Severity represents the severity of a policy violation
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation represents a policy rule that was violated by one row.
// Row is the zero-based index into the table rows.
type Violation struct {
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Row      int      `json:"row"`
}

// Load parses a policy from JSON data
func Load(data []byte) (Policy, error) {
	policy := Default()
	if err := json.Unmarshal(data, &policy); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

// LoadTOML parses a policy from TOML data
func LoadTOML(data []byte) (Policy, error) {
	policy := Default()
	if err := toml.Unmarshal(data, &policy); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

// LoadFile reads a policy file; ".toml" files are TOML, anything else JSON.
func LoadFile(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("reading policy: %w", err)
	}
	var p Policy
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		p, err = LoadTOML(data)
	} else {
		p, err = Load(data)
	}
	if err != nil {
		return Policy{}, fmt.Errorf("parsing policy %s: %w", path, err)
	}
	return p, nil
}

// Evaluate checks every row of tbl against a policy and returns violations
// in row order. Only missing columns are returned as errors.
func Evaluate(tbl *table.Table, policy Policy, data license.Catalog) ([]Violation, error) {
	column := policy.ExpressionColumn
	if column == "" {
		column = DefaultExpressionColumn
	}
	if err := tbl.RequireColumns(column); err != nil {
		return nil, err
	}
	if err := tbl.RequireColumns(policy.RequiredColumns...); err != nil {
		return nil, err
	}

	denyLicenses := mapset.NewThreadUnsafeSet(policy.DenyLicenses...)
	denyCategories := mapset.NewThreadUnsafeSet(policy.DenyCategories...)

	var violations []Violation
	for i, row := range tbl.Rows {
		add := func(rule string, sev Severity, format string, args ...any) {
			violations = append(violations, Violation{
				Rule:     rule,
				Message:  fmt.Sprintf(format, args...),
				Severity: sev,
				Row:      i,
			})
		}

		// Check required columns
		for _, c := range policy.RequiredColumns {
			if strings.TrimSpace(row.Value(c)) == "" {
				add("required_columns", SeverityWarning, "Missing %s", c)
			}
		}

		value := strings.TrimSpace(strings.ReplaceAll(row.Value(column), "\n", ""))
		if value == "" {
			if policy.RequireLicenses {
				add("require_licenses", SeverityError, "Empty %s value", column)
			}
			continue
		}

		tree, err := expression.Parse(value)
		if err != nil {
			add("invalid_expression", SeverityError, "Failed to decode %s: %s", column, value)
			continue
		}

		needsAttribution := ""
		seen := mapset.NewThreadUnsafeSet[string]()
		for _, key := range tree.Keys() {
			if !seen.Add(key) {
				continue
			}
			d, known := data[key]
			if !known && policy.RequireLicenseData {
				add("require_license_data", SeverityError, "Invalid license: %s", key)
			}
			if denyLicenses.Contains(key) {
				add("deny_licenses", SeverityError, "Denied license: %s", key)
			}
			if known && denyCategories.Contains(d.Category) {
				add("deny_categories", SeverityError, "Denied category: %s (%s)", d.Category, key)
			}
			if known && d.AttributionRequired && needsAttribution == "" {
				needsAttribution = key
			}
		}

		// Warn when attribution is required but not marked
		if policy.RequireAttributionColumn && needsAttribution != "" &&
			strings.TrimSpace(row.Value(license.ColumnAttribution)) == "" {
			add("require_attribution_column", SeverityWarning, "Attribution required: %s", needsAttribution)
		}
	}
	return violations, nil
}

// Annotate returns a copy of tbl with a leading Attention column holding
// the messages of each row's violations, one per line. Cell values are
// trimmed.
func Annotate(tbl *table.Table, violations []Violation) *table.Table {
	messages := make(map[int][]string)
	for _, v := range violations {
		messages[v.Row] = append(messages[v.Row], v.Message)
	}

	out := table.New(append([]string{ColumnAttention}, tbl.Headers...)...)
	for i, row := range tbl.Rows {
		nr := table.NewRow(ColumnAttention, strings.Join(messages[i], "\n"))
		for _, h := range tbl.Headers {
			nr.Set(h, strings.TrimSpace(row.Value(h)))
		}
		out.Append(nr)
	}
	return out
}

// HasErrors returns true if any violation is an error (not warning)
func HasErrors(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}
