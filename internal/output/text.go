package output

import (
	"fmt"
	"io"

	"github.com/rezmoss/sctk/internal/analysis"
	"github.com/rezmoss/sctk/internal/policy"
)

// maxTopLicenses caps the license list of component statistics.
const maxTopLicenses = 10

// PrintTableStats outputs per-column statistics in a human-readable format
func PrintTableStats(w io.Writer, stats analysis.TableStats) {
	fmt.Fprintf(w, "\n📋 Table Statistics\n")
	fmt.Fprintf(w, "===================\n\n")

	fmt.Fprintf(w, "Rows: %d\n\n", stats.Rows)

	for _, c := range stats.Columns {
		fmt.Fprintf(w, "%s:\n", c.Name)
		fmt.Fprintf(w, "  Filled:   %d\n", c.Filled)
		fmt.Fprintf(w, "  Empty:    %d\n", c.Empty)
		fmt.Fprintf(w, "  Distinct: %d\n", c.Distinct)
		if len(c.Top) > 0 {
			fmt.Fprintf(w, "  Top values:\n")
			for _, v := range c.Top {
				fmt.Fprintf(w, "    %-30s %d\n", v.Value, v.Count)
			}
		}
		fmt.Fprintln(w)
	}
}

// PrintComponentStats outputs statistics of converted scanner output
func PrintComponentStats(w io.Writer, stats analysis.ComponentStats) {
	fmt.Fprintf(w, "\n📦 SBOM Statistics\n")
	fmt.Fprintf(w, "==================\n\n")

	fmt.Fprintf(w, "Total Components: %d\n\n", stats.TotalComponents)

	// By type
	if len(stats.ByType) > 0 {
		fmt.Fprintf(w, "By Package Type:\n")
		for _, t := range analysis.SortedKeys(stats.ByType) {
			fmt.Fprintf(w, "  %-12s %d\n", t, stats.ByType[t])
		}
		fmt.Fprintln(w)
	}

	// Licenses
	fmt.Fprintf(w, "Licenses:\n")
	fmt.Fprintf(w, "  With license:    %d\n", stats.TotalComponents-stats.WithoutLicense)
	fmt.Fprintf(w, "  Without license: %d\n", stats.WithoutLicense)
	if len(stats.ByLicense) > 0 {
		fmt.Fprintf(w, "\n  Top Licenses:\n")
		licenses := analysis.SortedByValue(stats.ByLicense)
		for i, lic := range licenses {
			if i >= maxTopLicenses {
				fmt.Fprintf(w, "    ... and %d more\n", len(licenses)-maxTopLicenses)
				break
			}
			fmt.Fprintf(w, "    %-30s %d\n", lic, stats.ByLicense[lic])
		}
	}
	if lc := stats.LicenseCategories; lc != nil {
		fmt.Fprintf(w, "\n  Copyleft: %d  Permissive: %d  Public domain: %d  Unknown: %d\n",
			lc.Copyleft, lc.Permissive, lc.PublicDomain, lc.Unknown)
	}
	fmt.Fprintln(w)

	// Identifiers
	fmt.Fprintf(w, "Identifiers:\n")
	fmt.Fprintf(w, "  With PURL:    %d\n", stats.WithPURL)
	fmt.Fprintf(w, "  Without PURL: %d\n", stats.WithoutPURL)
	fmt.Fprintf(w, "  With CPEs:    %d\n", stats.WithCPEs)
	fmt.Fprintln(w)

	// Duplicates
	if stats.DuplicateCount > 0 {
		fmt.Fprintf(w, "⚠️  Duplicates Found: %d\n", stats.DuplicateCount)
		for _, d := range stats.Duplicates {
			fmt.Fprintf(w, "  %s: %v\n", d.Name, d.Versions)
		}
		fmt.Fprintln(w)
	}
}

// PrintViolations outputs policy violations in human-readable format.
// Row numbers are spreadsheet rows, counting the header as row 1.
func PrintViolations(w io.Writer, violations []policy.Violation) {
	if len(violations) == 0 {
		return
	}

	errors, warnings := splitViolations(violations)

	if len(errors) > 0 {
		fmt.Fprintf(w, "\n❌ Policy Errors (%d):\n", len(errors))
		for _, v := range errors {
			fmt.Fprintf(w, "  [%s] row %d: %s\n", v.Rule, v.Row+2, v.Message)
		}
	}
	if len(warnings) > 0 {
		fmt.Fprintf(w, "\n⚠️  Policy Warnings (%d):\n", len(warnings))
		for _, v := range warnings {
			fmt.Fprintf(w, "  [%s] row %d: %s\n", v.Rule, v.Row+2, v.Message)
		}
	}
	fmt.Fprintln(w)
}

func splitViolations(violations []policy.Violation) (errors, warnings []policy.Violation) {
	for _, v := range violations {
		if v.Severity == policy.SeverityWarning {
			warnings = append(warnings, v)
		} else {
			errors = append(errors, v)
		}
	}
	return errors, warnings
}
