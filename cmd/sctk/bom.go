package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rezmoss/sctk/internal/analysis"
	"github.com/rezmoss/sctk/internal/license"
	"github.com/rezmoss/sctk/internal/output"
	"github.com/rezmoss/sctk/internal/policy"
	"github.com/rezmoss/sctk/internal/sbom"
)

func newSBOMToBOMCommand(a *app) *cobra.Command {
	var (
		stats  bool
		report bool
		asCSV  bool
	)

	cmd := &cobra.Command{
		Use:   "sbom-to-bom SBOM OUTPUT",
		Short: "Convert ScanCode, CycloneDX, SPDX or Syft JSON into a BOM table",
		Long: "Convert a scanner output into one BOM row per package. With --report, a\n" +
			"ScanCode scan is written as an inventory with one row per scanned resource.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if report {
				return runInventory(a, args[0], args[1], asCSV)
			}
			comps, info, err := sbom.ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			a.log.WithFields(logrus.Fields{
				"components": len(comps),
				"source":     info.SourceName,
			}).Debug("parsed scanner output")

			for _, c := range analysis.DetectCollisions(comps) {
				a.log.WithFields(logrus.Fields{
					"id":         c.ID,
					"components": len(c.Components),
				}).Warn(c.Reason)
			}

			if err := writeTable(args[1], sbom.ToTable(comps), asCSV); err != nil {
				return err
			}
			if stats {
				return printComponentStats(a, analysis.ComputeComponentStats(comps))
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&stats, "stats", false, "print component statistics")
	flags.BoolVar(&report, "report", false, "write a per-resource inventory of a ScanCode scan")
	flags.BoolVar(&asCSV, "csv", false, "write the output as CSV")
	cmd.MarkFlagsMutuallyExclusive("stats", "report")
	return cmd
}

func runInventory(a *app, input, outputPath string, asCSV bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	tbl, err := sbom.ScanCodeInventory(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", input, err)
	}
	a.log.WithField("resources", len(tbl.Rows)).Info("inventory built")
	fmt.Fprintf(a.out, "Saving BOM to %s\n", outputPath)
	return writeTable(outputPath, tbl, asCSV)
}

func printComponentStats(a *app, stats analysis.ComponentStats) error {
	format, err := a.format()
	if err != nil {
		return err
	}
	if format == output.FormatJSON {
		return output.WriteJSON(a.out, stats)
	}
	output.PrintComponentStats(a.out, stats)
	return nil
}

func newSummarizeCommand(a *app) *cobra.Command {
	var (
		keys  []string
		sheet string
		asCSV bool
	)

	cmd := &cobra.Command{
		Use:   "summarize INPUT OUTPUT",
		Short: "Collapse rows sharing the same key columns into one counted row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			tbl, err := readTable(args[0], sheet)
			if err != nil {
				return err
			}
			out, err := analysis.Summarize(tbl, keys)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"rows": len(tbl.Rows), "groups": len(out.Rows)}).Info("summarized")
			if err := writeTable(args[1], out, asCSV); err != nil {
				return err
			}
			if format == output.FormatMarkdown {
				_, err = io.WriteString(a.out, output.MarkdownTable(out))
			}
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVarP(&keys, "key", "k", nil, "column to group by (repeatable)")
	flags.StringVarP(&sheet, "worksheet", "w", "", "worksheet to read from an XLSX input")
	flags.BoolVar(&asCSV, "csv", false, "write the output as CSV")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

type checkOptions struct {
	policyFile       string
	licenseData      string
	expressionColumn string
	sheet            string
	asCSV            bool
}

func newCheckCommand(a *app) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check INPUT OUTPUT",
		Short: "Check BOM rows against a license policy",
		Long: "Evaluate every row against the policy and write the table with a leading\n" +
			policy.ColumnAttention + " column listing the problems of each row. Without --policy,\n" +
			"every license key must be known to the license data.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(a, args[0], args[1], opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.policyFile, "policy", "", "policy file (JSON or TOML)")
	flags.StringVar(&opts.licenseData, "license-data", "", "license catalog JSON file (default: license_data from the config file)")
	flags.StringVarP(&opts.expressionColumn, "expression-column", "e", "", "license expression column (overrides the policy)")
	flags.StringVarP(&opts.sheet, "worksheet", "w", "", "worksheet to read from an XLSX input")
	flags.BoolVar(&opts.asCSV, "csv", false, "write the output as CSV")
	return cmd
}

func needsCatalog(p policy.Policy) bool {
	return p.RequireLicenseData || len(p.DenyCategories) > 0 || p.RequireAttributionColumn
}

func runCheck(a *app, input, outputPath string, opts checkOptions) error {
	format, err := a.format()
	if err != nil {
		return err
	}

	pol := policy.Default()
	if opts.policyFile != "" {
		if pol, err = policy.LoadFile(opts.policyFile); err != nil {
			return err
		}
	}
	if opts.expressionColumn != "" {
		pol.ExpressionColumn = opts.expressionColumn
	}

	var catalog license.Catalog
	dataPath := opts.licenseData
	if dataPath == "" {
		dataPath = a.cfg.LicenseData
	}
	switch {
	case dataPath != "":
		if catalog, err = license.LoadData(dataPath); err != nil {
			return err
		}
	case needsCatalog(pol):
		return errors.New("the policy needs license data: pass --license-data or set license_data in the config file")
	}

	tbl, err := readTable(input, opts.sheet)
	if err != nil {
		return err
	}
	violations, err := policy.Evaluate(tbl, pol, catalog)
	if err != nil {
		return err
	}

	if policy.HasErrors(violations) && a.opts.IsStrict() {
		_ = printViolations(a.errOut, format, len(tbl.Rows), violations)
		return errors.New("policy errors found, no output is generated")
	}
	if err := writeTable(outputPath, policy.Annotate(tbl, violations), opts.asCSV); err != nil {
		return err
	}
	return printViolations(a.out, format, len(tbl.Rows), violations)
}

func printViolations(w io.Writer, format output.Format, rows int, violations []policy.Violation) error {
	switch format {
	case output.FormatJSON:
		if violations == nil {
			violations = []policy.Violation{}
		}
		return output.WriteJSON(w, violations)
	case output.FormatMarkdown:
		_, err := io.WriteString(w, output.GenerateMarkdown(analysis.TableStats{Rows: rows}, violations))
		return err
	}
	output.PrintViolations(w, violations)
	if len(violations) == 0 {
		fmt.Fprintf(w, "✅ %d rows checked, no violations\n", rows)
	}
	return nil
}

func newStatsCommand(a *app) *cobra.Command {
	var (
		top   int
		sheet string
	)

	cmd := &cobra.Command{
		Use:   "stats INPUT",
		Short: "Print per-column statistics of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			tbl, err := readTable(args[0], sheet)
			if err != nil {
				return err
			}
			stats := analysis.ComputeStats(tbl, top)

			switch format {
			case output.FormatJSON:
				return output.WriteJSON(a.out, stats)
			case output.FormatMarkdown:
				_, err := io.WriteString(a.out, output.GenerateMarkdown(stats, nil))
				return err
			}
			output.PrintTableStats(a.out, stats)
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 5, "number of most frequent values shown per column")
	cmd.Flags().StringVarP(&sheet, "worksheet", "w", "", "worksheet to read from an XLSX input")
	return cmd
}
