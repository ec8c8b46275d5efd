package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezmoss/sctk/internal/cli"
	"github.com/rezmoss/sctk/internal/expression"
	"github.com/rezmoss/sctk/internal/license"
	"github.com/rezmoss/sctk/internal/output"
)

type simplifyResult struct {
	Expression string `json:"expression"`
	Simplified string `json:"simplified"`
}

func newSimplifyCommand(a *app) *cobra.Command {
	var promote bool

	cmd := &cobra.Command{
		Use:   "simplify EXPRESSION [EXPRESSION...]",
		Short: "Remove duplicate licenses from license expressions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimplify(a, args, promote)
		},
	}
	cmd.Flags().BoolVar(&promote, "promote-exceptions", false, "replace LICENSE WITH EXCEPTION by the exception before simplifying")
	return cmd
}

func runSimplify(a *app, exprs []string, promote bool) error {
	format, err := a.format()
	if err != nil {
		return err
	}

	results := make([]simplifyResult, 0, len(exprs))
	for _, e := range exprs {
		in := e
		if promote {
			in = expression.PromoteExceptions(in)
		}
		s, err := expression.Simplify(in)
		if err != nil {
			return err
		}
		results = append(results, simplifyResult{Expression: e, Simplified: s})
	}

	if format == output.FormatJSON {
		return output.WriteJSON(a.out, results)
	}
	for _, r := range results {
		fmt.Fprintln(a.out, r.Simplified)
	}
	return nil
}

func newNormalizeCommand(a *app) *cobra.Command {
	var (
		column string
		sheet  string
		asCSV  bool
	)

	cmd := &cobra.Command{
		Use:   "normalize INPUT OUTPUT",
		Short: "Add a deduplicated copy of the license expression column",
		Long: "Parse every license expression of the column, remove duplicate licenses and\n" +
			"write the result to the " + license.ColumnNormalizedExpression + " column.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := readTable(args[0], sheet)
			if err != nil {
				return err
			}
			out, err := license.Normalize(tbl, column, a.log)
			if err != nil {
				return err
			}
			if err := writeTable(args[1], out, asCSV); err != nil {
				return err
			}
			a.log.WithField("output", args[1]).Info("normalized license expressions")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&column, "column", "c", "license_expression", "license expression column")
	flags.StringVarP(&sheet, "worksheet", "w", "", "worksheet to read from an XLSX input")
	flags.BoolVar(&asCSV, "csv", false, "write the output as CSV")
	return cmd
}

type lcatOptions struct {
	licenseData string
	columns     license.Columns
	sheet       string
	force       bool
	asCSV       bool
}

func newLcatCommand(a *app) *cobra.Command {
	var opts lcatOptions

	cmd := &cobra.Command{
		Use:   "lcat INPUT OUTPUT",
		Short: "Add license category, name, attribution and SPDX columns",
		Long: "Look up every license key of the expression column in the license catalog and\n" +
			"append the category, short name, attribution, redistribution and SPDX columns.\n" +
			"Empty, malformed or unknown expressions abort the run unless --force is given.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLcat(a, args[0], args[1], opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.licenseData, "license-data", "", "license catalog JSON file (default: license_data from the config file)")
	flags.StringVarP(&opts.columns.Expression, "expression-column", "e", "", "license expression column")
	flags.StringVarP(&opts.columns.Owner, "owner-column", "o", "", "owner column")
	flags.StringVar(&opts.columns.Category, "lc", "", "license category column whose values are kept")
	flags.StringVar(&opts.columns.ShortName, "ln", "", "license name column whose values are kept")
	flags.StringVarP(&opts.columns.Attribution, "attribution-column", "a", "", "attribution column whose values are kept")
	flags.StringVarP(&opts.columns.Redistribution, "redistribution-column", "r", "", "redistribution column whose values are kept")
	flags.StringVarP(&opts.sheet, "worksheet", "w", "", "worksheet to read from an XLSX input")
	flags.BoolVar(&opts.force, "force", false, "write the output even if there are errors")
	flags.BoolVar(&opts.asCSV, "csv", false, "write the output as CSV")
	_ = cmd.MarkFlagRequired("expression-column")
	_ = cmd.MarkFlagRequired("owner-column")
	return cmd
}

func runLcat(a *app, input, outputPath string, opts lcatOptions) error {
	dataPath := opts.licenseData
	if dataPath == "" {
		dataPath = a.cfg.LicenseData
	}
	if dataPath == "" {
		return errors.New("no license data: pass --license-data or set license_data in the config file")
	}
	catalog, err := license.LoadData(dataPath)
	if err != nil {
		return err
	}

	tbl, err := readTable(input, opts.sheet)
	if err != nil {
		return err
	}

	enricher := license.NewEnricher(catalog, a.log)
	infos, messages, err := enricher.CollectKeys(tbl, opts.columns.Expression)
	if err != nil {
		return err
	}
	report := cli.NewReport(!opts.force && !a.opts.Tolerant)
	report.AddMessages("expression", messages)
	report.AddMessages("catalog", catalog.Validate(infos))

	out, err := enricher.ProcessRows(tbl, opts.columns)
	if err != nil {
		return err
	}
	return a.finish(report, outputPath, func() error {
		if err := writeTable(outputPath, out, opts.asCSV); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saving output BOM to: %s\n", outputPath)
		return nil
	})
}
