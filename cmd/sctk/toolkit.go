package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rezmoss/sctk/internal/table"
)

type filterOptions struct {
	include      []string
	exclude      []string
	excludeExact []string
	startsWith   []string
	endsWith     []string
	equals       []string
	sheet        string
	asCSV        bool
}

// filters turns each repeatable flag into one table.Filter.
func (o filterOptions) filters() ([]table.Filter, error) {
	specs := []struct {
		values  []string
		kind    table.MatchKind
		exclude bool
	}{
		{o.include, table.Contains, false},
		{o.exclude, table.Contains, true},
		{o.excludeExact, table.Equals, true},
		{o.startsWith, table.StartsWith, false},
		{o.endsWith, table.EndsWith, false},
		{o.equals, table.Equals, false},
	}

	var filters []table.Filter
	for _, s := range specs {
		if len(s.values) == 0 {
			continue
		}
		f := table.Filter{Kind: s.kind, Exclude: s.exclude}
		for _, v := range s.values {
			cond, err := table.ParseCondition(v)
			if err != nil {
				return nil, err
			}
			f.Conditions = append(f.Conditions, cond)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func newFilterCommand(a *app) *cobra.Command {
	var opts filterOptions

	cmd := &cobra.Command{
		Use:   "filter INPUT OUTPUT",
		Short: "Keep the rows matching column conditions",
		Long: "Each option takes a condition \"column=value\"; clauses joined by \" or \" match\n" +
			"when any of them does. Repeated options must all match. A clause without a\n" +
			"value matches non-empty cells.",
		Example: `  sctk filter bom.xlsx out.xlsx --include "license_expression=gpl"
  sctk filter bom.csv out.csv --exclude-exact "Status=removed or Status=ignored"
  sctk filter bom.csv out.csv --startswith "Path=/usr/lib" --equals "Owner"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := opts.filters()
			if err != nil {
				return err
			}
			tbl, err := readTable(args[0], opts.sheet)
			if err != nil {
				return err
			}
			out, err := tbl.Apply(filters...)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"rows": len(tbl.Rows), "kept": len(out.Rows)}).Info("filtered")
			return writeTable(args[1], out, opts.asCSV)
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVar(&opts.include, "include", nil, "keep rows whose column contains the value")
	flags.StringArrayVar(&opts.exclude, "exclude", nil, "drop rows whose column contains the value")
	flags.StringArrayVar(&opts.excludeExact, "exclude-exact", nil, "drop rows whose column equals the value")
	flags.StringArrayVar(&opts.startsWith, "startswith", nil, "keep rows whose column starts with the value")
	flags.StringArrayVar(&opts.endsWith, "endswith", nil, "keep rows whose column ends with the value")
	flags.StringArrayVar(&opts.equals, "equals", nil, "keep rows whose column equals the value")
	flags.StringVarP(&opts.sheet, "worksheet", "w", "", "worksheet to read from an XLSX input")
	flags.BoolVar(&opts.asCSV, "csv", false, "write the output as CSV")
	cmd.MarkFlagsOneRequired("include", "exclude", "exclude-exact", "startswith", "endswith", "equals")
	return cmd
}

// columnCommand builds keep-column and remove-column, which only differ
// in the transformation applied.
func columnCommand(a *app, use, short string, apply func(*table.Table, []string) (*table.Table, error)) *cobra.Command {
	var (
		keys  []string
		sheet string
		asCSV bool
	)

	cmd := &cobra.Command{
		Use:   use + " INPUT OUTPUT",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := readTable(args[0], sheet)
			if err != nil {
				return err
			}
			out, err := apply(tbl, keys)
			if err != nil {
				return err
			}
			a.log.WithField("columns", out.Headers).Debug("columns written")
			return writeTable(args[1], out, asCSV)
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVarP(&keys, "key", "k", nil, "column name (repeatable)")
	flags.StringVarP(&sheet, "worksheet", "w", "", "worksheet to read from an XLSX input")
	flags.BoolVar(&asCSV, "csv", false, "write the output as CSV")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newKeepColumnCommand(a *app) *cobra.Command {
	return columnCommand(a, "keep-column", "Keep only the named columns, in the order given",
		func(t *table.Table, keys []string) (*table.Table, error) {
			return t.KeepColumns(keys...)
		})
}

func newRemoveColumnCommand(a *app) *cobra.Command {
	return columnCommand(a, "remove-column", "Remove the named columns",
		func(t *table.Table, keys []string) (*table.Table, error) {
			return t.RemoveColumns(keys...), nil
		})
}

// keyCommand builds flatten and unflatten, which regroup rows on one key
// column.
func keyCommand(a *app, use, short string, apply func(*table.Table, string) (*table.Table, error)) *cobra.Command {
	var (
		key   string
		sheet string
		asCSV bool
	)

	cmd := &cobra.Command{
		Use:   use + " INPUT OUTPUT",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := readTable(args[0], sheet)
			if err != nil {
				return err
			}
			out, err := apply(tbl, key)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"rows": len(tbl.Rows), "written": len(out.Rows)}).Info(use)
			return writeTable(args[1], out, asCSV)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&key, "key", "k", "", "key column")
	flags.StringVarP(&sheet, "worksheet", "w", "", "worksheet to read from an XLSX input")
	flags.BoolVar(&asCSV, "csv", false, "write the output as CSV")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newFlattenCommand(a *app) *cobra.Command {
	cmd := keyCommand(a, "flatten", "Merge the rows sharing a key into one row with multi-line cells",
		(*table.Table).Flatten)
	cmd.Long = "Sort the rows by the key column and merge the rows sharing a key. Each merged\n" +
		"cell lists the distinct values of the merged rows, one per line."
	return cmd
}

func newUnflattenCommand(a *app) *cobra.Command {
	cmd := keyCommand(a, "unflatten", "Split rows with a multi-line key cell into one row per line",
		(*table.Table).Unflatten)
	cmd.Long = "Write one row per line of a multi-line key cell, copying the other columns."
	return cmd
}

func newAddPrefixCommand(a *app) *cobra.Command {
	var (
		prefix string
		sheet  string
		asCSV  bool
	)

	cmd := &cobra.Command{
		Use:   "add-prefix INPUT OUTPUT",
		Short: "Prefix every column name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := readTable(args[0], sheet)
			if err != nil {
				return err
			}
			return writeTable(args[1], tbl.AddColumnPrefix(prefix), asCSV)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&prefix, "key", "k", "", "prefix to add")
	flags.StringVarP(&sheet, "worksheet", "w", "", "worksheet to read from an XLSX input")
	flags.BoolVar(&asCSV, "csv", false, "write the output as CSV")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newConcatCommand(a *app) *cobra.Command {
	var (
		inputs []string
		output string
		sheet  string
		asCSV  bool
	)

	cmd := &cobra.Command{
		Use:   "concat -i INPUT -i INPUT... -o OUTPUT",
		Short: "Append the rows of several tables",
		Long: "Append the rows of every input in order. The output columns are the union of\n" +
			"the input columns in order of first appearance.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables := make([]*table.Table, 0, len(inputs))
			for _, in := range inputs {
				tbl, err := readTable(in, sheet)
				if err != nil {
					return err
				}
				tables = append(tables, tbl)
			}
			out := table.Concat(tables...)
			a.log.WithFields(logrus.Fields{"inputs": len(inputs), "rows": len(out.Rows)}).Info("concatenated")
			return writeTable(output, out, asCSV)
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVarP(&inputs, "input", "i", nil, "input table (repeatable)")
	flags.StringVarP(&output, "output", "o", "", "output table")
	flags.StringVarP(&sheet, "worksheet", "w", "", "worksheet to read from XLSX inputs")
	flags.BoolVar(&asCSV, "csv", false, "write the output as CSV")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
