package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rezmoss/sctk/internal/cli"
	"github.com/rezmoss/sctk/internal/config"
	"github.com/rezmoss/sctk/internal/output"
	"github.com/rezmoss/sctk/internal/table"
	"github.com/rezmoss/sctk/internal/version"
)

// app carries the state shared by every subcommand once the persistent
// flags and the configuration file have been read.
type app struct {
	opts   cli.Options
	cfg    config.Config
	log    *logrus.Logger
	out    io.Writer
	errOut io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, cfg: config.Default()}

	cmd := &cobra.Command{
		Use:           "sctk",
		Short:         "Software composition analysis toolkit",
		Long:          cli.Long,
		Example:       cli.Examples,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetVersionTemplate("{{.Version}}\n")
	a.opts.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newSimplifyCommand(a),
		newNormalizeCommand(a),
		newLcatCommand(a),
		newColumnMatchCommand(a),
		newSystemFileIndexCommand(a),
		newSBOMToBOMCommand(a),
		newSummarizeCommand(a),
		newCheckCommand(a),
		newStatsCommand(a),
		newFilterCommand(a),
		newKeepColumnCommand(a),
		newRemoveColumnCommand(a),
		newAddPrefixCommand(a),
		newConcatCommand(a),
		newFlattenCommand(a),
		newUnflattenCommand(a),
		newViewCommand(a),
		newServeCommand(a),
		newVersionCommand(a),
	)
	return cmd
}

// setup loads the configuration file and builds the logger. An explicit
// --config must exist; the default location is optional.
func (a *app) setup() error {
	path, required := a.opts.ConfigFile, true
	if path == "" {
		required = false
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		cfg, err := config.LoadFile(path, required)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	level := a.cfg.LogLevel
	if a.opts.LogLevel != "" {
		level = a.opts.LogLevel
	}
	log, err := config.NewLogger(level)
	if err != nil {
		return err
	}
	log.SetOutput(a.errOut)
	a.log = log
	return nil
}

func (a *app) format() (output.Format, error) {
	return output.ParseFormat(a.opts.Format)
}

// readTable loads an input table, naming the file in errors.
func readTable(path, sheet string) (*table.Table, error) {
	tbl, err := table.ReadFile(path, sheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return tbl, nil
}

// writeTable writes tbl in the format of the path extension, or as CSV
// whatever the extension when asCSV is set.
func writeTable(path string, tbl *table.Table, asCSV bool) error {
	var err error
	if asCSV {
		err = table.WriteFileAs(path, tbl, table.FormatCSV)
	} else {
		err = table.WriteFile(path, tbl)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// finish applies the strict/tolerant policy of a batch run. Issues are
// printed and logged to error.log beside the output; a strict run with
// issues then stops before write is called.
func (a *app) finish(report *cli.Report, outputPath string, write func() error) error {
	if report.Len() > 0 {
		logPath, err := report.WriteErrorLog(outputPath)
		if err != nil {
			return err
		}
		cli.PrintReport(a.errOut, report)
		a.log.WithFields(logrus.Fields{"issues": report.Len(), "log": logPath}).Warn("issues found")
	}
	if err := report.Err(); err != nil {
		return fmt.Errorf("%w, no output is generated", err)
	}
	return write()
}
