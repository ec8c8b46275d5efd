package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezmoss/sctk/internal/cli"
	"github.com/rezmoss/sctk/internal/license"
	"github.com/rezmoss/sctk/internal/output"
	"github.com/rezmoss/sctk/internal/sysindex"
	"github.com/rezmoss/sctk/internal/tui"
	"github.com/rezmoss/sctk/internal/version"
	"github.com/rezmoss/sctk/internal/web"
)

func newViewCommand(a *app) *cobra.Command {
	var (
		title string
		sheet string
	)

	cmd := &cobra.Command{
		Use:   "view INPUT",
		Short: "Browse the rows of a table interactively",
		Long:  "Browse the rows of a table interactively.\n\n" + cli.BrowserKeys,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := readTable(args[0], sheet)
			if err != nil {
				return err
			}
			return tui.Run(tbl, title)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "column used as row title (default: first column)")
	cmd.Flags().StringVarP(&sheet, "worksheet", "w", "", "worksheet to read from an XLSX input")
	return cmd
}

type serveOptions struct {
	port        int
	licenseData string
	loadIndex   bool
	indexFile   string
}

func newServeCommand(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the toolkit operations over HTTP",
		Long: "Serve the JSON API: /api/simplify, /api/match, /api/lookup, /api/enrich,\n" +
			"/api/stats and /api/version. Lookup and enrich need the package index and\n" +
			"the license data to be loaded at startup.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				opts.port = a.cfg.WebPort
			}
			return runServe(cmd, a, opts)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&opts.port, "port", 8080, "listen port (default: web_port from the config file)")
	flags.StringVar(&opts.licenseData, "license-data", "", "license catalog JSON file (default: license_data from the config file)")
	flags.BoolVar(&opts.loadIndex, "index", false, "load the Debian package index, building it if needed")
	flags.StringVar(&opts.indexFile, "index-file", "", "index cache file; implies --index")
	return cmd
}

func runServe(cmd *cobra.Command, a *app, opts serveOptions) error {
	state := &web.ServerState{}

	dataPath := opts.licenseData
	if dataPath == "" {
		dataPath = a.cfg.LicenseData
	}
	if dataPath != "" {
		catalog, err := license.LoadData(dataPath)
		if err != nil {
			return err
		}
		state.SetCatalog(catalog)
		a.log.WithField("licenses", len(catalog)).Info("license data loaded")
	}

	if opts.loadIndex || opts.indexFile != "" {
		idx, err := sysindex.Open(cmd.Context(), sysindex.Options{
			IndexFile:    opts.indexFile,
			CacheRoot:    a.cfg.CacheDir,
			ContentsURLs: a.cfg.ContentsURLs,
			Timeout:      time.Duration(a.cfg.DownloadTimeout),
			Log:          a.log,
		})
		if err != nil {
			return err
		}
		state.SetIndex(idx)
	}

	fmt.Fprintf(a.out, "Starting sctk web server at http://localhost:%d\n", opts.port)
	return web.NewServer(state, a.log).Serve(cmd.Context(), opts.port)
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			if format == output.FormatJSON {
				return output.WriteJSON(a.out, version.Get())
			}
			fmt.Fprintln(a.out, version.Info())
			return nil
		},
	}
}
