package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rezmoss/sctk/internal/pathmatch"
	"github.com/rezmoss/sctk/internal/sysindex"
)

type columnMatchOptions struct {
	match  pathmatch.Options
	sheet1 string
	sheet2 string
	asCSV  bool
}

func newColumnMatchCommand(a *app) *cobra.Command {
	var opts columnMatchOptions

	cmd := &cobra.Command{
		Use:   "column-match INPUT1 INPUT2 OUTPUT",
		Short: "Match rows of two tables by common path suffix",
		Long: "Pair every row of INPUT1 with the rows of INPUT2 whose path has the same file\n" +
			"name, and score how many trailing path segments both paths share.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runColumnMatch(a, args[0], args[1], args[2], opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.match.Key1, "key1", "", "path column of INPUT1")
	flags.StringVar(&opts.match.Key2, "key2", "", "path column of INPUT2")
	flags.BoolVar(&opts.match.BestMatchesOnly, "best-matches-only", false, "keep only the best scoring matches of each path")
	flags.StringVar(&opts.sheet1, "worksheet1", "", "worksheet to read from an XLSX INPUT1")
	flags.StringVar(&opts.sheet2, "worksheet2", "", "worksheet to read from an XLSX INPUT2")
	flags.BoolVar(&opts.asCSV, "csv", false, "write the output as CSV")
	_ = cmd.MarkFlagRequired("key1")
	_ = cmd.MarkFlagRequired("key2")
	return cmd
}

func runColumnMatch(a *app, input1, input2, outputPath string, opts columnMatchOptions) error {
	left, err := readTable(input1, opts.sheet1)
	if err != nil {
		return err
	}
	right, err := readTable(input2, opts.sheet2)
	if err != nil {
		return err
	}

	results, err := pathmatch.Match(left, right, opts.match)
	if err != nil {
		return err
	}

	matched := 0
	for _, r := range results {
		if r.IsMatch() {
			matched++
		}
	}
	a.log.WithFields(logrus.Fields{"rows": len(results), "matched": matched}).Info("column match done")

	out := pathmatch.ToTable(results, left.Headers, right.Headers, opts.match.Key1)
	return writeTable(outputPath, out, opts.asCSV)
}

type systemFileIndexOptions struct {
	index sysindex.Options
	sheet string
	asCSV bool
}

func newSystemFileIndexCommand(a *app) *cobra.Command {
	var opts systemFileIndexOptions

	cmd := &cobra.Command{
		Use:   "system-file-index INPUT OUTPUT",
		Short: "Find the Debian packages installing the paths of the Resource column",
		Long: "Look up every path of the " + sysindex.ColumnResource + " column in an index built from Debian\n" +
			"Contents files. The index is built on first use and cached; pass --reindex\n" +
			"to rebuild it or --contents-file to build it from local files.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.index.CacheRoot = a.cfg.CacheDir
			opts.index.ContentsURLs = a.cfg.ContentsURLs
			opts.index.Timeout = time.Duration(a.cfg.DownloadTimeout)
			opts.index.Log = a.log
			return runSystemFileIndex(cmd, a, args[0], args[1], opts)
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&opts.index.Reindex, "reindex", false, "rebuild the index even if a cached one exists")
	flags.StringArrayVar(&opts.index.ContentsFiles, "contents-file", nil, "local Contents-<arch>.gz file to index (repeatable)")
	flags.StringVar(&opts.index.IndexFile, "index-file", "", "index cache file (default: in the cache directory)")
	flags.BoolVar(&opts.index.HasHeader, "has-header", false, "Contents files start with a FILE/LOCATION header")
	flags.StringVarP(&opts.sheet, "worksheet", "w", "", "worksheet to read from an XLSX input")
	flags.BoolVar(&opts.asCSV, "csv", false, "write the output as CSV")
	return cmd
}

func runSystemFileIndex(cmd *cobra.Command, a *app, input, outputPath string, opts systemFileIndexOptions) error {
	tbl, err := readTable(input, opts.sheet)
	if err != nil {
		return err
	}
	paths, err := tbl.Column(sysindex.ColumnResource)
	if err != nil {
		return err
	}

	idx, err := sysindex.Open(cmd.Context(), opts.index)
	if err != nil {
		return err
	}

	matches := idx.Matches(paths)
	a.log.WithFields(logrus.Fields{"paths": len(paths), "rows": len(matches)}).Info("system file index lookup done")
	return writeTable(outputPath, sysindex.MatchTable(matches), opts.asCSV)
}
