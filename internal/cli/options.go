package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

// ErrStrict is returned by Report.Err when issues were collected in
// strict mode.
var ErrStrict = errors.New("strict mode: aborting on reported issues")

// ErrorLogName is the file written beside an output by WriteErrorLog.
const ErrorLogName = "error.log"

// Issue represents a non-fatal problem found while processing rows
type Issue struct {
	Source  string `json:"source"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (i Issue) String() string {
	if i.Field != "" {
		return fmt.Sprintf("[%s] %s (at: %s)", i.Source, i.Message, i.Field)
	}
	return fmt.Sprintf("[%s] %s", i.Source, i.Message)
}

// Report collects issues of one batch run. In strict mode any issue
// aborts the run before output is written; in tolerant mode the output
// is written and the issues are reported afterwards.
type Report struct {
	Strict bool
	Issues []Issue
}

// NewReport returns an empty report.
func NewReport(strict bool) *Report {
	return &Report{Strict: strict, Issues: []Issue{}}
}

// Add records an issue.
func (r *Report) Add(source, message, field string) {
	r.Issues = append(r.Issues, Issue{
		Source:  source,
		Message: message,
		Field:   field,
	})
}

// AddMessages records one issue per message.
func (r *Report) AddMessages(source string, messages []string) {
	for _, m := range messages {
		r.Add(source, m, "")
	}
}

// Len returns the number of collected issues.
func (r *Report) Len() int {
	return len(r.Issues)
}

// Err returns ErrStrict when the report is strict and not empty.
func (r *Report) Err() error {
	if r.Strict && len(r.Issues) > 0 {
		return fmt.Errorf("%w (%d issues)", ErrStrict, len(r.Issues))
	}
	return nil
}

// WriteErrorLog writes the issue messages, one per line, to error.log in
// the directory of output and returns the log path. Nothing is written
// for an empty report.
func (r *Report) WriteErrorLog(output string) (string, error) {
	if len(r.Issues) == 0 {
		return "", nil
	}
	dir, err := filepath.Abs(filepath.Dir(output))
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ErrorLogName)

	lines := make([]string, len(r.Issues))
	for i, is := range r.Issues {
		lines[i] = is.Message
		if is.Field != "" {
			lines[i] += " at: " + is.Field
		}
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return "", fmt.Errorf("writing error log: %w", err)
	}
	return path, nil
}

// Options holds the global command line options
type Options struct {
	ConfigFile string
	LogLevel   string
	Strict     bool
	Tolerant   bool
	Format     string // text, json, markdown
}

// BindFlags registers the global flags on fs.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigFile, "config", "", "configuration file (TOML)")
	fs.StringVar(&o.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&o.Strict, "strict", false, "abort on row errors before writing output")
	fs.BoolVar(&o.Tolerant, "tolerant", false, "write output despite row errors (default)")
	fs.StringVarP(&o.Format, "format", "f", "text", "report format: text, json, markdown")
}

// IsStrict resolves --strict and --tolerant; tolerant is the default and
// wins when both are given.
func (o *Options) IsStrict() bool {
	return o.Strict && !o.Tolerant
}

// PrintReport displays collected issues
func PrintReport(w io.Writer, r *Report) {
	if r.Len() == 0 {
		return
	}
	fmt.Fprintf(w, "\n⚠️  Issues (%d):\n", r.Len())
	for _, is := range r.Issues {
		fmt.Fprintf(w, "  %s\n", is)
	}
	fmt.Fprintln(w)
}
