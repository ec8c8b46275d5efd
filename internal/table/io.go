package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format names an on-disk table encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

const utf8BOM = "\ufeff"

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q must end with .csv, .xlsx or .json", ErrUnsupportedFormat, path)
}

// ReadFile loads a table from a .csv, .xlsx or .json file. sheet selects
// the worksheet of a workbook; "" means the active one.
func ReadFile(path, sheet string) (*Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return ReadXLSX(path, sheet)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if format == FormatJSON {
		return ReadJSON(f)
	}
	return ReadCSV(f)
}

// ReadCSV reads a CSV document whose first record holds the column names.
// A leading UTF-8 byte order mark is skipped. Columns with an empty name
// are dropped.
func ReadCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(utf8BOM)); err == nil && string(lead) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	t := New()
	for _, h := range header {
		if h != "" {
			t.Headers = append(t.Headers, h)
		}
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		t.Append(rowFromRecord(header, rec))
	}
	return t, nil
}

// ReadXLSX reads the named (or active) worksheet of a workbook. The first
// row holds the column names.
func ReadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return New(), nil
	}

	header := records[0]
	t := New()
	for _, h := range header {
		if h != "" {
			t.Headers = append(t.Headers, h)
		}
	}
	for _, rec := range records[1:] {
		t.Append(rowFromRecord(header, rec))
	}
	return t, nil
}

// ReadJSON reads a JSON list of flat objects.
func ReadJSON(r io.Reader) (*Table, error) {
	var rows []*Row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("reading json: %w", err)
	}
	return FromRows(rows), nil
}

func rowFromRecord(header, rec []string) *Row {
	r := &Row{values: make(map[string]string, len(header))}
	for i, h := range header {
		if h == "" {
			continue
		}
		var v string
		if i < len(rec) {
			v = rec[i]
		}
		r.Set(h, v)
	}
	return r
}

// WriteFile writes t to path in the format given by its extension.
func WriteFile(path string, t *Table) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	return WriteFileAs(path, t, format)
}

// WriteFileAs writes t to path in format regardless of the extension.
func WriteFileAs(path string, t *Table, format Format) error {
	if format == FormatXLSX {
		return WriteXLSX(path, t)
	}

	var (
		buf bytes.Buffer
		err error
	)
	if format == FormatJSON {
		err = WriteJSON(&buf, t)
	} else {
		err = WriteCSV(&buf, t)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// WriteCSV writes t as UTF-8 CSV with a byte order mark so spreadsheet
// applications detect the encoding. Rows whose values are all empty are
// skipped.
func WriteCSV(w io.Writer, t *Table) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if r.IsBlank() {
			continue
		}
		if err := cw.Write(r.Project(t.Headers)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes t as an indented list of objects restricted to the
// table headers.
func WriteJSON(w io.Writer, t *Table) error {
	rows := make([]*Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		out := &Row{values: make(map[string]string, len(t.Headers))}
		for _, h := range t.Headers {
			out.Set(h, r.Value(h))
		}
		rows = append(rows, out)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteXLSX writes t to a new workbook with a bold, frozen header row.
func WriteXLSX(path string, t *Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Sheet1"
	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	for i, r := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := r.Project(t.Headers)
		cells := make([]any, len(values))
		for j, v := range values {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
