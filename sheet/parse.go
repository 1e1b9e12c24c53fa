package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row is one CSV record keyed by header name.
type Row map[string]string

// Get returns the trimmed value of column, or "" when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// RowIssue describes a record the parser skipped.
type RowIssue struct {
	Line   int
	Reason string
}

// Parse reads a CSV document whose first record is the header. Blank lines are
// ignored. Records that fail to parse or whose width differs from the header
// are skipped and reported as issues rather than failing the whole document.
// Errors from the underlying reader are returned as is, wrapped.
func Parse(r io.Reader) ([]Row, []RowIssue, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, &ParseError{Err: errors.New("missing header row")}
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, nil, &ParseError{Err: fmt.Errorf("read header: %w", err)}
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header = cleanHeader(header)
	if !hasColumns(header) {
		return nil, nil, &ParseError{Err: errors.New("header row has no column names")}
	}

	rows := make([]Row, 0, 64)
	var issues []RowIssue
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				issues = append(issues, RowIssue{Line: pe.Line, Reason: pe.Err.Error()})
				continue
			}
			return nil, issues, fmt.Errorf("read body: %w", err)
		}
		if blank(record) {
			continue
		}
		if len(record) != len(header) {
			line, _ := cr.FieldPos(0)
			issues = append(issues, RowIssue{
				Line:   line,
				Reason: fmt.Sprintf("row has %d fields, header has %d", len(record), len(header)),
			})
			continue
		}
		row := make(Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			row[name] = record[i]
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 && len(issues) > 0 {
		return nil, issues, &ParseError{Skipped: len(issues)}
	}
	return rows, issues, nil
}

// cleanHeader trims cells and strips a UTF-8 byte order mark from the first one.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func hasColumns(header []string) bool {
	for _, h := range header {
		if h != "" {
			return true
		}
	}
	return false
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
