package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"volumegen/internal/domain"
)

// ParseDelimited parses decoded text into a Frame. Rows whose field count
// differs from the header, and rows with quote errors, are skipped and counted.
func ParseDelimited(text string, delimiter rune) (*domain.Frame, int, error) {
	if strings.TrimSpace(strings.TrimPrefix(text, "\uFEFF")) == "" {
		return nil, 0, errEmptyDocument
	}

	r := newReader(strings.NewReader(text), delimiter)
	header, err := r.Read()
	if err == io.EOF {
		return nil, 0, errEmptyDocument
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reading header: %w", err)
	}
	columns := normalizeColumns(header)
	if len(columns) < 2 {
		return nil, 0, errSingleColumn
	}
	body := text[r.InputOffset():]
	r.FieldsPerRecord = len(columns)

	rows, skipped, runaway, err := readRows(r)
	if err != nil {
		return nil, 0, err
	}
	if runaway {
		// An unbalanced quote joined several lines into one bad record.
		rows, skipped = readLines(body, delimiter, len(columns))
	}

	if len(rows) == 0 && skipped > 0 {
		return nil, skipped, errAllRowsMalformed
	}
	return &domain.Frame{Columns: columns, Rows: rows}, skipped, nil
}

func newReader(r io.Reader, delimiter rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return cr
}

// readRows reads the remaining records. runaway is set when a record with the
// wrong field count spans more than one line.
func readRows(r *csv.Reader) ([][]string, int, bool, error) {
	var rows [][]string
	skipped := 0
	runaway := false
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return rows, skipped, runaway, nil
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, 0, false, fmt.Errorf("reading row: %w", err)
			}
			skipped++
			if errors.Is(err, csv.ErrFieldCount) && strings.Contains(strings.Join(rec, ""), "\n") {
				runaway = true
			}
			continue
		}
		rows = append(rows, trimCells(rec))
	}
}

// readLines parses body one physical line at a time, so a broken quote costs
// only its own line.
func readLines(body string, delimiter rune, width int) ([][]string, int) {
	var rows [][]string
	skipped := 0
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := newReader(strings.NewReader(line), delimiter).Read()
		if err != nil || len(rec) != width {
			skipped++
			continue
		}
		rows = append(rows, trimCells(rec))
	}
	return rows, skipped
}

func trimCells(rec []string) []string {
	row := make([]string, len(rec))
	for i, cell := range rec {
		row[i] = strings.TrimSpace(cell)
	}
	return row
}

// TryParse decodes data strictly with one candidate encoding and parses it
// as delimited text. It has no side effects.
func TryParse(data []byte, c Candidate, delimiter rune) (*domain.Frame, int, error) {
	text, err := DecodeStrict(data, c)
	if err != nil {
		return nil, 0, err
	}
	return ParseDelimited(text, delimiter)
}

// normalizeColumns trims header cells, names empty ones by position and
// suffixes repeated names (Width, Width_2, ...) so every column is unique.
func normalizeColumns(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\uFEFF")
		h = strings.Trim(strings.TrimSpace(h), `"'`)
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		name := h
		for n := 2; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		seen[name] = true
		columns[i] = name
	}
	return columns
}
