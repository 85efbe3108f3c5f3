package tabular

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"volumegen/internal/domain"
	"volumegen/internal/port"
)

// XLSXParser reads one worksheet of an Office Open XML workbook.
// Container failures are fatal; there is no encoding fallback.
type XLSXParser struct {
	sheet string
}

// NewXLSXParser creates a parser for the named sheet, or the first sheet when empty.
func NewXLSXParser(sheet string) *XLSXParser {
	return &XLSXParser{sheet: sheet}
}

func (p *XLSXParser) Parse(_ context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	fail := func(err error) error {
		return &ParseError{Source: input.Source, Attempts: []Attempt{{Name: "xlsx", Err: err}}}
	}

	f, err := excelize.OpenReader(bytes.NewReader(input.Data))
	if err != nil {
		return nil, fail(fmt.Errorf("open workbook: %w", err))
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fail(fmt.Errorf("workbook has no sheets"))
	}
	sheet := p.sheet
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fail(fmt.Errorf("sheet %q not found (have %s)", sheet, strings.Join(sheets, ", ")))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fail(fmt.Errorf("read sheet %q: %w", sheet, err))
	}

	frame, skipped, err := frameFromRows(rows)
	if err != nil {
		return nil, fail(fmt.Errorf("sheet %q: %w", sheet, err))
	}
	return &port.ParseOutput{
		Frame:       frame,
		Format:      domain.SourceFormatXLSX,
		SkippedRows: skipped,
	}, nil
}

// frameFromRows builds a Frame from ragged worksheet rows. The first non-empty
// row is the header. Short rows are padded; rows carrying values beyond the
// header are skipped.
func frameFromRows(rows [][]string) (*domain.Frame, int, error) {
	start := -1
	for i, row := range rows {
		if !blankRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, 0, errEmptyDocument
	}

	header := rows[start]
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}
	columns := normalizeColumns(header)
	if len(columns) < 2 {
		return nil, 0, errSingleColumn
	}

	var out [][]string
	skipped := 0
	for _, row := range rows[start+1:] {
		if blankRow(row) {
			continue
		}
		if len(row) > len(columns) && !blankRow(row[len(columns):]) {
			skipped++
			continue
		}
		cells := make([]string, len(columns))
		for i := range cells {
			if i < len(row) {
				cells[i] = strings.TrimSpace(row[i])
			}
		}
		out = append(out, cells)
	}

	if len(out) == 0 && skipped > 0 {
		return nil, skipped, errAllRowsMalformed
	}
	return &domain.Frame{Columns: columns, Rows: out}, skipped, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
