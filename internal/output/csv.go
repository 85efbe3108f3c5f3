package output

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"volumegen/internal/domain"
)

// BOM is the UTF-8 byte order mark; Excel on Windows needs it to detect UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions controls the locale of the CSV export.
type CSVOptions struct {
	Delimiter rune
	Decimal   rune
}

// CSVWriter wraps csv.Writer for exporting product records.
type CSVWriter struct {
	csv        *csv.Writer
	projection domain.Projection
	decimal    rune
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer, projection domain.Projection, opts CSVOptions) *CSVWriter {
	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}
	decimal := opts.Decimal
	if decimal == 0 {
		decimal = '.'
	}
	return &CSVWriter{csv: cw, projection: projection, decimal: decimal}
}

// WriteHeader writes the header row. The full projection takes its column
// names from sample, which should be the first record.
func (w *CSVWriter) WriteHeader(sample *domain.ProductRecord) error {
	header := []string{"name", volumeKey}
	if w.projection == domain.ProjectionFull {
		header = header[:0]
		if sample != nil {
			for _, f := range sample.Fields {
				if f.Name != volumeKey {
					header = append(header, f.Name)
				}
			}
		}
		header = append(header, volumeKey)
	}
	return w.csv.Write(header)
}

// WriteRecords converts records to rows and writes them.
func (w *CSVWriter) WriteRecords(records []domain.ProductRecord) error {
	for i := range records {
		if err := w.csv.Write(w.recordToRow(&records[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

func (w *CSVWriter) recordToRow(rec *domain.ProductRecord) []string {
	if w.projection != domain.ProjectionFull {
		return []string{rec.Name, w.formatVolume(rec.Volume)}
	}
	row := make([]string, 0, len(rec.Fields)+1)
	for _, f := range rec.Fields {
		if f.Name != volumeKey {
			row = append(row, f.Value)
		}
	}
	return append(row, w.formatVolume(rec.Volume))
}

// formatVolume renders v with the configured decimal mark; nil is empty.
func (w *CSVWriter) formatVolume(v *float64) string {
	if v == nil {
		return ""
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if w.decimal != '.' {
		s = strings.Replace(s, ".", string(w.decimal), 1)
	}
	return s
}

// EncodeCSV renders records as a BOM-prefixed CSV document.
func EncodeCSV(records []domain.ProductRecord, projection domain.Projection, opts CSVOptions) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(BOM)

	w := NewCSVWriter(&buf, projection, opts)
	var sample *domain.ProductRecord
	if len(records) > 0 {
		sample = &records[0]
	}
	if err := w.WriteHeader(sample); err != nil {
		return nil, err
	}
	if err := w.WriteRecords(records); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
