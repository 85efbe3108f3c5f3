package tabular

import (
	"bytes"
	"context"
	"fmt"

	"volumegen/internal/domain"
	"volumegen/internal/port"
)

// Options configures parser construction.
type Options struct {
	Format              domain.SourceFormat
	Delimiter           rune
	Encodings           []string
	DetectEncoding      bool
	DetectMinConfidence int
	LossyEncoding       string
	Sheet               string
	Debug               bool
}

// FormatFactory creates a TableParser for one source format.
type FormatFactory func(opts Options) (port.TableParser, error)

// registry of format factories.
var formats = map[domain.SourceFormat]FormatFactory{
	domain.SourceFormatCSV: func(opts Options) (port.TableParser, error) {
		return NewTextParser(opts)
	},
	domain.SourceFormatXLSX: func(opts Options) (port.TableParser, error) {
		return NewXLSXParser(opts.Sheet), nil
	},
	domain.SourceFormatAuto: func(opts Options) (port.TableParser, error) {
		text, err := NewTextParser(opts)
		if err != nil {
			return nil, err
		}
		return NewAutoParser(text, NewXLSXParser(opts.Sheet)), nil
	},
}

// NewParser creates a TableParser for opts.Format using the registered factory.
func NewParser(opts Options) (port.TableParser, error) {
	factory, ok := formats[opts.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, opts.Format)
	}
	return factory(opts)
}

// NewTextParser builds the encoding chain: the detected charset (if enabled),
// each configured encoding in order, then the lossy last resort (if set).
func NewTextParser(opts Options) (*FallbackParser, error) {
	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = ';'
	}
	candidates, err := LookupCandidates(opts.Encodings)
	if err != nil {
		return nil, err
	}

	var parsers []port.TableParser
	var names []string
	if opts.DetectEncoding {
		parsers = append(parsers, NewDetectingParser(delimiter, opts.DetectMinConfidence))
		names = append(names, "detected")
	}
	for _, c := range candidates {
		p := NewEncodingParser(c, delimiter)
		parsers = append(parsers, p)
		names = append(names, p.Name())
	}
	if opts.LossyEncoding != "" {
		c, err := LookupCandidate(opts.LossyEncoding)
		if err != nil {
			return nil, err
		}
		p := NewLossyParser(c, delimiter)
		parsers = append(parsers, p)
		names = append(names, p.Name())
	}
	if len(parsers) == 0 {
		return nil, fmt.Errorf("no text encodings configured")
	}
	return NewFallbackParser(parsers, names, opts.Debug), nil
}

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// AutoParser sniffs the container format and dispatches to the text or
// spreadsheet parser.
type AutoParser struct {
	text port.TableParser
	xlsx port.TableParser
}

// NewAutoParser creates an AutoParser.
func NewAutoParser(text, xlsx port.TableParser) *AutoParser {
	return &AutoParser{text: text, xlsx: xlsx}
}

func (a *AutoParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	switch SniffFormat(input.Data) {
	case domain.SourceFormatXLSX:
		return a.xlsx.Parse(ctx, input)
	case "xls":
		return nil, &ParseError{Source: input.Source, Attempts: []Attempt{{
			Name: "xls",
			Err:  fmt.Errorf("%w: legacy binary .xls workbook, export it as .xlsx or csv", domain.ErrUnsupportedFormat),
		}}}
	default:
		return a.text.Parse(ctx, input)
	}
}

// SniffFormat classifies data by its leading magic bytes.
func SniffFormat(data []byte) domain.SourceFormat {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return domain.SourceFormatXLSX
	case bytes.HasPrefix(data, oleMagic):
		return "xls"
	default:
		return domain.SourceFormatCSV
	}
}
