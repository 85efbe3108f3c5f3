package tabular

import (
	"context"
	"fmt"
	"strings"

	"volumegen/internal/domain"
	"volumegen/internal/port"
)

// EncodingParser parses delimited text under a single candidate encoding.
// It implements port.TableParser.
type EncodingParser struct {
	candidate Candidate
	delimiter rune
	lossy     bool
}

// NewEncodingParser creates a strict parser for one candidate.
func NewEncodingParser(c Candidate, delimiter rune) *EncodingParser {
	return &EncodingParser{candidate: c, delimiter: delimiter}
}

// NewLossyParser creates a parser that replaces invalid bytes instead of failing.
func NewLossyParser(c Candidate, delimiter rune) *EncodingParser {
	return &EncodingParser{candidate: c, delimiter: delimiter, lossy: true}
}

// Name identifies the attempt in diagnostics.
func (p *EncodingParser) Name() string {
	if p.lossy {
		return p.candidate.Name + " (lossy)"
	}
	return p.candidate.Name
}

func (p *EncodingParser) Parse(_ context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	var (
		frame   *domain.Frame
		skipped int
		err     error
	)
	if p.lossy {
		var text string
		text, err = DecodeLossy(input.Data, p.candidate)
		if err == nil {
			frame, skipped, err = ParseDelimited(text, p.delimiter)
		}
	} else {
		frame, skipped, err = TryParse(input.Data, p.candidate, p.delimiter)
	}
	if err != nil {
		return nil, err
	}
	return &port.ParseOutput{
		Frame:       frame,
		Format:      domain.SourceFormatCSV,
		Encoding:    p.Name(),
		SkippedRows: skipped,
	}, nil
}

// DetectingParser sniffs the charset with chardet and parses under it when
// the detector is confident enough and reports a Unicode encoding. Single-byte
// guesses are declined and left to the configured list.
// It implements port.TableParser.
type DetectingParser struct {
	delimiter     rune
	minConfidence int
}

// NewDetectingParser creates a parser driven by charset detection.
func NewDetectingParser(delimiter rune, minConfidence int) *DetectingParser {
	return &DetectingParser{delimiter: delimiter, minConfidence: minConfidence}
}

func (p *DetectingParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	det, err := DetectCharset(input.Data)
	if err != nil {
		return nil, err
	}
	if !unicodeCharset(det.Charset) {
		return nil, fmt.Errorf("%w: %s", errSingleByteGuess, det.Charset)
	}
	if det.Confidence < p.minConfidence {
		return nil, fmt.Errorf("%w: %s at %d%% (need %d%%)", errLowConfidence, det.Charset, det.Confidence, p.minConfidence)
	}
	c, err := LookupCandidate(det.Charset)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errNoDetectedDecoder, det.Charset)
	}
	out, err := NewEncodingParser(c, p.delimiter).Parse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("detected %s: %w", det.Charset, err)
	}
	out.Encoding = det.Charset + " (detected)"
	return out, nil
}

// unicodeCharset reports whether a chardet label names a UTF encoding.
func unicodeCharset(name string) bool {
	return strings.HasPrefix(strings.ToUpper(name), "UTF-")
}
