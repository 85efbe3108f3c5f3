package port

import (
	"context"

	"volumegen/internal/domain"
)

// ParseInput carries the raw bytes to interpret as a table.
type ParseInput struct {
	Data        []byte
	Source      string
	ContentType string
}

// ParseOutput contains the parsed frame and diagnostics about how it was produced.
type ParseOutput struct {
	Frame       *domain.Frame
	Format      domain.SourceFormat
	Encoding    string   // empty for spreadsheet input
	SkippedRows int      // malformed rows discarded during parsing
	Attempts    []string // failed attempts preceding the successful one, "name: reason"
}

// TableParser turns raw bytes into a Frame.
type TableParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
