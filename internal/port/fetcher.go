package port

import (
	"context"

	"volumegen/internal/domain"
)

// Fetcher retrieves the raw catalog document from a source URL.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*domain.RawDocument, error)
}
