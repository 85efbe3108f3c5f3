package fetch

import (
	"context"
	"log"
	"net/url"
	"os"
	"strings"

	"volumegen/internal/domain"
)

// FileFetcher reads file:// URLs and bare filesystem paths.
// It implements port.Fetcher.
type FileFetcher struct{}

// NewFileFetcher creates a FileFetcher.
func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

func (f *FileFetcher) Fetch(ctx context.Context, source string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Source: source, Err: err}
	}

	path := source
	if strings.HasPrefix(source, "file://") {
		u, err := url.Parse(source)
		if err != nil {
			return nil, &Error{Source: source, Err: err}
		}
		path = u.Path
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Source: source, Err: err}
	}

	log.Printf("fetch.FileFetcher: read %d bytes from %s", len(data), path)
	return &domain.RawDocument{Body: data, Source: source}, nil
}
