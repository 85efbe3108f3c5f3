package fetch

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"volumegen/internal/domain"
	"volumegen/internal/port"
)

// PersistingFetcher saves a copy of every fetched document to a local path
// before handing it on. Write failures are logged and never fail the fetch.
// It implements port.Fetcher.
type PersistingFetcher struct {
	next port.Fetcher
	path string
}

// NewPersistingFetcher wraps next. An empty path disables persistence and
// returns next unchanged.
func NewPersistingFetcher(next port.Fetcher, path string) port.Fetcher {
	if path == "" {
		return next
	}
	return &PersistingFetcher{next: next, path: path}
}

func (f *PersistingFetcher) Fetch(ctx context.Context, source string) (*domain.RawDocument, error) {
	doc, err := f.next.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			log.Printf("fetch.PersistingFetcher: WARN: creating %s: %v", dir, mkErr)
			return doc, nil
		}
	}
	if wErr := os.WriteFile(f.path, doc.Body, 0o644); wErr != nil {
		log.Printf("fetch.PersistingFetcher: WARN: saving raw copy to %s: %v", f.path, wErr)
		return doc, nil
	}
	log.Printf("fetch.PersistingFetcher: saved raw copy to %s", f.path)
	return doc, nil
}
