package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"volumegen/internal/domain"
	"volumegen/internal/port"
)

// Router dispatches a source to the fetcher registered for its URL scheme.
// Sources without a scheme are treated as filesystem paths.
// It implements port.Fetcher.
type Router struct {
	fetchers map[string]port.Fetcher
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{fetchers: make(map[string]port.Fetcher)}
}

// Register sets the fetcher for one or more schemes.
func (r *Router) Register(f port.Fetcher, schemes ...string) *Router {
	for _, s := range schemes {
		r.fetchers[strings.ToLower(s)] = f
	}
	return r
}

func (r *Router) Fetch(ctx context.Context, source string) (*domain.RawDocument, error) {
	scheme := Scheme(source)
	f, ok := r.fetchers[scheme]
	if !ok {
		return nil, &Error{Source: source, Err: fmt.Errorf("%w: %q", domain.ErrUnsupportedScheme, scheme)}
	}
	return f.Fetch(ctx, source)
}

// Scheme returns the lowercased URL scheme of source, or "file" when it has
// none. Windows drive letters are not mistaken for schemes.
func Scheme(source string) string {
	u, err := url.Parse(source)
	if err != nil || len(u.Scheme) <= 1 {
		return "file"
	}
	return strings.ToLower(u.Scheme)
}
