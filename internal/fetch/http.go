package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"volumegen/internal/domain"
)

// maxErrorBody caps how much of a failed response body ends up in the error.
const maxErrorBody = 512

// HTTPFetcher downloads the document with a single GET request.
// It implements port.Fetcher.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// NewHTTPFetcherWithClient creates an HTTPFetcher on a caller-provided client.
func NewHTTPFetcherWithClient(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, source string) (*domain.RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, http.NoBody)
	if err != nil {
		return nil, &Error{Source: source, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "text/csv, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, */*")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{
			Source:     source,
			StatusCode: resp.StatusCode,
			Err:        errors.New(msg),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Source: source, Err: fmt.Errorf("reading response: %w", err)}
	}

	log.Printf("fetch.HTTPFetcher: downloaded %d bytes from %s in %s", len(body), source, time.Since(start).Round(time.Millisecond))
	return &domain.RawDocument{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Source:      source,
	}, nil
}
