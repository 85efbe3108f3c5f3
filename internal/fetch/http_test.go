package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volumegen/internal/fetch"
)

func TestHTTPFetcher_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("N\u00e1zev;V\u00fd\u0161ka\nShelf;30,5\n"))
	}))
	defer server.Close()

	doc, err := fetch.NewHTTPFetcher(5*time.Second).Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", doc.ContentType)
	assert.Equal(t, server.URL, doc.Source)
	assert.Equal(t, "N\u00e1zev;V\u00fd\u0161ka\nShelf;30,5\n", string(doc.Body))
}

func TestHTTPFetcher_Non2xxIsFetchError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"forbidden", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer server.Close()

			doc, err := fetch.NewHTTPFetcher(5*time.Second).Fetch(context.Background(), server.URL)
			assert.Nil(t, doc)

			var fErr *fetch.Error
			require.True(t, errors.As(err, &fErr))
			assert.Equal(t, tt.status, fErr.StatusCode)
			assert.Equal(t, server.URL, fErr.Source)
		})
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	_, err := fetch.NewHTTPFetcher(50*time.Millisecond).Fetch(context.Background(), server.URL)

	var fErr *fetch.Error
	require.True(t, errors.As(err, &fErr))
	assert.Zero(t, fErr.StatusCode)
}

func TestHTTPFetcher_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := fetch.NewHTTPFetcher(time.Second).Fetch(context.Background(), url)

	var fErr *fetch.Error
	require.True(t, errors.As(err, &fErr))
	assert.Zero(t, fErr.StatusCode)
	assert.NotNil(t, fErr.Unwrap())
}
