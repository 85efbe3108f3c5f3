// Package fetch retrieves the raw catalog document over HTTP, from object
// storage or from the local filesystem.
package fetch

import "fmt"

// Error reports a failed retrieval. StatusCode is set only for HTTP responses
// outside the 2xx range.
type Error struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
