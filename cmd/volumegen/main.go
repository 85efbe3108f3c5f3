// Command volumegen downloads the product catalog, computes a volume for every
// product and writes the result as a JSON document.
//
// Usage: CSV_URL=https://... volumegen --output public/volumes.json
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"volumegen/internal/config"
	"volumegen/internal/domain"
	"volumegen/internal/fetch"
)

// Process exit codes, one per failure class.
const (
	exitOK      = 0
	exitFailure = 1
	exitConfig  = 2
	exitFetch   = 3
	exitParse   = 4
	exitOutput  = 5
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	cancel()
	if err != nil {
		log.Printf("ERROR: %v", err)
	}
	os.Exit(exitCode(err))
}

// configError marks failures that happen before any data is fetched.
type configError struct {
	err error
}

func (e *configError) Error() string {
	return "configuration: " + e.err.Error()
}

func (e *configError) Unwrap() error {
	return e.err
}

func exitCode(err error) int {
	var (
		cfgErr   *configError
		validErr *config.ValidationError
		fetchErr *fetch.Error
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cfgErr), errors.As(err, &validErr), errors.Is(err, domain.ErrMissingSourceURL):
		return exitConfig
	case errors.As(err, &fetchErr):
		return exitFetch
	case errors.Is(err, domain.ErrParse):
		return exitParse
	case errors.Is(err, domain.ErrOutput):
		return exitOutput
	default:
		return exitFailure
	}
}
