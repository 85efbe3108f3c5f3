package tabular

import (
	"errors"
	"fmt"
	"strings"

	"volumegen/internal/domain"
)

var (
	errEmptyDocument     = errors.New("document is empty")
	errSingleColumn      = errors.New("header has fewer than two columns (wrong delimiter or encoding?)")
	errAllRowsMalformed  = errors.New("every data row was malformed")
	errNotRepresentable  = errors.New("byte sequence is not valid in this encoding")
	errInvalidUTF8       = errors.New("invalid UTF-8 byte sequence")
	errLowConfidence     = errors.New("encoding detection confidence below threshold")
	errNoDetectedDecoder = errors.New("detected charset has no decoder")
	errSingleByteGuess   = errors.New("detected single-byte charset left to the configured list")
)

// Attempt records one failed parse strategy.
type Attempt struct {
	Name string
	Err  error
}

func (a Attempt) String() string {
	return fmt.Sprintf("%s: %v", a.Name, a.Err)
}

// ParseError indicates that no parse strategy produced a usable table.
// It lists every attempt so upstream data drift can be diagnosed.
type ParseError struct {
	Source   string
	Attempts []Attempt
}

func (e *ParseError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.String()
	}
	return fmt.Sprintf("parsing %s failed after %d attempt(s): %s", e.Source, len(e.Attempts), strings.Join(parts, "; "))
}

// Is reports domain.ErrParse so callers can classify the failure.
func (e *ParseError) Is(target error) bool {
	return target == domain.ErrParse
}

// Unwrap exposes each attempt's cause.
func (e *ParseError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// attemptStrings renders attempts in "name: reason" form.
func attemptStrings(attempts []Attempt) []string {
	if len(attempts) == 0 {
		return nil
	}
	out := make([]string, len(attempts))
	for i, a := range attempts {
		out[i] = a.String()
	}
	return out
}
