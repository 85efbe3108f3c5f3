package tabular

import (
	"context"
	"log"

	"volumegen/internal/port"
)

// FallbackParser tries parsers in order and returns the first success.
// When every parser fails it returns a *ParseError listing each attempt.
// It implements port.TableParser.
type FallbackParser struct {
	parsers []port.TableParser
	names   []string
	debug   bool
}

// NewFallbackParser creates a FallbackParser from an ordered list of parsers and their names.
func NewFallbackParser(parsers []port.TableParser, names []string, debug bool) *FallbackParser {
	return &FallbackParser{
		parsers: parsers,
		names:   names,
		debug:   debug,
	}
}

// Names returns the attempt order.
func (f *FallbackParser) Names() []string {
	return f.names
}

func (f *FallbackParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	var attempts []Attempt

	for i, p := range f.parsers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := p.Parse(ctx, input)
		if err == nil {
			out.Attempts = append(attemptStrings(attempts), out.Attempts...)
			if len(attempts) > 0 {
				log.Printf("tabular.FallbackParser: parsed %s with %s after %d failed attempt(s)", input.Source, f.names[i], len(attempts))
			}
			return out, nil
		}

		if f.debug {
			log.Printf("tabular.FallbackParser: %s failed: %v", f.names[i], err)
		}
		attempts = append(attempts, Attempt{Name: f.names[i], Err: err})
	}

	return nil, &ParseError{Source: input.Source, Attempts: attempts}
}
