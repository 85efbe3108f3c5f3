package port

import "context"

// OutputSink receives the fully encoded output document.
// Implementations must write the document as a whole, never partially.
type OutputSink interface {
	Name() string
	Write(ctx context.Context, data []byte) error
}
