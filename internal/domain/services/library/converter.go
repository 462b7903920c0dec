package library

import "context"

// ContentConverter turns an imported file into markdown for a MARKDOWN node.
// Implementations are stateless and safe for concurrent use.
type ContentConverter interface {
	Convert(ctx context.Context, input []byte) (markdown string, err error)

	// SupportedExtensions lists handled extensions with the leading dot
	SupportedExtensions() []string

	Name() string
}
