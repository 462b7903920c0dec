package ai

import "context"

// DocType tells the librarian what kind of document text it is reading
type DocType string

const (
	DocTypeMarkdown DocType = "md"
	DocTypePDF      DocType = "pdf"
)

// Librarian answers questions about documents. Both calls always return prose:
// provider failures and a missing provider are reported as fixed messages.
type Librarian interface {
	Summarize(ctx context.Context, content string, docType DocType) string
	Ask(ctx context.Context, question, contextText string) string
}

// Generator is a single-shot text completion backend
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Name() string
}
