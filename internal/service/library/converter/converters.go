package converter

import (
	"context"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"

	librarySvc "sanctum/internal/domain/services/library"
)

// passthrough stores the file text unchanged. Markdown and plain text are
// both valid document bodies.
type passthrough struct {
	name string
	exts []string
}

// NewMarkdownConverter returns the converter for .md files
func NewMarkdownConverter() librarySvc.ContentConverter {
	return &passthrough{name: "markdown", exts: []string{".md", ".markdown"}}
}

// NewTextConverter returns the converter for plain text files
func NewTextConverter() librarySvc.ContentConverter {
	return &passthrough{name: "plaintext", exts: []string{".txt", ".text"}}
}

func (c *passthrough) Convert(ctx context.Context, input []byte) (string, error) {
	return string(input), nil
}

func (c *passthrough) SupportedExtensions() []string { return c.exts }

func (c *passthrough) Name() string { return c.name }

// htmlConverter sanitizes HTML with a UGC policy, then renders it as markdown.
type htmlConverter struct {
	policy    *bluemonday.Policy
	converter *md.Converter
}

// NewHTMLConverter returns the converter for saved web pages and exported HTML
func NewHTMLConverter() librarySvc.ContentConverter {
	return &htmlConverter{
		policy:    bluemonday.UGCPolicy(),
		converter: md.NewConverter("", true, nil),
	}
}

func (c *htmlConverter) Convert(ctx context.Context, input []byte) (string, error) {
	sanitized := c.policy.SanitizeBytes(input)

	markdown, err := c.converter.ConvertBytes(sanitized)
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return string(markdown), nil
}

func (c *htmlConverter) SupportedExtensions() []string { return []string{".html", ".htm"} }

func (c *htmlConverter) Name() string { return "html" }
