package notion

import "context"

// TokenHeader carries the caller's integration token on /api/notion requests
const TokenHeader = "X-Notion-Token"

// Page is a Notion page offered for import
type Page struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// ImportName is the document name an imported page receives
func (p Page) ImportName() string {
	return p.Icon + " " + p.Title + ".md"
}

// Importer reads pages from a Notion workspace. The integration token is
// supplied per call and never stored.
type Importer interface {
	// SearchPages lists pages the token can see, most recently edited first
	SearchPages(ctx context.Context, token string) ([]Page, error)

	// PageMarkdown renders the page's top-level blocks as markdown
	PageMarkdown(ctx context.Context, token, pageID string) (string, error)
}
