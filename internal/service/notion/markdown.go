package notion

import (
	"fmt"
	"strings"
)

// Block types the importer understands. Anything else is dropped.
const (
	BlockHeading1   = "heading_1"
	BlockHeading2   = "heading_2"
	BlockHeading3   = "heading_3"
	BlockParagraph  = "paragraph"
	BlockBulleted   = "bulleted_list_item"
	BlockNumbered   = "numbered_list_item"
	BlockToDo       = "to_do"
	BlockQuote      = "quote"
	BlockCode       = "code"
	defaultTitle    = "Untitled"
	defaultIcon     = "📄"
	externalIcon    = "🖼️"
)

// Block is the flattened part of a Notion block that survives import
type Block struct {
	Type     string
	Text     string
	Checked  bool
	Language string
}

// RenderMarkdown renders blocks in order, separated by a blank line
func RenderMarkdown(blocks []Block) string {
	var parts []string
	for _, b := range blocks {
		if s, ok := renderBlock(b); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func renderBlock(b Block) (string, bool) {
	switch b.Type {
	case BlockHeading1:
		return "# " + b.Text + "\n", true
	case BlockHeading2:
		return "## " + b.Text + "\n", true
	case BlockHeading3:
		return "### " + b.Text + "\n", true
	case BlockParagraph:
		return b.Text + "\n", true
	case BlockBulleted:
		return "- " + b.Text + "\n", true
	case BlockNumbered:
		return "1. " + b.Text + "\n", true
	case BlockToDo:
		mark := " "
		if b.Checked {
			mark = "x"
		}
		return fmt.Sprintf("- [%s] %s\n", mark, b.Text), true
	case BlockQuote:
		return "> " + b.Text + "\n", true
	case BlockCode:
		return fmt.Sprintf("```%s\n%s\n```\n", b.Language, b.Text), true
	default:
		return "", false
	}
}

// pageTitle falls back to "Untitled" for pages without a title
func pageTitle(title string) string {
	if title == "" {
		return defaultTitle
	}
	return title
}

// pageIcon maps a page icon to a single glyph: emoji as is, external
// images to a generic picture, and the document glyph otherwise.
func pageIcon(emoji string, external bool) string {
	switch {
	case emoji != "":
		return emoji
	case external:
		return externalIcon
	default:
		return defaultIcon
	}
}
