package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"

	"sanctum/internal/config"
	notionSvc "sanctum/internal/domain/services/notion"
)

// notionAPI talks to api.notion.com through jomei/notionapi. A client is
// built per call because the token arrives with each request.
type notionAPI struct{}

func newNotionAPI() api { return notionAPI{} }

func (notionAPI) search(ctx context.Context, token, cursor string) ([]notionSvc.Page, pageCursor, error) {
	client := notionapi.NewClient(notionapi.Token(token))

	resp, err := client.Search.Do(ctx, &notionapi.SearchRequest{
		Filter: notionapi.SearchFilter{
			Property: "object",
			Value:    "page",
		},
		Sort: &notionapi.SortObject{
			Direction: notionapi.SortOrderDESC,
			Timestamp: notionapi.TimestampLastEdited,
		},
		StartCursor: notionapi.Cursor(cursor),
		PageSize:    config.NotionPageSize,
	})
	if err != nil {
		return nil, pageCursor{}, err
	}

	pages := make([]notionSvc.Page, 0, len(resp.Results))
	for _, obj := range resp.Results {
		page, ok := obj.(*notionapi.Page)
		if !ok {
			continue
		}
		pages = append(pages, notionSvc.Page{
			ID:    string(page.ID),
			Title: pageTitle(titleOf(page)),
			Icon:  iconOf(page),
		})
	}

	return pages, pageCursor{next: string(resp.NextCursor), hasMore: resp.HasMore}, nil
}

func (notionAPI) children(ctx context.Context, token, blockID, cursor string) ([]Block, pageCursor, error) {
	client := notionapi.NewClient(notionapi.Token(token))

	resp, err := client.Block.GetChildren(ctx, notionapi.BlockID(blockID), &notionapi.Pagination{
		StartCursor: notionapi.Cursor(cursor),
		PageSize:    config.NotionPageSize,
	})
	if err != nil {
		return nil, pageCursor{}, err
	}

	blocks := make([]Block, 0, len(resp.Results))
	for _, b := range resp.Results {
		if block, ok := fromAPIBlock(b); ok {
			blocks = append(blocks, block)
		}
	}

	return blocks, pageCursor{next: string(notionapi.Cursor(resp.NextCursor)), hasMore: resp.HasMore}, nil
}

func titleOf(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			return plainText(tp.Title)
		}
	}
	return ""
}

func iconOf(page *notionapi.Page) string {
	if page.Icon == nil {
		return pageIcon("", false)
	}
	emoji := ""
	if page.Icon.Emoji != nil {
		emoji = string(*page.Icon.Emoji)
	}
	return pageIcon(emoji, page.Icon.External != nil)
}

func fromAPIBlock(b notionapi.Block) (Block, bool) {
	switch v := b.(type) {
	case *notionapi.Heading1Block:
		return Block{Type: BlockHeading1, Text: plainText(v.Heading1.RichText)}, true
	case *notionapi.Heading2Block:
		return Block{Type: BlockHeading2, Text: plainText(v.Heading2.RichText)}, true
	case *notionapi.Heading3Block:
		return Block{Type: BlockHeading3, Text: plainText(v.Heading3.RichText)}, true
	case *notionapi.ParagraphBlock:
		return Block{Type: BlockParagraph, Text: plainText(v.Paragraph.RichText)}, true
	case *notionapi.BulletedListItemBlock:
		return Block{Type: BlockBulleted, Text: plainText(v.BulletedListItem.RichText)}, true
	case *notionapi.NumberedListItemBlock:
		return Block{Type: BlockNumbered, Text: plainText(v.NumberedListItem.RichText)}, true
	case *notionapi.ToDoBlock:
		return Block{Type: BlockToDo, Text: plainText(v.ToDo.RichText), Checked: v.ToDo.Checked}, true
	case *notionapi.QuoteBlock:
		return Block{Type: BlockQuote, Text: plainText(v.Quote.RichText)}, true
	case *notionapi.CodeBlock:
		return Block{Type: BlockCode, Text: plainText(v.Code.RichText), Language: v.Code.Language}, true
	default:
		return Block{}, false
	}
}

func plainText(rt []notionapi.RichText) string {
	var sb strings.Builder
	for _, t := range rt {
		sb.WriteString(t.PlainText)
	}
	return sb.String()
}
