package notion

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	notionSvc "sanctum/internal/domain/services/notion"
)

// pageCursor is one page of a paginated listing
type pageCursor struct {
	next    string
	hasMore bool
}

// api is the subset of the Notion REST API the importer needs
type api interface {
	search(ctx context.Context, token, cursor string) ([]notionSvc.Page, pageCursor, error)
	children(ctx context.Context, token, blockID, cursor string) ([]Block, pageCursor, error)
}

// maxPages stops runaway pagination on a misbehaving API
const maxPages = 1000

// Notion allows an average of three requests per second per integration
const (
	requestsPerSecond = 3
	requestBurst      = 3
)

// service implements notionSvc.Importer
type service struct {
	api     api
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewImporter creates an importer backed by the Notion REST API
func NewImporter(logger *slog.Logger) notionSvc.Importer {
	return &service{
		api:     newNotionAPI(),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		logger:  logger,
	}
}

func (s *service) SearchPages(ctx context.Context, token string) ([]notionSvc.Page, error) {
	if token == "" {
		return nil, fmt.Errorf("notion token is required")
	}

	var pages []notionSvc.Page
	cursor := ""
	for i := 0; i < maxPages; i++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		batch, next, err := s.api.search(ctx, token, cursor)
		if err != nil {
			return nil, fmt.Errorf("search notion pages: %w", err)
		}
		pages = append(pages, batch...)
		if !next.hasMore || next.next == "" {
			break
		}
		cursor = next.next
	}

	s.logger.Debug("notion search", "pages", len(pages))
	return pages, nil
}

// PageMarkdown follows next_cursor until every top-level block is read
func (s *service) PageMarkdown(ctx context.Context, token, pageID string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("notion token is required")
	}

	var blocks []Block
	cursor := ""
	for i := 0; i < maxPages; i++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
		batch, next, err := s.api.children(ctx, token, pageID, cursor)
		if err != nil {
			return "", fmt.Errorf("fetch notion page %s: %w", pageID, err)
		}
		blocks = append(blocks, batch...)
		if !next.hasMore || next.next == "" {
			break
		}
		cursor = next.next
	}

	s.logger.Debug("notion page fetched", "page_id", pageID, "blocks", len(blocks))
	return RenderMarkdown(blocks), nil
}
