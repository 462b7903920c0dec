package handler

import (
	"log/slog"
	"net/http"

	notionSvc "sanctum/internal/domain/services/notion"
	"sanctum/internal/httputil"
)

// NotionHandler proxies page listing and rendering. The caller's
// integration token arrives in X-Notion-Token and is never stored.
type NotionHandler struct {
	importer notionSvc.Importer
	logger   *slog.Logger
}

// NewNotionHandler creates a new Notion handler
func NewNotionHandler(importer notionSvc.Importer, logger *slog.Logger) *NotionHandler {
	return &NotionHandler{
		importer: importer,
		logger:   logger,
	}
}

// SearchPages lists the caller's Notion pages, most recently edited first
// GET /api/notion/pages
func (h *NotionHandler) SearchPages(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(notionSvc.TokenHeader)
	if token == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing "+notionSvc.TokenHeader+" header")
		return
	}

	pages, err := h.importer.SearchPages(r.Context(), token)
	if err != nil {
		h.logger.Warn("notion search failed", "error", err)
		httputil.RespondError(w, http.StatusBadGateway, "notion search failed")
		return
	}

	httputil.RespondData(w, http.StatusOK, pages)
}

// PageMarkdown renders one Notion page as markdown
// GET /api/notion/pages/{id}/markdown
func (h *NotionHandler) PageMarkdown(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(notionSvc.TokenHeader)
	if token == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing "+notionSvc.TokenHeader+" header")
		return
	}

	pageID := r.PathValue("id")
	markdown, err := h.importer.PageMarkdown(r.Context(), token, pageID)
	if err != nil {
		h.logger.Warn("notion page fetch failed", "page_id", pageID, "error", err)
		httputil.RespondError(w, http.StatusBadGateway, "notion page fetch failed")
		return
	}

	httputil.RespondData(w, http.StatusOK, map[string]string{"markdown": markdown})
}
