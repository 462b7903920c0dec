package handler

import (
	"log/slog"
	"net/http"
	"strings"

	aiSvc "sanctum/internal/domain/services/ai"
	"sanctum/internal/httputil"
)

// AIHandler exposes the librarian. Replies are always 200 with prose;
// provider failures come back as fallback text.
type AIHandler struct {
	librarian aiSvc.Librarian
	logger    *slog.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(librarian aiSvc.Librarian, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		librarian: librarian,
		logger:    logger,
	}
}

// SummarizeRequest is the body of POST /api/ai/summarize
type SummarizeRequest struct {
	Content string        `json:"content"`
	DocType aiSvc.DocType `json:"docType"`
}

// AskRequest is the body of POST /api/ai/ask
type AskRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// Summarize
// POST /api/ai/summarize
func (h *AIHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DocType == "" {
		req.DocType = aiSvc.DocTypeMarkdown
	}
	if req.DocType != aiSvc.DocTypeMarkdown && req.DocType != aiSvc.DocTypePDF {
		httputil.RespondError(w, http.StatusBadRequest, "docType must be md or pdf")
		return
	}

	summary := h.librarian.Summarize(r.Context(), req.Content, req.DocType)
	httputil.RespondData(w, http.StatusOK, map[string]string{"text": summary})
}

// Ask
// POST /api/ai/ask
func (h *AIHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		httputil.RespondError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer := h.librarian.Ask(r.Context(), req.Question, req.Context)
	httputil.RespondData(w, http.StatusOK, map[string]string{"text": answer})
}
