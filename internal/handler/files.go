package handler

import (
	"log/slog"
	"net/http"

	models "sanctum/internal/domain/models/library"
	librarySvc "sanctum/internal/domain/services/library"
	"sanctum/internal/httputil"
)

// FileHandler serves the library tree over /api/files
type FileHandler struct {
	nodeService librarySvc.NodeService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(nodeService librarySvc.NodeService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		nodeService: nodeService,
		logger:      logger,
	}
}

// ListFiles returns the whole tree keyed by id
// GET /api/files
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	fs, err := h.nodeService.ListFileSystem(r.Context())
	if err != nil {
		h.logger.Error("list files failed", "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, fs)
}

// CreateFile stores a new node
// POST /api/files
func (h *FileHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req librarySvc.CreateNodeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	node, err := h.nodeService.CreateNode(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondData(w, http.StatusCreated, node)
}

// UpdateFile applies a partial update
// PUT /api/files/{id}
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file id is required")
		return
	}

	var patch models.NodePatch
	if err := httputil.ParseJSON(w, r, &patch); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	node, err := h.nodeService.UpdateNode(r.Context(), id, &patch)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, node)
}

// DeleteFile removes a node and everything under it
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	changes, err := h.nodeService.DeleteNode(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondDeleted(w, changes)
}

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
