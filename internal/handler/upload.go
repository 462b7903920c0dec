package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"sanctum/internal/config"
	"sanctum/internal/httputil"
	"sanctum/internal/storage"
)

// UploadHandler is the binary side-channel for PDFs. It stores the bytes
// and returns a URL; it never touches the tree.
type UploadHandler struct {
	blobs  storage.BlobStore
	logger *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(blobs storage.BlobStore, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		blobs:  blobs,
		logger: logger,
	}
}

// Upload stores the multipart "file" field
// POST /api/upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "file exceeds the 50MB limit")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" {
		httputil.RespondError(w, http.StatusUnsupportedMediaType, "only PDF files can be uploaded")
		return
	}

	key := uuid.NewString() + ext
	url, err := h.blobs.Put(r.Context(), key, file, "application/pdf")
	if err != nil {
		h.logger.Error("blob put failed",
			"backend", h.blobs.Name(),
			"filename", header.Filename,
			"error", err,
		)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	h.logger.Info("file stored",
		"backend", h.blobs.Name(),
		"key", key,
		"size", header.Size,
	)
	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"url": url})
}
