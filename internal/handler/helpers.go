package handler

import (
	"errors"
	"net/http"

	"sanctum/internal/domain"
	"sanctum/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var (
		conflictErr *domain.ConflictError
		staleErr    *domain.StaleWriteError
		httpErr     domain.HTTPError
	)

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &staleErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, "stale_write", staleErr.Error(), map[string]interface{}{
			"node_id":        staleErr.NodeID,
			"stored_version": staleErr.StoredVersion,
		})
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, "conflict", conflictErr.Error(), map[string]interface{}{
			"resource_id": conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
