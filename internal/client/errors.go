package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"sanctum/internal/domain"
)

// APIError is a non-2xx response. It unwraps to the matching domain
// sentinel so callers can use errors.Is(err, domain.ErrNotFound).
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server returned %d %s", e.Status, e.Title)
}

// Unwrap maps the status to a domain error
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		if e.Code == "stale_write" {
			return domain.ErrStale
		}
		return domain.ErrConflict
	default:
		return nil
	}
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return apiErr
	}
	if json.Unmarshal(body, apiErr) != nil {
		apiErr.Detail = string(body)
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
