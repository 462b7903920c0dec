package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"sanctum/internal/config"
)

// ParseJSON decodes JSON from the request body into the given destination.
// The body is capped at config.MaxRequestBodySize.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// BearerToken returns the token of an "Authorization: Bearer" header, or ""
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
