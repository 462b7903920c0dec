package httputil

import (
	"context"
	"net/http"

	"sanctum/internal/domain/models"
)

type claimsKey struct{}

// WithClaims attaches verified token claims to the request
func WithClaims(r *http.Request, claims *models.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims))
}

// ClaimsFrom returns the claims stored by the auth middleware, or nil when
// the server runs without auth
func ClaimsFrom(ctx context.Context) *models.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*models.Claims)
	return claims
}

// GetUserID returns the authenticated subject, or "" for anonymous requests
func GetUserID(r *http.Request) string {
	if claims := ClaimsFrom(r.Context()); claims != nil {
		return claims.UserID()
	}
	return ""
}
