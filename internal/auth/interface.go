// Package auth verifies bearer tokens for the optional authenticated mode.
package auth

import "sanctum/internal/domain/models"

// JWTVerifier validates bearer tokens
type JWTVerifier interface {
	// VerifyToken returns the claims of a valid, signed, unexpired token
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier
	Close() error
}
