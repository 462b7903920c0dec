package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the subset of Supabase Auth JWT claims the library checks.
// See: https://supabase.com/docs/guides/auth/jwts
type Claims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"` // "authenticated" or "anon"
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// UserID returns the subject claim
func (c *Claims) UserID() string {
	return c.Subject
}
