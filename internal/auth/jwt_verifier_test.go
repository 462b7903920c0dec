package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctum/internal/domain"
	"sanctum/internal/domain/models"
)

func TestVerifyToken(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	other, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	verifier := newVerifier(func(*jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	sign := func(signer *ecdsa.PrivateKey, claims models.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(signer)
		require.NoError(t, err)
		return s
	}
	valid := func() models.Claims {
		return models.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: "authenticated",
		}
	}

	t.Run("valid", func(t *testing.T) {
		claims, err := verifier.VerifyToken(sign(key, valid()))
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID())
	})

	tests := []struct {
		name  string
		token func() string
	}{
		{"expired", func() string {
			c := valid()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
			return sign(key, c)
		}},
		{"wrong key", func() string { return sign(other, valid()) }},
		{"anon role", func() string {
			c := valid()
			c.Role = "anon"
			return sign(key, c)
		}},
		{"no subject", func() string {
			c := valid()
			c.Subject = ""
			return sign(key, c)
		}},
		{"hmac algorithm", func() string {
			s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, valid()).SignedString([]byte("secret"))
			require.NoError(t, err)
			return s
		}},
		{"garbage", func() string { return "not.a.jwt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.VerifyToken(tt.token())
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
