package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/config"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	token, err := IssueToken(testSecret, "user-123", time.Hour)
	require.NoError(t, err)

	userID, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	expired, err := IssueToken(testSecret, "user-123", -time.Hour)
	require.NoError(t, err)

	wrongSecret, err := IssueToken("another-secret", "user-123", time.Hour)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": wrongSecret,
		"no subject":   noSubject,
		"no expiry":    noExpiry,
		"alg none":     unsigned,
		"garbage":      "not.a.token",
		"empty":        "",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTVerifier_UserIDClaimFallback(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "legacy-user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	userID, err := NewJWTVerifier(testSecret).Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "legacy-user", userID)
}

func TestSupabaseVerifier(t *testing.T) {
	v := &SupabaseVerifier{lookup: func(_ context.Context, token string) (string, error) {
		if token == "good" {
			return "3f1c2d4e-0000-4000-8000-000000000001", nil
		}
		return "", errors.New("invalid JWT")
	}}

	userID, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "3f1c2d4e-0000-4000-8000-000000000001", userID)

	_, err = v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewVerifier(t *testing.T) {
	v, err := NewVerifier(config.AuthConfig{Mode: "jwt", JWTSecret: testSecret})
	require.NoError(t, err)
	assert.IsType(t, &JWTVerifier{}, v)

	_, err = NewVerifier(config.AuthConfig{Mode: "jwt"})
	assert.Error(t, err)

	_, err = NewVerifier(config.AuthConfig{Mode: "supabase"})
	assert.Error(t, err)

	_, err = NewVerifier(config.AuthConfig{Mode: "oauth"})
	assert.Error(t, err)
}
