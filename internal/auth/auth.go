// Package auth resolves bearer tokens to user ids.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/therealutkarshpriyadarshi/tubenotes/internal/config"
)

// ErrInvalidToken is returned for a missing, malformed or expired token
var ErrInvalidToken = errors.New("invalid or expired token")

// Verifier resolves a bearer token to the id of the user it was issued to
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// NewVerifier builds the verifier selected by cfg.Mode
func NewVerifier(cfg config.AuthConfig) (Verifier, error) {
	switch cfg.Mode {
	case "", "jwt":
		if cfg.JWTSecret == "" {
			return nil, errors.New("auth.jwtSecret is required in jwt mode")
		}
		return NewJWTVerifier(cfg.JWTSecret), nil
	case "supabase":
		return NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
