package auth

import (
	"context"
	"errors"
	"fmt"

	supabase "github.com/supabase-community/supabase-go"
)

// userLookup resolves a token through the identity provider
type userLookup func(ctx context.Context, token string) (string, error)

// SupabaseVerifier asks Supabase Auth who a token belongs to
type SupabaseVerifier struct {
	lookup userLookup
}

// NewSupabaseVerifier creates a verifier backed by the Supabase Auth API
func NewSupabaseVerifier(url, serviceKey string) (*SupabaseVerifier, error) {
	if url == "" || serviceKey == "" {
		return nil, errors.New("auth.supabaseURL and auth.supabaseServiceKey are required in supabase mode")
	}

	client, err := supabase.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase client: %w", err)
	}

	return &SupabaseVerifier{
		lookup: func(_ context.Context, token string) (string, error) {
			user, err := client.Auth.WithToken(token).GetUser()
			if err != nil {
				return "", err
			}
			return user.ID.String(), nil
		},
	}, nil
}

func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	userID, err := v.lookup(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}
