package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		err  *Error
		code int
		kind Kind
	}{
		{Validation("op", nil, "Invalid YouTube URL"), http.StatusBadRequest, KindValidation},
		{Unauthenticated("op", cause, "Invalid token"), http.StatusUnauthorized, KindUnauthenticated},
		{InsufficientTokens("op", cause), http.StatusPaymentRequired, KindInsufficientTokens},
		{ProviderAuthFailed("op", cause), http.StatusForbidden, KindProviderAuthFailed},
		{TranscriptNotFound("op", cause), http.StatusNotFound, KindTranscriptNotFound},
		{TranscriptFetchFailed("op", cause), http.StatusInternalServerError, KindTranscriptFetchFailed},
		{ContentGenerationFailed("op", cause, "Failed"), http.StatusInternalServerError, KindContentGenerationFailed},
		{Internal("op", cause, "Internal"), http.StatusInternalServerError, KindInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := TranscriptFetchFailed("transcript.Fetch", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Failed to fetch transcript: connection refused", err.Error())
	assert.Equal(t, "Invalid YouTube URL", Validation("op", nil, "Invalid YouTube URL").Error())
}

func TestPublic(t *testing.T) {
	internal := Internal("op", nil, "database exploded")
	assert.Equal(t, "database exploded", internal.Public(false))
	assert.Equal(t, GenericMessage, internal.Public(true))

	badRequest := Validation("op", nil, "Invalid YouTube URL")
	assert.Equal(t, "Invalid YouTube URL", badRequest.Public(true))
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	original := InsufficientTokens("op", nil)
	wrapped := fmt.Errorf("handler: %w", original)
	got := From(wrapped)
	require.NotNil(t, got)
	assert.Same(t, original, got)

	plain := From(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, plain.Code)
	assert.Equal(t, KindInternal, plain.Kind)
}
