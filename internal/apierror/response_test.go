package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abortWith(t *testing.T, err error, production bool) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Abort(c, err, production)
	assert.True(t, c.IsAborted())

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestAbort_ClientError(t *testing.T) {
	w, env := abortWith(t, InsufficientTokens("charge", nil), true)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusPaymentRequired, env.Error.Code)
	assert.Equal(t, "Insufficient tokens", env.Error.Message)
}

func TestAbort_ServerErrorMasking(t *testing.T) {
	err := TranscriptFetchFailed("fetch", errors.New("upstream 502"))

	_, env := abortWith(t, err, false)
	assert.Equal(t, "Failed to fetch transcript", env.Error.Message)

	w, env := abortWith(t, err, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, GenericMessage, env.Error.Message)
}

func TestAbort_UnknownError(t *testing.T) {
	w, env := abortWith(t, errors.New("boom"), false)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", env.Error.Message)
}
