package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(2, time.Minute)

	router := gin.New()
	router.Use(RateLimit(rl))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// First two requests should succeed
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// Third request should be rate limited
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"code":429`)
}

func TestRateLimiter_KeyedByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(1, time.Minute)

	router := gin.New()
	router.Use(Auth(stubVerifier{"a": "user-a", "b": "user-b"}), RateLimit(rl))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(token string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusOK, send("b"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
}

func TestRateLimiter_RefillAndPrune(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(100, 15*time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("ip:1.2.3.4"))
	}
	assert.False(t, rl.Allow("ip:1.2.3.4"))

	// One token comes back every 9 seconds
	now = now.Add(9 * time.Second)
	assert.True(t, rl.Allow("ip:1.2.3.4"))
	assert.False(t, rl.Allow("ip:1.2.3.4"))

	assert.True(t, rl.Allow("ip:5.6.7.8"))
	assert.Equal(t, 2, rl.Len())

	assert.Equal(t, 0, rl.Prune())

	now = now.Add(16 * time.Minute)
	assert.Equal(t, 2, rl.Prune())
	assert.Equal(t, 0, rl.Len())
}
