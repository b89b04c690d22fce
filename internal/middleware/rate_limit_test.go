// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func rateLimitTestRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ping", limiter.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func pingFrom(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiterBlocksBeyondBurst(t *testing.T) {
	// Refill is effectively never, so only the burst is available.
	router := rateLimitTestRouter(NewRateLimiter(rate.Every(time.Hour), 2))

	assert.Equal(t, http.StatusOK, pingFrom(router, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, pingFrom(router, "10.0.0.1:1234").Code)

	w := pingFrom(router, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestRateLimiterTracksClientsSeparately(t *testing.T) {
	router := rateLimitTestRouter(NewRateLimiter(rate.Every(time.Hour), 1))

	assert.Equal(t, http.StatusOK, pingFrom(router, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, pingFrom(router, "10.0.0.1:1234").Code)

	// A different client still has its own budget.
	assert.Equal(t, http.StatusOK, pingFrom(router, "10.0.0.2:1234").Code)
}

func TestRateLimiterReusesVisitorBucket(t *testing.T) {
	limiter := NewRateLimiter(rate.Every(time.Hour), 5)

	first := limiter.getVisitor("10.0.0.1")
	second := limiter.getVisitor("10.0.0.1")
	other := limiter.getVisitor("10.0.0.2")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}
