package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeVerifier struct{}

func (fakeVerifier) ValidateToken(token string) error {
	if token == "good" {
		return nil
	}
	return errors.New("bad token")
}

func (fakeVerifier) CheckPIN(pin string) bool { return pin == "1234" }

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })
	return r
}

func serve(r *gin.Engine, method string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	r := newEngine(AdminAuth(fakeVerifier{}))

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, map[string]string{"Authorization": "Bearer good"}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, map[string]string{"Authorization": "Bearer bad"}).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, map[string]string{AdminPINHeader: "1234"}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, map[string]string{AdminPINHeader: "0000"}).Code)
}

func TestCORS(t *testing.T) {
	r := newEngine(CORS([]string{"https://shop.example"}))

	w := serve(r, http.MethodGet, map[string]string{"Origin": "https://shop.example"})
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, map[string]string{"Origin": "https://shop.example"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Admin-Pin")

	open := newEngine(CORS([]string{"*"}))
	w = serve(open, http.MethodGet, map[string]string{"Origin": "https://whatever.example"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := serve(r, http.MethodGet, map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = serve(r, http.MethodGet, nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRecoveryHidesPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/x", func(*gin.Context) { panic("secret detail") })

	w := serve(r, http.MethodGet, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestRateLimiterAnswers429WithRetryAfter(t *testing.T) {
	r := newEngine(RateLimiter(2, time.Minute))
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, nil).Code)

	w := serve(r, http.MethodGet, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"detail":"Too many requests, try again shortly"}`, w.Body.String())
}

func TestLoginRateLimiter(t *testing.T) {
	r := newEngine(LoginRateLimiter(1))
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, nil).Code)

	w := serve(r, http.MethodGet, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many PIN attempts")

	// limiters keep separate tables
	other := newEngine(LoginRateLimiter(1))
	assert.Equal(t, http.StatusOK, serve(other, http.MethodGet, nil).Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newEngine(RateLimiter(0, time.Minute), LoginRateLimiter(0))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, nil).Code)
	}
}

func TestFixedWindowResetsAndSweeps(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	fw := newFixedWindow("test", 1, time.Minute)
	fw.now = func() time.Time { return now }
	fw.lastSweep = now

	ok, _ := fw.allow("10.0.0.1")
	assert.True(t, ok)
	ok, wait := fw.allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, wait)

	now = now.Add(time.Minute)
	ok, _ = fw.allow("10.0.0.1")
	assert.True(t, ok, "new window")

	fw.allow("10.0.0.2")
	now = now.Add(sweepInterval)
	fw.allow("10.0.0.3")
	assert.Len(t, fw.hits, 1)
	assert.Contains(t, fw.hits, "10.0.0.3")
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/silent", func(c *gin.Context) { _ = c.Error(errors.New("disk full")) })
	r.GET("/answered", func(c *gin.Context) {
		_ = c.Error(errors.New("database is locked"))
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Storage unavailable, try again"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/silent", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/answered", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"detail":"Storage unavailable, try again"}`, w.Body.String())
}

func TestIsQuietPath(t *testing.T) {
	assert.True(t, isQuietPath("/health"))
	assert.True(t, isQuietPath("/metrics"))
	assert.False(t, isQuietPath("/v1/products/search"))
}
