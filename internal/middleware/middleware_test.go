package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/fajrglobal/clinic-api/pkg/logger"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.POST("/echo", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRequestID(t *testing.T) {
	var fromCtx string
	r := newEngine(RequestID())
	r.GET("/ctx", func(c *gin.Context) {
		fromCtx = logger.RequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ctx", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
	assert.Equal(t, "abc-123", fromCtx)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ctx", nil)
	req.Header.Set(HeaderXRequestID, strings.Repeat("x", 200))
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(HeaderXRequestID), 36)
	assert.Equal(t, w.Header().Get(HeaderXRequestID), fromCtx)
}

func TestCORS(t *testing.T) {
	r := newEngine(CORS(DefaultCORSConfig([]string{"http://localhost:5500/"})))

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"allowed simple request", http.MethodGet, "http://localhost:5500", http.StatusOK, "http://localhost:5500"},
		{"allowed preflight", http.MethodOptions, "http://localhost:5500", http.StatusNoContent, "http://localhost:5500"},
		{"disallowed simple request", http.MethodGet, "http://evil.test", http.StatusOK, ""},
		{"disallowed preflight", http.MethodOptions, "http://evil.test", http.StatusForbidden, ""},
		{"no origin", http.MethodGet, "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/ping", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_Wildcard(t *testing.T) {
	r := newEngine(CORS(DefaultCORSConfig([]string{"*"})))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://anywhere.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://anywhere.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2})
	r := newEngine(rl.RateLimit())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_ForgetsIdleClients(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 1, IdleTTL: 20 * time.Millisecond})

	first := rl.limiterFor("10.0.0.9")
	assert.Same(t, first, rl.limiterFor("10.0.0.9"))
	require.True(t, first.Allow())
	require.False(t, first.Allow())

	time.Sleep(50 * time.Millisecond)

	fresh := rl.limiterFor("10.0.0.9")
	assert.NotSame(t, first, fresh)
	assert.True(t, fresh.Allow())
}

func TestSizeLimit(t *testing.T) {
	r := newEngine(SizeLimit(SizeLimitConfig{MaxBodySize: 8, MaxHeaderSize: 256}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("much too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "body size exceeds 8 bytes")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Padding", strings.Repeat("p", 300))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var hasDeadline bool
	r := newEngine(Timeout(time.Second))
	r.GET("/deadline", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/deadline", nil))
	assert.True(t, hasDeadline)
}

func TestErrorHandler(t *testing.T) {
	r := newEngine(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		c.Error(errors.New("boom"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.Error(errors.New("late"))
		c.String(http.StatusAccepted, "done")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error","code":500}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "done", w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":500`)
}

func TestSecurityHeadersAndNoStore(t *testing.T) {
	r := newEngine(SecurityHeaders(DefaultSecurityConfig()), NoStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
