package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aetherlink-be/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier map[string]string

func (s stubVerifier) VerifyToken(token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var body errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestOriginPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy OriginPolicy
		origin string
		want   bool
	}{
		{"empty origin", NewOriginPolicy(nil, "", ""), "", false},
		{"unparsable", NewOriginPolicy(nil, "", ""), "::::", false},
		{"explicit match", NewOriginPolicy([]string{"https://aether.link"}, "production", ""), "https://aether.link", true},
		{"explicit miss", NewOriginPolicy([]string{"https://aether.link"}, "production", ""), "https://evil.io", false},
		{"preview https", NewOriginPolicy(nil, "preview", ""), "https://my-branch.vercel.app", true},
		{"preview http refused", NewOriginPolicy(nil, "preview", ""), "http://my-branch.vercel.app", false},
		{"development preview", NewOriginPolicy(nil, "development", ""), "https://x.vercel.app", true},
		{"preview custom suffix", NewOriginPolicy(nil, "preview", ".pages.dev"), "https://x.pages.dev", true},
		{"production ignores preview", NewOriginPolicy(nil, "production", ""), "https://x.vercel.app", false},
		{"local default", NewOriginPolicy(nil, "", ""), "http://localhost:3000", true},
		{"loopback default", NewOriginPolicy(nil, "", ""), "http://127.0.0.1:5173", true},
		{"dot localhost", NewOriginPolicy(nil, "", ""), "http://app.localhost", true},
		{"local with allow-list", NewOriginPolicy([]string{"https://aether.link"}, "", ""), "http://localhost:3000", false},
		{"local in production", NewOriginPolicy(nil, "production", ""), "http://localhost:3000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Allowed(tt.origin))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS(NewOriginPolicy(nil, "", "")))
	r.POST("/api/v1/links", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/links", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, corsAllowMethods, w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, corsAllowHeaders, w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/links", nil)
	req.Header.Set("Origin", "https://evil.io")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func newLimitedRouter(limiter *ratelimit.Limiter, stats ratelimit.StatsRecorder) *gin.Engine {
	r := gin.New()
	r.Use(CORS(NewOriginPolicy(nil, "", "")))
	r.Use(NewRateLimiter(limiter, nil, stats).LimitMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/v1/auth/register", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.GET("/api/v1/links", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/profiles/handle/:handle", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/profiles/handle/:handle/qrcode", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	stats := ratelimit.NewMemoryStats()
	r := newLimitedRouter(ratelimit.New(), stats)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
		req.Header.Set("X-Forwarded-For", ip)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusCreated, send("9.9.9.9").Code)
	}

	w := send("9.9.9.9")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	body := decodeError(t, w)
	assert.Equal(t, "RATE_LIMITED", body.Error.Code)
	assert.Equal(t, "Rate limit exceeded. Please try again later.", body.Error.Message)
	assert.EqualValues(t, 5, body.Error.Details["limit"])
	assert.EqualValues(t, 60, body.Error.Details["window"])

	// another client is unaffected
	assert.Equal(t, http.StatusCreated, send("8.8.8.8").Code)

	assert.Equal(t, ratelimit.Counters{Allowed: 6, Denied: 1}, stats.Total())
}

func TestRateLimitSkipsHealthAndPreflight(t *testing.T) {
	limiter := ratelimit.New(ratelimit.WithLimits(map[ratelimit.Tier]ratelimit.Limit{
		ratelimit.TierRead: {MaxRequests: 1, Window: time.Minute},
	}))
	r := newLimitedRouter(limiter, nil)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/links", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	assert.Equal(t, 0, limiter.Clients())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/links", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/links", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitOnlyExemptsRootHealth(t *testing.T) {
	limiter := ratelimit.New(ratelimit.WithLimits(map[ratelimit.Tier]ratelimit.Limit{
		ratelimit.TierRead: {MaxRequests: 1, Window: time.Minute},
	}))
	r := newLimitedRouter(limiter, nil)

	for _, path := range []string{
		"/api/v1/profiles/handle/healthyfood",
		"/api/v1/profiles/handle/healthx/qrcode",
	} {
		limiter.Reset()

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code, path)
		assert.Equal(t, 1, limiter.Clients())
	}
}

func TestAuthMiddleware(t *testing.T) {
	verifier := stubVerifier{"good": "user-1"}
	r := gin.New()
	r.GET("/private", AuthMiddleware(verifier), func(c *gin.Context) {
		id, _ := UserID(c)
		c.String(http.StatusOK, id)
	})
	r.GET("/public", OptionalAuth(verifier), func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok {
			id = "anonymous"
		}
		c.String(http.StatusOK, id)
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"private with token", "/private", "Bearer good", http.StatusOK, "user-1"},
		{"private bad token", "/private", "Bearer bad", http.StatusUnauthorized, ""},
		{"private no token", "/private", "", http.StatusUnauthorized, ""},
		{"public with token", "/public", "Bearer good", http.StatusOK, "user-1"},
		{"public bad token", "/public", "Bearer bad", http.StatusOK, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			} else {
				body := decodeError(t, w)
				assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
				assert.Equal(t, "Authentication required", body.Error.Message)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware(), RecoveryMiddleware())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Error.Code)
}
