package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/metrics"
	"github.com/sajag-gupta/riseup/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Init(logger.Config{ServiceName: "riseup-test", Output: io.Discard})
	os.Exit(m.Run())
}

func issue(t *testing.T, tokens service.TokenService, role domain.Role) string {
	t.Helper()
	token, err := tokens.Issue(&domain.User{ID: "u1", Email: "u1@example.com", Name: "U", Role: role})
	require.NoError(t, err)
	return token
}

func protectedRouter(tokens service.TokenService, roles ...domain.Role) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{Auth(tokens)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CallerFrom(c).UserID})
	})
	r.GET("/private", handlers...)
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthStatusCodes(t *testing.T) {
	tokens := service.NewTokenService(secret, time.Hour)
	r := protectedRouter(tokens)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", "").Code, "missing token")
	assert.Equal(t, http.StatusForbidden, get(r, "/private", "garbage").Code, "invalid token")

	other := service.NewTokenService("another-secret", time.Hour)
	assert.Equal(t, http.StatusForbidden, get(r, "/private", issue(t, other, domain.RoleFan)).Code, "wrong secret")

	expired := service.NewTokenService(secret, -time.Minute)
	assert.Equal(t, http.StatusForbidden, get(r, "/private", issue(t, expired, domain.RoleFan)).Code, "expired token")

	w := get(r, "/private", issue(t, tokens, domain.RoleFan))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u1"}`, w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	tokens := service.NewTokenService(secret, time.Hour)
	r := protectedRouter(tokens, domain.RoleArtist, domain.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, get(r, "/private", issue(t, tokens, domain.RoleFan)).Code)
	assert.Equal(t, http.StatusOK, get(r, "/private", issue(t, tokens, domain.RoleArtist)).Code)
	assert.Equal(t, http.StatusOK, get(r, "/private", issue(t, tokens, domain.RoleAdmin)).Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := service.NewTokenService(secret, time.Hour)
	r := gin.New()
	r.GET("/public", OptionalAuth(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, CallerFrom(c).UserID)
	})

	assert.Equal(t, "", get(r, "/public", "").Body.String())
	assert.Equal(t, "", get(r, "/public", "garbage").Body.String(), "bad tokens fall back to anonymous")
	assert.Equal(t, "u1", get(r, "/public", issue(t, tokens, domain.RoleFan)).Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter("auth", 3, 15*time.Minute)
	defer rl.Close()
	r := gin.New()
	r.GET("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/login", "").Code)
	}
	w := get(r, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")

	assert.True(t, rl.allow("10.0.0.9"), "buckets are per client")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := get(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestCORSAllowsClientOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:5173"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestValidateRequest(t *testing.T) {
	r := gin.New()
	r.Use(ValidateRequest(16))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(body, contentType string) int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, send(`{"a":1}`, "application/json; charset=utf-8"))
	assert.Equal(t, http.StatusUnsupportedMediaType, send("a=1", "application/x-www-form-urlencoded"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, send(`{"a":"0123456789abcdef"}`, "application/json"))
	assert.Equal(t, http.StatusNoContent, send("", ""), "empty POST bodies need no content type")
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	m, err := metrics.New()
	require.NoError(t, err)
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/songs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	get(r, "/api/songs/abc", "")
	get(r, "/api/songs/def", "")

	count, err := testutil.GatherAndCount(m.Gatherer(), "riseup_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "both requests share one route label set")
}
