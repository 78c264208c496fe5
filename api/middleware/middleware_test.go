package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/opentextbook-backend/internal/core"
	"github.com/Annany2002/opentextbook-backend/internal/render"
	"github.com/Annany2002/opentextbook-backend/internal/session"
	"github.com/Annany2002/opentextbook-backend/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestErrorHandlerMapping(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", storage.ErrBookNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("author of book 1: %w", storage.ErrUserNotFound), http.StatusNotFound},
		{"duplicate", storage.ErrPageNumberExists, http.StatusConflict},
		{"constraint", storage.ErrConstraintViolation, http.StatusConflict},
		{"validation without view", core.Invalid("genre", "Genre is required"), http.StatusUnprocessableEntity},
		{"storage failure", errors.New("disk I/O error"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler(render.NewJSONRenderer()))
			router.GET("/", func(c *gin.Context) { _ = c.Error(tc.err) })

			w := perform(router, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "disk I/O")
			}
		})
	}
}

func TestErrorHandlerRendersFormWithoutPasswords(t *testing.T) {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		SetSession(c, session.New(time.Hour))
		c.Next()
	})
	router.Use(ErrorHandler(render.NewJSONRenderer()))
	router.POST("/users/register", func(c *gin.Context) {
		SetForm(c, "register", gin.H{"userName": "a"}, gin.H{"hint": "choose a username"})
		_ = c.Error(core.ValidationErrors{
			{Field: "userName", Message: "Username should at least be 2 characters long", Value: "a"},
			{Field: "password", Message: "Password must have 8 characters", Value: "short"},
		})
	})

	w := perform(router, httptest.NewRequest(http.MethodPost, "/users/register", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"view":"register"`)
	assert.Contains(t, w.Body.String(), "choose a username")
	assert.Contains(t, w.Body.String(), "Username should at least be 2 characters long")
	assert.NotContains(t, w.Body.String(), "short")
}

func TestRequireAuth(t *testing.T) {
	router := gin.New()
	var sess *session.Session
	router.Use(func(c *gin.Context) {
		sess = session.New(time.Hour)
		SetSession(c, sess)
		c.Next()
	})
	router.Use(ErrorHandler(render.NewJSONRenderer()))
	router.GET("/books/add", RequireAuth(), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := perform(router, httptest.NewRequest(http.MethodGet, "/books/add", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
	assert.Equal(t, []string{"Please login"}, sess.TakeFlashes()[session.FlashDanger])

	req := httptest.NewRequest(http.MethodGet, "/books/add", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = perform(router, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "keys are independent")

	rl.cleanup(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 0, rl.size())
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	router := gin.New()
	router.POST("/users/login", RateLimitMiddleware(rl), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(router, httptest.NewRequest(http.MethodPost, "/users/login", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(router, httptest.NewRequest(http.MethodPost, "/users/login", nil)).Code)
}

func TestRequestLoggerEchoesID(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := perform(router, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = perform(router, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, w.Header().Get(requestIDHeader))
	assert.Equal(t, w.Header().Get(requestIDHeader), w.Body.String())
}

func TestForceHTTPS(t *testing.T) {
	router := gin.New()
	router.Use(ForceHTTPS())
	router.GET("/books/all", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "http://example.com/books/all?limit=2", nil)
	w := perform(router, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/books/all?limit=2", w.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "http://example.com/books/all", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, http.StatusOK, perform(router, req).Code)
}
