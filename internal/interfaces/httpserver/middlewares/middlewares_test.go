package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	domain "chefgpt-server/internal/domain/conversation"
	"chefgpt-server/internal/utils/platformerrors"
)

type staticResolver map[string]domain.OwnerID

func (r staticResolver) Resolve(_ context.Context, credential string) domain.OwnerID {
	return r[credential]
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(handlers...)
	return engine
}

func TestIdentityResolvesOwner(t *testing.T) {
	engine := newEngine(Identity(staticResolver{"Bearer good": "alice"}))
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, string(OwnerFromContext(c)))
	})

	for header, want := range map[string]string{"Bearer good": "alice", "Bearer bad": "", "": ""} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, rec.Body.String())
	}
}

func TestOwnerFromContextDefaultsToAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.True(t, OwnerFromContext(ctx).IsAnonymous())
}

func TestRequestIDPropagates(t *testing.T) {
	engine := newEngine(RequestID())
	var fromCtx string
	engine.GET("/", func(c *gin.Context) {
		fromCtx, _ = c.Request.Context().Value(platformerrors.RequestIDKey{}).(string)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get("X-Request-Id")
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "req-42", fromCtx)
}

func TestCORS(t *testing.T) {
	engine := newEngine(CORS("http://localhost:5173"))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Chat-Id")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
