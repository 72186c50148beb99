package middleware

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/features/access"
	rplatform "storyfeed-backend/internal/platform/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth map[string]access.Identity

func (f fakeAuth) Authenticate(_ context.Context, token string) (access.Identity, error) {
	identity, ok := f[token]
	if !ok {
		return access.Identity{}, errors.NewUnauthorizedError("invalid session")
	}
	return identity, nil
}

func newRouter(auth Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(), ErrorResponder(), Identify(auth))
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp struct {
		Success   bool                   `json:"success"`
		Error     map[string]interface{} `json:"error"`
		RequestID string                 `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	out := ErrorResponse{Success: resp.Success, RequestID: resp.RequestID, Error: &errors.AppError{}}
	if code, ok := resp.Error["code"].(string); ok {
		out.Error.Code = errors.ErrorCode(code)
	}
	if msg, ok := resp.Error["message"].(string); ok {
		out.Error.Message = msg
	}
	if details, ok := resp.Error["details"].(map[string]interface{}); ok {
		out.Error.Details = details
	}
	return out
}

func TestErrorResponderMapsCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errors.NewNotFoundError("feed", "f1"), http.StatusNotFound},
		{errors.NewForbiddenError("not yours"), http.StatusForbidden},
		{errors.NewRateLimitError("guess", time.Hour), http.StatusTooManyRequests},
		{errors.NewValidationError("email", "invalid"), http.StatusBadRequest},
		{errors.NewUnauthorizedError("no session"), http.StatusUnauthorized},
		{errors.NewConflictError("user", "email taken"), http.StatusConflict},
		{errors.NewInternalError("count", stderrors.New("db down")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		r := newRouter(fakeAuth{})
		r.GET("/x", func(c *gin.Context) { _ = c.Error(tc.err) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.NotContains(t, w.Body.String(), "db down")
	}
}

func TestErrorResponderHidesUnknownErrors(t *testing.T) {
	r := newRouter(fakeAuth{})
	r.GET("/x", func(c *gin.Context) { _ = c.Error(stderrors.New("pq: password authentication failed")) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, errors.ErrCodeInternal, resp.Error.Code)
	assert.Equal(t, "Internal server error", resp.Error.Message)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	r := newRouter(fakeAuth{})
	r.GET("/panic", func(c *gin.Context) { panic("secret state") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret state")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestIdentifyAndRequireRoles(t *testing.T) {
	auth := fakeAuth{
		"admin-token":  {UserID: "a1", Role: access.RoleAdmin},
		"viewer-token": {UserID: "v1", Role: access.RoleViewer},
	}
	r := newRouter(auth)
	r.GET("/me", RequireAuth(), func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.String(http.StatusOK, identity.UserID)
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("/me", "viewer-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do("/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do("/me", "forged").Code)
	assert.Equal(t, http.StatusForbidden, do("/admin", "viewer-token").Code)
	assert.Equal(t, http.StatusNoContent, do("/admin", "admin-token").Code)
}

func TestRedisCacheServesRepeatGets(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := rplatform.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { rdb.Close() })

	calls := 0
	r := gin.New()
	r.GET("/categories", RedisCache(rdb, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/categories?language=en", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/categories?language=en", nil))
	other := httptest.NewRecorder()
	r.ServeHTTP(other, httptest.NewRequest(http.MethodGet, "/categories?language=fr", nil))

	assert.Equal(t, 2, calls)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
}

func TestBearerToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	c.Request.Header.Set("Authorization", "bearer abc ")
	assert.Equal(t, "abc", BearerToken(c))

	c.Request.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(c))
}

func TestErrorResponderSetsRetryAfter(t *testing.T) {
	r := newRouter(fakeAuth{})
	r.GET("/x", func(c *gin.Context) { _ = c.Error(errors.NewRateLimitError("guess", 90*time.Minute)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "5400", w.Header().Get("Retry-After"))
}
