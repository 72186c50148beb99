package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"storyfeed-backend/internal/common/errors"
	"storyfeed-backend/internal/common/middleware"
	"storyfeed-backend/internal/features/access"
	"storyfeed-backend/internal/features/guess/repository"
	"storyfeed-backend/internal/features/guess/service"
	"storyfeed-backend/internal/platform/store"
)

type tokenAuth map[string]access.Identity

func (a tokenAuth) Authenticate(_ context.Context, token string) (access.Identity, error) {
	if identity, ok := a[token]; ok {
		return identity, nil
	}
	return access.Identity{}, errors.NewUnauthorizedError("invalid session")
}

func TestGuessRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewGuessService(repository.NewGuessRepository(store.NewMemoryStore()), nil)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler(), middleware.ErrorResponder(), middleware.Identify(tokenAuth{
		"admin":  {UserID: "a", Role: access.RoleAdmin},
		"viewer": {UserID: "v", Role: access.RoleViewer},
	}))
	NewGuessHandler(svc).RegisterRoutes(r.Group("/api/v1"))

	ask := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/guess/s1/ask", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	remove := func(token string) int {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/guess/remove", strings.NewReader(`{"ip_address":"203.0.113.7"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, ask())
	assert.Equal(t, http.StatusOK, ask())
	assert.Equal(t, http.StatusTooManyRequests, ask())

	assert.Equal(t, http.StatusForbidden, remove("viewer"))
	assert.Equal(t, http.StatusOK, remove("admin"))
	assert.Equal(t, http.StatusOK, ask())
}
