package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"storyfeed-backend/internal/common/middleware"
	"storyfeed-backend/internal/features/social/repository"
	"storyfeed-backend/internal/features/social/service"
	"storyfeed-backend/internal/platform/store"
)

func TestShareRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler(), middleware.ErrorResponder())
	NewSocialHandler(service.NewSocialService(repository.NewShareRepository(store.NewMemoryStore()), nil)).
		RegisterRoutes(r.Group("/api/v1"))

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/social", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, post(`{}`).Code)

	post(`{"platform":"facebook"}`)
	w := post(`{"platform":"facebook"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"Social shared successfully","count":2}`, w.Body.String())
}
