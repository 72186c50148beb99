package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyfeed-backend/internal/common/config"
	authmodels "storyfeed-backend/internal/features/auth/models"
	redisp "storyfeed-backend/internal/platform/redis"
	"storyfeed-backend/internal/platform/store"
)

type testApp struct {
	*App
	redis *miniredis.Miniredis
}

func newTestApp(t *testing.T, opts ...func(*config.Config)) *testApp {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redisp.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{Origin: "http://localhost:3000", RequestTimeout: 5 * time.Second},
		Auth:   config.AuthConfig{SessionTTL: time.Hour, BcryptCost: 4},
		Cache:  config.CacheConfig{StatsTTL: time.Minute, HTTPTTL: time.Second},
		Payments: config.PaymentsConfig{
			Stream: "payments:events", Group: "test", Consumer: "w1",
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &testApp{App: NewApp(store.NewMemoryStore(), rdb, cfg), redis: mr}
}

func (a *testApp) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func TestProbes(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/live", "", "").Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/ready", "", "").Code)

	a.redis.Close()
	w := a.do(http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis unavailable")
}

func (a *testApp) ask(forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/guess/s1/ask", nil)
	req.RemoteAddr = "203.0.113.7:51000"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w.Code
}

func TestGuessLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	a := newTestApp(t)

	var codes []int
	for i := 1; i <= 5; i++ {
		codes = append(codes, a.ask(fmt.Sprintf("198.51.100.%d", i)))
	}
	assert.Equal(t, []int{
		http.StatusOK, http.StatusOK,
		http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes)
}

func TestGuessLimitHonoursTrustedProxy(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) {
		cfg.Server.TrustedProxies = []string{"203.0.113.0/24"}
	})

	for i := 1; i <= 3; i++ {
		assert.Equal(t, http.StatusOK, a.ask(fmt.Sprintf("198.51.100.%d", i)))
	}
	assert.Equal(t, http.StatusOK, a.ask("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, a.ask("198.51.100.1"))
}

func TestSessionFlow(t *testing.T) {
	a := newTestApp(t)

	w := a.do(http.MethodPost, "/api/v1/auth/register", "", `{"email":"reader@example.com","password":"password123","name":"Reader"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var session authmodels.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/users/me", session.Token, "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/v1/users/me", "forged", "").Code)

	w = a.do(http.MethodPost, "/api/v1/feed", session.Token, `{"content":"Q","agent_id":"oracle","agent_content":"A"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Feed struct {
			ID string `json:"id"`
		} `json:"feed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = a.do(http.MethodPost, "/api/v1/feed/"+created.Feed.ID+"/like", session.Token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Feed liked successfully")

	// viewers may not write stories
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/v1/stories", session.Token, `{"title":"t","content":"c"}`).Code)

	assert.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/v1/social", "", `{"platform":"facebook"}`).Code)

	w = a.do(http.MethodGet, "/api/v1/users/statistic", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"new_users":1`)

	assert.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/v1/auth/logout", session.Token, "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/v1/users/me", session.Token, "").Code)
}
