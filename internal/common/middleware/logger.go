package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storyfeed-backend/internal/common/logger"
)

// Logger attaches a request-scoped logger to the request context and writes
// one access line per request. Paths in skip are served but not logged.
func Logger(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		ctx := logger.WithFields(c.Request.Context(), "request_id", getRequestID(c))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if _, ok := skipped[c.FullPath()]; ok {
			return
		}

		status := c.Writer.Status()
		var event *zerolog.Event
		l := logger.Ctx(c.Request.Context())
		switch {
		case status >= 500:
			event = l.Error()
		case status >= 400:
			event = l.Warn()
		default:
			event = l.Info()
		}

		if route := c.FullPath(); route != "" {
			event = event.Str("route", route)
		}
		if userID := getUserID(c); userID != "" {
			event = event.Str("user_id", userID)
		}
		if cache := c.Writer.Header().Get(CacheHeader); cache != "" {
			event = event.Str("cache", cache)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.RequestURI()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("body_size", c.Writer.Size()).
			Msg("Request processed")
	}
}
