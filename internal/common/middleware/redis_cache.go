package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	rplatform "storyfeed-backend/internal/platform/redis"
)

const (
	// HTTPCachePrefix namespaces cached GET responses in redis.
	HTTPCachePrefix = "httpcache:"
	CacheHeader     = "X-Cache"
)

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder tees the response body so it can be stored after the handler.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// RedisCache caches successful GET responses for a short TTL, keyed by the
// full request URI. Only mount it on routes whose output is the same for
// every caller.
func RedisCache(rdb *rplatform.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || rdb == nil || ttl <= 0 {
			c.Next()
			return
		}

		key := HTTPCachePrefix + c.Request.Method + ":" + c.Request.URL.RequestURI()

		if bs, err := rdb.Get(c.Request.Context(), key).Bytes(); err == nil && len(bs) > 0 {
			var entry cachedResponse
			if json.Unmarshal(bs, &entry) == nil {
				c.Header(CacheHeader, "HIT")
				c.Data(entry.Status, entry.ContentType, entry.Body)
				c.Abort()
				return
			}
		}

		c.Header(CacheHeader, "MISS")
		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status >= 200 && status < 300 && len(c.Errors) == 0 {
			entry := cachedResponse{
				Status:      status,
				ContentType: recorder.Header().Get("Content-Type"),
				Body:        recorder.buf.Bytes(),
			}
			if payload, err := json.Marshal(entry); err == nil {
				_ = rdb.SetEx(context.WithoutCancel(c.Request.Context()), key, payload, ttl).Err()
			}
		}
	}
}
