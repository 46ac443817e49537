package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const metaContextKey = "response_meta"

type responseMeta struct {
	start    time.Time
	cacheHit *bool
}

// WithResponseMeta stamps each request with a start time so response
// envelopes can report processing duration.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaContextKey, &responseMeta{start: time.Now()})
		c.Next()
	}
}

// SetCacheHit records whether the response payload came from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	metaFor(c).cacheHit = &hit
}

// ExtractMeta renders the metadata collected so far for the response
// envelope. It returns nil when there is nothing to report.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	meta := metaFor(c)
	out := make(map[string]interface{}, 2)
	if !meta.start.IsZero() {
		out["processing_time_ms"] = time.Since(meta.start).Milliseconds()
	}
	if meta.cacheHit != nil {
		out["cache_hit"] = *meta.cacheHit
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func metaFor(c *gin.Context) *responseMeta {
	if m, ok := c.Value(metaContextKey).(*responseMeta); ok {
		return m
	}
	m := &responseMeta{}
	c.Set(metaContextKey, m)
	return m
}
