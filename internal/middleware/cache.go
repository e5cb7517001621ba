package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const responseMetaKey = "ceitm.response_meta"

// responseMeta accumulates per-request metadata surfaced in the response
// envelope.
type responseMeta struct {
	started  time.Time
	cacheHit *bool
}

// WithResponseMeta attaches a metadata recorder to the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, &responseMeta{started: time.Now()})
		c.Next()
	}
}

// SetCacheHit marks whether the response was served from the cache.
func SetCacheHit(c *gin.Context, hit bool) {
	if meta := metaFrom(c); meta != nil {
		meta.cacheHit = &hit
	}
}

// ExtractMeta renders the recorded metadata for the response envelope. It
// returns nil when the recorder middleware is not installed.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	meta := metaFrom(c)
	if meta == nil {
		return nil
	}
	rendered := map[string]interface{}{
		"processing_time_ms": time.Since(meta.started).Milliseconds(),
	}
	if meta.cacheHit != nil {
		rendered["cache_hit"] = *meta.cacheHit
	}
	return rendered
}

func metaFrom(c *gin.Context) *responseMeta {
	if c == nil {
		return nil
	}
	if value, ok := c.Get(responseMetaKey); ok {
		if meta, ok := value.(*responseMeta); ok {
			return meta
		}
	}
	return nil
}
