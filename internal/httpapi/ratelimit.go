package httpapi

import (
	"net/http"
	"time"

	"campus-commerce/internal/identity"
	"campus-commerce/pkg/logger"
	"campus-commerce/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// WriteCap bounds concurrent mutations per subject. Catalog writes fan out to
// the image proxy and the embedding sync, so a single user hammering the
// admin endpoints can tie up outbound capacity; the cap holds a slot for the
// duration of the request.
//
// Cap exhaustion is 429, not an auth failure. A Redis outage fails open:
// the cap is protective, not an authorization decision.
func WriteCap(rdb *redis.Client, limit int, ttl time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 4
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return func(c *gin.Context) {
		uid, err := identity.UID(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		key := "writecap:" + uid
		ok, err := utils.AcquireWriteCap(c.Request.Context(), rdb, key, limit, ttl)
		if err != nil {
			logger.FromGin(c).Warn("write cap acquire failed, allowing request", "err", err.Error())
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many concurrent writes"})
			return
		}
		defer func() {
			if err := utils.ReleaseWriteCap(c.Request.Context(), rdb, key); err != nil {
				logger.FromGin(c).Warn("write cap release failed", "err", err.Error())
			}
		}()

		c.Next()
	}
}
