package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/cache"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/interfaces/http/dto"
)

// IdempotencyConfig configures the idempotency middleware
type IdempotencyConfig struct {
	Store cache.IdempotencyStore

	// TTL is how long a processed key stays reserved. Defaults to 24h.
	TTL time.Duration

	// Required, when true, rejects requests without an Idempotency-Key
	// header instead of passing them through.
	Required bool

	Logger *zap.Logger
}

// Idempotency returns a middleware that deduplicates mutating requests
// by their Idempotency-Key header. A key that was already processed is
// answered with 409 without reaching the handler. Intended for payment
// registration and reconnection processing, where client retries must
// not create duplicate records.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			if cfg.Required {
				c.AbortWithStatusJSON(http.StatusBadRequest,
					dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest,
						"Idempotency-Key header is required", GetRequestID(c)))
				return
			}
			c.Next()
			return
		}

		// Scope the key to method and path so the same key can be used
		// against different endpoints.
		scopedKey := c.Request.Method + ":" + c.FullPath() + ":" + key

		first, err := cfg.Store.MarkProcessed(c.Request.Context(), scopedKey, cfg.TTL)
		if err != nil {
			// Store outage: process the request rather than block writes.
			cfg.Logger.Warn("idempotency store unavailable",
				zap.String("key", key),
				zap.Error(err))
			c.Next()
			return
		}

		if !first {
			c.AbortWithStatusJSON(http.StatusConflict,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeConflict,
					"request with this idempotency key was already processed", GetRequestID(c)))
			return
		}

		c.Next()
	}
}
