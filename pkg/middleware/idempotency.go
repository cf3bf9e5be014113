package middleware

import (
	"log/slog"
	"net/http"

	"order-system/pkg/idempotency"
	"order-system/pkg/response"

	"github.com/gin-gonic/gin"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// Idempotency accepts a POST carrying an Idempotency-Key once. A replay of
// the same key on the same path gets 409. Keys of failed or panicking
// requests are released so the client can retry. If the store is unreachable
// the request goes through.
func Idempotency(store idempotency.Store, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		scoped := c.Request.URL.Path + ":" + key

		first, err := store.Claim(ctx, scoped)
		if err != nil {
			log.WarnContext(ctx, "idempotency check failed", "key", key, "error", err)
			c.Next()
			return
		}
		if !first {
			response.Abort(c, http.StatusConflict, "Duplicate request")
			return
		}

		release := func() {
			if err := store.Release(ctx, scoped); err != nil {
				log.WarnContext(ctx, "idempotency release failed", "key", key, "error", err)
			}
		}
		defer func() {
			// panic 交给 Recovery 处理，但先释放 key
			if p := recover(); p != nil {
				release()
				panic(p)
			}
			if c.Writer.Status() >= http.StatusBadRequest {
				release()
			}
		}()

		c.Next()
	}
}
