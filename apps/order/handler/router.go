package handler

import (
	"io"
	"log/slog"
	"net/http"

	"order-system/pkg/idempotency"
	"order-system/pkg/metrics"
	"order-system/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	ServiceName string
	Logger      *slog.Logger
	// Metrics enables request metrics and GET /metrics when set.
	Metrics *metrics.Metrics
	// RateLimitResource guards /api with the sentinel rule of that name.
	RateLimitResource string
	// Idempotency enables Idempotency-Key handling on /api when set.
	Idempotency idempotency.Store
}

func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// 数字保留为 json.Number
	binding.EnableDecoderUseNumber = true

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(log),
		otelgin.Middleware(cfg.ServiceName),
	)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Consul 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if cfg.RateLimitResource != "" {
		api.Use(middleware.RateLimit(cfg.RateLimitResource))
	}
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency, log))
	}
	h.Register(api)

	return r
}
