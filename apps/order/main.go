package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-system/apps/order/handler"
	"order-system/apps/order/model"
	"order-system/apps/order/seed"
	"order-system/apps/order/service"
	"order-system/apps/order/store"
	"order-system/pkg/config"
	"order-system/pkg/database"
	"order-system/pkg/discovery"
	"order-system/pkg/events"
	"order-system/pkg/idempotency"
	"order-system/pkg/logger"
	"order-system/pkg/metrics"
	"order-system/pkg/middleware"
	"order-system/pkg/tracer"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		logger.L().Error("order service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. 加载配置
	c, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Setup(logger.Config{Service: c.Service.Name, Level: c.Service.LogLevel})
	gin.SetMode(c.Service.Mode)

	// 2. 链路追踪
	tp, err := tracer.InitTracer(c.Service.Name, c.Tracing.Endpoint, c.Service.Mode)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	// 3. 初始化数据库
	db, err := database.Open(c)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := store.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// 4. 事件发布 (RabbitMQ 可选)
	var publisher events.Publisher = events.Nop{}
	if c.RabbitMQ.URL != "" {
		p, err := events.NewAMQPPublisher(c.RabbitMQ.URL, c.RabbitMQ.Exchange)
		if err != nil {
			return fmt.Errorf("init rabbitmq: %w", err)
		}
		publisher = p
		log.Info("publishing order events", "exchange", c.RabbitMQ.Exchange)
	}
	defer publisher.Close()

	m := metrics.New("orders")
	svc := service.New(store.NewGormStore(db), service.Options{
		DefaultPerPage: c.Orders.DefaultPerPage,
		MaxPerPage:     c.Orders.MaxPerPage,
		Dates:          model.DatePolicy{Strict: c.Orders.StrictDates},
		Publisher:      publisher,
		Metrics:        m,
		Logger:         log,
	})

	// 5. 示例数据
	if c.Orders.Seed {
		seeded, err := seed.Seed(context.Background(), svc)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if seeded {
			log.Info("sample orders created")
		}
	}

	// 6. 路由与中间件
	routerCfg := handler.RouterConfig{
		ServiceName: c.Service.Name,
		Logger:      log,
		Metrics:     m,
	}
	if c.RateLimit.QPS > 0 {
		if err := middleware.InitRateLimit(middleware.ResAPI, c.RateLimit.QPS); err != nil {
			return err
		}
		routerCfg.RateLimitResource = middleware.ResAPI
		log.Info("rate limit enabled", "qps", c.RateLimit.QPS)
	}
	if c.Redis.Address != "" {
		rdb, err := database.InitRedis(context.Background(), c.Redis)
		if err != nil {
			return fmt.Errorf("init redis: %w", err)
		}
		defer rdb.Close()
		routerCfg.Idempotency = idempotency.NewRedisStore(rdb, c.Redis.IdempotencyTTL)
	}
	r := handler.NewRouter(handler.New(svc, log), routerCfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", c.Service.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("order service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 7. 注册到 Consul
	if c.Consul.Address != "" {
		deregister, err := discovery.RegisterService(discovery.Registration{
			Name:       c.Service.Name,
			Port:       c.Service.Port,
			HealthPath: "/health",
			Tags:       []string{"orders", "http"},
		}, c.Consul.Address, log)
		if err != nil {
			log.Warn("consul registration failed", "error", err)
		} else {
			defer func() {
				if err := deregister(); err != nil {
					log.Warn("consul deregistration failed", "error", err)
				}
			}()
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
