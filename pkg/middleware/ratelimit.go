package middleware

import (
	"fmt"
	"net/http"

	"order-system/pkg/response"

	sentinel "github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/gin-gonic/gin"
)

// 限流资源名称
const ResAPI = "order_api"

// FlowRule 直接计数、超限拒绝的 QPS 规则
func FlowRule(resource string, qps float64) *flow.Rule {
	return &flow.Rule{
		Resource:               resource,
		TokenCalculateStrategy: flow.Direct,
		ControlBehavior:        flow.Reject,
		Threshold:              qps,
		StatIntervalInMs:       1000,
	}
}

// InitRateLimit 初始化 Sentinel 并加载 resource 的限流规则
func InitRateLimit(resource string, qps float64) error {
	if err := sentinel.InitDefault(); err != nil {
		return fmt.Errorf("init sentinel: %w", err)
	}
	if _, err := flow.LoadRules([]*flow.Rule{FlowRule(resource, qps)}); err != nil {
		return fmt.Errorf("load sentinel rules: %w", err)
	}
	return nil
}

// RateLimit 请求超过规则阈值时返回 429
func RateLimit(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, b := sentinel.Entry(resource, sentinel.WithTrafficType(base.Inbound))
		if b != nil {
			response.Abort(c, http.StatusTooManyRequests, "Too many requests, please retry later")
			return
		}
		defer e.Exit()

		c.Next()
	}
}
