// internal/service/checkout/interfaces/metrics.go
package interfaces

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Order submissions handled, by terminal outcome.",
	}, []string{"outcome"})

	// 按规则维度的拦截计数只存在于服务端指标里，从不下发给客户端。
	blockedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_blocked_total",
		Help: "Submissions rejected by the blocking rule engine, by rule.",
	}, []string{"rule"})

	ordersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_created_total",
		Help: "Orders successfully created and completed.",
	})
)

const (
	outcomeSuccess      = "success"
	outcomeUnauthorized = "unauthorized"
	outcomeIneligible   = "ineligible"
	outcomeBlocked      = "blocked"
	outcomeValidation   = "validation_error"
	outcomeFinalization = "finalization_failure"
	outcomeError        = "error"
)
