// internal/service/checkout/application/rules/repeat.go
package rules

import (
	"time"

	"codgate/internal/pkg/logger"
	"codgate/internal/service/checkout/domain"
)

const ruleRepeatOrder = "repeat_order"

// RepeatOrderHandler 限制同一客户在时间窗口内重复下单。
// 匹配条件: 窗口内存在同 IP、同邮箱或同手机号的追踪记录（任一命中即拒绝）。
// 两个并发请求可能同时通过本检查——COD 场景下接受这个已知竞态。
type RepeatOrderHandler struct {
	NextHandler
}

func (h *RepeatOrderHandler) Handle(ruleCtx *RuleContext) error {
	windowHours := ruleCtx.Settings.Rules.RepeatWindowHours
	if windowHours <= 0 || ruleCtx.Tracking == nil {
		return h.executeNext(ruleCtx)
	}

	ctx, span := ruleCtx.Tracer.Start(ruleCtx.Ctx, "rules.RepeatOrder")
	defer span.End()

	sub := ruleCtx.Submission
	since := ruleCtx.now().Add(-time.Duration(windowHours) * time.Hour)

	found, err := ruleCtx.Tracking.HasRecent(ctx, domain.RecentOrderQuery{
		Shop:  sub.Shop,
		Since: since,
		IP:    sub.NormalizedIP(),
		Email: sub.NormalizedEmail(),
		Phone: sub.NormalizedPhone(),
	})
	if err != nil {
		// 限频查询失败时放行: 宁可放过一次重复下单，也不能挡住正常客户
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).
			Str("shop", sub.Shop).
			Msg("repeat-order lookup failed, rule skipped")
		return h.executeNext(ruleCtx)
	}
	if found {
		return ruleCtx.reject(ruleRepeatOrder)
	}

	return h.executeNext(ruleCtx)
}
