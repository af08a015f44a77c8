// internal/service/checkout/application/rules/handler.go
package rules

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"codgate/internal/service/checkout/domain"
	"codgate/internal/service/checkout/domain/port"
)

// RuleContext 在拦截规则链中传递上下文数据。
// 外部依赖全部以抽象接口注入，便于单测替换。
type RuleContext struct {
	Ctx    context.Context
	Tracer trace.Tracer

	Settings   *domain.ShopSettings
	Submission *domain.OrderSubmission

	RiskScorer port.RiskScorer
	Tracking   domain.TrackingRepository

	// Now 可注入，重复下单窗口的测试依赖它模拟时钟。
	Now func() time.Time

	// Score 记录本次请求的风控评分，供上层观测。
	Score int
}

func (c *RuleContext) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// reject 构造统一的拦截错误。文案取店铺配置，规则名只留给服务端。
func (c *RuleContext) reject(rule string) error {
	return &domain.BlockedError{
		Rule:    rule,
		Message: c.Settings.Rules.RejectMessage,
		Score:   c.Score,
	}
}

// Handler 是单条拦截规则的接口，链式组合成完整引擎。
type Handler interface {
	SetNext(handler Handler) Handler
	Handle(ruleCtx *RuleContext) error
}

// NextHandler 提供链式调用的公共骨架。
type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(ruleCtx *RuleContext) error {
	if h.next != nil {
		return h.next.Handle(ruleCtx)
	}
	return nil
}

// BuildChain 按固定顺序组装拦截规则链。
// 顺序即语义: 放行名单命中会短路整条链；风控自动拒绝先于所有确定性规则。
func BuildChain() Handler {
	chain := new(AllowlistHandler)
	chain.
		SetNext(new(RiskScoreHandler)).
		SetNext(new(IPBlocklistHandler)).
		SetNext(new(EmailBlocklistHandler)).
		SetNext(new(PhoneBlocklistHandler)).
		SetNext(new(QuantityCapHandler)).
		SetNext(new(PostalCodeHandler)).
		SetNext(new(RepeatOrderHandler)).
		SetNext(new(CustomExprHandler))
	return chain
}
