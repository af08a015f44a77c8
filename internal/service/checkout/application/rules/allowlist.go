// internal/service/checkout/application/rules/allowlist.go
package rules

import (
	"codgate/internal/pkg/logger"
)

// AllowlistHandler 是链上唯一的放行规则:
// 请求方 IP 命中放行名单时，无条件跳过后续所有检查。
type AllowlistHandler struct {
	NextHandler
}

func (h *AllowlistHandler) Handle(ruleCtx *RuleContext) error {
	ctx, span := ruleCtx.Tracer.Start(ruleCtx.Ctx, "rules.Allowlist")
	defer span.End()

	ip := ruleCtx.Submission.NormalizedIP()
	if _, ok := ruleCtx.Settings.Rules.AllowedIPSet()[ip]; ok {
		logger.Ctx(ctx).Info().
			Str("shop", ruleCtx.Submission.Shop).
			Msg("requester IP is allowlisted, skipping all blocking rules")
		span.AddEvent("allowlisted IP, chain short-circuited")
		return nil
	}

	return h.executeNext(ruleCtx)
}
