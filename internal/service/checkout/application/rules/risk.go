// internal/service/checkout/application/rules/risk.go
package rules

import (
	"go.opentelemetry.io/otel/attribute"

	"codgate/internal/pkg/logger"
	"codgate/internal/service/checkout/domain/port"
)

const ruleRiskScore = "risk_score"

// RiskScoreHandler 负责可选的风控评分步骤。
// 自动拒绝开启且建议为 reject 时，在任何确定性规则之前立即终止。
type RiskScoreHandler struct {
	NextHandler
}

func (h *RiskScoreHandler) Handle(ruleCtx *RuleContext) error {
	if !ruleCtx.Settings.Rules.RiskScoringEnabled || ruleCtx.RiskScorer == nil {
		return h.executeNext(ruleCtx)
	}

	ctx, span := ruleCtx.Tracer.Start(ruleCtx.Ctx, "rules.RiskScore")
	defer span.End()

	sub := ruleCtx.Submission
	assessment, err := ruleCtx.RiskScorer.Score(ctx, &port.RiskInput{
		IP:        sub.NormalizedIP(),
		Email:     sub.NormalizedEmail(),
		Phone:     sub.NormalizedPhone(),
		City:      sub.Address.City,
		Country:   sub.Address.Country,
		Zip:       sub.NormalizedPostal(),
		Value:     sub.TotalMajor(),
		ItemCount: sub.TotalQuantity(),
	})
	if err != nil {
		// 风控是增强手段，评分服务不可用时不拦截正常下单
		span.RecordError(err)
		logger.Ctx(ctx).Warn().Err(err).
			Str("shop", sub.Shop).
			Msg("risk scorer unavailable, continuing without score")
		return h.executeNext(ruleCtx)
	}

	ruleCtx.Score = assessment.Score
	span.SetAttributes(
		attribute.Int("risk.score", assessment.Score),
		attribute.String("risk.recommendation", string(assessment.Recommendation)),
	)

	if ruleCtx.Settings.Rules.RiskAutoReject && assessment.Recommendation == port.RecommendationReject {
		logger.Ctx(ctx).Warn().
			Str("shop", sub.Shop).
			Int("score", assessment.Score).
			Strs("factors", assessment.Factors).
			Msg("submission auto-rejected by risk score")
		return ruleCtx.reject(ruleRiskScore)
	}

	return h.executeNext(ruleCtx)
}
