// internal/service/checkout/application/rules/postal.go
package rules

import "codgate/internal/service/checkout/domain"

const rulePostalCode = "postal_code"

// PostalCodeHandler 按配置的模式检查收货邮编:
// exclude 模式拒绝名单内的邮编，allow 模式拒绝名单外的邮编。
type PostalCodeHandler struct {
	NextHandler
}

func (h *PostalCodeHandler) Handle(ruleCtx *RuleContext) error {
	mode := ruleCtx.Settings.Rules.PostalMode
	if mode == domain.PostalModeNone || mode == "" {
		return h.executeNext(ruleCtx)
	}

	postal := ruleCtx.Submission.NormalizedPostal()
	_, inList := ruleCtx.Settings.Rules.PostalCodeSet()[postal]

	switch mode {
	case domain.PostalModeExclude:
		if inList {
			return ruleCtx.reject(rulePostalCode)
		}
	case domain.PostalModeAllow:
		if !inList {
			return ruleCtx.reject(rulePostalCode)
		}
	}

	return h.executeNext(ruleCtx)
}
