// internal/service/checkout/application/rules/quantity.go
package rules

const ruleQuantityCap = "quantity_cap"

// QuantityCapHandler 限制单笔订单的商品总数量。
type QuantityCapHandler struct {
	NextHandler
}

func (h *QuantityCapHandler) Handle(ruleCtx *RuleContext) error {
	max := ruleCtx.Settings.Rules.MaxQuantity
	if max > 0 && ruleCtx.Submission.TotalQuantity() > max {
		return ruleCtx.reject(ruleQuantityCap)
	}
	return h.executeNext(ruleCtx)
}
