// internal/service/checkout/application/rules/blocklists.go
package rules

const (
	ruleIPBlocklist    = "ip_blocklist"
	ruleEmailBlocklist = "email_blocklist"
	rulePhoneBlocklist = "phone_blocklist"
)

// IPBlocklistHandler 拒绝封禁名单中的请求方 IP。
type IPBlocklistHandler struct {
	NextHandler
}

func (h *IPBlocklistHandler) Handle(ruleCtx *RuleContext) error {
	ip := ruleCtx.Submission.NormalizedIP()
	if ip != "" {
		if _, ok := ruleCtx.Settings.Rules.BlockedIPSet()[ip]; ok {
			return ruleCtx.reject(ruleIPBlocklist)
		}
	}
	return h.executeNext(ruleCtx)
}

// EmailBlocklistHandler 拒绝封禁名单中的邮箱（大小写不敏感）。
type EmailBlocklistHandler struct {
	NextHandler
}

func (h *EmailBlocklistHandler) Handle(ruleCtx *RuleContext) error {
	email := ruleCtx.Submission.NormalizedEmail()
	if email != "" {
		if _, ok := ruleCtx.Settings.Rules.BlockedEmailSet()[email]; ok {
			return ruleCtx.reject(ruleEmailBlocklist)
		}
	}
	return h.executeNext(ruleCtx)
}

// PhoneBlocklistHandler 拒绝封禁名单中的手机号（只比较数字）。
type PhoneBlocklistHandler struct {
	NextHandler
}

func (h *PhoneBlocklistHandler) Handle(ruleCtx *RuleContext) error {
	phone := ruleCtx.Submission.NormalizedPhone()
	if phone != "" {
		if _, ok := ruleCtx.Settings.Rules.BlockedPhoneSet()[phone]; ok {
			return ruleCtx.reject(rulePhoneBlocklist)
		}
	}
	return h.executeNext(ruleCtx)
}
