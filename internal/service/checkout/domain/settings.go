// internal/service/checkout/domain/settings.go
package domain

import (
	"encoding/json"
	"strings"
)

// VisibilityMode 定义了下单表单的全局展示策略。
type VisibilityMode string

const (
	VisibilityDisabled    VisibilityMode = "disabled"     // 完全关闭
	VisibilityCartOnly    VisibilityMode = "cart_only"    // 仅购物车页
	VisibilityProductOnly VisibilityMode = "product_only" // 仅商品页
	VisibilityBoth        VisibilityMode = "both"         // 两者都展示
)

// PostalMode 定义了邮编规则的匹配方式。
type PostalMode string

const (
	PostalModeNone    PostalMode = "none"    // 不检查邮编
	PostalModeAllow   PostalMode = "allow"   // 仅允许名单内的邮编
	PostalModeExclude PostalMode = "exclude" // 拒绝名单内的邮编
)

// BlockingRules 是店铺配置中的防滥用规则子对象。
// 各个名单字段以换行分隔的原始文本存储（与管理后台的多行输入框一致），
// 匹配时统一做归一化，绝不直接比较原始输入。
type BlockingRules struct {
	RejectMessage string `json:"rejectMessage"`

	AllowedIPs    string `json:"allowedIps"`
	BlockedIPs    string `json:"blockedIps"`
	BlockedEmails string `json:"blockedEmails"`
	BlockedPhones string `json:"blockedPhones"`

	MaxQuantity int `json:"maxQuantity"`

	PostalMode  PostalMode `json:"postalMode"`
	PostalCodes string     `json:"postalCodes"`

	// RepeatWindowHours > 0 时启用同客重复下单限制
	RepeatWindowHours int `json:"repeatWindowHours"`

	RiskScoringEnabled bool `json:"riskScoringEnabled"`
	RiskAutoReject     bool `json:"riskAutoReject"`

	// CustomExpr 是管理员自定义的 CEL 拦截表达式（可选）。
	// 表达式为 true 时拒绝下单。
	CustomExpr string `json:"customExpr"`
}

// AllowedIPSet 返回归一化后的放行 IP 集合。
func (r *BlockingRules) AllowedIPSet() map[string]struct{} {
	return listToSet(r.AllowedIPs, strings.TrimSpace)
}

// BlockedIPSet 返回归一化后的封禁 IP 集合。
func (r *BlockingRules) BlockedIPSet() map[string]struct{} {
	return listToSet(r.BlockedIPs, strings.TrimSpace)
}

// BlockedEmailSet 返回归一化后的封禁邮箱集合。
func (r *BlockingRules) BlockedEmailSet() map[string]struct{} {
	return listToSet(r.BlockedEmails, NormalizeEmail)
}

// BlockedPhoneSet 返回归一化后的封禁手机号集合。
func (r *BlockingRules) BlockedPhoneSet() map[string]struct{} {
	return listToSet(r.BlockedPhones, NormalizePhone)
}

// PostalCodeSet 返回归一化后的邮编集合。
func (r *BlockingRules) PostalCodeSet() map[string]struct{} {
	return listToSet(r.PostalCodes, NormalizePostal)
}

// ShopSettings 是单个店铺的全部 COD 下单配置。
// 管理后台负责写入；本流水线只读。
type ShopSettings struct {
	Shop string `json:"shop"`

	Mode VisibilityMode `json:"mode"`

	// 商品级允许/排除名单。后台界面上二者互斥，但历史数据可能同时存在，
	// 解析时必须两者都容忍；排除名单后评估（deny wins）。
	ProductAllowList []string `json:"productAllowList"`
	ProductDenyList  []string `json:"productDenyList"`

	AllowedCountries []string `json:"allowedCountries"`

	// 金额上下限（主币种单位）。0 表示该侧无限制。
	MinAmount float64 `json:"minAmount"`
	MaxAmount float64 `json:"maxAmount"`

	DisableHomePage        bool `json:"disableHomePage"`
	DisableCollectionPages bool `json:"disableCollectionPages"`
	HideAddToCart          bool `json:"hideAddToCart"`
	HideBuyNow             bool `json:"hideBuyNow"`

	Rules BlockingRules `json:"blockingRules"`

	// RedirectURL 是跳转集成模式下的感谢页地址。
	RedirectURL string `json:"redirectUrl"`
}

// DefaultSettings 返回一套保守的默认配置。
// 历史数据缺字段时，以默认值为底、存量 JSON 覆盖其上（default-and-merge），
// 保证下游永远拿到形状完整的配置对象。
func DefaultSettings(shop string) *ShopSettings {
	return &ShopSettings{
		Shop: shop,
		Mode: VisibilityBoth,
		Rules: BlockingRules{
			RejectMessage: "Your order could not be processed. Please contact the store for assistance.",
			PostalMode:    PostalModeNone,
		},
	}
}

// ParseSettings 在读取边界处把存储的 JSON 配置解析为完整的类型化对象。
func ParseSettings(shop string, raw []byte) (*ShopSettings, error) {
	settings := DefaultSettings(shop)
	if len(raw) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(raw, settings); err != nil {
		return nil, err
	}
	settings.Shop = shop
	if settings.Rules.RejectMessage == "" {
		settings.Rules.RejectMessage = DefaultSettings(shop).Rules.RejectMessage
	}
	if settings.Rules.PostalMode == "" {
		settings.Rules.PostalMode = PostalModeNone
	}
	if settings.Mode == "" {
		settings.Mode = VisibilityBoth
	}
	return settings, nil
}

func listToSet(raw string, normalize func(string) string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, entry := range SplitList(raw) {
		if n := normalize(entry); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// SplitList 把换行（或逗号）分隔的名单文本切分为条目，去掉空白项。
func SplitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	items := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
