// internal/service/checkout/domain/visibility.go
package domain

import "strings"

// PageContext 描述一次店面请求发生的位置与环境。
type PageContext struct {
	ProductID string
	Template  string // 店面模板名: "product", "cart", "index", "collection", ...
	Country   string // 请求方解析出的国家码，可为空
	CartTotal float64
}

const (
	TemplateProduct    = "product"
	TemplateCart       = "cart"
	TemplateIndex      = "index"
	TemplateCollection = "collection"
)

// IsVisible 判断表单是否允许在当前上下文展示/处理。
// 按顺序评估，任一项不满足立即返回 false。
func (s *ShopSettings) IsVisible(pc PageContext) bool {
	// 1. 全局关闭
	if s.Mode == VisibilityDisabled {
		return false
	}

	// 2. 模板限制
	template := strings.ToLower(strings.TrimSpace(pc.Template))
	switch s.Mode {
	case VisibilityCartOnly:
		if template != TemplateCart {
			return false
		}
	case VisibilityProductOnly:
		if template != TemplateProduct {
			return false
		}
	}

	// 3. 首页/集合页单独关闭
	if s.DisableHomePage && template == TemplateIndex {
		return false
	}
	if s.DisableCollectionPages && template == TemplateCollection {
		return false
	}

	// 4. 商品允许名单
	if len(s.ProductAllowList) > 0 && !productInList(s.ProductAllowList, pc.ProductID) {
		return false
	}

	// 5. 商品排除名单（后于允许名单评估，deny wins）
	if len(s.ProductDenyList) > 0 && productInList(s.ProductDenyList, pc.ProductID) {
		return false
	}

	// 6. 国家限制。限制启用但国家无法解析时按不可见处理（fail closed）。
	if len(s.AllowedCountries) > 0 {
		country := strings.ToUpper(strings.TrimSpace(pc.Country))
		if country == "" {
			return false
		}
		found := false
		for _, c := range s.AllowedCountries {
			if strings.ToUpper(strings.TrimSpace(c)) == country {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// AmountWithinBounds 校验购物车总额是否落在配置的上下限内（闭区间）。
// min 和 max 都为 0 时视为不限制；单侧为 0 表示该侧无界。
func (s *ShopSettings) AmountWithinBounds(total float64) bool {
	if s.MinAmount == 0 && s.MaxAmount == 0 {
		return true
	}
	if s.MinAmount > 0 && total < s.MinAmount {
		return false
	}
	if s.MaxAmount > 0 && total > s.MaxAmount {
		return false
	}
	return true
}

// productInList 判断商品 ID 是否命中名单。
// 名单条目可能是纯数字 ID，也可能是带前缀的全局 ID，按后缀匹配兼容两种形态。
func productInList(list []string, productID string) bool {
	id := strings.TrimSpace(productID)
	if id == "" {
		return false
	}
	for _, entry := range list {
		e := strings.TrimSpace(entry)
		if e == "" {
			continue
		}
		if e == id || strings.HasSuffix(e, "/"+id) || strings.HasSuffix(id, "/"+e) {
			return true
		}
	}
	return false
}
