package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func productPage(productID string) PageContext {
	return PageContext{ProductID: productID, Template: TemplateProduct, Country: "AE", CartTotal: 100}
}

func TestIsVisible_DisabledModeAlwaysHidden(t *testing.T) {
	settings := DefaultSettings("demo.myshopify.com")
	settings.Mode = VisibilityDisabled
	settings.ProductAllowList = []string{"884422"}
	settings.AllowedCountries = []string{"AE"}

	assert.False(t, settings.IsVisible(productPage("884422")))
	assert.False(t, settings.IsVisible(PageContext{Template: TemplateCart}))
}

func TestIsVisible_TemplateRestriction(t *testing.T) {
	settings := DefaultSettings("demo.myshopify.com")

	settings.Mode = VisibilityCartOnly
	assert.True(t, settings.IsVisible(PageContext{Template: TemplateCart}))
	assert.False(t, settings.IsVisible(productPage("1")))

	settings.Mode = VisibilityProductOnly
	assert.True(t, settings.IsVisible(productPage("1")))
	assert.False(t, settings.IsVisible(PageContext{Template: TemplateCart}))
}

func TestIsVisible_HomeAndCollectionFlags(t *testing.T) {
	settings := DefaultSettings("demo.myshopify.com")
	settings.DisableHomePage = true
	settings.DisableCollectionPages = true

	assert.False(t, settings.IsVisible(PageContext{Template: TemplateIndex}))
	assert.False(t, settings.IsVisible(PageContext{Template: TemplateCollection}))
	assert.True(t, settings.IsVisible(productPage("1")))
}

func TestIsVisible_ProductAllowList(t *testing.T) {
	settings := DefaultSettings("demo.myshopify.com")
	settings.ProductAllowList = []string{"111222"}

	assert.False(t, settings.IsVisible(productPage("884422")))

	settings.ProductAllowList = append(settings.ProductAllowList, "884422")
	assert.True(t, settings.IsVisible(productPage("884422")))

	// 名单条目为带前缀的全局 ID 时按后缀匹配
	settings.ProductAllowList = []string{"gid://shop/Product/884422"}
	assert.True(t, settings.IsVisible(productPage("884422")))
}

func TestIsVisible_DenyListWins(t *testing.T) {
	// 历史数据可能同时带有允许与排除名单，排除名单后评估
	settings := DefaultSettings("demo.myshopify.com")
	settings.ProductAllowList = []string{"884422"}
	settings.ProductDenyList = []string{"884422"}

	assert.False(t, settings.IsVisible(productPage("884422")))
}

func TestIsVisible_CountryRestrictionFailsClosed(t *testing.T) {
	settings := DefaultSettings("demo.myshopify.com")
	settings.AllowedCountries = []string{"AE", "sa"}

	pc := productPage("1")
	pc.Country = "AE"
	assert.True(t, settings.IsVisible(pc))

	pc.Country = "SA"
	assert.True(t, settings.IsVisible(pc))

	pc.Country = "US"
	assert.False(t, settings.IsVisible(pc))

	// 国家无法解析且限制启用 => 不可见
	pc.Country = ""
	assert.False(t, settings.IsVisible(pc))
}

func TestAmountWithinBounds(t *testing.T) {
	settings := DefaultSettings("demo.myshopify.com")

	// 两侧都未设置 => 永远有效
	assert.True(t, settings.AmountWithinBounds(0))
	assert.True(t, settings.AmountWithinBounds(999999))

	settings.MinAmount = 1000
	settings.MaxAmount = 5000

	// 闭区间: 边界值有效
	assert.True(t, settings.AmountWithinBounds(1000))
	assert.True(t, settings.AmountWithinBounds(5000))
	assert.True(t, settings.AmountWithinBounds(1500))

	assert.False(t, settings.AmountWithinBounds(999.99))
	assert.False(t, settings.AmountWithinBounds(5000.01))

	// 单侧为 0 表示该侧无界
	settings.MaxAmount = 0
	assert.True(t, settings.AmountWithinBounds(1000000))
	assert.False(t, settings.AmountWithinBounds(999.99))
}

func TestParseSettings_DefaultAndMerge(t *testing.T) {
	// 历史存量数据缺字段时，缺的部分落在默认值上
	raw := []byte(`{"mode":"product_only","minAmount":100,"blockingRules":{"maxQuantity":5}}`)
	settings, err := ParseSettings("demo.myshopify.com", raw)
	assert.NoError(t, err)

	assert.Equal(t, "demo.myshopify.com", settings.Shop)
	assert.Equal(t, VisibilityProductOnly, settings.Mode)
	assert.Equal(t, float64(100), settings.MinAmount)
	assert.Equal(t, 5, settings.Rules.MaxQuantity)
	assert.Equal(t, PostalModeNone, settings.Rules.PostalMode)
	assert.NotEmpty(t, settings.Rules.RejectMessage)
}

func TestParseSettings_EmptyPayload(t *testing.T) {
	settings, err := ParseSettings("demo.myshopify.com", nil)
	assert.NoError(t, err)
	assert.Equal(t, VisibilityBoth, settings.Mode)
	assert.NotEmpty(t, settings.Rules.RejectMessage)
}

func TestNormalization(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
	assert.Equal(t, "971501234567", NormalizePhone("+971 50-123-4567"))
	assert.Equal(t, "AB1 2CD", NormalizePostal(" ab1 2cd "))
}
