// internal/service/checkout/domain/submission.go
package domain

import (
	"strings"
	"unicode"
)

// LineItem 是一条提交的购买明细。
type LineItem struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// CartSnapshot 是提交时购物车的快照。TotalPrice 为最小货币单位（分）。
type CartSnapshot struct {
	Currency   string `json:"currency"`
	TotalPrice int64  `json:"total_price"`
	ItemCount  int    `json:"item_count"`
}

// Address 是收货地址。
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Province  string `json:"province,omitempty"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
}

// OrderSubmission 是一次下单请求的完整载荷。
// 仅在单次请求的生命周期内存在，从不按原样持久化。
type OrderSubmission struct {
	Shop    string
	IP      string
	Email   string
	Phone   string
	Address Address
	Items   []LineItem
	Cart    CartSnapshot
	Note    string

	// SessionID 关联弃单追踪子系统中的会话，可为空。
	SessionID string
}

// TotalQuantity 返回全部明细的数量之和。
func (o *OrderSubmission) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// TotalMajor 以主币种单位返回购物车总额（150000 分 => 1500.00）。
func (o *OrderSubmission) TotalMajor() float64 {
	return float64(o.Cart.TotalPrice) / 100
}

// NormalizedEmail 返回归一化后的客户邮箱。
func (o *OrderSubmission) NormalizedEmail() string {
	return NormalizeEmail(o.Email)
}

// NormalizedPhone 返回归一化后的客户手机号。
func (o *OrderSubmission) NormalizedPhone() string {
	return NormalizePhone(o.Phone)
}

// NormalizedPostal 返回归一化后的收货邮编。
func (o *OrderSubmission) NormalizedPostal() string {
	return NormalizePostal(o.Address.Zip)
}

// NormalizedIP 返回归一化后的请求方 IP。
func (o *OrderSubmission) NormalizedIP() string {
	return strings.TrimSpace(o.IP)
}

// NormalizeEmail 小写并去除首尾空白。
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone 只保留数字字符。
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePostal 大写并去除首尾空白。
func NormalizePostal(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
