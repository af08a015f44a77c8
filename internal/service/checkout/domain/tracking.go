// internal/service/checkout/domain/tracking.go
package domain

import "time"

// OrderTrackingRecord 是每笔成功订单留下的追踪记录。
// 仅在创建后用于同客重复下单的限频查询，本流水线从不更新或删除它。
type OrderTrackingRecord struct {
	ID         uint
	Shop       string
	OrderID    string
	IP         string
	Email      string // 已归一化
	Phone      string // 已归一化
	PostalCode string // 已归一化
	Quantity   int
	TotalPrice int64 // 最小货币单位
	Currency   string
	CreatedAt  time.Time
}

// NewTrackingRecord 从一次成功的提交构造追踪记录，落库字段全部归一化。
func NewTrackingRecord(sub *OrderSubmission, orderID string, at time.Time) *OrderTrackingRecord {
	return &OrderTrackingRecord{
		Shop:       sub.Shop,
		OrderID:    orderID,
		IP:         sub.NormalizedIP(),
		Email:      sub.NormalizedEmail(),
		Phone:      sub.NormalizedPhone(),
		PostalCode: sub.NormalizedPostal(),
		Quantity:   sub.TotalQuantity(),
		TotalPrice: sub.Cart.TotalPrice,
		Currency:   sub.Cart.Currency,
		CreatedAt:  at,
	}
}

// RecentOrderQuery 是重复下单限频的查询条件。
// IP / Email / Phone 为"或"关系，空值不参与匹配。
type RecentOrderQuery struct {
	Shop  string
	Since time.Time
	IP    string
	Email string
	Phone string
}
