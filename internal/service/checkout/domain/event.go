// internal/service/checkout/domain/event.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PurchasePlaced 是订单成功创建并完成后发布的领域事件，
// 供下游分析消费。金额为主币种单位。
type PurchasePlaced struct {
	EventID   string     `json:"eventId"`
	Shop      string     `json:"shop"`
	OrderID   string     `json:"orderId"`
	OrderName string     `json:"orderName,omitempty"`
	Value     float64    `json:"value"`
	Currency  string     `json:"currency"`
	Items     []LineItem `json:"items"`
	PlacedAt  time.Time  `json:"placedAt"`
}

// NewEventID 为领域事件生成全局唯一标识，下游按其去重。
func NewEventID() string {
	return uuid.New().String()
}
