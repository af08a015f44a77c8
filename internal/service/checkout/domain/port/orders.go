// internal/service/checkout/domain/port/orders.go
package port

import (
	"context"

	"codgate/internal/service/checkout/domain"
)

// DraftOrderInput 是创建草稿订单所需的全部数据。
type DraftOrderInput struct {
	Email           string
	Note            string
	Tags            []string
	ShippingAddress domain.Address
	LineItems       []domain.LineItem
}

// UserError 是订单管理 API 返回的字段级业务错误，
// 与传输层错误严格区分。
type UserError struct {
	Field   string
	Message string
}

// CompletedOrder 是草稿完成后得到的正式订单标识。
type CompletedOrder struct {
	OrderID   string
	OrderName string
}

// OrderAPI 是外部订单管理系统的出站端口。
// 订单创建是两阶段操作：先建草稿，再显式完成；两步可独立失败。
type OrderAPI interface {
	// CreateDraftOrder 创建草稿订单。
	// userErrs 非空表示 API 侧业务校验失败（此时 err 为 nil，draftID 为空）；
	// err 非空表示传输层失败。
	CreateDraftOrder(ctx context.Context, shop string, input *DraftOrderInput) (draftID string, userErrs []UserError, err error)

	// CompleteDraftOrder 把草稿订单完成为正式订单。
	CompleteDraftOrder(ctx context.Context, shop, draftID string) (*CompletedOrder, error)
}
