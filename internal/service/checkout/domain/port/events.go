// internal/service/checkout/domain/port/events.go
package port

import (
	"context"

	"codgate/internal/service/checkout/domain"
)

// PurchaseEventProducer 把成交事件发布到分析事件流。
// 发布失败不得影响下单主流程。
type PurchaseEventProducer interface {
	Publish(ctx context.Context, event *domain.PurchasePlaced) error
}
