// internal/service/checkout/domain/repository.go
package domain

import "context"

// SettingsRepository 提供店铺配置的只读访问。
// 位于领域层，由基础设施层实现（含缓存装饰器）。
type SettingsRepository interface {
	// Get 返回形状完整的店铺配置；店铺不存在时返回 ErrSettingsNotFound。
	Get(ctx context.Context, shop string) (*ShopSettings, error)
}

// TrackingRepository 持久化订单追踪记录并支撑限频查询。
type TrackingRepository interface {
	// Create 写入一条追踪记录。每笔成功订单恰好写入一次。
	Create(ctx context.Context, record *OrderTrackingRecord) error

	// HasRecent 判断窗口内是否存在同 IP / 邮箱 / 手机号的历史订单。
	HasRecent(ctx context.Context, query RecentOrderQuery) (bool, error)
}

// CartSessionRepository 是弃单追踪子系统的写入口。
type CartSessionRepository interface {
	// MarkRecovered 把会话标记为已挽回并关联订单。
	// 会话不存在或已挽回时为幂等空操作。
	MarkRecovered(ctx context.Context, shop, sessionID, orderID string) error
}
