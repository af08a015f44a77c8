// internal/service/checkout/infrastructure/gorm_model.go
package infrastructure

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// ShopSettingsModel 对应数据库中的 shop_settings 表。
// Settings 列保存管理后台写入的 JSON 配置，读取时在领域层做 default-and-merge。
type ShopSettingsModel struct {
	gorm.Model
	Shop     string `gorm:"uniqueIndex;size:255"`
	Settings string `gorm:"type:text"`
}

// TableName 指定 GORM 应该使用的表名
func (ShopSettingsModel) TableName() string {
	return "shop_settings"
}

// OrderTrackingModel 对应数据库中的 order_tracking 表。
type OrderTrackingModel struct {
	ID         uint   `gorm:"primaryKey"`
	Shop       string `gorm:"index:idx_tracking_shop_created;size:255"`
	OrderID    string `gorm:"size:64"`
	IP         string `gorm:"size:64"`
	Email      string `gorm:"size:255"`
	Phone      string `gorm:"size:32"`
	PostalCode string `gorm:"size:32"`
	Quantity   int
	TotalPrice int64
	Currency   string    `gorm:"size:8"`
	CreatedAt  time.Time `gorm:"index:idx_tracking_shop_created"`
}

// TableName 指定 GORM 应该使用的表名
func (OrderTrackingModel) TableName() string {
	return "order_tracking"
}

// CartSessionModel 对应数据库中的 cart_sessions 表（弃单追踪子系统所有，
// 本流水线只做挽回标记这一种更新）。
type CartSessionModel struct {
	gorm.Model
	SessionID   string `gorm:"uniqueIndex;size:64"`
	Shop        string `gorm:"size:255"`
	Recovered   bool
	OrderID     sql.NullString
	RecoveredAt sql.NullTime
}

// TableName 指定 GORM 应该使用的表名
func (CartSessionModel) TableName() string {
	return "cart_sessions"
}
