// internal/service/checkout/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"codgate/internal/service/checkout/domain"
)

// GormSettingsRepository 是 domain.SettingsRepository 的 GORM 实现。
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository 创建一个新的 GORM 配置仓储实例。
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get 读取店铺配置并在读取边界完成 default-and-merge。
func (r *GormSettingsRepository) Get(ctx context.Context, shop string) (*domain.ShopSettings, error) {
	var model ShopSettingsModel
	err := r.db.WithContext(ctx).Where("shop = ?", shop).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, err
	}
	return domain.ParseSettings(shop, []byte(model.Settings))
}

// GormTrackingRepository 是 domain.TrackingRepository 的 GORM 实现。
type GormTrackingRepository struct {
	db *gorm.DB
}

// NewGormTrackingRepository 创建一个新的 GORM 追踪仓储实例。
func NewGormTrackingRepository(db *gorm.DB) *GormTrackingRepository {
	return &GormTrackingRepository{db: db}
}

// Create 写入一条订单追踪记录。
func (r *GormTrackingRepository) Create(ctx context.Context, record *domain.OrderTrackingRecord) error {
	model := ToTrackingModel(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	record.ID = model.ID
	return nil
}

// HasRecent 查询窗口内是否存在同一客户的历史订单。
// IP / 邮箱 / 手机号为"或"关系；空值不参与匹配，避免空串互相命中。
func (r *GormTrackingRepository) HasRecent(ctx context.Context, query domain.RecentOrderQuery) (bool, error) {
	identity := r.db.Session(&gorm.Session{NewDB: true})
	hasIdentity := false
	add := func(cond string, value string) {
		if value == "" {
			return
		}
		if hasIdentity {
			identity = identity.Or(cond, value)
		} else {
			identity = identity.Where(cond, value)
			hasIdentity = true
		}
	}
	add("ip = ?", query.IP)
	add("email = ?", query.Email)
	add("phone = ?", query.Phone)
	if !hasIdentity {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&OrderTrackingModel{}).
		Where("shop = ? AND created_at >= ?", query.Shop, query.Since).
		Where(identity).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormCartSessionRepository 是 domain.CartSessionRepository 的 GORM 实现。
type GormCartSessionRepository struct {
	db *gorm.DB
}

// NewGormCartSessionRepository 创建一个新的 GORM 弃单会话仓储实例。
func NewGormCartSessionRepository(db *gorm.DB) *GormCartSessionRepository {
	return &GormCartSessionRepository{db: db}
}

// MarkRecovered 把弃单会话标记为已挽回。
// 条件限定 recovered = false，会话不存在或已挽回时影响行数为 0，天然幂等。
func (r *GormCartSessionRepository) MarkRecovered(ctx context.Context, shop, sessionID, orderID string) error {
	return r.db.WithContext(ctx).Model(&CartSessionModel{}).
		Where("shop = ? AND session_id = ? AND recovered = ?", shop, sessionID, false).
		Updates(map[string]interface{}{
			"recovered":    true,
			"order_id":     sql.NullString{String: orderID, Valid: true},
			"recovered_at": sql.NullTime{Time: time.Now(), Valid: true},
		}).Error
}
