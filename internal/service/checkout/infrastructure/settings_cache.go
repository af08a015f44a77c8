// internal/service/checkout/infrastructure/settings_cache.go
package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"codgate/internal/pkg/logger"
	pkgredis "codgate/internal/pkg/redis"
	"codgate/internal/service/checkout/domain"
)

const settingsCacheKeyPrefix = "codgate:settings:"

// CachedSettingsRepository 为配置仓储加一层短 TTL 的 Redis 缓存。
// TTL 在构造时注入；设为 0 时缓存完全旁路（测试注入零 TTL 即可）。
// 拦截规则属于配置的一部分，TTL 必须保持在分钟级，
// 不能让过期的规则数据实质性地改变放行决策。
type CachedSettingsRepository struct {
	inner domain.SettingsRepository
	cache *pkgredis.Client
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedSettingsRepository 创建带缓存的配置仓储。
func NewCachedSettingsRepository(inner domain.SettingsRepository, cache *pkgredis.Client, ttl time.Duration) *CachedSettingsRepository {
	return &CachedSettingsRepository{inner: inner, cache: cache, ttl: ttl}
}

// Get 先查缓存，未命中时经 singleflight 回源，避免同店并发请求打穿数据库。
func (r *CachedSettingsRepository) Get(ctx context.Context, shop string) (*domain.ShopSettings, error) {
	if r.ttl <= 0 || r.cache == nil {
		return r.inner.Get(ctx, shop)
	}

	key := settingsCacheKeyPrefix + shop
	if data, found, err := r.cache.GetBytes(ctx, key); err == nil && found {
		settings, parseErr := domain.ParseSettings(shop, data)
		if parseErr == nil {
			return settings, nil
		}
		// 缓存内容损坏时当作未命中回源
		logger.Ctx(ctx).Warn().Err(parseErr).Str("shop", shop).Msg("corrupt settings cache entry, falling through")
	} else if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("shop", shop).Msg("settings cache read failed, falling through")
	}

	result, err, _ := r.group.Do(shop, func() (interface{}, error) {
		settings, err := r.inner.Get(ctx, shop)
		if err != nil {
			return nil, err
		}
		if data, marshalErr := json.Marshal(settings); marshalErr == nil {
			if cacheErr := r.cache.SetBytes(ctx, key, data, r.ttl); cacheErr != nil {
				logger.Ctx(ctx).Warn().Err(cacheErr).Str("shop", shop).Msg("settings cache write failed")
			}
		}
		return settings, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.ShopSettings), nil
}

// Invalidate 删除某店铺的缓存条目，供管理侧在配置保存后调用。
func (r *CachedSettingsRepository) Invalidate(ctx context.Context, shop string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, settingsCacheKeyPrefix+shop)
}
