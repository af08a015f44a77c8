// internal/pkg/redis/client.go
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client 是对 go-redis 客户端的一层薄封装，
// 统一连接参数，并暴露业务方常用的少量操作。
type Client struct {
	rdb *redis.Client
}

// NewClient 创建一个新的 Redis 客户端。
func NewClient(addr string) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	return &Client{rdb: rdb}
}

// GetBytes 读取 key 的原始字节。key 不存在时返回 (nil, false, nil)。
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// SetBytes 写入 key，并设置过期时间。
func (c *Client) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Del 删除 key。
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// GetClient 暴露底层客户端，供需要 pipeline 等高级操作的调用方使用。
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close 关闭底层连接池。
func (c *Client) Close() error {
	return c.rdb.Close()
}
