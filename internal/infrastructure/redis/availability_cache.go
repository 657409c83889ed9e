package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// AvailabilityCache はルームタイプ×日付ごとの空室数キャッシュを管理する
// 在庫APIの読み取りパスで使用し、予約確定や在庫更新時に無効化される
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

// Get は空室数をキャッシュから取得する
func (c *AvailabilityCache) Get(ctx context.Context, roomTypeID int64, date time.Time) (int, error) {
	val, err := c.client.Get(ctx, c.key(roomTypeID, date)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// Set は空室数をキャッシュに保存する
func (c *AvailabilityCache) Set(ctx context.Context, roomTypeID int64, date time.Time, count int) error {
	if err := c.client.Set(ctx, c.key(roomTypeID, date), count, c.ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は指定日のキャッシュを無効化する
func (c *AvailabilityCache) Invalidate(ctx context.Context, roomTypeID int64, date time.Time) error {
	if err := c.client.Del(ctx, c.key(roomTypeID, date)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) key(roomTypeID int64, date time.Time) string {
	return fmt.Sprintf("availability:%d:%s", roomTypeID, date.Format("2006-01-02"))
}
