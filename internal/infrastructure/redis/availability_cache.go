package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BlockedRange は物件がブロックされている期間 [CheckIn, CheckOut)
type BlockedRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// AvailabilityCache は物件ごとのブロッキング予約期間のキャッシュを管理する
// 検索経路の読み取り専用。予約の作成・キャンセル時に必ず無効化する
type AvailabilityCache struct {
	client *redis.Client
}

// NewAvailabilityCache は新しい AvailabilityCache インスタンスを作成する
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

// GetBlockedRanges は物件のブロッキング期間一覧をキャッシュから取得する
func (c *AvailabilityCache) GetBlockedRanges(ctx context.Context, propertyID string) ([]BlockedRange, error) {
	key := c.blockedRangesKey(propertyID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var ranges []BlockedRange
	if err := json.Unmarshal(data, &ranges); err != nil {
		return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}
	return ranges, nil
}

// SetBlockedRanges は物件のブロッキング期間一覧をキャッシュに保存する
func (c *AvailabilityCache) SetBlockedRanges(ctx context.Context, propertyID string, ranges []BlockedRange, ttl time.Duration) error {
	data, err := json.Marshal(ranges)
	if err != nil {
		return fmt.Errorf("キャッシュの直列化に失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.blockedRangesKey(propertyID), data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は物件のキャッシュを無効化する
func (c *AvailabilityCache) Invalidate(ctx context.Context, propertyID string) error {
	if err := c.client.Del(ctx, c.blockedRangesKey(propertyID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) blockedRangesKey(propertyID string) string {
	return fmt.Sprintf("availability:blocked:%s", propertyID)
}
