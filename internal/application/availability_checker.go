package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kokitko/bookinline-sub000/internal/domain/booking"
	"github.com/kokitko/bookinline-sub000/internal/domain/property"
	redisinfra "github.com/kokitko/bookinline-sub000/internal/infrastructure/redis"
	"github.com/kokitko/bookinline-sub000/internal/pkg/logger"
)

// blockedRangesTTL は検索経路キャッシュの有効期間
// 予約の作成・キャンセル時に明示的に無効化されるため短くてよい
const blockedRangesTTL = 1 * time.Minute

// AvailabilityChecker は物件の空室判定を行う
// 半開区間 [checkIn, checkOut) の重複規則はここに集約され、
// 予約作成（admission）と検索の両方が同じ規則を通る
type AvailabilityChecker struct {
	bookingRepo  booking.Repository
	propertyRepo property.Repository
	cache        *redisinfra.AvailabilityCache // nil の場合キャッシュなしで動作
}

func NewAvailabilityChecker(br booking.Repository, pr property.Repository, cache *redisinfra.AvailabilityCache) *AvailabilityChecker {
	return &AvailabilityChecker{bookingRepo: br, propertyRepo: pr, cache: cache}
}

// IsAvailable は物件が [checkIn, checkOut) で予約可能かを返す
// 受付フラグが false の物件は日付に関係なく false
// 検索・照会用の述語であり、予約作成の事前チェックには HasConflict を直接使う
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	checkIn, checkOut = booking.ToDate(checkIn), booking.ToDate(checkOut)
	if err := booking.ValidateRange(checkIn, checkOut); err != nil {
		return false, err
	}
	p, err := c.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return false, err
	}
	if !p.Available {
		return false, nil
	}
	conflict, err := c.hasConflictCached(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// HasConflict は [checkIn, checkOut) が既存のブロッキング予約と重なるかを返す
// 予約作成の事前チェック用。キャッシュを経由せず必ずストレージを参照する
func (c *AvailabilityChecker) HasConflict(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	blocking, err := c.bookingRepo.GetBlockingByPropertyID(ctx, propertyID)
	if err != nil {
		return false, fmt.Errorf("予約中期間の取得に失敗: %w", err)
	}
	for _, b := range blocking {
		if b.OverlapsRange(checkIn, checkOut) {
			return true, nil
		}
	}
	return false, nil
}

// hasConflictCached は検索経路用の重複判定（キャッシュ併用）
func (c *AvailabilityChecker) hasConflictCached(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	if c.cache == nil {
		return c.HasConflict(ctx, propertyID, checkIn, checkOut)
	}

	ranges, err := c.cache.GetBlockedRanges(ctx, propertyID)
	if err != nil {
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			// キャッシュ障害は判定を止めずストレージへフォールバック
			logger.Warn("空室キャッシュの取得に失敗", zap.String("property_id", propertyID), zap.Error(err))
		}
		blocking, repoErr := c.bookingRepo.GetBlockingByPropertyID(ctx, propertyID)
		if repoErr != nil {
			return false, fmt.Errorf("予約中期間の取得に失敗: %w", repoErr)
		}
		ranges = make([]redisinfra.BlockedRange, len(blocking))
		for i, b := range blocking {
			ranges[i] = redisinfra.BlockedRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
		}
		if setErr := c.cache.SetBlockedRanges(ctx, propertyID, ranges, blockedRangesTTL); setErr != nil {
			logger.Warn("空室キャッシュの保存に失敗", zap.String("property_id", propertyID), zap.Error(setErr))
		}
	}

	for _, r := range ranges {
		if booking.Overlaps(r.CheckIn, r.CheckOut, checkIn, checkOut) {
			return true, nil
		}
	}
	return false, nil
}

// InvalidateCache は物件の空室キャッシュを無効化する（予約の作成・キャンセル時に呼ぶ）
func (c *AvailabilityChecker) InvalidateCache(ctx context.Context, propertyID string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx, propertyID); err != nil {
		logger.Warn("空室キャッシュの無効化に失敗", zap.String("property_id", propertyID), zap.Error(err))
	}
}
