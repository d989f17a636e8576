package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kokitko/bookinline-sub000/internal/domain/booking"
	"github.com/kokitko/bookinline-sub000/internal/domain/identity"
	"github.com/kokitko/bookinline-sub000/internal/domain/property"
	"github.com/kokitko/bookinline-sub000/internal/domain/transaction"
	redisinfra "github.com/kokitko/bookinline-sub000/internal/infrastructure/redis"
	"github.com/kokitko/bookinline-sub000/internal/pkg/logger"
	"github.com/kokitko/bookinline-sub000/internal/pkg/metrics"
)

const (
	propertyLockTTL  = 10 * time.Second
	lockMaxRetries   = 3
	lockRetryDelay   = 100 * time.Millisecond
	defaultPageLimit = 20
)

// BookingService は予約のライフサイクル全体を司る
// 状態遷移はこのサービス（とドメインエンティティの遷移メソッド）だけが行う
type BookingService struct {
	txManager    transaction.Manager
	bookingRepo  booking.Repository
	propertyRepo property.Repository
	adminChecker identity.AdminChecker
	checker      *AvailabilityChecker
	lockManager  *redisinfra.LockManager // nil の場合ロックなし（DBの排他制約が正しさを保証）
	publisher    booking.EventPublisher  // nil の場合イベント配信なし
	metrics      *metrics.Metrics        // nil の場合メトリクスなし
	now          func() time.Time
}

func NewBookingService(
	tm transaction.Manager,
	br booking.Repository,
	pr property.Repository,
	ac identity.AdminChecker,
	checker *AvailabilityChecker,
	lm *redisinfra.LockManager,
	pub booking.EventPublisher,
	m *metrics.Metrics,
) *BookingService {
	return &BookingService{
		txManager:    tm,
		bookingRepo:  br,
		propertyRepo: pr,
		adminChecker: ac,
		checker:      checker,
		lockManager:  lm,
		publisher:    pub,
		metrics:      m,
		now:          time.Now,
	}
}

type CreateBookingInput struct {
	PropertyID string
	GuestID    string
	CheckIn    time.Time
	CheckOut   time.Time
}

// CreateBooking は空室判定を通過した場合のみ保留中の予約を作成する
//
// 同時作成との競合対策は二段構え:
//  1. 物件単位の分散ロックで事前チェック〜INSERTを直列化（軽減策）
//  2. bookings テーブルの排他制約が重複を最終的に拒否し、違反は
//     ErrDateConflict として返る（プロセス多重・クラッシュ下でも正しい）
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	checkIn, checkOut := booking.ToDate(input.CheckIn), booking.ToDate(input.CheckOut)

	if err := booking.ValidateRange(checkIn, checkOut); err != nil {
		s.countBooking("invalid")
		return nil, err
	}
	if checkIn.Before(booking.ToDate(s.now())) {
		s.countBooking("invalid")
		return nil, booking.ErrCheckInPast
	}

	// 物件単位の分散ロックを取得
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, "property:"+input.PropertyID, propertyLockTTL, lockMaxRetries, lockRetryDelay)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.countBooking("lock_failed")
				return nil, fmt.Errorf("物件が他のリクエストによって処理中です: %w", err)
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	// 物件確認（受付フラグは日付より先に判定する）
	p, err := s.propertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		s.countBooking("error")
		return nil, err
	}
	if !p.Available {
		s.countBooking("unavailable")
		return nil, property.ErrPropertyUnavailable
	}

	// 空室事前チェック（キャッシュ非経由）
	conflict, err := s.checker.HasConflict(ctx, input.PropertyID, checkIn, checkOut)
	if err != nil {
		s.countBooking("error")
		return nil, err
	}
	if conflict {
		s.countBooking("conflict")
		return nil, booking.ErrDateConflict
	}

	b := booking.New(input.PropertyID, input.GuestID, checkIn, checkOut)
	if err := b.Validate(); err != nil {
		s.countBooking("invalid")
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		if errors.Is(err, booking.ErrDateConflict) {
			// 排他制約に競り負けた場合も事前チェックと同じ型付きエラー
			s.countBooking("conflict")
		} else {
			s.countBooking("error")
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.countBooking("error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.countBooking("created")
	s.checker.InvalidateCache(ctx, b.PropertyID)
	s.publish(ctx, booking.EventCreated, b)
	return b, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *BookingService) GetGuestBookings(ctx context.Context, guestID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	return s.bookingRepo.GetByGuestID(ctx, guestID, limit, offset)
}

// ConfirmBooking は保留中の予約をホストが確定する
// 確定できるのは物件のホストのみ
func (s *BookingService) ConfirmBooking(ctx context.Context, id, actorID string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.propertyRepo.GetByID(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(actorID) {
		return nil, booking.ErrForbidden
	}
	prior := b.Status
	if err := b.Confirm(); err != nil {
		return nil, err
	}
	if err := s.updateStatus(ctx, b, prior); err != nil {
		return nil, err
	}
	s.publish(ctx, booking.EventConfirmed, b)
	return b, nil
}

// CancelBooking は予約をキャンセルする
// 実行できるのは予約したゲスト・物件のホスト・管理者のいずれか
func (s *BookingService) CancelBooking(ctx context.Context, id, actorID string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed, err := s.canCancel(ctx, b, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, booking.ErrForbidden
	}
	prior := b.Status
	if err := b.Cancel(); err != nil {
		return nil, err
	}
	if err := s.updateStatus(ctx, b, prior); err != nil {
		return nil, err
	}
	s.checker.InvalidateCache(ctx, b.PropertyID)
	s.publish(ctx, booking.EventCancelled, b)
	return b, nil
}

func (s *BookingService) canCancel(ctx context.Context, b *booking.Booking, actorID string) (bool, error) {
	if actorID == b.GuestID {
		return true, nil
	}
	p, err := s.propertyRepo.GetByID(ctx, b.PropertyID)
	if err != nil {
		return false, err
	}
	if p.IsOwnedBy(actorID) {
		return true, nil
	}
	if s.adminChecker == nil {
		return false, nil
	}
	return s.adminChecker.IsAdmin(ctx, actorID)
}

// IsPropertyAvailable は検索・照会用の空室述語
func (s *BookingService) IsPropertyAvailable(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	return s.checker.IsAvailable(ctx, propertyID, checkIn, checkOut)
}

// CompleteElapsedBookings はチェックアウト日を過ぎた確定済み予約を
// checked_out に進める（チェックアウトスイープ）
//
// 同じ日付で再実行しても対象が残っていないため安全（確定済みガードによる冪等性）。
// 1件の失敗でバッチ全体を止めず、記録して次に進む
func (s *BookingService) CompleteElapsedBookings(ctx context.Context, asOf time.Time) (int, error) {
	asOf = booking.ToDate(asOf)
	elapsed, err := s.bookingRepo.GetElapsedConfirmed(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("滞在終了済み予約の取得に失敗: %w", err)
	}

	count := 0
	for _, b := range elapsed {
		if err := b.Complete(); err != nil {
			logger.Warn("チェックアウト遷移をスキップ", zap.String("booking_id", b.ID), zap.Error(err))
			continue
		}
		if err := s.updateStatus(ctx, b, booking.StatusConfirmed); err != nil {
			if errors.Is(err, booking.ErrInvalidTransition) {
				// 取得後に別の操作（キャンセル等）が状態を変えた予約は上書きしない
				logger.Warn("チェックアウト遷移をスキップ（状態が変更済み）", zap.String("booking_id", b.ID), zap.Error(err))
			} else {
				logger.Error("チェックアウト状態の保存に失敗", zap.String("booking_id", b.ID), zap.Error(err))
			}
			continue
		}
		s.publish(ctx, booking.EventCheckedOut, b)
		count++
	}

	if s.metrics != nil && count > 0 {
		s.metrics.SweptBookingsTotal.Add(float64(count))
	}
	return count, nil
}

// updateStatus は状態遷移を1件のトランザクションで永続化する
// from は読み取り時点の状態。ストレージ側で状態が変わっていた場合は書き込まれない
func (s *BookingService) updateStatus(ctx context.Context, b *booking.Booking, from booking.Status) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.UpdateStatus(ctx, tx, b, from); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

func (s *BookingService) publish(ctx context.Context, t booking.EventType, b *booking.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, booking.NewEvent(t, b)); err != nil {
		// イベント配信失敗は予約操作自体を失敗させない
		logger.Warn("予約イベントの配信に失敗",
			zap.String("type", string(t)),
			zap.String("booking_id", b.ID),
			zap.Error(err),
		)
	}
}

func (s *BookingService) countBooking(outcome string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(outcome).Inc()
	}
}
