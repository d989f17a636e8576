package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kokitko/bookinline-sub000/internal/pkg/logger"
)

// BookingCompleter はチェックアウト日を過ぎた確定済み予約を進めるインターフェース
type BookingCompleter interface {
	CompleteElapsedBookings(ctx context.Context, asOf time.Time) (int, error)
}

// CheckoutSweeper は滞在終了済みの確定予約を checked_out に進めるワーカー
// タイマーはデプロイ側の所有物という設計で、コアの掃き出しロジック自体は
// BookingCompleter（外部スケジューラーからも呼べる操作）に置いている
type CheckoutSweeper struct {
	bookingService BookingCompleter
	interval       time.Duration
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// NewCheckoutSweeper は新しいスイーパーを作成
func NewCheckoutSweeper(bs BookingCompleter, interval time.Duration) *CheckoutSweeper {
	return &CheckoutSweeper{
		bookingService: bs,
		interval:       interval,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *CheckoutSweeper) Start(ctx context.Context) {
	logger.Info("チェックアウトスイーパー開始", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("チェックアウトスイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("チェックアウトスイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *CheckoutSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は滞在終了済みの確定予約をチェックアウト済みに進める
func (s *CheckoutSweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("チェックアウトスイープ開始")

	count, err := s.bookingService.CompleteElapsedBookings(ctx, time.Now())
	if err != nil {
		log.Error("チェックアウトスイープ失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("予約をチェックアウト済みに更新", zap.Int("count", count))
	} else {
		log.Debug("チェックアウト対象の予約なし")
	}
}
