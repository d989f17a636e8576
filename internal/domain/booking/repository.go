package booking

import (
	"context"
	"time"

	"github.com/kokitko/bookinline-sub000/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	// ストレージ側の排他制約違反は ErrDateConflict として返す
	Create(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByGuestID はゲストIDから予約一覧を取得する
	GetByGuestID(ctx context.Context, guestID string, limit, offset int) ([]*Booking, error)

	// GetBlockingByPropertyID は物件の空室判定対象（保留中・確定済み）の予約を取得する
	GetBlockingByPropertyID(ctx context.Context, propertyID string) ([]*Booking, error)

	// GetElapsedConfirmed はチェックアウト日が asOf より前の確定済み予約を取得する
	GetElapsedConfirmed(ctx context.Context, asOf time.Time) ([]*Booking, error)

	// UpdateStatus は予約の状態のみを更新する（トランザクション必須）
	// ストレージ上の状態が from と一致しない場合は上書きせず ErrBookingStatusChanged を返す
	UpdateStatus(ctx context.Context, tx transaction.Tx, b *Booking, from Status) error
}
