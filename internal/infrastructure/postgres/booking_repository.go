package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kokitko/bookinline-sub000/internal/domain/booking"
	"github.com/kokitko/bookinline-sub000/internal/domain/transaction"
)

// pgErrExclusionViolation は排他制約違反（期間重複）のSQLSTATE
const pgErrExclusionViolation = "23P01"

type bookingRow struct {
	ID          string     `db:"id"`
	PropertyID  string     `db:"property_id"`
	GuestID     string     `db:"guest_id"`
	CheckIn     time.Time  `db:"check_in"`
	CheckOut    time.Time  `db:"check_out"`
	Status      string     `db:"status"`
	ConfirmedAt *time.Time `db:"confirmed_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID: r.ID, PropertyID: r.PropertyID, GuestID: r.GuestID,
		CheckIn: booking.ToDate(r.CheckIn), CheckOut: booking.ToDate(r.CheckOut),
		Status: booking.Status(r.Status), ConfirmedAt: r.ConfirmedAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const bookingColumns = `id, property_id, guest_id, check_in, check_out, status, confirmed_at, created_at, updated_at`

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create は予約を挿入する
// bookings テーブルの排他制約（同一物件・期間重複・保留中/確定済み）違反は
// booking.ErrDateConflict として返すため、同時作成の競り負けも型付きエラーになる
func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションの型が不正です")
	}
	query := `INSERT INTO bookings (property_id, guest_id, check_in, check_out, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := sqlxTx.QueryRowContext(ctx, query,
		b.PropertyID, b.GuestID, b.CheckIn, b.CheckOut, string(b.Status), b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgErrExclusionViolation {
			return booking.ErrDateConflict
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetByGuestID(ctx context.Context, guestID string, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE guest_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, guestID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *BookingRepository) GetBlockingByPropertyID(ctx context.Context, propertyID string) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE property_id = $1 AND status = ANY($2) ORDER BY check_in`
	statuses := make([]string, len(booking.BlockingStatuses))
	for i, s := range booking.BlockingStatuses {
		statuses[i] = string(s)
	}
	if err := r.db.SelectContext(ctx, &rows, query, propertyID, pq.Array(statuses)); err != nil {
		return nil, fmt.Errorf("予約中期間の取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *BookingRepository) GetElapsedConfirmed(ctx context.Context, asOf time.Time) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND check_out < $2 ORDER BY check_out`
	if err := r.db.SelectContext(ctx, &rows, query, string(booking.StatusConfirmed), booking.ToDate(asOf)); err != nil {
		return nil, fmt.Errorf("滞在終了済み予約の取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

// UpdateStatus は状態のみを更新する（日付・当事者は作成後不変）
// 行の現在状態が from と一致する場合だけ書き込む。読み取り後に別の操作が
// 状態を変えていた場合（キャンセル直後のスイープ等）は上書きせずエラーを返す
func (r *BookingRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, b *booking.Booking, from booking.Status) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションの型が不正です")
	}
	query := `UPDATE bookings SET status = $1, confirmed_at = $2, updated_at = $3 WHERE id = $4 AND status = $5`
	result, err := sqlxTx.ExecContext(ctx, query, string(b.Status), b.ConfirmedAt, b.UpdatedAt, b.ID, string(from))
	if err != nil {
		return fmt.Errorf("予約状態の更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingStatusChanged
	}
	return nil
}

func toEntities(rows []bookingRow) []*booking.Booking {
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

var _ booking.Repository = (*BookingRepository)(nil)
