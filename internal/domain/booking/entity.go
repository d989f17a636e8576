package booking

import "time"

// Status は予約の状態を表す
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCancelled  Status = "cancelled"
	StatusCheckedOut Status = "checked_out"
)

// BlockingStatuses は空室判定の対象となる状態（保留中・確定済み）
var BlockingStatuses = []Status{StatusPending, StatusConfirmed}

// Booking は予約エンティティを表す
// 状態遷移は Confirm / Cancel / Complete のみが行い、日付と当事者は作成後不変
type Booking struct {
	ID          string
	PropertyID  string
	GuestID     string
	CheckIn     time.Time
	CheckOut    time.Time
	Status      Status
	ConfirmedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New は新しい予約を作成する（初期状態は pending）
func New(propertyID, guestID string, checkIn, checkOut time.Time) *Booking {
	now := time.Now()
	return &Booking{
		PropertyID: propertyID,
		GuestID:    guestID,
		CheckIn:    ToDate(checkIn),
		CheckOut:   ToDate(checkOut),
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.PropertyID == "" {
		return ErrPropertyIDRequired
	}
	if b.GuestID == "" {
		return ErrGuestIDRequired
	}
	return ValidateRange(b.CheckIn, b.CheckOut)
}

// IsBlocking は空室判定の対象となる状態かを返す
func (b *Booking) IsBlocking() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// OverlapsRange は予約の滞在期間が [checkIn, checkOut) と重なるかを返す
func (b *Booking) OverlapsRange(checkIn, checkOut time.Time) bool {
	return Overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut)
}

// Confirm は保留中の予約を確定する（ホストの操作）
func (b *Booking) Confirm() error {
	switch b.Status {
	case StatusPending:
	case StatusCancelled:
		return ErrBookingAlreadyCancelled
	case StatusCheckedOut:
		return ErrBookingCheckedOut
	default:
		return ErrBookingNotPending
	}
	now := time.Now()
	b.Status = StatusConfirmed
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	return nil
}

// Cancel は保留中または確定済みの予約をキャンセルする
// キャンセル済みへの再キャンセルは冪等に成功させず拒否する（呼び出し側のバグを隠さないため）
func (b *Booking) Cancel() error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	case StatusCancelled:
		return ErrBookingAlreadyCancelled
	case StatusCheckedOut:
		return ErrBookingCheckedOut
	default:
		return ErrInvalidTransition
	}
	b.Status = StatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// Complete は滞在期間を過ぎた確定済み予約をチェックアウト済みにする（スイーパーの操作）
func (b *Booking) Complete() error {
	if b.Status != StatusConfirmed {
		return ErrBookingNotConfirmed
	}
	b.Status = StatusCheckedOut
	b.UpdatedAt = time.Now()
	return nil
}
