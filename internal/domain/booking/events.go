package booking

import (
	"context"
	"time"
)

// EventType は予約ライフサイクルイベントの種別
type EventType string

const (
	EventCreated    EventType = "booking.created"
	EventConfirmed  EventType = "booking.confirmed"
	EventCancelled  EventType = "booking.cancelled"
	EventCheckedOut EventType = "booking.checked_out"
)

// Event は外部連携向けの予約ライフサイクルイベント
type Event struct {
	Type       EventType `json:"type"`
	BookingID  string    `json:"booking_id"`
	PropertyID string    `json:"property_id"`
	GuestID    string    `json:"guest_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Status     Status    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent は予約の現在状態からイベントを組み立てる
func NewEvent(t EventType, b *Booking) Event {
	return Event{
		Type:       t,
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		GuestID:    b.GuestID,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		Status:     b.Status,
		OccurredAt: time.Now(),
	}
}

// EventPublisher は予約イベントを外部へ配信するインターフェース
// 配信失敗は予約操作自体を失敗させない（ベストエフォート）
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
