package kafka

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/kokitko/bookinline-sub000/internal/config"
	"github.com/kokitko/bookinline-sub000/internal/domain/booking"
	"github.com/kokitko/bookinline-sub000/internal/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EventPublisher は予約ライフサイクルイベントを Kafka に配信する
// キーに予約IDを使い、同一予約のイベント順序を保証する
type EventPublisher struct {
	writer *kafka.Writer
}

// NewEventPublisher は新しい EventPublisher を作成する
func NewEventPublisher(cfg *config.KafkaConfig) *EventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // キーでハッシュし順序を維持
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Error(fmt.Sprintf("kafka: "+msg, args...))
		}),
	}
	return &EventPublisher{writer: writer}
}

// Publish は予約イベントを配信する
func (p *EventPublisher) Publish(ctx context.Context, event booking.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("イベントの直列化に失敗: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.BookingID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("イベント配信に失敗: %w", err)
	}
	logger.Debug("予約イベントを配信",
		zap.String("type", string(event.Type)),
		zap.String("booking_id", event.BookingID),
	)
	return nil
}

// Close はライターを閉じる
func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

var _ booking.EventPublisher = (*EventPublisher)(nil)
