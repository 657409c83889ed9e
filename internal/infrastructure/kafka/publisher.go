package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
)

// BookingConfirmedEvent は予約確定イベントのペイロード
type BookingConfirmedEvent struct {
	BookingID    int64  `json:"booking_id"`
	RoomTypeID   int64  `json:"room_type_id"`
	ChannelName  string `json:"channel_name"`
	OTABookingID string `json:"ota_booking_id"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	NumGuests    int    `json:"num_guests"`
	ConfirmedAt  string `json:"confirmed_at"`
}

// Publisher は予約イベントをKafkaに発行する
// 発行は予約確定後のベストエフォートであり、失敗しても予約には影響しない
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher は新しいPublisherを作成する
func NewPublisher(brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // キー単位で順序を保証
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Publisher{writer: writer}
}

// PublishBookingConfirmed は予約確定イベントを発行する
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, b *booking.Booking) error {
	event := BookingConfirmedEvent{
		BookingID:    b.ID,
		RoomTypeID:   b.RoomTypeID,
		ChannelName:  b.ChannelName,
		OTABookingID: b.OTABookingID,
		CheckIn:      b.CheckIn.Format(inventory.DateLayout),
		CheckOut:     b.CheckOut.Format(inventory.DateLayout),
		NumGuests:    b.NumGuests,
		ConfirmedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("イベントのエンコードに失敗: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%s:%s", b.ChannelName, b.OTABookingID)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(uuid.New().String())},
			{Key: "event-type", Value: []byte("booking.confirmed")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("イベント発行に失敗: %w", err)
	}
	return nil
}

// Close はKafkaライターを閉じる
func (p *Publisher) Close() error {
	return p.writer.Close()
}
