// Package adapter はOTAチャネルごとのモックアダプターを提供する
// 本番では各OTAのAPI呼び出しに置き換わる
package adapter

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/channel"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/logger"
)

// BookingComAdapter はBooking.com向けアダプター（モック）
type BookingComAdapter struct{}

func (a *BookingComAdapter) PushAvailability(ctx context.Context, otaRoomID string, date time.Time, available int) error {
	logger.Info("[Booking.com] 空室数をプッシュ",
		zap.String("ota_room_id", otaRoomID),
		zap.String("date", date.Format(inventory.DateLayout)),
		zap.Int("available", available),
	)
	return nil
}

func (a *BookingComAdapter) PushRate(ctx context.Context, otaRoomID string, date time.Time, price int) error {
	logger.Info("[Booking.com] 料金をプッシュ",
		zap.String("ota_room_id", otaRoomID),
		zap.String("date", date.Format(inventory.DateLayout)),
		zap.Int("price", price),
	)
	return nil
}

// AirbnbAdapter はAirbnb向けアダプター（モック）
type AirbnbAdapter struct{}

func (a *AirbnbAdapter) PushAvailability(ctx context.Context, otaRoomID string, date time.Time, available int) error {
	logger.Info("[Airbnb] 空室数をプッシュ",
		zap.String("listing_id", otaRoomID),
		zap.String("date", date.Format(inventory.DateLayout)),
		zap.Int("available", available),
	)
	return nil
}

func (a *AirbnbAdapter) PushRate(ctx context.Context, otaRoomID string, date time.Time, price int) error {
	logger.Info("[Airbnb] 料金をプッシュ",
		zap.String("listing_id", otaRoomID),
		zap.String("date", date.Format(inventory.DateLayout)),
		zap.Int("price", price),
	)
	return nil
}

// ExpediaAdapter はExpedia向けアダプター（モック）
type ExpediaAdapter struct{}

func (a *ExpediaAdapter) PushAvailability(ctx context.Context, otaRoomID string, date time.Time, available int) error {
	logger.Info("[Expedia] 空室数をプッシュ",
		zap.String("ota_room_id", otaRoomID),
		zap.String("date", date.Format(inventory.DateLayout)),
		zap.Int("available", available),
	)
	return nil
}

func (a *ExpediaAdapter) PushRate(ctx context.Context, otaRoomID string, date time.Time, price int) error {
	logger.Info("[Expedia] 料金をプッシュ",
		zap.String("ota_room_id", otaRoomID),
		zap.String("date", date.Format(inventory.DateLayout)),
		zap.Int("price", price),
	)
	return nil
}

// DefaultRegistry は標準のチャネルアダプターを登録したRegistryを返す
func DefaultRegistry() *channel.Registry {
	r := channel.NewRegistry()
	r.Register(channel.BookingCom, &BookingComAdapter{})
	r.Register(channel.Airbnb, &AirbnbAdapter{})
	r.Register(channel.Expedia, &ExpediaAdapter{})
	return r
}

var (
	_ channel.Adapter = (*BookingComAdapter)(nil)
	_ channel.Adapter = (*AirbnbAdapter)(nil)
	_ channel.Adapter = (*ExpediaAdapter)(nil)
)
