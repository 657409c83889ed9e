package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/application"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/channel"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/property"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/ical"
)

// SyncEngineInterface は同期エンジンのインターフェース
type SyncEngineInterface interface {
	ProcessBooking(ctx context.Context, input application.BookingInput) (*application.BookingResult, error)
	UpdateRateParity(ctx context.Context, roomTypeID int64, date time.Time, newPrice int) (*application.RateParityResult, error)
}

// InventoryServiceInterface は在庫サービスのインターフェース
type InventoryServiceInterface interface {
	GetRange(ctx context.Context, roomTypeID int64, start, end time.Time) ([]*inventory.Level, error)
	GetAvailability(ctx context.Context, roomTypeID int64, date time.Time) (int, error)
	BulkUpdate(ctx context.Context, roomTypeID int64, updates []application.InventoryUpdate) (int, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	GetBooking(ctx context.Context, id int64) (*booking.Booking, error)
	ListByRoomType(ctx context.Context, roomTypeID int64, limit, offset int) ([]*booking.Booking, error)
	CancelBooking(ctx context.Context, id int64) (*booking.Booking, error)
	MarkNoShow(ctx context.Context, id int64) (*booking.Booking, error)
}

// PropertyServiceInterface は施設サービスのインターフェース
type PropertyServiceInterface interface {
	CreateProperty(ctx context.Context, input application.CreatePropertyInput) (*property.Property, error)
	GetProperty(ctx context.Context, id int64) (*property.Property, error)
	ListProperties(ctx context.Context, limit, offset int) ([]*property.Property, error)
	UpdateProperty(ctx context.Context, p *property.Property) error
	DeleteProperty(ctx context.Context, id int64) error
	CreateRoomType(ctx context.Context, input application.CreateRoomTypeInput) (*property.RoomType, error)
	GetRoomType(ctx context.Context, id int64) (*property.RoomType, error)
	ListRoomTypes(ctx context.Context, propertyID int64) ([]*property.RoomType, error)
}

// ChannelServiceInterface はチャネルサービスのインターフェース
type ChannelServiceInterface interface {
	CreateMapping(ctx context.Context, input application.CreateMappingInput) (*channel.Mapping, error)
	ListMappings(ctx context.Context, roomTypeID int64) ([]*channel.Mapping, error)
	SetMappingActive(ctx context.Context, id int64, active bool) error
	SyncCalendar(ctx context.Context, mappingID int64) (*ical.SyncResult, error)
}
