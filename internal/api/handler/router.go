package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/api/middleware"
)

// Handlers はルーティング対象のハンドラー群
type Handlers struct {
	Health    *HealthHandler
	Webhook   *WebhookHandler
	Inventory *InventoryHandler
	Rate      *RateHandler
	Booking   *BookingHandler
	Property  *PropertyHandler
	Channel   *ChannelHandler
}

// RegisterRoutes は全ルートを登録する
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")

	// OTA Webhook
	v1.POST("/webhooks/booking-received", h.Webhook.BookingReceived)

	// 物件・ルームタイプ
	v1.POST("/properties", h.Property.Create)
	v1.GET("/properties", h.Property.List)
	v1.GET("/properties/:id", h.Property.GetByID)
	v1.DELETE("/properties/:id", h.Property.Delete)
	v1.POST("/properties/:id/room-types", h.Property.CreateRoomType)
	v1.GET("/properties/:id/room-types", h.Property.ListRoomTypes)

	// 在庫・レート
	v1.GET("/room-types/:room_type_id/inventory", h.Inventory.GetRange)
	v1.PUT("/room-types/:room_type_id/inventory", h.Inventory.BulkUpdate)
	v1.PUT("/room-types/:room_type_id/rates", h.Rate.UpdateRate)

	// 予約
	v1.GET("/bookings/:id", h.Booking.GetByID)
	v1.POST("/bookings/:id/cancel", h.Booking.Cancel)
	v1.POST("/bookings/:id/no-show", h.Booking.MarkNoShow)
	v1.GET("/room-types/:room_type_id/bookings", h.Booking.ListByRoomType)

	// チャネルマッピング
	v1.POST("/room-types/:room_type_id/channels", h.Channel.CreateMapping)
	v1.GET("/room-types/:room_type_id/channels", h.Channel.ListMappings)
	v1.PUT("/channels/:id/active", h.Channel.SetActive)
	v1.POST("/channels/:id/sync-calendar", h.Channel.SyncCalendar)
}
