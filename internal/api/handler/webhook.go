package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/application"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
)

// WebhookHandler はOTAからのWebhook受信ハンドラー
type WebhookHandler struct {
	engine SyncEngineInterface
}

// NewWebhookHandler はWebhookHandlerを作成する
func NewWebhookHandler(engine SyncEngineInterface) *WebhookHandler {
	return &WebhookHandler{engine: engine}
}

// BookingReceivedRequest はOTAからの予約通知
type BookingReceivedRequest struct {
	RoomTypeID   int64  `json:"room_type_id" validate:"required" example:"1"`
	ChannelName  string `json:"channel_name" validate:"required" example:"booking_com"`
	OTABookingID string `json:"ota_booking_id" validate:"required" example:"BDC-20260801-1234"`
	CheckIn      string `json:"check_in" validate:"required,date" example:"2026-08-01"`
	CheckOut     string `json:"check_out" validate:"required,date" example:"2026-08-03"`
	GuestName    string `json:"guest_name" validate:"required" example:"山田太郎"`
	GuestEmail   string `json:"guest_email" validate:"omitempty,email" example:"taro@example.com"`
	NumGuests    int    `json:"num_guests" validate:"omitempty,min=1" example:"2"`
}

// BookingResultResponse は予約処理結果のレスポンス
type BookingResultResponse struct {
	Status           string           `json:"status" example:"confirmed"`
	Reason           string           `json:"reason,omitempty" example:"no_availability"`
	Retryable        bool             `json:"retryable"`
	UnavailableDates []string         `json:"unavailable_dates,omitempty" example:"2026-08-02"`
	Booking          *BookingResponse `json:"booking,omitempty"`
}

// BookingResponse は予約レスポンス
type BookingResponse struct {
	ID           int64  `json:"id" example:"42"`
	RoomTypeID   int64  `json:"room_type_id" example:"1"`
	ChannelName  string `json:"channel_name" example:"booking_com"`
	OTABookingID string `json:"ota_booking_id" example:"BDC-20260801-1234"`
	CheckIn      string `json:"check_in" example:"2026-08-01"`
	CheckOut     string `json:"check_out" example:"2026-08-03"`
	GuestName    string `json:"guest_name" example:"山田太郎"`
	GuestEmail   string `json:"guest_email,omitempty" example:"taro@example.com"`
	NumGuests    int    `json:"num_guests" example:"2"`
	Status       string `json:"status" example:"confirmed"`
	CreatedAt    string `json:"created_at"`
}

func toBookingResponse(b *booking.Booking) *BookingResponse {
	if b == nil {
		return nil
	}
	return &BookingResponse{
		ID:           b.ID,
		RoomTypeID:   b.RoomTypeID,
		ChannelName:  b.ChannelName,
		OTABookingID: b.OTABookingID,
		CheckIn:      b.CheckIn.Format(inventory.DateLayout),
		CheckOut:     b.CheckOut.Format(inventory.DateLayout),
		GuestName:    b.GuestName,
		GuestEmail:   b.GuestEmail,
		NumGuests:    b.NumGuests,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
}

// BookingReceived godoc
// @Summary OTA予約Webhookを受信
// @Description OTAからの予約通知を分散ロック下で処理する
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body BookingReceivedRequest true "予約通知"
// @Success 201 {object} BookingResultResponse
// @Failure 400 {object} BookingResultResponse "無効な日付範囲"
// @Failure 409 {object} BookingResultResponse "ロック競合または満室"
// @Router /webhooks/booking-received [post]
func (h *WebhookHandler) BookingReceived(c echo.Context) error {
	var req BookingReceivedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	checkIn, _ := time.Parse(inventory.DateLayout, req.CheckIn)
	checkOut, _ := time.Parse(inventory.DateLayout, req.CheckOut)

	result, err := h.engine.ProcessBooking(c.Request().Context(), application.BookingInput{
		RoomTypeID:   req.RoomTypeID,
		ChannelName:  req.ChannelName,
		OTABookingID: req.OTABookingID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		GuestName:    req.GuestName,
		GuestEmail:   req.GuestEmail,
		NumGuests:    req.NumGuests,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(statusCodeFor(result), toBookingResultResponse(result))
}

// 拒否理由ごとのHTTPステータス
// lock_unavailable は一時的な競合のため、OTA側に再試行を促す409を返す
func statusCodeFor(r *application.BookingResult) int {
	if r.Status == application.BookingConfirmed {
		return http.StatusCreated
	}
	switch r.Reason {
	case application.ReasonInvalidDateRange:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

func toBookingResultResponse(r *application.BookingResult) BookingResultResponse {
	resp := BookingResultResponse{
		Status:    string(r.Status),
		Reason:    string(r.Reason),
		Retryable: r.Reason == application.ReasonLockUnavailable,
		Booking:   toBookingResponse(r.Booking),
	}
	for _, d := range r.UnavailableDates {
		resp.UnavailableDates = append(resp.UnavailableDates, d.Format(inventory.DateLayout))
	}
	return resp
}
