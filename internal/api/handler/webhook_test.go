package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/application"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
)

// MockSyncEngine はSyncEngineInterfaceのモック
type MockSyncEngine struct {
	mock.Mock
}

func (m *MockSyncEngine) ProcessBooking(ctx context.Context, input application.BookingInput) (*application.BookingResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.BookingResult), args.Error(1)
}

func (m *MockSyncEngine) UpdateRateParity(ctx context.Context, roomTypeID int64, date time.Time, newPrice int) (*application.RateParityResult, error) {
	args := m.Called(ctx, roomTypeID, date, newPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.RateParityResult), args.Error(1)
}

func postWebhook(e *echo.Echo, h *WebhookHandler, body string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/booking-received", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h.BookingReceived(c)
	return rec, err
}

const validWebhookBody = `{
	"room_type_id": 1,
	"channel_name": "booking_com",
	"ota_booking_id": "BDC-1001",
	"check_in": "2026-08-15",
	"check_out": "2026-08-17",
	"guest_name": "山田太郎",
	"num_guests": 2
}`

func TestWebhookHandler_BookingReceived(t *testing.T) {
	e := NewTestEcho()

	t.Run("確定した予約は201を返す", func(t *testing.T) {
		mockEngine := new(MockSyncEngine)
		confirmed := &booking.Booking{
			ID: 42, RoomTypeID: 1, ChannelName: "booking_com", OTABookingID: "BDC-1001",
			Status: booking.StatusConfirmed,
		}
		mockEngine.On("ProcessBooking", mock.Anything, mock.AnythingOfType("application.BookingInput")).
			Return(&application.BookingResult{Status: application.BookingConfirmed, Booking: confirmed}, nil)

		rec, err := postWebhook(e, NewWebhookHandler(mockEngine), validWebhookBody)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp BookingResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "confirmed", resp.Status)
		require.NotNil(t, resp.Booking)
		assert.Equal(t, int64(42), resp.Booking.ID)
	})

	t.Run("満室の拒否は409と満室日一覧を返す", func(t *testing.T) {
		mockEngine := new(MockSyncEngine)
		unavailable := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)
		mockEngine.On("ProcessBooking", mock.Anything, mock.Anything).
			Return(&application.BookingResult{
				Status:           application.BookingRejected,
				Reason:           application.ReasonNoAvailability,
				UnavailableDates: []time.Time{unavailable},
			}, nil)

		rec, err := postWebhook(e, NewWebhookHandler(mockEngine), validWebhookBody)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, rec.Code)

		var resp BookingResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "rejected", resp.Status)
		assert.Equal(t, string(application.ReasonNoAvailability), resp.Reason)
		assert.False(t, resp.Retryable)
		assert.Equal(t, []string{"2026-08-16"}, resp.UnavailableDates)
	})

	t.Run("ロック競合の拒否は409でリトライ可能", func(t *testing.T) {
		mockEngine := new(MockSyncEngine)
		mockEngine.On("ProcessBooking", mock.Anything, mock.Anything).
			Return(&application.BookingResult{
				Status: application.BookingRejected,
				Reason: application.ReasonLockUnavailable,
			}, nil)

		rec, err := postWebhook(e, NewWebhookHandler(mockEngine), validWebhookBody)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, rec.Code)

		var resp BookingResultResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Retryable)
	})

	t.Run("無効な日付範囲の拒否は400を返す", func(t *testing.T) {
		mockEngine := new(MockSyncEngine)
		mockEngine.On("ProcessBooking", mock.Anything, mock.Anything).
			Return(&application.BookingResult{
				Status: application.BookingRejected,
				Reason: application.ReasonInvalidDateRange,
			}, nil)

		rec, err := postWebhook(e, NewWebhookHandler(mockEngine), validWebhookBody)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("日付形式が不正な場合はバリデーションエラー", func(t *testing.T) {
		mockEngine := new(MockSyncEngine)
		body := strings.Replace(validWebhookBody, "2026-08-15", "08/15/2026", 1)

		_, err := postWebhook(e, NewWebhookHandler(mockEngine), body)
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockEngine.AssertNotCalled(t, "ProcessBooking", mock.Anything, mock.Anything)
	})

	t.Run("必須フィールドの欠落はバリデーションエラー", func(t *testing.T) {
		mockEngine := new(MockSyncEngine)
		body := `{"room_type_id": 1, "check_in": "2026-08-15", "check_out": "2026-08-17"}`

		_, err := postWebhook(e, NewWebhookHandler(mockEngine), body)
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("ストレージ障害は500を返す", func(t *testing.T) {
		mockEngine := new(MockSyncEngine)
		mockEngine.On("ProcessBooking", mock.Anything, mock.Anything).
			Return(nil, assert.AnError)

		_, err := postWebhook(e, NewWebhookHandler(mockEngine), validWebhookBody)
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, he.Code)
	})

	t.Run("入力の日付が正しくパースされてエンジンへ渡る", func(t *testing.T) {
		mockEngine := new(MockSyncEngine)
		mockEngine.On("ProcessBooking", mock.Anything, mock.MatchedBy(func(input application.BookingInput) bool {
			return input.CheckIn.Format(inventory.DateLayout) == "2026-08-15" &&
				input.CheckOut.Format(inventory.DateLayout) == "2026-08-17" &&
				input.OTABookingID == "BDC-1001"
		})).Return(&application.BookingResult{Status: application.BookingConfirmed}, nil)

		_, err := postWebhook(e, NewWebhookHandler(mockEngine), validWebhookBody)
		require.NoError(t, err)
		mockEngine.AssertExpectations(t)
	})
}
