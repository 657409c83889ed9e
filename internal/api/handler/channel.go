package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/application"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/channel"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
)

// ChannelHandler はチャネルマッピング管理ハンドラー
type ChannelHandler struct {
	service ChannelServiceInterface
}

// NewChannelHandler はChannelHandlerを作成する
func NewChannelHandler(s ChannelServiceInterface) *ChannelHandler {
	return &ChannelHandler{service: s}
}

// CreateMappingRequest はマッピング作成リクエスト
type CreateMappingRequest struct {
	ChannelName   string `json:"channel_name" validate:"required" example:"booking_com"`
	OTARoomID     string `json:"ota_room_id" validate:"required" example:"bdc-room-778899"`
	OTAPropertyID string `json:"ota_property_id" example:"bdc-hotel-1122"`
	ICalURL       string `json:"ical_url" validate:"omitempty,url" example:"https://airbnb.example/calendar/12345.ics"`
}

// MappingResponse はマッピングレスポンス
type MappingResponse struct {
	ID            int64  `json:"id" example:"1"`
	RoomTypeID    int64  `json:"room_type_id" example:"1"`
	ChannelName   string `json:"channel_name" example:"booking_com"`
	OTARoomID     string `json:"ota_room_id" example:"bdc-room-778899"`
	OTAPropertyID string `json:"ota_property_id,omitempty"`
	ICalURL       string `json:"ical_url,omitempty"`
	IsActive      bool   `json:"is_active"`
}

func toMappingResponse(m *channel.Mapping) MappingResponse {
	return MappingResponse{
		ID:            m.ID,
		RoomTypeID:    m.RoomTypeID,
		ChannelName:   m.ChannelName,
		OTARoomID:     m.OTARoomID,
		OTAPropertyID: m.OTAPropertyID,
		ICalURL:       m.ICalURL,
		IsActive:      m.IsActive,
	}
}

// CreateMapping godoc
// @Summary チャネルマッピングを作成
// @Description ルームタイプとOTA側の部屋IDの対応を登録する
// @Tags channels
// @Accept json
// @Produce json
// @Param room_type_id path int true "ルームタイプID"
// @Param request body CreateMappingRequest true "マッピング情報"
// @Success 201 {object} MappingResponse
// @Failure 400 {object} map[string]string
// @Router /room-types/{room_type_id}/channels [post]
func (h *ChannelHandler) CreateMapping(c echo.Context) error {
	roomTypeID, err := strconv.ParseInt(c.Param("room_type_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なルームタイプID")
	}
	var req CreateMappingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	m, err := h.service.CreateMapping(c.Request().Context(), application.CreateMappingInput{
		RoomTypeID:    roomTypeID,
		ChannelName:   req.ChannelName,
		OTARoomID:     req.OTARoomID,
		OTAPropertyID: req.OTAPropertyID,
		ICalURL:       req.ICalURL,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toMappingResponse(m))
}

// ListMappings godoc
// @Summary ルームタイプのマッピング一覧を取得
// @Tags channels
// @Produce json
// @Param room_type_id path int true "ルームタイプID"
// @Success 200 {array} MappingResponse
// @Router /room-types/{room_type_id}/channels [get]
func (h *ChannelHandler) ListMappings(c echo.Context) error {
	roomTypeID, err := strconv.ParseInt(c.Param("room_type_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なルームタイプID")
	}
	mappings, err := h.service.ListMappings(c.Request().Context(), roomTypeID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]MappingResponse, len(mappings))
	for i, m := range mappings {
		resp[i] = toMappingResponse(m)
	}
	return c.JSON(http.StatusOK, resp)
}

// SetActiveRequest はマッピング有効化リクエスト
type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// SetActive godoc
// @Summary マッピングの有効フラグを切り替え
// @Tags channels
// @Accept json
// @Param id path int true "マッピングID"
// @Param request body SetActiveRequest true "有効フラグ"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /channels/{id}/active [put]
func (h *ChannelHandler) SetActive(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なマッピングID")
	}
	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := h.service.SetMappingActive(c.Request().Context(), id, req.IsActive); err != nil {
		if errors.Is(err, channel.ErrMappingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// CalendarSyncResponse はカレンダー同期の結果
type CalendarSyncResponse struct {
	RoomTypeID   int64    `json:"room_type_id" example:"1"`
	BlockedCount int      `json:"blocked_count" example:"3"`
	BlockedDates []string `json:"blocked_dates,omitempty" example:"2026-08-02"`
}

// SyncCalendar godoc
// @Summary iCalカレンダーを同期
// @Description マッピング先のiCalカレンダーを取り込み、ブロック日を在庫に反映する
// @Tags channels
// @Produce json
// @Param id path int true "マッピングID"
// @Success 200 {object} CalendarSyncResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /channels/{id}/sync-calendar [post]
func (h *ChannelHandler) SyncCalendar(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なマッピングID")
	}
	result, err := h.service.SyncCalendar(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, channel.ErrMappingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, channel.ErrICalURLNotConfigured):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := CalendarSyncResponse{
		RoomTypeID:   result.RoomTypeID,
		BlockedCount: result.BlockedCount,
	}
	for _, d := range result.Dates {
		resp.BlockedDates = append(resp.BlockedDates, d.Format(inventory.DateLayout))
	}
	return c.JSON(http.StatusOK, resp)
}
