package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
)

// RateHandler はレートパリティ更新ハンドラー
type RateHandler struct {
	engine SyncEngineInterface
}

// NewRateHandler はRateHandlerを作成する
func NewRateHandler(engine SyncEngineInterface) *RateHandler {
	return &RateHandler{engine: engine}
}

// UpdateRateRequest は価格更新リクエスト
type UpdateRateRequest struct {
	Date  string `json:"date" validate:"required,date" example:"2026-08-01"`
	Price int    `json:"price" validate:"min=0" example:"15000"`
}

// RateParityResponse はレートパリティ更新の結果
type RateParityResponse struct {
	RoomTypeID int64                        `json:"room_type_id" example:"1"`
	Date       string                       `json:"date" example:"2026-08-01"`
	NewPrice   int                          `json:"new_price" example:"15000"`
	Channels   map[string]ChannelPushStatus `json:"channels"`
}

// ChannelPushStatus は1チャネルへのプッシュ結果
type ChannelPushStatus struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// UpdateRate godoc
// @Summary 価格を全チャネルへ同期
// @Description 価格を更新し、全マッピング先OTAへ同時にプッシュする
// @Tags rates
// @Accept json
// @Produce json
// @Param room_type_id path int true "ルームタイプID"
// @Param request body UpdateRateRequest true "新価格"
// @Success 200 {object} RateParityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /room-types/{room_type_id}/rates [put]
func (h *RateHandler) UpdateRate(c echo.Context) error {
	roomTypeID, err := strconv.ParseInt(c.Param("room_type_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なルームタイプID")
	}
	var req UpdateRateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	date, _ := time.Parse(inventory.DateLayout, req.Date)

	result, err := h.engine.UpdateRateParity(c.Request().Context(), roomTypeID, date, req.Price)
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrLevelNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, inventory.ErrInvalidPrice):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := RateParityResponse{
		RoomTypeID: result.RoomTypeID,
		Date:       result.Date.Format(inventory.DateLayout),
		NewPrice:   result.NewPrice,
		Channels:   make(map[string]ChannelPushStatus, len(result.Channels)),
	}
	for name, r := range result.Channels {
		resp.Channels[name] = ChannelPushStatus{Success: r.Success, Error: r.Error}
	}
	return c.JSON(http.StatusOK, resp)
}
