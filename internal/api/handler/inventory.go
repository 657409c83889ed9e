package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/application"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
)

// InventoryHandler は在庫参照・更新ハンドラー
type InventoryHandler struct {
	service InventoryServiceInterface
}

// NewInventoryHandler はInventoryHandlerを作成する
func NewInventoryHandler(s InventoryServiceInterface) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// LevelResponse は1日分の在庫レスポンス
type LevelResponse struct {
	RoomTypeID     int64  `json:"room_type_id" example:"1"`
	Date           string `json:"date" example:"2026-08-01"`
	AvailableCount int    `json:"available_count" example:"3"`
	Price          int    `json:"price" example:"12000"`
	Version        int    `json:"version" example:"5"`
}

func toLevelResponse(l *inventory.Level) LevelResponse {
	return LevelResponse{
		RoomTypeID:     l.RoomTypeID,
		Date:           l.Date.Format(inventory.DateLayout),
		AvailableCount: l.AvailableCount,
		Price:          l.Price,
		Version:        l.Version,
	}
}

// GetRange godoc
// @Summary 期間内の在庫を取得
// @Description ルームタイプの在庫を日付順で返す
// @Tags inventory
// @Produce json
// @Param room_type_id path int true "ルームタイプID"
// @Param start query string true "開始日 (YYYY-MM-DD)"
// @Param end query string true "終了日 (YYYY-MM-DD)"
// @Success 200 {array} LevelResponse
// @Failure 400 {object} map[string]string
// @Router /room-types/{room_type_id}/inventory [get]
func (h *InventoryHandler) GetRange(c echo.Context) error {
	roomTypeID, err := strconv.ParseInt(c.Param("room_type_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なルームタイプID")
	}
	start, err := time.Parse(inventory.DateLayout, c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な開始日")
	}
	end, err := time.Parse(inventory.DateLayout, c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な終了日")
	}

	levels, err := h.service.GetRange(c.Request().Context(), roomTypeID, start, end)
	if err != nil {
		if errors.Is(err, inventory.ErrInvalidDateRange) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]LevelResponse, len(levels))
	for i, l := range levels {
		resp[i] = toLevelResponse(l)
	}
	return c.JSON(http.StatusOK, resp)
}

// InventoryUpdateEntry は一括更新の1エントリ
type InventoryUpdateEntry struct {
	Date           string `json:"date" validate:"required,date" example:"2026-08-01"`
	AvailableCount int    `json:"available_count" validate:"min=0" example:"3"`
	Price          int    `json:"price" validate:"min=0" example:"12000"`
}

// BulkUpdateRequest は在庫の一括更新リクエスト
type BulkUpdateRequest struct {
	Updates []InventoryUpdateEntry `json:"updates" validate:"required,min=1,dive"`
}

// BulkUpdateResponse は一括更新の結果
type BulkUpdateResponse struct {
	Updated int `json:"updated" example:"14"`
}

// BulkUpdate godoc
// @Summary 在庫を一括更新
// @Description 複数日の在庫数と価格をまとめて作成・更新する
// @Tags inventory
// @Accept json
// @Produce json
// @Param room_type_id path int true "ルームタイプID"
// @Param request body BulkUpdateRequest true "更新内容"
// @Success 200 {object} BulkUpdateResponse
// @Failure 400 {object} map[string]string
// @Router /room-types/{room_type_id}/inventory [put]
func (h *InventoryHandler) BulkUpdate(c echo.Context) error {
	roomTypeID, err := strconv.ParseInt(c.Param("room_type_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なルームタイプID")
	}
	var req BulkUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updates := make([]application.InventoryUpdate, len(req.Updates))
	for i, u := range req.Updates {
		date, _ := time.Parse(inventory.DateLayout, u.Date)
		updates[i] = application.InventoryUpdate{
			Date:           date,
			AvailableCount: u.AvailableCount,
			Price:          u.Price,
		}
	}

	updated, err := h.service.BulkUpdate(c.Request().Context(), roomTypeID, updates)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, BulkUpdateResponse{Updated: updated})
}
