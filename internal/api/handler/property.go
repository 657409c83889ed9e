package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/application"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/property"
)

// PropertyHandler は物件・ルームタイプ管理ハンドラー
type PropertyHandler struct {
	service PropertyServiceInterface
}

// NewPropertyHandler はPropertyHandlerを作成する
func NewPropertyHandler(s PropertyServiceInterface) *PropertyHandler {
	return &PropertyHandler{service: s}
}

// CreatePropertyRequest は物件作成リクエスト
type CreatePropertyRequest struct {
	Name    string `json:"name" validate:"required" example:"さくらホテル"`
	Address string `json:"address" example:"東京都千代田区1-1-1"`
	City    string `json:"city" example:"東京"`
	Country string `json:"country" example:"JP"`
	Email   string `json:"email" validate:"required,email" example:"info@sakura-hotel.example"`
	Phone   string `json:"phone" example:"+81-3-1234-5678"`
}

// PropertyResponse は物件レスポンス
type PropertyResponse struct {
	ID       int64  `json:"id" example:"1"`
	Name     string `json:"name" example:"さくらホテル"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	IsActive bool   `json:"is_active"`
}

func toPropertyResponse(p *property.Property) PropertyResponse {
	return PropertyResponse{
		ID:       p.ID,
		Name:     p.Name,
		Address:  p.Address,
		City:     p.City,
		Country:  p.Country,
		Email:    p.Email,
		Phone:    p.Phone,
		IsActive: p.IsActive,
	}
}

// Create godoc
// @Summary 物件を作成
// @Tags properties
// @Accept json
// @Produce json
// @Param request body CreatePropertyRequest true "物件情報"
// @Success 201 {object} PropertyResponse
// @Failure 400 {object} map[string]string
// @Router /properties [post]
func (h *PropertyHandler) Create(c echo.Context) error {
	var req CreatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.CreateProperty(c.Request().Context(), application.CreatePropertyInput{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		Country: req.Country,
		Email:   req.Email,
		Phone:   req.Phone,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toPropertyResponse(p))
}

// GetByID godoc
// @Summary 物件を取得
// @Tags properties
// @Produce json
// @Param id path int true "物件ID"
// @Success 200 {object} PropertyResponse
// @Failure 404 {object} map[string]string
// @Router /properties/{id} [get]
func (h *PropertyHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な物件ID")
	}
	p, err := h.service.GetProperty(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, property.ErrPropertyNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toPropertyResponse(p))
}

// List godoc
// @Summary 物件一覧を取得
// @Tags properties
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} PropertyResponse
// @Router /properties [get]
func (h *PropertyHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	properties, err := h.service.ListProperties(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]PropertyResponse, len(properties))
	for i, p := range properties {
		resp[i] = toPropertyResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary 物件を削除
// @Tags properties
// @Param id path int true "物件ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /properties/{id} [delete]
func (h *PropertyHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な物件ID")
	}
	if err := h.service.DeleteProperty(c.Request().Context(), id); err != nil {
		if errors.Is(err, property.ErrPropertyNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateRoomTypeRequest はルームタイプ作成リクエスト
type CreateRoomTypeRequest struct {
	Name          string `json:"name" validate:"required" example:"デラックスツイン"`
	TotalRooms    int    `json:"total_rooms" validate:"required,min=1" example:"5"`
	BasePrice     int    `json:"base_price" validate:"min=0" example:"12000"`
	InventoryDays int    `json:"inventory_days" validate:"omitempty,min=1,max=730" example:"365"`
}

// RoomTypeResponse はルームタイプレスポンス
type RoomTypeResponse struct {
	ID         int64  `json:"id" example:"1"`
	PropertyID int64  `json:"property_id" example:"1"`
	Name       string `json:"name" example:"デラックスツイン"`
	TotalRooms int    `json:"total_rooms" example:"5"`
	BasePrice  int    `json:"base_price" example:"12000"`
}

func toRoomTypeResponse(rt *property.RoomType) RoomTypeResponse {
	return RoomTypeResponse{
		ID:         rt.ID,
		PropertyID: rt.PropertyID,
		Name:       rt.Name,
		TotalRooms: rt.TotalRooms,
		BasePrice:  rt.BasePrice,
	}
}

// CreateRoomType godoc
// @Summary ルームタイプを作成
// @Description ルームタイプを作成し、在庫レコードを初期化する
// @Tags properties
// @Accept json
// @Produce json
// @Param id path int true "物件ID"
// @Param request body CreateRoomTypeRequest true "ルームタイプ情報"
// @Success 201 {object} RoomTypeResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /properties/{id}/room-types [post]
func (h *PropertyHandler) CreateRoomType(c echo.Context) error {
	propertyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な物件ID")
	}
	var req CreateRoomTypeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	rt, err := h.service.CreateRoomType(c.Request().Context(), application.CreateRoomTypeInput{
		PropertyID:    propertyID,
		Name:          req.Name,
		TotalRooms:    req.TotalRooms,
		BasePrice:     req.BasePrice,
		InventoryDays: req.InventoryDays,
	})
	if err != nil {
		if errors.Is(err, property.ErrPropertyNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toRoomTypeResponse(rt))
}

// ListRoomTypes godoc
// @Summary 物件のルームタイプ一覧を取得
// @Tags properties
// @Produce json
// @Param id path int true "物件ID"
// @Success 200 {array} RoomTypeResponse
// @Router /properties/{id}/room-types [get]
func (h *PropertyHandler) ListRoomTypes(c echo.Context) error {
	propertyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効な物件ID")
	}
	roomTypes, err := h.service.ListRoomTypes(c.Request().Context(), propertyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]RoomTypeResponse, len(roomTypes))
	for i, rt := range roomTypes {
		resp[i] = toRoomTypeResponse(rt)
	}
	return c.JSON(http.StatusOK, resp)
}
