package application

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/property"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/infrastructure/postgres"
)

// デフォルトで在庫を初期化する日数
const defaultInventoryDays = 365

type PropertyService struct {
	db           *sqlx.DB
	propertyRepo property.Repository
	roomTypeRepo property.RoomTypeRepository
}

func NewPropertyService(db *sqlx.DB, pr property.Repository, rtr property.RoomTypeRepository) *PropertyService {
	return &PropertyService{db: db, propertyRepo: pr, roomTypeRepo: rtr}
}

type CreatePropertyInput struct {
	Name    string
	Address string
	City    string
	Country string
	Email   string
	Phone   string
}

func (s *PropertyService) CreateProperty(ctx context.Context, input CreatePropertyInput) (*property.Property, error) {
	p := property.NewProperty(input.Name, input.Address, input.City, input.Country, input.Email)
	p.Phone = input.Phone
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PropertyService) GetProperty(ctx context.Context, id int64) (*property.Property, error) {
	return s.propertyRepo.GetByID(ctx, id)
}

func (s *PropertyService) ListProperties(ctx context.Context, limit, offset int) ([]*property.Property, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.propertyRepo.List(ctx, limit, offset)
}

func (s *PropertyService) UpdateProperty(ctx context.Context, p *property.Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.propertyRepo.Update(ctx, p)
}

func (s *PropertyService) DeleteProperty(ctx context.Context, id int64) error {
	return s.propertyRepo.Delete(ctx, id)
}

type CreateRoomTypeInput struct {
	PropertyID    int64
	Name          string
	TotalRooms    int
	BasePrice     int
	InventoryDays int // 0の場合はデフォルト365日
}

// CreateRoomType はルームタイプを作成し、在庫レコードを初期化する
func (s *PropertyService) CreateRoomType(ctx context.Context, input CreateRoomTypeInput) (*property.RoomType, error) {
	if _, err := s.propertyRepo.GetByID(ctx, input.PropertyID); err != nil {
		return nil, err
	}

	rt := property.NewRoomType(input.PropertyID, input.Name, input.TotalRooms, input.BasePrice)
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	if err := s.roomTypeRepo.Create(ctx, rt); err != nil {
		return nil, err
	}

	days := input.InventoryDays
	if days <= 0 {
		days = defaultInventoryDays
	}
	if err := postgres.InitializeInventory(ctx, s.db, rt.ID, rt.TotalRooms, rt.BasePrice, days); err != nil {
		return nil, fmt.Errorf("在庫初期化に失敗: %w", err)
	}
	return rt, nil
}

func (s *PropertyService) GetRoomType(ctx context.Context, id int64) (*property.RoomType, error) {
	return s.roomTypeRepo.GetByID(ctx, id)
}

func (s *PropertyService) ListRoomTypes(ctx context.Context, propertyID int64) ([]*property.RoomType, error) {
	return s.roomTypeRepo.ListByProperty(ctx, propertyID)
}
