package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/property"
)

type propertyRow struct {
	ID        int64          `db:"id"`
	Name      string         `db:"name"`
	Address   string         `db:"address"`
	City      string         `db:"city"`
	Country   string         `db:"country"`
	Email     string         `db:"email"`
	Phone     sql.NullString `db:"phone"`
	IsActive  bool           `db:"is_active"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type roomTypeRow struct {
	ID         int64     `db:"id"`
	PropertyID int64     `db:"property_id"`
	Name       string    `db:"name"`
	TotalRooms int       `db:"total_rooms"`
	BasePrice  int       `db:"base_price"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// PropertyRepository は物件のPostgreSQL実装
type PropertyRepository struct{ db *sqlx.DB }

func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(ctx context.Context, p *property.Property) error {
	query := `INSERT INTO properties (name, address, city, country, email, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Address, p.City, p.Country, p.Email, p.Phone, p.IsActive, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID); err != nil {
		return fmt.Errorf("物件作成に失敗: %w", err)
	}
	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*property.Property, error) {
	var row propertyRow
	query := `SELECT id, name, address, city, country, email, phone, is_active, created_at, updated_at FROM properties WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, property.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("物件取得に失敗: %w", err)
	}
	return toProperty(&row), nil
}

func (r *PropertyRepository) List(ctx context.Context, limit, offset int) ([]*property.Property, error) {
	var rows []propertyRow
	query := `SELECT id, name, address, city, country, email, phone, is_active, created_at, updated_at
		FROM properties ORDER BY id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("物件一覧取得に失敗: %w", err)
	}
	result := make([]*property.Property, len(rows))
	for i := range rows {
		result[i] = toProperty(&rows[i])
	}
	return result, nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *property.Property) error {
	query := `UPDATE properties SET name = $1, address = $2, city = $3, country = $4, email = $5, phone = NULLIF($6, ''), is_active = $7, updated_at = $8 WHERE id = $9`
	result, err := r.db.ExecContext(ctx, query, p.Name, p.Address, p.City, p.Country, p.Email, p.Phone, p.IsActive, time.Now(), p.ID)
	if err != nil {
		return fmt.Errorf("物件更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return property.ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("物件削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return property.ErrPropertyNotFound
	}
	return nil
}

func toProperty(row *propertyRow) *property.Property {
	return &property.Property{
		ID:        row.ID,
		Name:      row.Name,
		Address:   row.Address,
		City:      row.City,
		Country:   row.Country,
		Email:     row.Email,
		Phone:     row.Phone.String,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// RoomTypeRepository はルームタイプのPostgreSQL実装
type RoomTypeRepository struct{ db *sqlx.DB }

func NewRoomTypeRepository(db *sqlx.DB) *RoomTypeRepository {
	return &RoomTypeRepository{db: db}
}

func (r *RoomTypeRepository) Create(ctx context.Context, rt *property.RoomType) error {
	query := `INSERT INTO room_types (property_id, name, total_rooms, base_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		rt.PropertyID, rt.Name, rt.TotalRooms, rt.BasePrice, rt.CreatedAt, rt.UpdatedAt,
	).Scan(&rt.ID); err != nil {
		return fmt.Errorf("ルームタイプ作成に失敗: %w", err)
	}
	return nil
}

func (r *RoomTypeRepository) GetByID(ctx context.Context, id int64) (*property.RoomType, error) {
	var row roomTypeRow
	query := `SELECT id, property_id, name, total_rooms, base_price, created_at, updated_at FROM room_types WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, property.ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("ルームタイプ取得に失敗: %w", err)
	}
	return toRoomType(&row), nil
}

func (r *RoomTypeRepository) ListByProperty(ctx context.Context, propertyID int64) ([]*property.RoomType, error) {
	var rows []roomTypeRow
	query := `SELECT id, property_id, name, total_rooms, base_price, created_at, updated_at
		FROM room_types WHERE property_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query, propertyID); err != nil {
		return nil, fmt.Errorf("ルームタイプ一覧取得に失敗: %w", err)
	}
	result := make([]*property.RoomType, len(rows))
	for i := range rows {
		result[i] = toRoomType(&rows[i])
	}
	return result, nil
}

func toRoomType(row *roomTypeRow) *property.RoomType {
	return &property.RoomType{
		ID:         row.ID,
		PropertyID: row.PropertyID,
		Name:       row.Name,
		TotalRooms: row.TotalRooms,
		BasePrice:  row.BasePrice,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

var (
	_ property.Repository         = (*PropertyRepository)(nil)
	_ property.RoomTypeRepository = (*RoomTypeRepository)(nil)
)
