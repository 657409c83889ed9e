package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/channel"
)

type mappingRow struct {
	ID            int64          `db:"id"`
	RoomTypeID    int64          `db:"room_type_id"`
	ChannelName   string         `db:"channel_name"`
	OTARoomID     string         `db:"ota_room_id"`
	OTAPropertyID sql.NullString `db:"ota_property_id"`
	ICalURL       sql.NullString `db:"ical_url"`
	IsActive      bool           `db:"is_active"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// ChannelMappingRepository はチャネルマッピングのPostgreSQL実装
type ChannelMappingRepository struct{ db *sqlx.DB }

func NewChannelMappingRepository(db *sqlx.DB) *ChannelMappingRepository {
	return &ChannelMappingRepository{db: db}
}

func (r *ChannelMappingRepository) Create(ctx context.Context, m *channel.Mapping) error {
	query := `INSERT INTO channel_mappings (room_type_id, channel_name, ota_room_id, ota_property_id, ical_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		m.RoomTypeID, m.ChannelName, m.OTARoomID, m.OTAPropertyID, m.ICalURL, m.IsActive, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID); err != nil {
		return fmt.Errorf("チャネルマッピング作成に失敗: %w", err)
	}
	return nil
}

func (r *ChannelMappingRepository) GetByID(ctx context.Context, id int64) (*channel.Mapping, error) {
	var row mappingRow
	query := `SELECT id, room_type_id, channel_name, ota_room_id, ota_property_id, ical_url, is_active, created_at, updated_at
		FROM channel_mappings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, channel.ErrMappingNotFound
		}
		return nil, fmt.Errorf("チャネルマッピング取得に失敗: %w", err)
	}
	return toMapping(&row), nil
}

func (r *ChannelMappingRepository) ListByRoomType(ctx context.Context, roomTypeID int64) ([]*channel.Mapping, error) {
	return r.list(ctx, `SELECT id, room_type_id, channel_name, ota_room_id, ota_property_id, ical_url, is_active, created_at, updated_at
		FROM channel_mappings WHERE room_type_id = $1 ORDER BY id`, roomTypeID)
}

func (r *ChannelMappingRepository) ListActiveByRoomType(ctx context.Context, roomTypeID int64) ([]*channel.Mapping, error) {
	return r.list(ctx, `SELECT id, room_type_id, channel_name, ota_room_id, ota_property_id, ical_url, is_active, created_at, updated_at
		FROM channel_mappings WHERE room_type_id = $1 AND is_active = TRUE ORDER BY id`, roomTypeID)
}

func (r *ChannelMappingRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE channel_mappings SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("チャネルマッピング更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return channel.ErrMappingNotFound
	}
	return nil
}

func (r *ChannelMappingRepository) list(ctx context.Context, query string, roomTypeID int64) ([]*channel.Mapping, error) {
	var rows []mappingRow
	if err := r.db.SelectContext(ctx, &rows, query, roomTypeID); err != nil {
		return nil, fmt.Errorf("チャネルマッピング一覧取得に失敗: %w", err)
	}
	result := make([]*channel.Mapping, len(rows))
	for i := range rows {
		result[i] = toMapping(&rows[i])
	}
	return result, nil
}

func toMapping(row *mappingRow) *channel.Mapping {
	return &channel.Mapping{
		ID:            row.ID,
		RoomTypeID:    row.RoomTypeID,
		ChannelName:   row.ChannelName,
		OTARoomID:     row.OTARoomID,
		OTAPropertyID: row.OTAPropertyID.String,
		ICalURL:       row.ICalURL.String,
		IsActive:      row.IsActive,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

var _ channel.Repository = (*ChannelMappingRepository)(nil)
