package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/transaction"
)

type inventoryRow struct {
	RoomTypeID     int64     `db:"room_type_id"`
	Date           time.Time `db:"date"`
	AvailableCount int       `db:"available_count"`
	Price          int       `db:"price"`
	Version        int       `db:"version"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// InventoryRepository は在庫レコードのPostgreSQL実装
type InventoryRepository struct{ db *sqlx.DB }

func NewInventoryRepository(db *sqlx.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) GetLevel(ctx context.Context, roomTypeID int64, date time.Time) (*inventory.Level, error) {
	var row inventoryRow
	query := `SELECT room_type_id, date, available_count, price, version, created_at, updated_at
		FROM inventory_levels WHERE room_type_id = $1 AND date = $2`
	if err := r.db.GetContext(ctx, &row, query, roomTypeID, inventory.Normalize(date)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventory.ErrLevelNotFound
		}
		return nil, fmt.Errorf("在庫取得に失敗: %w", err)
	}
	return toLevel(&row), nil
}

func (r *InventoryRepository) GetLevels(ctx context.Context, roomTypeID int64, dates []time.Time) ([]*inventory.Level, error) {
	normalized := make([]time.Time, len(dates))
	for i, d := range dates {
		normalized[i] = inventory.Normalize(d)
	}
	var rows []inventoryRow
	query := `SELECT room_type_id, date, available_count, price, version, created_at, updated_at
		FROM inventory_levels WHERE room_type_id = $1 AND date = ANY($2) ORDER BY date`
	if err := r.db.SelectContext(ctx, &rows, query, roomTypeID, pq.Array(normalized)); err != nil {
		return nil, fmt.Errorf("在庫一覧取得に失敗: %w", err)
	}
	return toLevels(rows), nil
}

func (r *InventoryRepository) GetRange(ctx context.Context, roomTypeID int64, start, end time.Time) ([]*inventory.Level, error) {
	var rows []inventoryRow
	query := `SELECT room_type_id, date, available_count, price, version, created_at, updated_at
		FROM inventory_levels WHERE room_type_id = $1 AND date >= $2 AND date <= $3 ORDER BY date`
	if err := r.db.SelectContext(ctx, &rows, query, roomTypeID, inventory.Normalize(start), inventory.Normalize(end)); err != nil {
		return nil, fmt.Errorf("在庫一覧取得に失敗: %w", err)
	}
	return toLevels(rows), nil
}

// DecrementChecked は読み取り時のバージョンを条件とする条件付きUPDATE
// ロックのTTL失効でクリティカルセクションが競合した場合の
// 第二の防衛線として機能する
func (r *InventoryRepository) DecrementChecked(ctx context.Context, tx transaction.Tx, roomTypeID int64, date time.Time, version int) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション")
	}
	query := `UPDATE inventory_levels
		SET available_count = available_count - 1, version = version + 1, updated_at = NOW()
		WHERE room_type_id = $1 AND date = $2 AND version = $3 AND available_count >= 1`
	result, err := sqlxTx.ExecContext(ctx, query, roomTypeID, inventory.Normalize(date), version)
	if err != nil {
		return fmt.Errorf("在庫減算に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return inventory.ErrVersionConflict
	}
	return nil
}

func (r *InventoryRepository) UpdatePrice(ctx context.Context, roomTypeID int64, date time.Time, price int) error {
	query := `UPDATE inventory_levels
		SET price = $3, version = version + 1, updated_at = NOW()
		WHERE room_type_id = $1 AND date = $2`
	result, err := r.db.ExecContext(ctx, query, roomTypeID, inventory.Normalize(date), price)
	if err != nil {
		return fmt.Errorf("価格更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return inventory.ErrLevelNotFound
	}
	return nil
}

func (r *InventoryRepository) SetAvailableCount(ctx context.Context, roomTypeID int64, date time.Time, count int) error {
	query := `UPDATE inventory_levels
		SET available_count = $3, version = version + 1, updated_at = NOW()
		WHERE room_type_id = $1 AND date = $2`
	result, err := r.db.ExecContext(ctx, query, roomTypeID, inventory.Normalize(date), count)
	if err != nil {
		return fmt.Errorf("空室数更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return inventory.ErrLevelNotFound
	}
	return nil
}

func (r *InventoryRepository) Upsert(ctx context.Context, level *inventory.Level) error {
	query := `INSERT INTO inventory_levels (room_type_id, date, available_count, price, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, NOW(), NOW())
		ON CONFLICT (room_type_id, date)
		DO UPDATE SET available_count = $3, price = $4, version = inventory_levels.version + 1, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, level.RoomTypeID, inventory.Normalize(level.Date), level.AvailableCount, level.Price); err != nil {
		return fmt.Errorf("在庫作成に失敗: %w", err)
	}
	return nil
}

func toLevel(row *inventoryRow) *inventory.Level {
	return &inventory.Level{
		RoomTypeID:     row.RoomTypeID,
		Date:           row.Date,
		AvailableCount: row.AvailableCount,
		Price:          row.Price,
		Version:        row.Version,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func toLevels(rows []inventoryRow) []*inventory.Level {
	levels := make([]*inventory.Level, len(rows))
	for i := range rows {
		levels[i] = toLevel(&rows[i])
	}
	return levels
}

var _ inventory.Repository = (*InventoryRepository)(nil)
