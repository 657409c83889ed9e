package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
)

// InitializeInventory はルームタイプの在庫レコードを今日からN日分作成する
// 既存の日付は変更しない
func InitializeInventory(ctx context.Context, db *sqlx.DB, roomTypeID int64, totalRooms, basePrice, days int) error {
	today := inventory.Normalize(time.Now())
	query := `INSERT INTO inventory_levels (room_type_id, date, available_count, price, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, NOW(), NOW())
		ON CONFLICT (room_type_id, date) DO NOTHING`

	for offset := 0; offset < days; offset++ {
		date := today.AddDate(0, 0, offset)
		if _, err := db.ExecContext(ctx, query, roomTypeID, date, totalRooms, basePrice); err != nil {
			return fmt.Errorf("在庫初期化に失敗 (date=%s): %w", date.Format(inventory.DateLayout), err)
		}
	}
	return nil
}
