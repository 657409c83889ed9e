package inventory

import (
	"context"
	"time"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/transaction"
)

// Repository は在庫リポジトリのインターフェース
type Repository interface {
	// GetLevel は指定日の在庫レコードを取得する
	GetLevel(ctx context.Context, roomTypeID int64, date time.Time) (*Level, error)

	// GetLevels は複数日の在庫レコードをまとめて取得する
	GetLevels(ctx context.Context, roomTypeID int64, dates []time.Time) ([]*Level, error)

	// GetRange は期間内（両端含む）の在庫レコードを日付順で取得する
	GetRange(ctx context.Context, roomTypeID int64, start, end time.Time) ([]*Level, error)

	// DecrementChecked は読み取り時のバージョンを条件に空室数を1減算し、
	// バージョンを+1する（トランザクション必須）
	// バージョン不一致または空室なしの場合は ErrVersionConflict を返す
	DecrementChecked(ctx context.Context, tx transaction.Tx, roomTypeID int64, date time.Time, version int) error

	// UpdatePrice は指定日の価格を更新しバージョンを+1する
	UpdatePrice(ctx context.Context, roomTypeID int64, date time.Time, price int) error

	// SetAvailableCount は指定日の空室数を直接設定しバージョンを+1する
	// カレンダー同期や手動の在庫調整で使用する
	SetAvailableCount(ctx context.Context, roomTypeID int64, date time.Time, count int) error

	// Upsert は在庫レコードを作成または更新する
	Upsert(ctx context.Context, level *Level) error
}
