package booking

import (
	"context"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	// (channel_name, ota_booking_id) が重複する場合は
	// ErrDuplicateOTABookingID を返す
	Create(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id int64) (*Booking, error)

	// GetByOTABookingID はチャネル名とOTA予約IDから予約を取得する
	GetByOTABookingID(ctx context.Context, channelName, otaBookingID string) (*Booking, error)

	// GetByRoomType はルームタイプの予約一覧を新しい順で取得する
	GetByRoomType(ctx context.Context, roomTypeID int64, limit, offset int) ([]*Booking, error)

	// UpdateStatus は予約の状態を更新する
	UpdateStatus(ctx context.Context, b *Booking) error
}
