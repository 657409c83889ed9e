package channel

import "context"

// Repository はチャネルマッピングリポジトリのインターフェース
type Repository interface {
	// Create は新しいマッピングを作成する
	Create(ctx context.Context, m *Mapping) error

	// GetByID はIDからマッピングを取得する
	GetByID(ctx context.Context, id int64) (*Mapping, error)

	// ListByRoomType はルームタイプの全マッピングを取得する
	ListByRoomType(ctx context.Context, roomTypeID int64) ([]*Mapping, error)

	// ListActiveByRoomType はルームタイプの有効なマッピングのみを取得する
	ListActiveByRoomType(ctx context.Context, roomTypeID int64) ([]*Mapping, error)

	// SetActive はマッピングの有効フラグを切り替える
	SetActive(ctx context.Context, id int64, active bool) error
}
