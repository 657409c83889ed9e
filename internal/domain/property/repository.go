package property

import "context"

// Repository は物件リポジトリのインターフェース
type Repository interface {
	// Create は新しい物件を作成する
	Create(ctx context.Context, p *Property) error

	// GetByID はIDから物件を取得する
	GetByID(ctx context.Context, id int64) (*Property, error)

	// List は物件一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Property, error)

	// Update は物件を更新する
	Update(ctx context.Context, p *Property) error

	// Delete は物件を削除する
	Delete(ctx context.Context, id int64) error
}

// RoomTypeRepository はルームタイプリポジトリのインターフェース
type RoomTypeRepository interface {
	// Create は新しいルームタイプを作成する
	Create(ctx context.Context, rt *RoomType) error

	// GetByID はIDからルームタイプを取得する
	GetByID(ctx context.Context, id int64) (*RoomType, error)

	// ListByProperty は物件のルームタイプ一覧を取得する
	ListByProperty(ctx context.Context, propertyID int64) ([]*RoomType, error)
}
