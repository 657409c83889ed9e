package inventory

import "errors"

// Inventory ドメインのエラー定義
var (
	ErrLevelNotFound        = errors.New("在庫レコードが見つかりません")
	ErrInvalidDateRange     = errors.New("チェックアウト日はチェックイン日より後である必要があります")
	ErrVersionConflict      = errors.New("在庫バージョンが一致しません")
	ErrNoAvailability       = errors.New("空室がありません")
	ErrRoomTypeIDRequired   = errors.New("ルームタイプIDは必須です")
	ErrNegativeAvailability = errors.New("空室数は0以上である必要があります")
	ErrInvalidPrice         = errors.New("価格は0以上である必要があります")
)
