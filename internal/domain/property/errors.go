package property

import "errors"

// Property ドメインのエラー定義
var (
	ErrPropertyNotFound   = errors.New("物件が見つかりません")
	ErrRoomTypeNotFound   = errors.New("ルームタイプが見つかりません")
	ErrNameRequired       = errors.New("名前は必須です")
	ErrEmailRequired      = errors.New("メールアドレスは必須です")
	ErrPropertyIDRequired = errors.New("物件IDは必須です")
	ErrInvalidTotalRooms  = errors.New("部屋数は1以上である必要があります")
	ErrInvalidBasePrice   = errors.New("基本価格は0以上である必要があります")
)
