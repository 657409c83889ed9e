package channel

import "errors"

// Channel ドメインのエラー定義
var (
	ErrMappingNotFound     = errors.New("チャネルマッピングが見つかりません")
	ErrAdapterNotFound     = errors.New("チャネルアダプターが登録されていません")
	ErrRoomTypeIDRequired  = errors.New("ルームタイプIDは必須です")
	ErrChannelNameRequired = errors.New("チャネル名は必須です")
	ErrOTARoomIDRequired   = errors.New("OTA側の部屋IDは必須です")

	ErrICalURLNotConfigured = errors.New("iCal URLが設定されていません")
)
