package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound         = errors.New("予約が見つかりません")
	ErrDuplicateOTABookingID   = errors.New("同じOTA予約IDの予約が既に存在します")
	ErrBookingAlreadyCancelled = errors.New("予約は既にキャンセルされています")
	ErrBookingNotConfirmed     = errors.New("予約は確定状態ではありません")
	ErrRoomTypeIDRequired      = errors.New("ルームタイプIDは必須です")
	ErrChannelNameRequired     = errors.New("チャネル名は必須です")
	ErrOTABookingIDRequired    = errors.New("OTA予約IDは必須です")
	ErrInvalidStayRange        = errors.New("チェックアウト日はチェックイン日より後である必要があります")
)
