package channel

import "time"

// サポートするOTAチャネル名
const (
	BookingCom = "booking_com"
	Airbnb     = "airbnb"
	Expedia    = "expedia"
)

// Mapping はローカルのルームタイプとOTA側の部屋IDの対応を表す
// Broadcasterの配信先を定義する読み取り専用の入力
type Mapping struct {
	ID            int64
	RoomTypeID    int64
	ChannelName   string
	OTARoomID     string
	OTAPropertyID string
	ICalURL       string // Airbnbカレンダー同期用
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewMapping は新しいチャネルマッピングを作成する
func NewMapping(roomTypeID int64, channelName, otaRoomID string) *Mapping {
	now := time.Now()
	return &Mapping{
		RoomTypeID:  roomTypeID,
		ChannelName: channelName,
		OTARoomID:   otaRoomID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate はマッピングの検証を行う
func (m *Mapping) Validate() error {
	if m.RoomTypeID == 0 {
		return ErrRoomTypeIDRequired
	}
	if m.ChannelName == "" {
		return ErrChannelNameRequired
	}
	if m.OTARoomID == "" {
		return ErrOTARoomIDRequired
	}
	return nil
}
