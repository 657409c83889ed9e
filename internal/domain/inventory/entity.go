package inventory

import "time"

// DateLayout は在庫日付の正規表現形式
const DateLayout = "2006-01-02"

// Unit はロックと在庫計上の最小単位（ルームタイプ×宿泊日）を表す
// 永続化されるオブジェクトではなく、排他制御の単位
type Unit struct {
	RoomTypeID int64
	Date       time.Time
}

// NewUnit は日付を日単位に正規化したUnitを作成する
func NewUnit(roomTypeID int64, date time.Time) Unit {
	return Unit{RoomTypeID: roomTypeID, Date: Normalize(date)}
}

// DateKey は日付部分の文字列表現を返す
func (u Unit) DateKey() string {
	return u.Date.Format(DateLayout)
}

// Level はルームタイプ×日付ごとの在庫レコードを表す
// AvailableCountの減算は必ず該当Unitのロック保持中に行うこと
type Level struct {
	RoomTypeID     int64
	Date           time.Time
	AvailableCount int
	Price          int // 最小通貨単位
	Version        int // 減算1回につき必ず+1される
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewLevel は新しい在庫レコードを作成する
func NewLevel(roomTypeID int64, date time.Time, availableCount, price int) *Level {
	now := time.Now()
	return &Level{
		RoomTypeID:     roomTypeID,
		Date:           Normalize(date),
		AvailableCount: availableCount,
		Price:          price,
		Version:        0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// HasAvailability は1室以上の空きがあるかを返す
func (l *Level) HasAvailability() bool {
	return l.AvailableCount >= 1
}

// Validate は在庫レコードの検証を行う
func (l *Level) Validate() error {
	if l.RoomTypeID == 0 {
		return ErrRoomTypeIDRequired
	}
	if l.AvailableCount < 0 {
		return ErrNegativeAvailability
	}
	if l.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Normalize は時刻情報を落として日単位に丸める
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StayNights はチェックイン（含む）からチェックアウト（含まない）までの
// 宿泊日リストを展開する。check_out <= check_in の場合はnilを返す
func StayNights(checkIn, checkOut time.Time) []time.Time {
	in := Normalize(checkIn)
	out := Normalize(checkOut)
	if !out.After(in) {
		return nil
	}

	var nights []time.Time
	for d := in; d.Before(out); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}

// UnitsFor は宿泊日リストをロック単位に変換する
func UnitsFor(roomTypeID int64, nights []time.Time) []Unit {
	units := make([]Unit, len(nights))
	for i, n := range nights {
		units[i] = NewUnit(roomTypeID, n)
	}
	return units
}
