package booking

import "time"

// Status は予約の状態を表す
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Booking は予約エンティティを表す
// 作成後は状態遷移を除いて不変
type Booking struct {
	ID           int64
	RoomTypeID   int64
	ChannelName  string
	OTABookingID string // チャネルごとに一意
	CheckIn      time.Time
	CheckOut     time.Time
	GuestName    string
	GuestEmail   string
	NumGuests    int
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewBooking は確定状態の新しい予約を作成する
func NewBooking(roomTypeID int64, channelName, otaBookingID string, checkIn, checkOut time.Time, guestName, guestEmail string, numGuests int) *Booking {
	now := time.Now()
	if numGuests <= 0 {
		numGuests = 1
	}
	return &Booking{
		RoomTypeID:   roomTypeID,
		ChannelName:  channelName,
		OTABookingID: otaBookingID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		GuestName:    guestName,
		GuestEmail:   guestEmail,
		NumGuests:    numGuests,
		Status:       StatusConfirmed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Nights は宿泊数を返す
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// IsConfirmed は予約が確定状態かを返す
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// Cancel は予約をキャンセルする
func (b *Booking) Cancel() error {
	if b.Status == StatusCancelled {
		return ErrBookingAlreadyCancelled
	}
	b.Status = StatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// MarkNoShow は予約をノーショー状態にする
func (b *Booking) MarkNoShow() error {
	if b.Status != StatusConfirmed {
		return ErrBookingNotConfirmed
	}
	b.Status = StatusNoShow
	b.UpdatedAt = time.Now()
	return nil
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.RoomTypeID == 0 {
		return ErrRoomTypeIDRequired
	}
	if b.ChannelName == "" {
		return ErrChannelNameRequired
	}
	if b.OTABookingID == "" {
		return ErrOTABookingIDRequired
	}
	if !b.CheckOut.After(b.CheckIn) {
		return ErrInvalidStayRange
	}
	return nil
}
