package property

import "time"

// Property はホテル物件エンティティを表す
type Property struct {
	ID         int64
	Name       string
	Address    string
	City       string
	Country    string
	Email      string
	Phone      string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewProperty は新しい物件を作成する
func NewProperty(name, address, city, country, email string) *Property {
	now := time.Now()
	return &Property{
		Name:      name,
		Address:   address,
		City:      city,
		Country:   country,
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate は物件の検証を行う
func (p *Property) Validate() error {
	if p.Name == "" {
		return ErrNameRequired
	}
	if p.Email == "" {
		return ErrEmailRequired
	}
	return nil
}

// RoomType は物件内のルームタイプを表す
// TotalRoomsがそのルームタイプの元々の収容能力であり、
// どの宿泊日についても確定予約数がこれを超えてはならない
type RoomType struct {
	ID         int64
	PropertyID int64
	Name       string
	TotalRooms int
	BasePrice  int // 最小通貨単位
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewRoomType は新しいルームタイプを作成する
func NewRoomType(propertyID int64, name string, totalRooms, basePrice int) *RoomType {
	now := time.Now()
	return &RoomType{
		PropertyID: propertyID,
		Name:       name,
		TotalRooms: totalRooms,
		BasePrice:  basePrice,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate はルームタイプの検証を行う
func (rt *RoomType) Validate() error {
	if rt.PropertyID == 0 {
		return ErrPropertyIDRequired
	}
	if rt.Name == "" {
		return ErrNameRequired
	}
	if rt.TotalRooms <= 0 {
		return ErrInvalidTotalRooms
	}
	if rt.BasePrice < 0 {
		return ErrInvalidBasePrice
	}
	return nil
}
