package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/transaction"
)

type bookingRow struct {
	ID           int64     `db:"id"`
	RoomTypeID   int64     `db:"room_type_id"`
	ChannelName  string    `db:"channel_name"`
	OTABookingID string    `db:"ota_booking_id"`
	CheckIn      time.Time `db:"check_in"`
	CheckOut     time.Time `db:"check_out"`
	GuestName    string    `db:"guest_name"`
	GuestEmail   string    `db:"guest_email"`
	NumGuests    int       `db:"num_guests"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// BookingRepository は予約のPostgreSQL実装
type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション")
	}
	query := `INSERT INTO bookings (room_type_id, channel_name, ota_booking_id, check_in, check_out, guest_name, guest_email, num_guests, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query,
		b.RoomTypeID, b.ChannelName, b.OTABookingID, b.CheckIn, b.CheckOut,
		b.GuestName, b.GuestEmail, b.NumGuests, string(b.Status), b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return booking.ErrDuplicateOTABookingID
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT id, room_type_id, channel_name, ota_booking_id, check_in, check_out, guest_name, guest_email, num_guests, status, created_at, updated_at
		FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return toBooking(&row), nil
}

func (r *BookingRepository) GetByOTABookingID(ctx context.Context, channelName, otaBookingID string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT id, room_type_id, channel_name, ota_booking_id, check_in, check_out, guest_name, guest_email, num_guests, status, created_at, updated_at
		FROM bookings WHERE channel_name = $1 AND ota_booking_id = $2`
	if err := r.db.GetContext(ctx, &row, query, channelName, otaBookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return toBooking(&row), nil
}

func (r *BookingRepository) GetByRoomType(ctx context.Context, roomTypeID int64, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT id, room_type_id, channel_name, ota_booking_id, check_in, check_out, guest_name, guest_email, num_guests, status, created_at, updated_at
		FROM bookings WHERE room_type_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, roomTypeID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = toBooking(&rows[i])
	}
	return result, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, b *booking.Booking) error {
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, string(b.Status), b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func toBooking(row *bookingRow) *booking.Booking {
	return &booking.Booking{
		ID:           row.ID,
		RoomTypeID:   row.RoomTypeID,
		ChannelName:  row.ChannelName,
		OTABookingID: row.OTABookingID,
		CheckIn:      row.CheckIn,
		CheckOut:     row.CheckOut,
		GuestName:    row.GuestName,
		GuestEmail:   row.GuestEmail,
		NumGuests:    row.NumGuests,
		Status:       booking.Status(row.Status),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

var _ booking.Repository = (*BookingRepository)(nil)
