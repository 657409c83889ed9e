package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/lock"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/logger"
)

// BookingService は予約の参照と状態遷移を担う
// 新規予約の作成はSyncEngine.ProcessBookingの責務であり、ここでは扱わない
type BookingService struct {
	bookingRepo   booking.Repository
	inventoryRepo inventory.Repository
	coordinator   *lock.Coordinator
	broadcaster   AvailabilityBroadcaster // nil可
	cache         CacheInvalidator        // nil可
}

func NewBookingService(
	bookingRepo booking.Repository,
	inventoryRepo inventory.Repository,
	coordinator *lock.Coordinator,
	broadcaster AvailabilityBroadcaster,
	cache CacheInvalidator,
) *BookingService {
	return &BookingService{
		bookingRepo:   bookingRepo,
		inventoryRepo: inventoryRepo,
		coordinator:   coordinator,
		broadcaster:   broadcaster,
		cache:         cache,
	}
}

// GetBooking はIDで予約を取得する
func (s *BookingService) GetBooking(ctx context.Context, id int64) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// ListByRoomType はルームタイプの予約一覧を新しい順で返す
func (s *BookingService) ListByRoomType(ctx context.Context, roomTypeID int64, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.GetByRoomType(ctx, roomTypeID, limit, offset)
}

// CancelBooking は予約をキャンセルし、宿泊日の在庫を戻す
// 在庫の復元は予約経路と同じ分散ロック下で行う
func (s *BookingService) CancelBooking(ctx context.Context, id int64) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.Cancel(); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdateStatus(ctx, b); err != nil {
		return nil, fmt.Errorf("予約状態の更新に失敗: %w", err)
	}

	nights := inventory.StayNights(b.CheckIn, b.CheckOut)
	if err := s.restoreInventory(ctx, b.RoomTypeID, nights); err != nil {
		// 予約自体のキャンセルは完了している。在庫の復元失敗は警告に留める
		logger.Warn("キャンセル分の在庫復元に失敗",
			zap.Int64("booking_id", b.ID),
			zap.Error(err),
		)
	}
	return b, nil
}

// MarkNoShow は予約をノーショー状態にする。在庫は戻さない
func (s *BookingService) MarkNoShow(ctx context.Context, id int64) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.MarkNoShow(); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdateStatus(ctx, b); err != nil {
		return nil, fmt.Errorf("予約状態の更新に失敗: %w", err)
	}
	return b, nil
}

func (s *BookingService) restoreInventory(ctx context.Context, roomTypeID int64, nights []time.Time) error {
	units := inventory.UnitsFor(roomTypeID, nights)
	if !s.coordinator.AcquireAll(ctx, units) {
		return fmt.Errorf("在庫復元用のロック取得に失敗 (room_type_id=%d)", roomTypeID)
	}
	defer s.coordinator.ReleaseAll(ctx, units)

	restored := make([]time.Time, 0, len(nights))
	for _, night := range nights {
		level, err := s.inventoryRepo.GetLevel(ctx, roomTypeID, night)
		if err != nil {
			return fmt.Errorf("在庫取得に失敗 (date=%s): %w", night.Format(inventory.DateLayout), err)
		}
		if err := s.inventoryRepo.SetAvailableCount(ctx, roomTypeID, night, level.AvailableCount+1); err != nil {
			return fmt.Errorf("在庫復元に失敗 (date=%s): %w", night.Format(inventory.DateLayout), err)
		}
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, roomTypeID, night); err != nil {
				logger.Debug("キャッシュ無効化に失敗", zap.Error(err))
			}
		}
		restored = append(restored, night)
	}

	if s.broadcaster != nil && len(restored) > 0 {
		s.broadcaster.EnqueueAvailability(roomTypeID, restored)
	}
	return nil
}
