package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/logger"
)

// AvailabilityCacheReader はキャッシュの読み書き両方を受け付ける
type AvailabilityCacheReader interface {
	Get(ctx context.Context, roomTypeID int64, date time.Time) (int, error)
	Set(ctx context.Context, roomTypeID int64, date time.Time, count int) error
	Invalidate(ctx context.Context, roomTypeID int64, date time.Time) error
}

type InventoryService struct {
	inventoryRepo inventory.Repository
	cache         AvailabilityCacheReader // nil可
	broadcaster   AvailabilityBroadcaster // nil可
}

func NewInventoryService(repo inventory.Repository, cache AvailabilityCacheReader, broadcaster AvailabilityBroadcaster) *InventoryService {
	return &InventoryService{inventoryRepo: repo, cache: cache, broadcaster: broadcaster}
}

// GetRange は期間内の在庫を日付順で返す
func (s *InventoryService) GetRange(ctx context.Context, roomTypeID int64, start, end time.Time) ([]*inventory.Level, error) {
	if end.Before(start) {
		return nil, inventory.ErrInvalidDateRange
	}
	levels, err := s.inventoryRepo.GetRange(ctx, roomTypeID, start, end)
	if err != nil {
		return nil, err
	}
	// 読み取りパスでキャッシュを温める
	if s.cache != nil {
		for _, level := range levels {
			if err := s.cache.Set(ctx, roomTypeID, level.Date, level.AvailableCount); err != nil {
				logger.Debug("キャッシュ保存に失敗", zap.Error(err))
				break
			}
		}
	}
	return levels, nil
}

// GetAvailability は指定日の空室数を返す（キャッシュ優先）
func (s *InventoryService) GetAvailability(ctx context.Context, roomTypeID int64, date time.Time) (int, error) {
	if s.cache != nil {
		if count, err := s.cache.Get(ctx, roomTypeID, date); err == nil {
			return count, nil
		}
	}
	level, err := s.inventoryRepo.GetLevel(ctx, roomTypeID, date)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, roomTypeID, date, level.AvailableCount); err != nil {
			logger.Debug("キャッシュ保存に失敗", zap.Error(err))
		}
	}
	return level.AvailableCount, nil
}

// InventoryUpdate は一括更新の1エントリ
type InventoryUpdate struct {
	Date           time.Time
	AvailableCount int
	Price          int
}

// BulkUpdate は複数日の在庫と価格をまとめて作成・更新する
// 手動の在庫調整用であり、予約経路とは異なりロックを取らない
// 更新後に影響日のブロードキャストを予約する
func (s *InventoryService) BulkUpdate(ctx context.Context, roomTypeID int64, updates []InventoryUpdate) (int, error) {
	updated := 0
	dates := make([]time.Time, 0, len(updates))
	for _, u := range updates {
		level := inventory.NewLevel(roomTypeID, u.Date, u.AvailableCount, u.Price)
		if err := level.Validate(); err != nil {
			return updated, fmt.Errorf("在庫更新エントリが不正 (date=%s): %w", u.Date.Format(inventory.DateLayout), err)
		}
		if err := s.inventoryRepo.Upsert(ctx, level); err != nil {
			return updated, err
		}
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, roomTypeID, u.Date); err != nil && !errors.Is(err, context.Canceled) {
				logger.Debug("キャッシュ無効化に失敗", zap.Error(err))
			}
		}
		dates = append(dates, inventory.Normalize(u.Date))
		updated++
	}

	if s.broadcaster != nil && len(dates) > 0 {
		s.broadcaster.EnqueueAvailability(roomTypeID, dates)
	}
	return updated, nil
}
