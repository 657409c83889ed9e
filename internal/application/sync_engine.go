package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/channel"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/transaction"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/lock"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/metrics"
)

// BookingStatus は予約処理の結果種別
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
)

// RejectReason は拒否理由の機械可読表現
// OTA側のリトライ判断に使われるため、互いに区別可能であること
type RejectReason string

const (
	ReasonInvalidDateRange RejectReason = "invalid_date_range" // 同一日付での再試行は無意味
	ReasonLockUnavailable  RejectReason = "lock_unavailable"   // 一時的な競合。少し待って再試行可
	ReasonNoAvailability   RejectReason = "no_availability"    // 満室。同一日付での再試行は無意味
)

// BookingResult は予約処理の結果
// 拒否は例外ではなく通常の結果として表現される
type BookingResult struct {
	Status           BookingStatus
	Reason           RejectReason
	UnavailableDates []time.Time
	Booking          *booking.Booking
}

// BookingInput はOTAからの予約リクエスト
type BookingInput struct {
	RoomTypeID   int64
	ChannelName  string
	OTABookingID string
	CheckIn      time.Time
	CheckOut     time.Time
	GuestName    string
	GuestEmail   string
	NumGuests    int
}

// AvailabilityBroadcaster は確定後の空室数配信を受け付ける
// 呼び出しはノンブロッキングで、結果は予約の成否に影響しない
type AvailabilityBroadcaster interface {
	EnqueueAvailability(roomTypeID int64, dates []time.Time)
}

// EventPublisher は予約確定イベントの発行を受け付ける
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, b *booking.Booking) error
}

// CacheInvalidator は空室数キャッシュの無効化を受け付ける
type CacheInvalidator interface {
	Invalidate(ctx context.Context, roomTypeID int64, date time.Time) error
}

// SyncEngine はチャネル横断の在庫同期を調停するマスターエンジン
//
// 責務:
//   - 分散ロック下でのアトミックな在庫更新
//   - 接続済みOTAへの空室数ブロードキャスト
//   - チャネル横断のレートパリティ管理
type SyncEngine struct {
	txManager     transaction.Manager
	inventoryRepo inventory.Repository
	bookingRepo   booking.Repository
	mappingRepo   channel.Repository
	coordinator   *lock.Coordinator
	registry      *channel.Registry
	broadcaster   AvailabilityBroadcaster
	publisher     EventPublisher   // nil可
	cache         CacheInvalidator // nil可
	metrics       *metrics.Metrics // nil可
}

// NewSyncEngine は新しいSyncEngineを作成する
func NewSyncEngine(
	txManager transaction.Manager,
	inventoryRepo inventory.Repository,
	bookingRepo booking.Repository,
	mappingRepo channel.Repository,
	coordinator *lock.Coordinator,
	registry *channel.Registry,
	broadcaster AvailabilityBroadcaster,
) *SyncEngine {
	return &SyncEngine{
		txManager:     txManager,
		inventoryRepo: inventoryRepo,
		bookingRepo:   bookingRepo,
		mappingRepo:   mappingRepo,
		coordinator:   coordinator,
		registry:      registry,
		broadcaster:   broadcaster,
	}
}

// WithPublisher は予約確定イベントの発行先を設定する
func (e *SyncEngine) WithPublisher(p EventPublisher) *SyncEngine {
	e.publisher = p
	return e
}

// WithCache は空室数キャッシュの無効化先を設定する
func (e *SyncEngine) WithCache(c CacheInvalidator) *SyncEngine {
	e.cache = c
	return e
}

// WithMetrics はメトリクス記録先を設定する
func (e *SyncEngine) WithMetrics(m *metrics.Metrics) *SyncEngine {
	e.metrics = m
	return e
}

// ProcessBooking はOTAからの予約をアトミックな在庫更新付きで処理する
//
//  1. 宿泊日を展開し、全日付の分散ロックを取得する
//  2. ロック下で各宿泊日の空室を確認する
//  3. 在庫をアトミックに減算する
//  4. 予約レコードを作成する
//  5. ロックを解放し、空室数ブロードキャストを予約する
//
// 拒否（ロック競合・満室・無効な日付範囲）はBookingResultで返し、
// ストレージ障害のみerrorとして返す
func (e *SyncEngine) ProcessBooking(ctx context.Context, input BookingInput) (*BookingResult, error) {
	nights := inventory.StayNights(input.CheckIn, input.CheckOut)
	if len(nights) == 0 {
		// ロック取得前に拒否。ストレージには一切触れない
		e.countBooking(string(ReasonInvalidDateRange))
		return &BookingResult{Status: BookingRejected, Reason: ReasonInvalidDateRange}, nil
	}

	// 冪等性チェック: OTAは配信済みWebhookを再送することがある
	existing, err := e.bookingRepo.GetByOTABookingID(ctx, input.ChannelName, input.OTABookingID)
	if err == nil {
		logger.Info("重複予約リクエストを検出。既存の予約を返します",
			zap.String("channel", input.ChannelName),
			zap.String("ota_booking_id", input.OTABookingID),
		)
		e.countBooking("duplicate")
		return &BookingResult{Status: BookingConfirmed, Booking: existing}, nil
	}
	if !errors.Is(err, booking.ErrBookingNotFound) {
		return nil, fmt.Errorf("冪等性チェックに失敗: %w", err)
	}

	units := inventory.UnitsFor(input.RoomTypeID, nights)
	if !e.coordinator.AcquireAll(ctx, units) {
		e.countBooking(string(ReasonLockUnavailable))
		return &BookingResult{Status: BookingRejected, Reason: ReasonLockUnavailable}, nil
	}
	// クリティカルセクション中のエラーでも必ずロックを解放する
	defer e.coordinator.ReleaseAll(ctx, units)

	// ロック下での空室確認
	levels := make([]*inventory.Level, 0, len(nights))
	var unavailable []time.Time
	for _, night := range nights {
		level, err := e.inventoryRepo.GetLevel(ctx, input.RoomTypeID, night)
		if err != nil {
			if errors.Is(err, inventory.ErrLevelNotFound) {
				unavailable = append(unavailable, night)
				continue
			}
			return nil, fmt.Errorf("空室確認に失敗: %w", err)
		}
		if !level.HasAvailability() {
			unavailable = append(unavailable, night)
			continue
		}
		levels = append(levels, level)
	}
	if len(unavailable) > 0 {
		// 減算は行われていないため、この処理に観測可能な副作用はない
		e.countBooking(string(ReasonNoAvailability))
		return &BookingResult{
			Status:           BookingRejected,
			Reason:           ReasonNoAvailability,
			UnavailableDates: unavailable,
		}, nil
	}

	// 減算と予約作成を単一トランザクションで実行する
	// OTA予約IDの一意制約違反時はロールバックされるため、
	// 重複リクエストが在庫を二重減算することはない
	b := booking.NewBooking(
		input.RoomTypeID, input.ChannelName, input.OTABookingID,
		inventory.Normalize(input.CheckIn), inventory.Normalize(input.CheckOut),
		input.GuestName, input.GuestEmail, input.NumGuests,
	)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if err := e.commitBooking(ctx, b, levels); err != nil {
		if errors.Is(err, booking.ErrDuplicateOTABookingID) {
			original, fetchErr := e.bookingRepo.GetByOTABookingID(ctx, input.ChannelName, input.OTABookingID)
			if fetchErr != nil {
				return nil, fmt.Errorf("重複予約の取得に失敗: %w", fetchErr)
			}
			e.countBooking("duplicate")
			return &BookingResult{Status: BookingConfirmed, Booking: original}, nil
		}
		e.countBooking("error")
		return nil, err
	}

	// 確定はここで完了している。以降の配信・イベント発行は
	// ベストエフォートであり、予約をロールバックすることはない
	e.afterCommit(ctx, b, nights)

	e.countBooking(string(BookingConfirmed))
	return &BookingResult{Status: BookingConfirmed, Booking: b}, nil
}

func (e *SyncEngine) commitBooking(ctx context.Context, b *booking.Booking, levels []*inventory.Level) error {
	tx, err := e.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	for _, level := range levels {
		if err := e.inventoryRepo.DecrementChecked(ctx, tx, level.RoomTypeID, level.Date, level.Version); err != nil {
			return fmt.Errorf("在庫減算に失敗 (date=%s): %w", level.Date.Format(inventory.DateLayout), err)
		}
	}
	if err := e.bookingRepo.Create(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

func (e *SyncEngine) afterCommit(ctx context.Context, b *booking.Booking, nights []time.Time) {
	if e.cache != nil {
		for _, night := range nights {
			if err := e.cache.Invalidate(ctx, b.RoomTypeID, night); err != nil {
				logger.Warn("キャッシュ無効化に失敗", zap.Error(err))
			}
		}
	}

	if e.broadcaster != nil {
		e.broadcaster.EnqueueAvailability(b.RoomTypeID, nights)
	}

	if e.publisher != nil {
		if err := e.publisher.PublishBookingConfirmed(ctx, b); err != nil {
			logger.Warn("予約確定イベントの発行に失敗",
				zap.Int64("booking_id", b.ID),
				zap.Error(err),
			)
		}
	}
}

// ChannelPushResult は1チャネルへのプッシュ結果
type ChannelPushResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RateParityResult はレートパリティ更新の結果
type RateParityResult struct {
	RoomTypeID int64
	Date       time.Time
	NewPrice   int
	Channels   map[string]ChannelPushResult
}

// UpdateRateParity は単一の価格更新を全マッピング先チャネルへ同時にプッシュする
// レートパリティにより全OTAが同じ価格を表示する
// 失敗したチャネルは結果マップに記録されるのみで、リトライはしない
func (e *SyncEngine) UpdateRateParity(ctx context.Context, roomTypeID int64, date time.Time, newPrice int) (*RateParityResult, error) {
	if newPrice < 0 {
		return nil, inventory.ErrInvalidPrice
	}

	if err := e.inventoryRepo.UpdatePrice(ctx, roomTypeID, date, newPrice); err != nil {
		return nil, fmt.Errorf("価格更新に失敗: %w", err)
	}
	if e.cache != nil {
		if err := e.cache.Invalidate(ctx, roomTypeID, date); err != nil {
			logger.Warn("キャッシュ無効化に失敗", zap.Error(err))
		}
	}

	mappings, err := e.mappingRepo.ListActiveByRoomType(ctx, roomTypeID)
	if err != nil {
		return nil, fmt.Errorf("チャネルマッピング取得に失敗: %w", err)
	}

	result := &RateParityResult{
		RoomTypeID: roomTypeID,
		Date:       inventory.Normalize(date),
		NewPrice:   newPrice,
		Channels:   make(map[string]ChannelPushResult, len(mappings)),
	}

	// 各チャネルへ並行プッシュ。1チャネルの失敗は他をブロックしない
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, m := range mappings {
		adapter, ok := e.registry.Get(m.ChannelName)
		if !ok {
			mu.Lock()
			result.Channels[m.ChannelName] = ChannelPushResult{Success: false, Error: channel.ErrAdapterNotFound.Error()}
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(m *channel.Mapping, adapter channel.Adapter) {
			defer wg.Done()
			pushErr := adapter.PushRate(ctx, m.OTARoomID, result.Date, newPrice)

			mu.Lock()
			defer mu.Unlock()
			if pushErr != nil {
				result.Channels[m.ChannelName] = ChannelPushResult{Success: false, Error: pushErr.Error()}
				e.countPush(m.ChannelName, "rate", "failed")
			} else {
				result.Channels[m.ChannelName] = ChannelPushResult{Success: true}
				e.countPush(m.ChannelName, "rate", "success")
			}
		}(m, adapter)
	}
	wg.Wait()

	return result, nil
}

func (e *SyncEngine) countBooking(status string) {
	if e.metrics != nil {
		e.metrics.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func (e *SyncEngine) countPush(channelName, operation, status string) {
	if e.metrics != nil {
		e.metrics.ChannelPushesTotal.WithLabelValues(channelName, operation, status).Inc()
	}
}
