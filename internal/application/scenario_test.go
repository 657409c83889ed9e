package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/booking"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/channel"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/transaction"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/lock"
)

// memoryStore は減算と予約作成をロールバック可能な形で保持する
// インメモリストレージ。PostgreSQL実装の挙動（一意制約違反、
// バージョン条件付き減算）を模倣する
type memoryStore struct {
	mu       sync.Mutex
	levels   map[string]*inventory.Level // roomTypeID:date
	bookings map[string]*booking.Booking // channel:otaID
	nextID   int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		levels:   make(map[string]*inventory.Level),
		bookings: make(map[string]*booking.Booking),
	}
}

func levelKey(roomTypeID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", roomTypeID, date.Format(inventory.DateLayout))
}

func bookingKey(channelName, otaBookingID string) string {
	return channelName + ":" + otaBookingID
}

func (s *memoryStore) seed(roomTypeID int64, date time.Time, count, price int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[levelKey(roomTypeID, date)] = inventory.NewLevel(roomTypeID, date, count, price)
}

func (s *memoryStore) availableCount(roomTypeID int64, date time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.levels[levelKey(roomTypeID, date)]; ok {
		return l.AvailableCount
	}
	return -1
}

func (s *memoryStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// memoryTx は適用済みの変更を記録し、Rollbackで巻き戻す
type memoryTx struct {
	store      *memoryStore
	mu         sync.Mutex
	decrements []string // 巻き戻し対象のlevelキー
	inserted   string   // 巻き戻し対象のbookingキー
	done       bool
}

func (tx *memoryTx) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.done = true
	return nil
}

func (tx *memoryTx) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return nil
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	for _, key := range tx.decrements {
		tx.store.levels[key].AvailableCount++
		tx.store.levels[key].Version++
	}
	if tx.inserted != "" {
		delete(tx.store.bookings, tx.inserted)
	}
	tx.done = true
	return nil
}

type memoryTxManager struct {
	store *memoryStore
}

func (m *memoryTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	return &memoryTx{store: m.store}, nil
}

// memoryInventoryRepo implements inventory.Repository
type memoryInventoryRepo struct {
	store *memoryStore
}

func (r *memoryInventoryRepo) GetLevel(ctx context.Context, roomTypeID int64, date time.Time) (*inventory.Level, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l, ok := r.store.levels[levelKey(roomTypeID, date)]
	if !ok {
		return nil, inventory.ErrLevelNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *memoryInventoryRepo) GetLevels(ctx context.Context, roomTypeID int64, dates []time.Time) ([]*inventory.Level, error) {
	var levels []*inventory.Level
	for _, d := range dates {
		l, err := r.GetLevel(ctx, roomTypeID, d)
		if err != nil {
			continue
		}
		levels = append(levels, l)
	}
	return levels, nil
}

func (r *memoryInventoryRepo) GetRange(ctx context.Context, roomTypeID int64, start, end time.Time) ([]*inventory.Level, error) {
	var levels []*inventory.Level
	for d := inventory.Normalize(start); !d.After(inventory.Normalize(end)); d = d.AddDate(0, 0, 1) {
		l, err := r.GetLevel(ctx, roomTypeID, d)
		if err != nil {
			continue
		}
		levels = append(levels, l)
	}
	return levels, nil
}

func (r *memoryInventoryRepo) DecrementChecked(ctx context.Context, tx transaction.Tx, roomTypeID int64, date time.Time, version int) error {
	mtx := tx.(*memoryTx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := levelKey(roomTypeID, date)
	l, ok := r.store.levels[key]
	if !ok || l.Version != version || l.AvailableCount < 1 {
		return inventory.ErrVersionConflict
	}
	l.AvailableCount--
	l.Version++
	mtx.mu.Lock()
	mtx.decrements = append(mtx.decrements, key)
	mtx.mu.Unlock()
	return nil
}

func (r *memoryInventoryRepo) UpdatePrice(ctx context.Context, roomTypeID int64, date time.Time, price int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l, ok := r.store.levels[levelKey(roomTypeID, date)]
	if !ok {
		return inventory.ErrLevelNotFound
	}
	l.Price = price
	l.Version++
	return nil
}

func (r *memoryInventoryRepo) SetAvailableCount(ctx context.Context, roomTypeID int64, date time.Time, count int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l, ok := r.store.levels[levelKey(roomTypeID, date)]
	if !ok {
		return inventory.ErrLevelNotFound
	}
	l.AvailableCount = count
	l.Version++
	return nil
}

func (r *memoryInventoryRepo) Upsert(ctx context.Context, level *inventory.Level) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *level
	r.store.levels[levelKey(level.RoomTypeID, level.Date)] = &copied
	return nil
}

// memoryBookingRepo implements booking.Repository
type memoryBookingRepo struct {
	store *memoryStore
}

func (r *memoryBookingRepo) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	mtx := tx.(*memoryTx)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := bookingKey(b.ChannelName, b.OTABookingID)
	if _, exists := r.store.bookings[key]; exists {
		return booking.ErrDuplicateOTABookingID
	}
	r.store.nextID++
	b.ID = r.store.nextID
	copied := *b
	r.store.bookings[key] = &copied
	mtx.mu.Lock()
	mtx.inserted = key
	mtx.mu.Unlock()
	return nil
}

func (r *memoryBookingRepo) GetByID(ctx context.Context, id int64) (*booking.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.bookings {
		if b.ID == id {
			copied := *b
			return &copied, nil
		}
	}
	return nil, booking.ErrBookingNotFound
}

func (r *memoryBookingRepo) GetByOTABookingID(ctx context.Context, channelName, otaBookingID string) (*booking.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingKey(channelName, otaBookingID)]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memoryBookingRepo) GetByRoomType(ctx context.Context, roomTypeID int64, limit, offset int) ([]*booking.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.store.bookings {
		if b.RoomTypeID == roomTypeID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryBookingRepo) UpdateStatus(ctx context.Context, b *booking.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.bookings[bookingKey(b.ChannelName, b.OTABookingID)]
	if !ok {
		return booking.ErrBookingNotFound
	}
	stored.Status = b.Status
	return nil
}

// memoryMappingRepo implements channel.Repository
type memoryMappingRepo struct {
	mu       sync.Mutex
	mappings []*channel.Mapping
}

func (r *memoryMappingRepo) Create(ctx context.Context, m *channel.Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = int64(len(r.mappings) + 1)
	r.mappings = append(r.mappings, m)
	return nil
}

func (r *memoryMappingRepo) GetByID(ctx context.Context, id int64) (*channel.Mapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.mappings {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, channel.ErrMappingNotFound
}

func (r *memoryMappingRepo) ListByRoomType(ctx context.Context, roomTypeID int64) ([]*channel.Mapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*channel.Mapping
	for _, m := range r.mappings {
		if m.RoomTypeID == roomTypeID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMappingRepo) ListActiveByRoomType(ctx context.Context, roomTypeID int64) ([]*channel.Mapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*channel.Mapping
	for _, m := range r.mappings {
		if m.RoomTypeID == roomTypeID && m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMappingRepo) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.mappings {
		if m.ID == id {
			m.IsActive = active
			return nil
		}
	}
	return channel.ErrMappingNotFound
}

func newScenarioEngine(t *testing.T) (*SyncEngine, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	engine := NewSyncEngine(
		&memoryTxManager{store: store},
		&memoryInventoryRepo{store: store},
		&memoryBookingRepo{store: store},
		&memoryMappingRepo{},
		lock.NewCoordinator(newFakeLockStore(), lock.Config{}, nil),
		channel.NewRegistry(),
		&recordingBroadcaster{},
	)
	return engine, store
}

func seedNights(store *memoryStore, roomTypeID int64, from string, days, count int) {
	start, _ := time.Parse(inventory.DateLayout, from)
	for i := 0; i < days; i++ {
		store.seed(roomTypeID, start.AddDate(0, 0, i), count, 10000)
	}
}

// TestScenario_ConcurrentBookingLastRoom は残り1室への同時予約シナリオ
func TestScenario_ConcurrentBookingLastRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("残り1室に2件の同時予約でちょうど1件だけ確定する", func(t *testing.T) {
		engine, store := newScenarioEngine(t)
		seedNights(store, 1, "2026-08-15", 1, 1)

		input1 := BookingInput{
			RoomTypeID: 1, ChannelName: channel.BookingCom, OTABookingID: "BDC-A",
			CheckIn: mustDate(t, "2026-08-15"), CheckOut: mustDate(t, "2026-08-16"),
			GuestName: "佐藤", NumGuests: 1,
		}
		input2 := input1
		input2.ChannelName = channel.Airbnb
		input2.OTABookingID = "AB-B"

		var wg sync.WaitGroup
		results := make([]*BookingResult, 2)
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			results[0], errs[0] = engine.ProcessBooking(ctx, input1)
		}()
		go func() {
			defer wg.Done()
			results[1], errs[1] = engine.ProcessBooking(ctx, input2)
		}()
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		confirmed := 0
		for _, r := range results {
			if r.Status == BookingConfirmed {
				confirmed++
			} else {
				// 敗者はロック競合か満室のどちらかで拒否される
				assert.Contains(t, []RejectReason{ReasonLockUnavailable, ReasonNoAvailability}, r.Reason)
			}
		}
		assert.Equal(t, 1, confirmed)
		assert.Equal(t, 0, store.availableCount(1, mustDate(t, "2026-08-15")))
		assert.Equal(t, 1, store.bookingCount())
	})
}

// TestScenario_SequentialBookingsUntilFull は満室までの逐次予約シナリオ
func TestScenario_SequentialBookingsUntilFull(t *testing.T) {
	ctx := context.Background()

	t.Run("3室に4件の逐次予約で3件確定し4件目は満室で拒否される", func(t *testing.T) {
		engine, store := newScenarioEngine(t)
		seedNights(store, 1, "2026-08-15", 1, 3)

		for i := 0; i < 3; i++ {
			result, err := engine.ProcessBooking(ctx, BookingInput{
				RoomTypeID: 1, ChannelName: channel.BookingCom,
				OTABookingID: fmt.Sprintf("BDC-%d", i),
				CheckIn:      mustDate(t, "2026-08-15"), CheckOut: mustDate(t, "2026-08-16"),
				GuestName: "鈴木", NumGuests: 1,
			})
			require.NoError(t, err)
			assert.Equal(t, BookingConfirmed, result.Status)
			assert.Equal(t, 2-i, store.availableCount(1, mustDate(t, "2026-08-15")))
		}

		result, err := engine.ProcessBooking(ctx, BookingInput{
			RoomTypeID: 1, ChannelName: channel.BookingCom, OTABookingID: "BDC-full",
			CheckIn: mustDate(t, "2026-08-15"), CheckOut: mustDate(t, "2026-08-16"),
			GuestName: "高橋", NumGuests: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, BookingRejected, result.Status)
		assert.Equal(t, ReasonNoAvailability, result.Reason)
		assert.Equal(t, 0, store.availableCount(1, mustDate(t, "2026-08-15")))
		assert.Equal(t, 3, store.bookingCount())
	})
}

// TestScenario_ConcurrentBookingWithCapacity は余裕のある在庫への同時予約シナリオ
func TestScenario_ConcurrentBookingWithCapacity(t *testing.T) {
	ctx := context.Background()

	t.Run("5室に2件の同時予約で両方確定し残りは3室になる", func(t *testing.T) {
		engine, store := newScenarioEngine(t)
		seedNights(store, 1, "2026-08-15", 1, 5)

		// ロック競合で片方が即時拒否されうるため、リトライ付きで結果を集計する
		const attempts = 10
		var mu sync.Mutex
		confirmed := 0
		run := func(otaID string) {
			for i := 0; i < attempts; i++ {
				result, err := engine.ProcessBooking(ctx, BookingInput{
					RoomTypeID: 1, ChannelName: channel.BookingCom, OTABookingID: otaID,
					CheckIn: mustDate(t, "2026-08-15"), CheckOut: mustDate(t, "2026-08-16"),
					GuestName: "田中", NumGuests: 1,
				})
				if !assert.NoError(t, err) {
					return
				}
				if result.Status == BookingConfirmed {
					mu.Lock()
					confirmed++
					mu.Unlock()
					return
				}
				if !assert.Equal(t, ReasonLockUnavailable, result.Reason) {
					return
				}
				time.Sleep(time.Millisecond)
			}
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); run("BDC-X") }()
		go func() { defer wg.Done(); run("BDC-Y") }()
		wg.Wait()

		assert.Equal(t, 2, confirmed)
		assert.Equal(t, 3, store.availableCount(1, mustDate(t, "2026-08-15")))
		assert.Equal(t, 2, store.bookingCount())
	})
}

// TestScenario_MultiNightAllOrNothing は連泊予約の全取得か全解放かのシナリオ
func TestScenario_MultiNightAllOrNothing(t *testing.T) {
	ctx := context.Background()

	t.Run("連泊の一部だけ満室の場合はどの日も減算されない", func(t *testing.T) {
		engine, store := newScenarioEngine(t)
		seedNights(store, 1, "2026-08-15", 3, 2)
		// 中日だけ満室にする
		require.NoError(t,
			(&memoryInventoryRepo{store: store}).SetAvailableCount(ctx, 1, mustDate(t, "2026-08-16"), 0))

		result, err := engine.ProcessBooking(ctx, BookingInput{
			RoomTypeID: 1, ChannelName: channel.BookingCom, OTABookingID: "BDC-3N",
			CheckIn: mustDate(t, "2026-08-15"), CheckOut: mustDate(t, "2026-08-18"),
			GuestName: "伊藤", NumGuests: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, BookingRejected, result.Status)
		assert.Equal(t, ReasonNoAvailability, result.Reason)
		require.Len(t, result.UnavailableDates, 1)
		assert.Equal(t, mustDate(t, "2026-08-16"), result.UnavailableDates[0])

		// 空室のあった前後の日も減算されていない
		assert.Equal(t, 2, store.availableCount(1, mustDate(t, "2026-08-15")))
		assert.Equal(t, 2, store.availableCount(1, mustDate(t, "2026-08-17")))
		assert.Equal(t, 0, store.bookingCount())
	})

	t.Run("重なり合う連泊の同時予約でも各日の在庫は負にならない", func(t *testing.T) {
		engine, store := newScenarioEngine(t)
		seedNights(store, 1, "2026-08-15", 4, 1)

		inputs := []BookingInput{
			{
				RoomTypeID: 1, ChannelName: channel.BookingCom, OTABookingID: "BDC-L",
				CheckIn: mustDate(t, "2026-08-15"), CheckOut: mustDate(t, "2026-08-18"),
				GuestName: "渡辺", NumGuests: 1,
			},
			{
				RoomTypeID: 1, ChannelName: channel.Airbnb, OTABookingID: "AB-R",
				CheckIn: mustDate(t, "2026-08-17"), CheckOut: mustDate(t, "2026-08-19"),
				GuestName: "中村", NumGuests: 1,
			},
		}

		var wg sync.WaitGroup
		for _, input := range inputs {
			wg.Add(1)
			go func(in BookingInput) {
				defer wg.Done()
				_, err := engine.ProcessBooking(ctx, in)
				assert.NoError(t, err)
			}(input)
		}
		wg.Wait()

		// 8/17が共有されているため、確定したのは高々どちらか一方＋独立した日付
		for i := 0; i < 4; i++ {
			d := mustDate(t, "2026-08-15").AddDate(0, 0, i)
			assert.GreaterOrEqual(t, store.availableCount(1, d), 0, d.Format(inventory.DateLayout))
		}
	})
}

// TestScenario_IdempotentWebhookRedelivery はWebhook再送の冪等性シナリオ
func TestScenario_IdempotentWebhookRedelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("同じOTA予約IDの再送では予約も減算も増えない", func(t *testing.T) {
		engine, store := newScenarioEngine(t)
		seedNights(store, 1, "2026-08-15", 2, 5)

		input := BookingInput{
			RoomTypeID: 1, ChannelName: channel.BookingCom, OTABookingID: "BDC-DUP",
			CheckIn: mustDate(t, "2026-08-15"), CheckOut: mustDate(t, "2026-08-17"),
			GuestName: "小林", NumGuests: 2,
		}

		first, err := engine.ProcessBooking(ctx, input)
		require.NoError(t, err)
		require.Equal(t, BookingConfirmed, first.Status)

		second, err := engine.ProcessBooking(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, BookingConfirmed, second.Status)
		assert.Equal(t, first.Booking.ID, second.Booking.ID)

		assert.Equal(t, 1, store.bookingCount())
		assert.Equal(t, 4, store.availableCount(1, mustDate(t, "2026-08-15")))
		assert.Equal(t, 4, store.availableCount(1, mustDate(t, "2026-08-16")))
	})

	t.Run("同じOTA予約IDの同時送信でも減算は1回だけ", func(t *testing.T) {
		engine, store := newScenarioEngine(t)
		seedNights(store, 1, "2026-08-15", 1, 5)

		input := BookingInput{
			RoomTypeID: 1, ChannelName: channel.BookingCom, OTABookingID: "BDC-RACE",
			CheckIn: mustDate(t, "2026-08-15"), CheckOut: mustDate(t, "2026-08-16"),
			GuestName: "加藤", NumGuests: 1,
		}

		const senders = 4
		var wg sync.WaitGroup
		confirmedIDs := make([]int64, senders)
		for i := 0; i < senders; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for {
					result, err := engine.ProcessBooking(ctx, input)
					if !assert.NoError(t, err) {
						return
					}
					if result.Status == BookingConfirmed {
						confirmedIDs[n] = result.Booking.ID
						return
					}
					// ロック競合のみ再試行。満室はこのシナリオでは起こらない
					if !assert.Equal(t, ReasonLockUnavailable, result.Reason) {
						return
					}
					time.Sleep(time.Millisecond)
				}
			}(i)
		}
		wg.Wait()

		// 全送信者が同じ予約を受け取り、在庫は1室だけ減っている
		for i := 1; i < senders; i++ {
			assert.Equal(t, confirmedIDs[0], confirmedIDs[i])
		}
		assert.Equal(t, 1, store.bookingCount())
		assert.Equal(t, 4, store.availableCount(1, mustDate(t, "2026-08-15")))
	})
}
