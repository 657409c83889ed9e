package lock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/metrics"
)

const keyPrefix = "inventory_lock"

// Store は共有ロックストアの最小契約
// TryAcquireは単一のアトミック操作（存在チェックと作成の分離は不可）で
// あること。エラー時は「ロック未取得」として扱う
type Store interface {
	// TryAcquire はキーが存在しない場合のみTTL付きで作成する
	// この呼び出しがキーを作成した場合にのみtrueを返す
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release はキーを削除する。削除が発生したかを返す
	// 保持していないキーの解放は無害な何もしない操作
	Release(ctx context.Context, key string) (bool, error)
}

// Coordinator はロックストア上に単一ユニットおよび
// 複数ユニット（全取得か全解放か）のロック取得を構築する
// ストアのエラーはこの層でbool値に吸収され、上位には伝播しない
type Coordinator struct {
	store       Store
	ttl         time.Duration
	maxAttempts int
	retryDelay  time.Duration
	metrics     *metrics.Metrics
}

// Config はCoordinatorのポリシー設定
type Config struct {
	TTL           time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// NewCoordinator は新しいCoordinatorを作成する
func NewCoordinator(store Store, cfg Config, m *metrics.Metrics) *Coordinator {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &Coordinator{
		store:       store,
		ttl:         ttl,
		maxAttempts: attempts,
		retryDelay:  delay,
		metrics:     m,
	}
}

// UnitKey はロック単位からロックキーを導出する
// (room_type_id, date) に対して単射かつ安定
func UnitKey(u inventory.Unit) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, u.RoomTypeID, u.DateKey())
}

// AcquireOne は1ユニットのロック取得を試みる
func (c *Coordinator) AcquireOne(ctx context.Context, unit inventory.Unit) bool {
	start := time.Now()
	acquired, err := c.store.TryAcquire(ctx, UnitKey(unit), c.ttl)
	c.observe("acquire", err == nil && acquired, start)
	if err != nil {
		// ストア到達不能はロック未取得として扱う
		logger.Warn("ロックストアへの取得要求に失敗",
			zap.String("key", UnitKey(unit)),
			zap.Error(err),
		)
		return false
	}
	return acquired
}

// ReleaseOne は1ユニットのロックを解放する
// 保持していない場合もエラーにはしない
func (c *Coordinator) ReleaseOne(ctx context.Context, unit inventory.Unit) bool {
	start := time.Now()
	released, err := c.store.Release(ctx, UnitKey(unit))
	c.observe("release", err == nil, start)
	if err != nil {
		logger.Warn("ロック解放に失敗",
			zap.String("key", UnitKey(unit)),
			zap.Error(err),
		)
		return false
	}
	return released
}

// AcquireOneWithRetry は設定された回数までリトライしながらロック取得を試みる
// 失敗した試行の間のみretryDelayだけ待機する（最終試行後は待機しない）
// 待機中は他のロックを保持しないこと
func (c *Coordinator) AcquireOneWithRetry(ctx context.Context, unit inventory.Unit) bool {
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if c.AcquireOne(ctx, unit) {
			return true
		}
		if attempt < c.maxAttempts-1 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(c.retryDelay):
			}
		}
	}
	return false
}

// AcquireAll は全ユニットのロック取得を試みる
// 取得順は日付の昇順に正規化される。この順序が呼び出し側をまたいだ
// デッドロックを防ぐ契約であり、実装詳細ではない
// いずれかのユニットで失敗した場合は取得済みのロックを全て解放して
// falseを返す。部分的なロック状態は決して残らない
// この層ではリトライしない。バッチ全体の再試行は呼び出し側の責務
func (c *Coordinator) AcquireAll(ctx context.Context, units []inventory.Unit) bool {
	ordered := sortedByDate(units)

	start := time.Now()
	acquired := make([]inventory.Unit, 0, len(ordered))
	for _, unit := range ordered {
		if !c.AcquireOne(ctx, unit) {
			for _, held := range acquired {
				c.ReleaseOne(ctx, held)
			}
			c.observe("acquire_all", false, start)
			return false
		}
		acquired = append(acquired, unit)
	}
	c.observe("acquire_all", true, start)
	return true
}

// ReleaseAll は全ユニットのロックを解放する
// 途中の結果にかかわらず必ず全ユニットの解放を試みる
func (c *Coordinator) ReleaseAll(ctx context.Context, units []inventory.Unit) {
	for _, unit := range units {
		c.ReleaseOne(ctx, unit)
	}
}

func (c *Coordinator) observe(operation string, success bool, start time.Time) {
	if c.metrics == nil {
		return
	}
	status := "success"
	if !success {
		status = "failed"
	}
	c.metrics.DistributedLockDuration.
		WithLabelValues(operation, status).
		Observe(time.Since(start).Seconds())
}

func sortedByDate(units []inventory.Unit) []inventory.Unit {
	ordered := make([]inventory.Unit, len(units))
	copy(ordered, units)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].RoomTypeID != ordered[j].RoomTypeID {
			return ordered[i].RoomTypeID < ordered[j].RoomTypeID
		}
		return ordered[i].Date.Before(ordered[j].Date)
	})
	return ordered
}
