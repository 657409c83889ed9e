package channel

import (
	"context"
	"sync"
	"time"
)

// Adapter はOTAチャネルへのプッシュ能力を表す
// 各プッシュは独立しており、1チャネルの失敗が他に影響してはならない
type Adapter interface {
	// PushAvailability は空室数の更新をOTAへ送信する
	PushAvailability(ctx context.Context, otaRoomID string, date time.Time, available int) error

	// PushRate は料金の更新をOTAへ送信する
	PushRate(ctx context.Context, otaRoomID string, date time.Time, price int) error
}

// Registry はチャネル名をキーとするアダプター登録簿
// 新しいチャネルはBroadcaster側を変更せずに登録できる
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry は空のRegistryを作成する
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register はアダプターを登録する（同名は上書き）
func (r *Registry) Register(name string, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = adapter
}

// Get はチャネル名からアダプターを取得する
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[name]
	return adapter, ok
}

// Names は登録済みのチャネル名一覧を返す
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
