package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrStoreUnavailable はロックストア自体に到達できないことを表す
	// 呼び出し側はこれを「ロック未取得」として扱い、
	// 決して「ロック取得済み」とみなしてはならない
	ErrStoreUnavailable = errors.New("ロックストアに到達できません")
)

// LockStore はRedisのアトミックな create-if-absent-with-expiry と delete を
// ロックプリミティブとして提供する
// SETNXはRedis側で単一のアトミック操作として実行されるため、
// 存在確認と作成の間のcheck/set競合は存在しない
type LockStore struct {
	client *redis.Client
}

// NewLockStore は新しいLockStoreを作成する
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// TryAcquire はキーが存在しない場合のみTTL付きで作成する
// この呼び出しがキーを作成した場合にのみtrueを返す
// TTLによりホルダーがクラッシュしてもロックは自己失効する
func (s *LockStore) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, key, "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return acquired, nil
}

// Release はキーを削除し、削除が発生したかを返す
// 存在しないキーの解放は何もしない操作としてfalseを返す
func (s *LockStore) Release(ctx context.Context, key string) (bool, error) {
	deleted, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return deleted > 0, nil
}
