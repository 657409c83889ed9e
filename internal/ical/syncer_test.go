package ical

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/transaction"
)

// blockRecordingRepo はSetAvailableCountの呼び出しを記録する
type blockRecordingRepo struct {
	known   map[string]bool // 在庫レコードが存在する日付
	blocked []string
}

func newBlockRecordingRepo(dates ...string) *blockRecordingRepo {
	known := make(map[string]bool, len(dates))
	for _, d := range dates {
		known[d] = true
	}
	return &blockRecordingRepo{known: known}
}

func (r *blockRecordingRepo) SetAvailableCount(ctx context.Context, roomTypeID int64, date time.Time, count int) error {
	key := date.Format(inventory.DateLayout)
	if !r.known[key] {
		return inventory.ErrLevelNotFound
	}
	if count == 0 {
		r.blocked = append(r.blocked, key)
	}
	return nil
}

func (r *blockRecordingRepo) GetLevel(ctx context.Context, roomTypeID int64, date time.Time) (*inventory.Level, error) {
	return nil, inventory.ErrLevelNotFound
}

func (r *blockRecordingRepo) GetLevels(ctx context.Context, roomTypeID int64, dates []time.Time) ([]*inventory.Level, error) {
	return nil, nil
}

func (r *blockRecordingRepo) GetRange(ctx context.Context, roomTypeID int64, start, end time.Time) ([]*inventory.Level, error) {
	return nil, nil
}

func (r *blockRecordingRepo) DecrementChecked(ctx context.Context, tx transaction.Tx, roomTypeID int64, date time.Time, version int) error {
	return nil
}

func (r *blockRecordingRepo) UpdatePrice(ctx context.Context, roomTypeID int64, date time.Time, price int) error {
	return nil
}

func (r *blockRecordingRepo) Upsert(ctx context.Context, level *inventory.Level) error {
	return nil
}

func TestSyncer_Sync(t *testing.T) {
	ctx := context.Background()

	feed := `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
DTSTART;VALUE=DATE:20260815
DTEND;VALUE=DATE:20260818
UID:abc@airbnb.com
SUMMARY:Reserved
END:VEVENT
END:VCALENDAR`

	t.Run("ブロック済み期間の各宿泊日を満室にする", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(feed))
		}))
		defer server.Close()

		repo := newBlockRecordingRepo("2026-08-15", "2026-08-16", "2026-08-17")
		syncer := NewSyncer(repo)

		result, err := syncer.Sync(ctx, server.URL, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.RoomTypeID)
		assert.Equal(t, 3, result.BlockedCount)
		// DTENDの8/18は含まれない
		assert.Equal(t, []string{"2026-08-15", "2026-08-16", "2026-08-17"}, repo.blocked)
	})

	t.Run("在庫レコードのない日はスキップする", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(feed))
		}))
		defer server.Close()

		repo := newBlockRecordingRepo("2026-08-16")
		syncer := NewSyncer(repo)

		result, err := syncer.Sync(ctx, server.URL, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, result.BlockedCount)
		assert.Equal(t, []string{"2026-08-16"}, repo.blocked)
	})

	t.Run("フィード取得に失敗した場合はエラーを返す", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		syncer := NewSyncer(newBlockRecordingRepo())
		_, err := syncer.Sync(ctx, server.URL, 1)
		assert.Error(t, err)
	})
}
