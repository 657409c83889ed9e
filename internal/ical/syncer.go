package ical

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/logger"
)

// SyncResult はカレンダー同期の結果
type SyncResult struct {
	RoomTypeID   int64
	BlockedCount int
	Dates        []time.Time
}

// Syncer はAirbnbのiCalフィードからブロック済み日を取り込み、
// ローカル在庫に反映する
// 単一ライターの順次処理であり、ロック調停は不要
type Syncer struct {
	parser        *Parser
	inventoryRepo inventory.Repository
	httpClient    *http.Client
}

// NewSyncer は新しいSyncerを作成する
func NewSyncer(inventoryRepo inventory.Repository) *Syncer {
	return &Syncer{
		parser:        NewParser(),
		inventoryRepo: inventoryRepo,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Sync はiCalフィードを取得し、ブロック済みの各宿泊日の空室数を0にする
func (s *Syncer) Sync(ctx context.Context, icalURL string, roomTypeID int64) (*SyncResult, error) {
	content, err := s.fetch(ctx, icalURL)
	if err != nil {
		return nil, err
	}

	ranges := s.parser.Parse(content)
	result := &SyncResult{RoomTypeID: roomTypeID}

	for _, r := range ranges {
		for _, date := range inventory.StayNights(r.Start, r.End) {
			if err := s.inventoryRepo.SetAvailableCount(ctx, roomTypeID, date, 0); err != nil {
				if errors.Is(err, inventory.ErrLevelNotFound) {
					// 在庫レコードのない日はスキップ
					continue
				}
				return nil, fmt.Errorf("ブロック日の反映に失敗: %w", err)
			}
			result.BlockedCount++
			result.Dates = append(result.Dates, date)
		}
	}

	logger.Info("iCalカレンダー同期完了",
		zap.Int64("room_type_id", roomTypeID),
		zap.Int("blocked_count", result.BlockedCount),
	)
	return result, nil
}

func (s *Syncer) fetch(ctx context.Context, icalURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, icalURL, nil)
	if err != nil {
		return "", fmt.Errorf("iCalリクエスト作成に失敗: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("iCalフィード取得に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("iCalフィード取得に失敗: status=%d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("iCalフィード読み取りに失敗: %w", err)
	}
	return string(body), nil
}
