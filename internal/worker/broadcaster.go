package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/channel"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/inventory"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/metrics"
)

// Job は1回のブロードキャスト対象（ルームタイプ×影響日）
type Job struct {
	RoomTypeID int64
	Dates      []time.Time
}

// Broadcaster は予約確定後の空室数を全チャネルへ配信するワーカー
// 配信はキュー経由の非同期処理であり、予約のコミットは
// このワーカーの完了にも成否にも依存しない
type Broadcaster struct {
	mappingRepo   channel.Repository
	inventoryRepo inventory.Repository
	registry      *channel.Registry
	pushTimeout   time.Duration
	jobs          chan Job
	stopCh        chan struct{}
	doneCh        chan struct{}
	metrics       *metrics.Metrics
}

// NewBroadcaster は新しいBroadcasterを作成する
func NewBroadcaster(
	mappingRepo channel.Repository,
	inventoryRepo inventory.Repository,
	registry *channel.Registry,
	queueSize int,
	pushTimeout time.Duration,
	m *metrics.Metrics,
) *Broadcaster {
	if queueSize <= 0 {
		queueSize = 256
	}
	if pushTimeout <= 0 {
		pushTimeout = 10 * time.Second
	}
	return &Broadcaster{
		mappingRepo:   mappingRepo,
		inventoryRepo: inventoryRepo,
		registry:      registry,
		pushTimeout:   pushTimeout,
		jobs:          make(chan Job, queueSize),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		metrics:       m,
	}
}

// EnqueueAvailability はブロードキャストジョブをノンブロッキングで登録する
// キューが満杯の場合はジョブを破棄して警告を残す
// （該当チャネルの表示が一時的に古くなるだけで、予約の正しさには影響しない）
func (b *Broadcaster) EnqueueAvailability(roomTypeID int64, dates []time.Time) {
	select {
	case b.jobs <- Job{RoomTypeID: roomTypeID, Dates: dates}:
		if b.metrics != nil {
			b.metrics.BroadcastQueueDepth.Set(float64(len(b.jobs)))
		}
	default:
		logger.Warn("ブロードキャストキューが満杯のためジョブを破棄",
			zap.Int64("room_type_id", roomTypeID),
			zap.Int("dates", len(dates)),
		)
	}
}

// Start はワーカーループを開始する
func (b *Broadcaster) Start(ctx context.Context) {
	logger.Info("空室数ブロードキャストワーカー開始",
		zap.Int("queue_size", cap(b.jobs)),
	)
	defer close(b.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("ブロードキャストワーカー停止（コンテキストキャンセル）")
			return
		case <-b.stopCh:
			// 停止前にキュー内の残ジョブを処理する
			b.drain()
			logger.Info("ブロードキャストワーカー停止（シグナル受信）")
			return
		case job := <-b.jobs:
			b.process(job)
		}
	}
}

// Stop はワーカーを停止し、完了まで待機する
func (b *Broadcaster) Stop() {
	close(b.stopCh)
	<-b.doneCh
}

func (b *Broadcaster) drain() {
	for {
		select {
		case job := <-b.jobs:
			b.process(job)
		default:
			return
		}
	}
}

// process は1ジョブ分のファンアウトを実行する
// 各(マッピング×日付)のプッシュは独立しており、
// 1チャネルの失敗は記録されるのみで他の配信を妨げない
func (b *Broadcaster) process(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), b.pushTimeout)
	defer cancel()

	if b.metrics != nil {
		b.metrics.BroadcastQueueDepth.Set(float64(len(b.jobs)))
	}

	mappings, err := b.mappingRepo.ListActiveByRoomType(ctx, job.RoomTypeID)
	if err != nil {
		logger.Error("チャネルマッピング取得に失敗",
			zap.Int64("room_type_id", job.RoomTypeID),
			zap.Error(err),
		)
		return
	}
	if len(mappings) == 0 {
		return
	}

	levels, err := b.inventoryRepo.GetLevels(ctx, job.RoomTypeID, job.Dates)
	if err != nil {
		logger.Error("在庫取得に失敗",
			zap.Int64("room_type_id", job.RoomTypeID),
			zap.Error(err),
		)
		return
	}

	for _, m := range mappings {
		adapter, ok := b.registry.Get(m.ChannelName)
		if !ok {
			logger.Warn("チャネルアダプターが未登録",
				zap.String("channel", m.ChannelName),
			)
			continue
		}
		for _, level := range levels {
			if err := adapter.PushAvailability(ctx, m.OTARoomID, level.Date, level.AvailableCount); err != nil {
				logger.Warn("空室数プッシュに失敗",
					zap.String("channel", m.ChannelName),
					zap.String("date", level.Date.Format(inventory.DateLayout)),
					zap.Error(err),
				)
				b.countPush(m.ChannelName, "failed")
				continue
			}
			b.countPush(m.ChannelName, "success")
		}
	}
}

func (b *Broadcaster) countPush(channelName, status string) {
	if b.metrics != nil {
		b.metrics.ChannelPushesTotal.WithLabelValues(channelName, "availability", status).Inc()
	}
}
