package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/channel"
	"github.com/sanosuguru/go-hotel-channel-manager/internal/ical"
)

// ChannelService はチャネルマッピングの管理とカレンダー同期を担う
type ChannelService struct {
	mappingRepo channel.Repository
	registry    *channel.Registry
	syncer      *ical.Syncer
	broadcaster AvailabilityBroadcaster // nil可
}

func NewChannelService(
	mappingRepo channel.Repository,
	registry *channel.Registry,
	syncer *ical.Syncer,
	broadcaster AvailabilityBroadcaster,
) *ChannelService {
	return &ChannelService{
		mappingRepo: mappingRepo,
		registry:    registry,
		syncer:      syncer,
		broadcaster: broadcaster,
	}
}

type CreateMappingInput struct {
	RoomTypeID    int64
	ChannelName   string
	OTARoomID     string
	OTAPropertyID string
	ICalURL       string
}

// CreateMapping は新しいチャネルマッピングを作成する
// 未知のチャネル名（アダプター未登録）は拒否する
func (s *ChannelService) CreateMapping(ctx context.Context, input CreateMappingInput) (*channel.Mapping, error) {
	if _, ok := s.registry.Get(input.ChannelName); !ok {
		return nil, fmt.Errorf("%w: %s", channel.ErrAdapterNotFound, input.ChannelName)
	}

	m := channel.NewMapping(input.RoomTypeID, input.ChannelName, input.OTARoomID)
	m.OTAPropertyID = input.OTAPropertyID
	m.ICalURL = input.ICalURL
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.mappingRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMappings はルームタイプのマッピング一覧を返す
func (s *ChannelService) ListMappings(ctx context.Context, roomTypeID int64) ([]*channel.Mapping, error) {
	return s.mappingRepo.ListByRoomType(ctx, roomTypeID)
}

// SetMappingActive はマッピングの有効フラグを切り替える
func (s *ChannelService) SetMappingActive(ctx context.Context, id int64, active bool) error {
	return s.mappingRepo.SetActive(ctx, id, active)
}

// SyncCalendar はマッピングのiCalカレンダーを取り込み、ブロック日を在庫に反映する
// 反映後、ブロックされた日付を他チャネルへブロードキャストする
func (s *ChannelService) SyncCalendar(ctx context.Context, mappingID int64) (*ical.SyncResult, error) {
	m, err := s.mappingRepo.GetByID(ctx, mappingID)
	if err != nil {
		return nil, err
	}
	if m.ICalURL == "" {
		return nil, channel.ErrICalURLNotConfigured
	}

	result, err := s.syncer.Sync(ctx, m.ICalURL, m.RoomTypeID)
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil && len(result.Dates) > 0 {
		s.broadcaster.EnqueueAvailability(m.RoomTypeID, result.Dates)
	}
	return result, nil
}
