package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/channel"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	t.Run("標準チャネルが登録されている", func(t *testing.T) {
		for _, name := range []string{channel.BookingCom, channel.Airbnb, channel.Expedia} {
			_, ok := r.Get(name)
			assert.True(t, ok, name)
		}
	})

	t.Run("未登録チャネルは取得できない", func(t *testing.T) {
		_, ok := r.Get("rakuten_travel")
		assert.False(t, ok)
	})
}

func TestMockAdapters_Push(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	adapters := []channel.Adapter{
		&BookingComAdapter{},
		&AirbnbAdapter{},
		&ExpediaAdapter{},
	}
	for _, a := range adapters {
		require.NoError(t, a.PushAvailability(ctx, "OTA-101", date, 3))
		require.NoError(t, a.PushRate(ctx, "OTA-101", date, 12000))
	}
}
