package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestNewLevel(t *testing.T) {
	level := NewLevel(1, day(t, "2026-08-15"), 3, 12000)

	assert.Equal(t, int64(1), level.RoomTypeID)
	assert.Equal(t, day(t, "2026-08-15"), level.Date)
	assert.Equal(t, 3, level.AvailableCount)
	assert.Equal(t, 12000, level.Price)
	assert.Equal(t, 0, level.Version)
}

func TestLevel_HasAvailability(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		expected bool
	}{
		{"空室あり", 3, true},
		{"残り1室", 1, true},
		{"満室", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := &Level{AvailableCount: tt.count}
			assert.Equal(t, tt.expected, level.HasAvailability())
		})
	}
}

func TestLevel_Validate(t *testing.T) {
	t.Run("正常な在庫レコード", func(t *testing.T) {
		level := NewLevel(1, day(t, "2026-08-15"), 3, 12000)
		assert.NoError(t, level.Validate())
	})

	t.Run("ルームタイプIDなしはエラー", func(t *testing.T) {
		level := NewLevel(0, day(t, "2026-08-15"), 3, 12000)
		assert.ErrorIs(t, level.Validate(), ErrRoomTypeIDRequired)
	})

	t.Run("負の空室数はエラー", func(t *testing.T) {
		level := NewLevel(1, day(t, "2026-08-15"), -1, 12000)
		assert.ErrorIs(t, level.Validate(), ErrNegativeAvailability)
	})

	t.Run("負の価格はエラー", func(t *testing.T) {
		level := NewLevel(1, day(t, "2026-08-15"), 3, -100)
		assert.ErrorIs(t, level.Validate(), ErrInvalidPrice)
	})
}

func TestNormalize(t *testing.T) {
	t.Run("時刻情報を落として日単位に丸める", func(t *testing.T) {
		ts := time.Date(2026, 8, 15, 14, 30, 45, 123, time.UTC)
		assert.Equal(t, day(t, "2026-08-15"), Normalize(ts))
	})

	t.Run("丸め済みの日付は変化しない", func(t *testing.T) {
		d := day(t, "2026-08-15")
		assert.Equal(t, d, Normalize(d))
	})
}

func TestStayNights(t *testing.T) {
	t.Run("チェックアウト日は含まない", func(t *testing.T) {
		nights := StayNights(day(t, "2026-08-15"), day(t, "2026-08-18"))
		require.Len(t, nights, 3)
		assert.Equal(t, day(t, "2026-08-15"), nights[0])
		assert.Equal(t, day(t, "2026-08-16"), nights[1])
		assert.Equal(t, day(t, "2026-08-17"), nights[2])
	})

	t.Run("1泊", func(t *testing.T) {
		nights := StayNights(day(t, "2026-08-15"), day(t, "2026-08-16"))
		require.Len(t, nights, 1)
		assert.Equal(t, day(t, "2026-08-15"), nights[0])
	})

	t.Run("同日はnil", func(t *testing.T) {
		assert.Nil(t, StayNights(day(t, "2026-08-15"), day(t, "2026-08-15")))
	})

	t.Run("チェックアウトが前の日付はnil", func(t *testing.T) {
		assert.Nil(t, StayNights(day(t, "2026-08-15"), day(t, "2026-08-10")))
	})

	t.Run("時刻付きの入力も日単位に丸めて展開する", func(t *testing.T) {
		in := time.Date(2026, 8, 15, 23, 59, 0, 0, time.UTC)
		out := time.Date(2026, 8, 16, 1, 0, 0, 0, time.UTC)
		nights := StayNights(in, out)
		require.Len(t, nights, 1)
		assert.Equal(t, day(t, "2026-08-15"), nights[0])
	})
}

func TestUnitsFor(t *testing.T) {
	nights := StayNights(day(t, "2026-08-15"), day(t, "2026-08-17"))
	units := UnitsFor(7, nights)

	require.Len(t, units, 2)
	assert.Equal(t, int64(7), units[0].RoomTypeID)
	assert.Equal(t, "2026-08-15", units[0].DateKey())
	assert.Equal(t, "2026-08-16", units[1].DateKey())
}
