package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParser_Parse(t *testing.T) {
	p := NewParser()

	t.Run("Airbnb形式のカレンダーを解釈できる", func(t *testing.T) {
		content := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Airbnb Inc//Hosting Calendar 1.0//EN
BEGIN:VEVENT
DTSTART;VALUE=DATE:20260815
DTEND;VALUE=DATE:20260818
UID:1234abcd@airbnb.com
SUMMARY:Reserved
END:VEVENT
BEGIN:VEVENT
DTSTART;VALUE=DATE:20260901
DTEND;VALUE=DATE:20260902
UID:5678efgh@airbnb.com
SUMMARY:Airbnb (Not available)
END:VEVENT
END:VCALENDAR`

		ranges := p.Parse(content)
		require.Len(t, ranges, 2)

		assert.Equal(t, day(2026, 8, 15), ranges[0].Start)
		assert.Equal(t, day(2026, 8, 18), ranges[0].End)
		assert.Equal(t, "Reserved", ranges[0].Summary)
		assert.Equal(t, "1234abcd@airbnb.com", ranges[0].UID)

		assert.Equal(t, day(2026, 9, 1), ranges[1].Start)
		assert.Equal(t, day(2026, 9, 2), ranges[1].End)
	})

	t.Run("日時形式のDTSTARTも日単位に丸める", func(t *testing.T) {
		content := `BEGIN:VCALENDAR
BEGIN:VEVENT
DTSTART:20260815T140000Z
DTEND:20260816T100000Z
UID:dt@example.com
END:VEVENT
END:VCALENDAR`

		ranges := p.Parse(content)
		require.Len(t, ranges, 1)
		assert.Equal(t, day(2026, 8, 15), ranges[0].Start)
		assert.Equal(t, day(2026, 8, 16), ranges[0].End)
	})

	t.Run("CRLF改行も扱える", func(t *testing.T) {
		content := "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\nDTSTART;VALUE=DATE:20260815\r\nDTEND;VALUE=DATE:20260816\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"

		ranges := p.Parse(content)
		require.Len(t, ranges, 1)
		assert.Equal(t, day(2026, 8, 15), ranges[0].Start)
	})

	t.Run("日付が解釈できないVEVENTはスキップする", func(t *testing.T) {
		content := `BEGIN:VCALENDAR
BEGIN:VEVENT
DTSTART;VALUE=DATE:notadate
DTEND;VALUE=DATE:20260816
END:VEVENT
BEGIN:VEVENT
DTSTART;VALUE=DATE:20260901
DTEND;VALUE=DATE:20260903
END:VEVENT
END:VCALENDAR`

		ranges := p.Parse(content)
		require.Len(t, ranges, 1)
		assert.Equal(t, day(2026, 9, 1), ranges[0].Start)
	})

	t.Run("DTENDのないVEVENTはスキップする", func(t *testing.T) {
		content := `BEGIN:VCALENDAR
BEGIN:VEVENT
DTSTART;VALUE=DATE:20260815
END:VEVENT
END:VCALENDAR`

		assert.Empty(t, p.Parse(content))
	})

	t.Run("VEVENTのないカレンダーは空を返す", func(t *testing.T) {
		assert.Empty(t, p.Parse("BEGIN:VCALENDAR\nEND:VCALENDAR"))
	})
}

func TestParser_Generate(t *testing.T) {
	p := NewParser()

	t.Run("生成したコンテンツを自身で解釈できる", func(t *testing.T) {
		ranges := []BlockedRange{
			{Start: day(2026, 8, 15), End: day(2026, 8, 18), Summary: "Reserved"},
			{Start: day(2026, 9, 1), End: day(2026, 9, 2)},
		}

		parsed := p.Parse(p.Generate(ranges))
		require.Len(t, parsed, 2)
		assert.Equal(t, ranges[0].Start, parsed[0].Start)
		assert.Equal(t, ranges[0].End, parsed[0].End)
		assert.Equal(t, "Reserved", parsed[0].Summary)
		assert.Equal(t, "Blocked", parsed[1].Summary)
		assert.NotEmpty(t, parsed[1].UID)
	})
}
