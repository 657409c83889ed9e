// Package ical はAirbnbカレンダー同期用のiCal（ICS）パーサーを提供する
package ical

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/pkg/logger"
)

// BlockedRange はiCalから取得したブロック済み期間を表す
// EndはDTENDの慣例に従い終端を含まない
type BlockedRange struct {
	Start   time.Time
	End     time.Time
	Summary string
	UID     string
}

// Parser はiCal形式カレンダーのパーサー
type Parser struct{}

// NewParser は新しいParserを作成する
func NewParser() *Parser {
	return &Parser{}
}

// Parse はiCalコンテンツからブロック済み期間を抽出する
// 日付が解釈できないVEVENTはスキップする
func (p *Parser) Parse(content string) []BlockedRange {
	var ranges []BlockedRange

	var current map[string]string
	inEvent := false

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)

		switch {
		case line == "BEGIN:VEVENT":
			inEvent = true
			current = make(map[string]string)
		case line == "END:VEVENT":
			inEvent = false
			if r, ok := p.toRange(current); ok {
				ranges = append(ranges, r)
			}
		case inEvent && strings.Contains(line, ":"):
			parts := strings.SplitN(line, ":", 2)
			key, value := parts[0], parts[1]
			// "DTSTART;VALUE=DATE" のようなパラメータ付きキーを正規化
			switch {
			case key == "DTSTART" || strings.HasPrefix(key, "DTSTART;"):
				current["DTSTART"] = value
			case key == "DTEND" || strings.HasPrefix(key, "DTEND;"):
				current["DTEND"] = value
			case key == "SUMMARY" || key == "UID":
				current[key] = value
			}
		}
	}

	return ranges
}

func (p *Parser) toRange(event map[string]string) (BlockedRange, bool) {
	startStr, okStart := event["DTSTART"]
	endStr, okEnd := event["DTEND"]
	if !okStart || !okEnd {
		return BlockedRange{}, false
	}

	start, err := parseDate(startStr)
	if err != nil {
		logger.Warn("iCalの開始日を解釈できません", zap.String("value", startStr), zap.Error(err))
		return BlockedRange{}, false
	}
	end, err := parseDate(endStr)
	if err != nil {
		logger.Warn("iCalの終了日を解釈できません", zap.String("value", endStr), zap.Error(err))
		return BlockedRange{}, false
	}

	return BlockedRange{
		Start:   start,
		End:     end,
		Summary: event["SUMMARY"],
		UID:     event["UID"],
	}, true
}

// parseDate は日付のみ（20260115）および日時（20260115T120000）形式を
// 日単位に丸めて解釈する
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) > 8 {
		value = value[:8]
	}
	return time.ParseInLocation("20060102", value, time.UTC)
}

// Generate はブロック済み期間からiCalコンテンツを生成する（テスト用）
func (p *Parser) Generate(ranges []BlockedRange) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\n")
	b.WriteString("VERSION:2.0\n")
	b.WriteString("PRODID:-//Hotel Channel Manager//EN\n")

	for i, r := range ranges {
		summary := r.Summary
		if summary == "" {
			summary = "Blocked"
		}
		uid := r.UID
		if uid == "" {
			uid = "block-" + strconv.Itoa(i) + "@channelmanager.local"
		}
		b.WriteString("BEGIN:VEVENT\n")
		b.WriteString("UID:" + uid + "\n")
		b.WriteString("DTSTART;VALUE=DATE:" + r.Start.Format("20060102") + "\n")
		b.WriteString("DTEND;VALUE=DATE:" + r.End.Format("20060102") + "\n")
		b.WriteString("SUMMARY:" + summary + "\n")
		b.WriteString("END:VEVENT\n")
	}

	b.WriteString("END:VCALENDAR")
	return b.String()
}
