// Package notify formats status reports and delivers them to a Discord webhook.
package notify

import (
	"fmt"
	"time"

	"github.com/onnwee/livecheck/live"
)

// Kind selects a report template.
type Kind int

const (
	KindNotFound Kind = iota
	KindLiveToday
	KindDaysSince
	KindFailed
)

// String returns a short name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindLiveToday:
		return "live_today"
	case KindDaysSince:
		return "days_since"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TimestampLayout formats the header line in Taiwan local time.
const TimestampLayout = "2006/1/2 15:04:05"

// Report is one status message. It is built and sent once per run.
type Report struct {
	Kind     Kind
	At       time.Time
	Days     int
	Streamer string
	Err      error
}

// ForDays picks the live-today or days-since template for a clamped day count.
func ForDays(days int, streamer string, at time.Time) Report {
	if days <= 0 {
		return Report{Kind: KindLiveToday, At: at, Streamer: streamer}
	}
	return Report{Kind: KindDaysSince, At: at, Days: days, Streamer: streamer}
}

// NotFound is sent when no live notification exists within the scan budget.
func NotFound(at time.Time) Report {
	return Report{Kind: KindNotFound, At: at}
}

// Failed is sent when a run aborts.
func Failed(err error, at time.Time) Report {
	return Report{Kind: KindFailed, At: at, Err: err}
}

// Text renders the report.
func (r Report) Text() string {
	now := r.At.In(live.Taipei).Format(TimestampLayout)
	switch r.Kind {
	case KindNotFound:
		return fmt.Sprintf("📌 %s\n我在最近的訊息裡找不到「直播通知」，可能要把抓取範圍加大，或 Pingcord 的直播字樣不一樣。", now)
	case KindLiveToday:
		return fmt.Sprintf("✅ %s\n今天有開台（Pingcord 有直播通知）。", now)
	case KindDaysSince:
		return fmt.Sprintf("📅 %s\n%s已經第 **%d** 天沒開台。", now, r.Streamer, r.Days)
	default:
		detail := "unknown error"
		if r.Err != nil {
			detail = r.Err.Error()
		}
		return fmt.Sprintf("❌ %s\n執行失敗：%s", now, detail)
	}
}
