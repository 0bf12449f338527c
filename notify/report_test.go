package notify

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestReportText(t *testing.T) {
	// 2024-01-01T22:30:00Z is 2024/1/2 06:30:00 in Taipei.
	at := time.Date(2024, 1, 1, 22, 30, 0, 0, time.UTC)
	tests := []struct {
		name   string
		report Report
		want   []string
		kind   Kind
	}{
		{
			name:   "not found",
			report: NotFound(at),
			want:   []string{"📌 2024/1/2 06:30:00\n", "找不到「直播通知」"},
			kind:   KindNotFound,
		},
		{
			name:   "live today",
			report: ForDays(0, "小毛", at),
			want:   []string{"✅ 2024/1/2 06:30:00\n", "今天有開台"},
			kind:   KindLiveToday,
		},
		{
			name:   "days since",
			report: ForDays(3, "小毛", at),
			want:   []string{"📅 2024/1/2 06:30:00\n", "小毛已經第 **3** 天沒開台。"},
			kind:   KindDaysSince,
		},
		{
			name:   "negative clamps to today",
			report: ForDays(-2, "小毛", at),
			want:   []string{"今天有開台"},
			kind:   KindLiveToday,
		},
		{
			name:   "failed",
			report: Failed(errors.New("discord api failed 403"), at),
			want:   []string{"❌ 2024/1/2 06:30:00\n", "執行失敗：discord api failed 403"},
			kind:   KindFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.report.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.report.Kind, tt.kind)
			}
			text := tt.report.Text()
			for _, w := range tt.want {
				if !strings.Contains(text, w) {
					t.Errorf("Text() = %q, missing %q", text, w)
				}
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if KindDaysSince.String() != "days_since" || Kind(99).String() != "unknown" {
		t.Error("unexpected Kind.String()")
	}
}
