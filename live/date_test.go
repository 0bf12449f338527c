package live

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestDayDifference(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2024-01-01", "2024-01-01", 0},
		{"2024-01-01", "2024-01-05", 4},
		{"2024-01-05", "2024-01-01", -4},
		{"2024-02-28", "2024-03-01", 2},
		{"2023-12-31", "2024-01-01", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := DayDifference(mustDate(t, tt.a), mustDate(t, tt.b)); got != tt.want {
				t.Errorf("DayDifference() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLocalDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-01T20:00:00Z", "2024-01-02"},
		{"2024-01-01T15:59:59Z", "2024-01-01"},
		{"2024-01-01T16:00:00Z", "2024-01-02"},
		{"2024-01-02T01:30:00+09:00", "2024-01-02"},
	}
	for _, tt := range tests {
		ts, err := time.Parse(time.RFC3339, tt.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.in, err)
		}
		if got := LocalDate(ts).String(); got != tt.want {
			t.Errorf("LocalDate(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDaysSinceClampsFuture(t *testing.T) {
	now := time.Date(2024, 1, 5, 2, 0, 0, 0, time.UTC)
	if got := DaysSince(now.Add(72*time.Hour), now); got != 0 {
		t.Errorf("DaysSince(future) = %d, want 0", got)
	}
	if got := DaysSince(now.Add(-72*time.Hour), now); got != 3 {
		t.Errorf("DaysSince(3 days ago) = %d, want 3", got)
	}
}
