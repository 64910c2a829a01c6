package article

import (
	"testing"
	"time"
)

var bucharest = time.FixedZone("EEST", 3*3600)

func TestWithinWindow_RelativePhrases(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, bucharest)
	window := 24 * time.Hour

	tests := []struct {
		name string
		date string
		want bool
	}{
		{"romanian hours inside", "3 ore în urmă", true},
		{"romanian acum minutes", "acum 20 de minute", true},
		{"romanian one hour", "1 oră în urmă", true},
		{"english hours ago", "5 hours ago", true},
		{"english days over window", "2 days ago", false},
		{"romanian days over window", "acum 30 de zile", false},
		{"exactly at window edge", "24 hours ago", true},
		{"empty string", "", false},
		{"gibberish", "cândva demult", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinWindow(tt.date, now, window, bucharest); got != tt.want {
				t.Errorf("WithinWindow(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

// Absolute dates follow the same-calendar-day rule, not the rolling window.
// A stamp from late yesterday is rejected even when it is only minutes old,
// and a stamp from early today is accepted even when it is older than the
// window would allow a relative phrase to be.
func TestWithinWindow_AbsoluteDatesUseCalendarDay(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 30, 0, 0, bucharest)
	window := 24 * time.Hour

	yesterdayLate := "2026-08-27T23:59:00+03:00"
	if WithinWindow(yesterdayLate, now, window, bucharest) {
		t.Errorf("absolute stamp from yesterday accepted despite being 31 minutes old")
	}

	todayEarly := "2026-08-28T00:01:00+03:00"
	if !WithinWindow(todayEarly, now, window, bucharest) {
		t.Errorf("absolute stamp from today rejected")
	}
}

func TestWithinWindow_AbsoluteVsRelativeAsymmetry(t *testing.T) {
	now := time.Date(2026, 8, 28, 22, 0, 0, 0, bucharest)
	window := 2 * time.Hour

	// 14 hours ago as a relative phrase: outside the rolling window.
	if WithinWindow("14 hours ago", now, window, bucharest) {
		t.Error("relative phrase beyond window accepted")
	}
	// The same moment as an absolute stamp: same calendar day, accepted.
	if !WithinWindow("2026-08-28T08:00:00+03:00", now, window, bucharest) {
		t.Error("same-day absolute stamp rejected")
	}
}

func TestWithinWindow_AbsoluteLayouts(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	tests := []struct {
		name string
		date string
		want bool
	}{
		{"RFC1123Z same day", "Fri, 28 Aug 2026 09:00:00 +0000", true},
		{"RFC1123Z previous day", "Thu, 27 Aug 2026 09:00:00 +0000", false},
		{"bare date same day", "2026-08-28", true},
		{"dotted date same day", "28.08.2026", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinWindow(tt.date, now, window, time.UTC); got != tt.want {
				t.Errorf("WithinWindow(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}
