package article

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Relative-time phrases as Google News renders them in Romanian or English,
// already diacritics-folded: "3 ore in urma", "acum 20 de minute", "2 days ago".
var relativeRe = regexp.MustCompile(`(?:acum\s+)?(\d+)\s+(?:de\s+)?(minut[e]?|min|or[ae]|hour[s]?|zi|zile|day[s]?)\b(?:\s+(?:in urma|ago))?`)

// Absolute layouts tried in order. Feed dates vary wildly between sources.
var absoluteLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006 15:04",
	"02.01.2006",
}

// WithinWindow decides whether a raw date string falls inside the recency
// window ending at now.
//
// Two recognition paths, tried in order:
//  1. relative language ("3 ore in urma", "5 hours ago"): the computed
//     duration is compared against the window (a rolling window);
//  2. an absolute date: accepted only when its calendar day equals now's
//     calendar day in loc, regardless of window length.
//
// The asymmetry is deliberate: relative phrases are always fresh enough to
// trust as durations, while absolute stamps from feeds are only trusted at
// day granularity. Empty or unparseable input is rejected.
func WithinWindow(rawDate string, now time.Time, window time.Duration, loc *time.Location) bool {
	text := strings.TrimSpace(FoldText(rawDate))
	if text == "" {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}

	if d, ok := parseRelative(text); ok {
		return d <= window
	}

	if t, ok := parseAbsolute(rawDate); ok {
		y1, m1, d1 := t.In(loc).Date()
		y2, m2, d2 := now.In(loc).Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	}

	return false
}

func parseRelative(folded string) (time.Duration, bool) {
	m := relativeRe.FindStringSubmatch(folded)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	switch {
	case strings.HasPrefix(m[2], "min"):
		return time.Duration(n) * time.Minute, true
	case strings.HasPrefix(m[2], "or") || strings.HasPrefix(m[2], "hour"):
		return time.Duration(n) * time.Hour, true
	case strings.HasPrefix(m[2], "zi") || strings.HasPrefix(m[2], "day"):
		return time.Duration(n) * 24 * time.Hour, true
	}
	return 0, false
}

func parseAbsolute(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
