package insights

import (
	"math"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Accepted publication timestamp layouts, tried in order
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a publication timestamp. Timestamps without a zone are UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysSince returns the elapsed days between publication and now, never below 1
func DaysSince(publishedAt, now time.Time) float64 {
	days := float64(now.Sub(publishedAt)) / float64(day)
	return math.Max(days, 1)
}

// ViewsPerDay is the recency weighted score used for ranking and tagging
func ViewsPerDay(views int64, days float64) float64 {
	if views <= 0 {
		return 0
	}
	if days < 1 || math.IsNaN(days) {
		days = 1
	}
	return float64(views) / days
}
