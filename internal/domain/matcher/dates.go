package matcher

import (
	"encoding/json"
	"strings"
	"time"
)

// dateLayouts are tried in order. Values without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006-01",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 2 2006 15:04:05 GMT-0700",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// timestamped is implemented by values exposing a creation timestamp.
type timestamped interface {
	Timestamp() string
}

// NormalizeDate converts a date representation to a UTC calendar day.
// It accepts strings, time.Time, DateValue, maps with a created_at key and
// values implementing Timestamp() string. Anything else, or any parse
// failure, reports ok=false.
func NormalizeDate(v any) (day time.Time, ok bool) {
	switch d := v.(type) {
	case string:
		return parseDay(d)
	case time.Time:
		if d.IsZero() {
			return time.Time{}, false
		}
		return truncateDay(d), true
	case DateValue:
		return normalizeRaw(d.raw)
	case *DateValue:
		if d == nil {
			return time.Time{}, false
		}
		return normalizeRaw(d.raw)
	case map[string]any:
		if s, isString := d["created_at"].(string); isString {
			return parseDay(s)
		}
		return time.Time{}, false
	case timestamped:
		return parseDay(d.Timestamp())
	default:
		return time.Time{}, false
	}
}

// FormatDay renders a calendar day as YYYY-MM-DD.
func FormatDay(day time.Time) string {
	return day.Format("2006-01-02")
}

func normalizeRaw(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 {
		return time.Time{}, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseDay(s)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		return NormalizeDate(obj)
	}

	return time.Time{}, false
}

func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dayDiff returns the absolute number of whole days between two calendar days.
func dayDiff(a, b time.Time) int {
	hours := a.Sub(b).Hours()
	if hours < 0 {
		hours = -hours
	}
	return int(hours/24 + 0.5)
}
