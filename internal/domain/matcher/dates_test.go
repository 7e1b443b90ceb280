package matcher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeDate_Strings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"iso date", "2024-03-01", day(2024, 3, 1)},
		{"rfc3339 utc", "2024-03-01T10:15:00Z", day(2024, 3, 1)},
		{"rfc3339 with millis", "2024-03-01T10:15:00.123Z", day(2024, 3, 1)},
		{"offset moves to previous utc day", "2024-03-01T00:30:00+02:00", day(2024, 2, 29)},
		{"no zone datetime", "2024-03-01T23:59:59", day(2024, 3, 1)},
		{"space separated", "2024-03-01 08:00:00", day(2024, 3, 1)},
		{"postgres timestamptz", "2024-03-01 08:00:00.123456+00", day(2024, 3, 1)},
		{"slashes", "2024/03/01", day(2024, 3, 1)},
		{"month name", "March 1, 2024", day(2024, 3, 1)},
		{"surrounding whitespace", "  2024-03-01  ", day(2024, 3, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDate_Invalid(t *testing.T) {
	inputs := []any{
		"",
		"not a date",
		"2024-13-45",
		"31/31/2024",
		42,
		nil,
		[]string{"2024-03-01"},
		time.Time{},
		map[string]any{"created_at": 12345},
		map[string]any{"updated_at": "2024-03-01"},
	}

	for _, in := range inputs {
		_, ok := NormalizeDate(in)
		assert.False(t, ok, "input %#v", in)
	}
}

func TestNormalizeDate_Containers(t *testing.T) {
	t.Run("map with created_at", func(t *testing.T) {
		got, ok := NormalizeDate(map[string]any{"created_at": "2024-05-06T12:00:00Z"})
		require.True(t, ok)
		assert.Equal(t, day(2024, 5, 6), got)
	})

	t.Run("transaction exposes created_at", func(t *testing.T) {
		tx := &Transaction{ID: "t1", CreatedAt: NewDate("2024-05-06T23:00:00Z")}
		got, ok := NormalizeDate(tx)
		require.True(t, ok)
		assert.Equal(t, day(2024, 5, 6), got)
	})

	t.Run("time value drops time of day", func(t *testing.T) {
		got, ok := NormalizeDate(time.Date(2024, 5, 6, 18, 30, 0, 0, time.UTC))
		require.True(t, ok)
		assert.Equal(t, day(2024, 5, 6), got)
	})
}

func TestNormalizeDate_DateValueFromJSON(t *testing.T) {
	var payload struct {
		A DateValue `json:"a"`
		B DateValue `json:"b"`
		C DateValue `json:"c"`
		D DateValue `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a":"2024-03-01","b":{"created_at":"2024-03-02T10:00:00Z"},"c":12,"d":null}`), &payload)
	require.NoError(t, err)

	got, ok := NormalizeDate(payload.A)
	require.True(t, ok)
	assert.Equal(t, day(2024, 3, 1), got)

	got, ok = NormalizeDate(payload.B)
	require.True(t, ok)
	assert.Equal(t, day(2024, 3, 2), got)

	_, ok = NormalizeDate(payload.C)
	assert.False(t, ok)

	_, ok = NormalizeDate(payload.D)
	assert.False(t, ok)
	assert.True(t, payload.D.IsZero())
}

func TestDayDiff(t *testing.T) {
	assert.Equal(t, 0, dayDiff(day(2024, 3, 1), day(2024, 3, 1)))
	assert.Equal(t, 2, dayDiff(day(2024, 3, 1), day(2024, 2, 28)))
	assert.Equal(t, 2, dayDiff(day(2024, 2, 28), day(2024, 3, 1)))
	assert.Equal(t, 365, dayDiff(day(2025, 3, 1), day(2024, 3, 1)))
	assert.Equal(t, 366, dayDiff(day(2024, 3, 1), day(2023, 3, 1)))
}
