package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlexibleDate(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  time.Time
		ok    bool
	}{
		{name: "iso date", input: "2023-01-15", want: date(2023, time.January, 15), ok: true},
		{name: "iso timestamp keeps the day", input: "2023-01-15T10:30:00Z", want: date(2023, time.January, 15), ok: true},
		{name: "brazilian day first", input: "15/01/2023", want: date(2023, time.January, 15), ok: true},
		{name: "single digit day and month", input: "5/3/2024", want: date(2024, time.March, 5), ok: true},
		{name: "empty string", input: "", ok: false},
		{name: "dash sentinel", input: "-", ok: false},
		{name: "na sentinel", input: "N/A", ok: false},
		{name: "lowercase na sentinel", input: "n/a", ok: false},
		{name: "whitespace only", input: "   ", ok: false},
		{name: "nil value", input: nil, ok: false},
		{name: "numeric cell", input: float64(44941), ok: false},
		{name: "garbage text", input: "sim", ok: false},
		{name: "impossible calendar day", input: "31/02/2023", ok: false},
		{name: "month out of range", input: "10/13/2023", ok: false},
		{name: "dashed day first", input: "15-01-2023", want: date(2023, time.January, 15), ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFlexibleDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	t.Run("time value passes through", func(t *testing.T) {
		now := time.Now()
		got, ok := ParseFlexibleDate(now)
		require.True(t, ok)
		assert.Equal(t, now, got)
	})

	t.Run("zero time is absent", func(t *testing.T) {
		_, ok := ParseFlexibleDate(time.Time{})
		assert.False(t, ok)
	})
}

func TestMidnight(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	in := time.Date(2025, 6, 10, 23, 45, 12, 0, loc)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), Midnight(in))
}
