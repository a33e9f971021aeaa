package scheduling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeDurationScenarios(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"08:00", "09:10", 60},
		{"08:00", "09:40", 90},
		{"08:00", "10:10", 120},
		{"08:00", "09:15", 60},
		{"08:00", "09:16", 90},
		{"08:00", "09:45", 90},
		{"08:00", "09:46", 120},
		{"7:30", "8:00", 60},
	}
	for _, tc := range cases {
		got, err := QuantizeDuration(tc.start, tc.end)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s-%s", tc.start, tc.end)
	}
}

func TestBucketMinutesIsMonotonic(t *testing.T) {
	prev := 0
	for delta := 1; delta <= 600; delta++ {
		got := BucketMinutes(delta)
		assert.GreaterOrEqual(t, got, prev, "delta %d", delta)
		switch {
		case delta <= 75:
			assert.Equal(t, ShortPeriod, got)
		case delta <= 105:
			assert.Equal(t, StandardPeriod, got)
		default:
			assert.Equal(t, LongPeriod, got)
		}
		prev = got
	}
}

func TestQuantizeDurationRejectsEmptyRange(t *testing.T) {
	_, err := QuantizeDuration("08:00", "08:00")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTimeRange))

	_, err = QuantizeDuration("8", "09:00")
	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}
