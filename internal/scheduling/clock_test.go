package scheduling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"7:30":  450,
		"07:30": 450,
		"12:05": 725,
		"23:59": 1439,
	}
	for input, want := range cases {
		got, err := ToMinutes(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestToMinutesRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "8", "8:0", "08:000", "123:00", "ab:cd", "24:00", "12:60", "08-00", " 8:00"} {
		_, err := ToMinutes(input)
		require.Error(t, err, input)
		var perr *ParseError
		assert.True(t, errors.As(err, &perr), input)
	}
}

func TestFormatMinutesRoundTrip(t *testing.T) {
	assert.Equal(t, "07:05", FormatMinutes(425))
	normalized, err := NormalizeClock("8:00")
	require.NoError(t, err)
	assert.Equal(t, "08:00", normalized)
}

func TestOverlapsIsSymmetric(t *testing.T) {
	intervals := [][2]int{{480, 540}, {510, 570}, {540, 600}, {420, 660}, {600, 600}, {300, 360}}
	for _, a := range intervals {
		for _, b := range intervals {
			assert.Equal(t, Overlaps(a[0], a[1], b[0], b[1]), Overlaps(b[0], b[1], a[0], a[1]), "%v %v", a, b)
		}
	}
}

func TestOverlapsEdges(t *testing.T) {
	assert.True(t, Overlaps(480, 540, 510, 570))
	assert.True(t, Overlaps(420, 660, 480, 540))
	assert.False(t, Overlaps(480, 540, 540, 600), "touching intervals do not overlap")
	assert.False(t, Overlaps(600, 600, 540, 660), "zero length never overlaps")
	assert.False(t, Overlaps(480, 540, 600, 660))
}

func TestClockOverlaps(t *testing.T) {
	ok, err := ClockOverlaps("08:00", "09:00", "8:30", "09:30")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = ClockOverlaps("08:00", "nine", "08:30", "09:30")
	require.Error(t, err)
}

func TestParseIntervalRejectsInvertedRange(t *testing.T) {
	_, err := ParseInterval("10:00", "09:00")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTimeRange))

	_, err = ParseInterval("10:00", "10:00")
	assert.True(t, errors.Is(err, ErrInvalidTimeRange))
}
