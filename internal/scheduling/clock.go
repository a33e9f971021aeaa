// Package scheduling holds the pure timetable rules: time arithmetic,
// conflict checks, duration buckets, grid projection and calendar derivation.
package scheduling

import (
	"errors"
	"fmt"
	"strings"
)

var errClockFormat = errors.New("expected H:MM or HH:MM")

// ToMinutes converts an "H:MM" or "HH:MM" wall-clock string to minutes since midnight.
func ToMinutes(clock string) (int, error) {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, parseErr("time", clock, errClockFormat)
	}
	hour, okH := atoiDigits(hh)
	minute, okM := atoiDigits(mm)
	if !okH || !okM {
		return 0, parseErr("time", clock, errClockFormat)
	}
	if hour > 23 || minute > 59 {
		return 0, parseErr("time", clock, errors.New("out of range"))
	}
	return hour*60 + minute, nil
}

// FormatMinutes renders minutes since midnight as "HH:MM".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// NormalizeClock rewrites a clock string into zero-padded "HH:MM".
func NormalizeClock(clock string) (string, error) {
	m, err := ToMinutes(clock)
	if err != nil {
		return "", err
	}
	return FormatMinutes(m), nil
}

func atoiDigits(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// ParseInterval parses a start/end pair and enforces start < end.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ToMinutes(start)
	if err != nil {
		return Interval{}, parseErr("start_time", start, errors.Unwrap(err))
	}
	e, err := ToMinutes(end)
	if err != nil {
		return Interval{}, parseErr("end_time", end, errors.Unwrap(err))
	}
	if e <= s {
		return Interval{}, parseErr("end_time", end, ErrInvalidTimeRange)
	}
	return Interval{Start: s, End: e}, nil
}

// Minutes is the interval length.
func (i Interval) Minutes() int {
	return i.End - i.Start
}

// Overlaps reports whether i and o share any minute.
func (i Interval) Overlaps(o Interval) bool {
	return Overlaps(i.Start, i.End, o.Start, o.End)
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect. Empty intervals
// never overlap and touching intervals (e1 == s2) do not overlap.
func Overlaps(s1, e1, s2, e2 int) bool {
	if s1 >= e1 || s2 >= e2 {
		return false
	}
	return s1 < e2 && s2 < e1
}

// ClockOverlaps is Overlaps over "HH:MM" strings.
func ClockOverlaps(startA, endA, startB, endB string) (bool, error) {
	values := [4]int{}
	for i, raw := range [4]string{startA, endA, startB, endB} {
		m, err := ToMinutes(raw)
		if err != nil {
			return false, err
		}
		values[i] = m
	}
	return Overlaps(values[0], values[1], values[2], values[3]), nil
}
