package scheduling

// Canonical class lengths recognised by the registrar, in minutes.
const (
	ShortPeriod    = 60
	StandardPeriod = 90
	LongPeriod     = 120
)

// BucketMinutes snaps a positive minute delta to a canonical class length.
func BucketMinutes(delta int) int {
	switch {
	case delta <= 75:
		return ShortPeriod
	case delta <= 105:
		return StandardPeriod
	default:
		return LongPeriod
	}
}

// QuantizeDuration derives the stored duration for a start/end pair. Lengths
// that are not canonical are snapped to the nearest bucket rather than rejected;
// an end at or before the start is rejected.
func QuantizeDuration(start, end string) (int, error) {
	interval, err := ParseInterval(start, end)
	if err != nil {
		return 0, err
	}
	return BucketMinutes(interval.Minutes()), nil
}
