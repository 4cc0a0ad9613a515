package repository

// Interval represents candle resolution buckets served by the historical source.
type Interval string

const (
	Interval5Min Interval = "5m"
	IntervalHour Interval = "1h"
	IntervalDay  Interval = "1d"
)

// IsValidInterval returns true if iv is a supported candle interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case Interval5Min, IntervalHour, IntervalDay:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the default candle interval.
func DefaultInterval() Interval { return IntervalHour }

// NormalizeInterval converts a raw string to a valid interval (or default).
func NormalizeInterval(s string) Interval {
	if s == "" {
		return DefaultInterval()
	}
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}
