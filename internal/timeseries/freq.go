package timeseries

import (
	"time"
)

// Calendar frequency codes accepted by the forecasting engine.
const (
	FreqHourly       = "H"
	FreqDaily        = "D"
	FreqWeekly       = "W"
	FreqMonthStart   = "MS"
	FreqMonthEnd     = "M"
	FreqQuarterStart = "QS"
	FreqQuarterEnd   = "Q"
	FreqYearStart    = "YS"
	FreqYearEnd      = "Y"
)

// InferFrequency guesses a calendar frequency from timestamp deltas by
// bucketing the most common gap. Returns "" when no bucket matches.
func InferFrequency(times []time.Time) string {
	if len(times) < 2 {
		return ""
	}

	// Most common gap in seconds
	counts := make(map[int64]int)
	for i := 1; i < len(times); i++ {
		gap := int64(times[i].Sub(times[i-1]) / time.Second)
		counts[gap]++
	}
	var mode int64
	best := 0
	for gap, n := range counts {
		if n > best || (n == best && gap < mode) {
			mode = gap
			best = n
		}
	}

	const (
		hour = 3600
		day  = 24 * hour
		week = 7 * day
	)
	switch {
	case mode == hour:
		return FreqHourly
	case mode == day:
		return FreqDaily
	case mode == week:
		return FreqWeekly
	case mode >= 28*day && mode <= 31*day:
		return FreqMonthStart
	case mode >= 90*day && mode <= 92*day:
		return FreqQuarterStart
	case mode >= 365*day && mode <= 366*day:
		return FreqYearStart
	default:
		return ""
	}
}

// NextTimes generates n future timestamps after last, stepping by the given
// calendar frequency. Month and coarser frequencies use calendar arithmetic
// so month-length drift does not accumulate.
func NextTimes(last time.Time, freq string, n int) []time.Time {
	out := make([]time.Time, n)
	for i := 1; i <= n; i++ {
		switch freq {
		case FreqHourly:
			out[i-1] = last.Add(time.Duration(i) * time.Hour)
		case FreqDaily:
			out[i-1] = last.AddDate(0, 0, i)
		case FreqWeekly:
			out[i-1] = last.AddDate(0, 0, 7*i)
		case FreqMonthStart, FreqMonthEnd:
			out[i-1] = last.AddDate(0, i, 0)
		case FreqQuarterStart, FreqQuarterEnd:
			out[i-1] = last.AddDate(0, 3*i, 0)
		case FreqYearStart, FreqYearEnd:
			out[i-1] = last.AddDate(i, 0, 0)
		default:
			// Unknown frequency falls back to daily stepping
			out[i-1] = last.AddDate(0, 0, i)
		}
	}
	return out
}
