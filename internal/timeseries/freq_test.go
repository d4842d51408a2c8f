package timeseries

import (
	"testing"
	"time"
)

func regularTimes(start time.Time, n int, step func(time.Time, int) time.Time) []time.Time {
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = step(start, i)
	}
	return out
}

func TestInferFrequency(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		times []time.Time
		want  string
	}{
		{"hourly", regularTimes(base, 5, func(s time.Time, i int) time.Time { return s.Add(time.Duration(i) * time.Hour) }), FreqHourly},
		{"daily", regularTimes(base, 5, func(s time.Time, i int) time.Time { return s.AddDate(0, 0, i) }), FreqDaily},
		{"weekly", regularTimes(base, 5, func(s time.Time, i int) time.Time { return s.AddDate(0, 0, 7*i) }), FreqWeekly},
		{"monthly", regularTimes(base, 6, func(s time.Time, i int) time.Time { return s.AddDate(0, i, 0) }), FreqMonthStart},
		{"quarterly", regularTimes(base, 5, func(s time.Time, i int) time.Time { return s.AddDate(0, 3*i, 0) }), FreqQuarterStart},
		{"yearly", regularTimes(base, 4, func(s time.Time, i int) time.Time { return s.AddDate(i, 0, 0) }), FreqYearStart},
		{"irregular", []time.Time{base, base.Add(17 * time.Minute), base.Add(3 * time.Hour)}, ""},
		{"too few", []time.Time{base}, ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferFrequency(tt.times); got != tt.want {
				t.Errorf("InferFrequency() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInferFrequency_ModeWins(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// Mostly daily with a single two-day gap
	times := []time.Time{
		base,
		base.AddDate(0, 0, 1),
		base.AddDate(0, 0, 2),
		base.AddDate(0, 0, 4),
		base.AddDate(0, 0, 5),
	}
	if got := InferFrequency(times); got != FreqDaily {
		t.Errorf("Expected daily from the dominant gap, got %q", got)
	}
}

func TestNextTimes_Daily(t *testing.T) {
	last := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)
	out := NextTimes(last, FreqDaily, 3)
	want := []time.Time{
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
	}
	for i := range want {
		if !out[i].Equal(want[i]) {
			t.Errorf("Step %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestNextTimes_MonthlyUsesCalendarArithmetic(t *testing.T) {
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := NextTimes(last, FreqMonthStart, 3)
	want := []time.Time{
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := range want {
		if !out[i].Equal(want[i]) {
			t.Errorf("Step %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestNextTimes_HourlyWeeklyQuarterlyYearly(t *testing.T) {
	last := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	if out := NextTimes(last, FreqHourly, 2); !out[1].Equal(last.Add(2 * time.Hour)) {
		t.Errorf("Hourly step wrong: %v", out[1])
	}
	if out := NextTimes(last, FreqWeekly, 2); !out[1].Equal(last.AddDate(0, 0, 14)) {
		t.Errorf("Weekly step wrong: %v", out[1])
	}
	if out := NextTimes(last, FreqQuarterStart, 2); !out[1].Equal(last.AddDate(0, 6, 0)) {
		t.Errorf("Quarterly step wrong: %v", out[1])
	}
	if out := NextTimes(last, FreqYearStart, 2); !out[1].Equal(last.AddDate(2, 0, 0)) {
		t.Errorf("Yearly step wrong: %v", out[1])
	}
}

func TestNextTimes_UnknownFrequencyFallsBackToDaily(t *testing.T) {
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := NextTimes(last, "", 2)
	if !out[0].Equal(last.AddDate(0, 0, 1)) || !out[1].Equal(last.AddDate(0, 0, 2)) {
		t.Errorf("Fallback stepping wrong: %v", out)
	}
}
