package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// forecastStatistical fits one of the classical models and predicts
// cfg.Horizon steps. Models with an uncertainty estimate also emit interval
// bound columns and an in-sample fitted frame; the window averages return
// point forecasts only.
func (d *Dispatcher) forecastStatistical(train *timeseries.Table, cfg Config) (*ModelResult, error) {
	y := train.Values()
	future := timeseries.NextTimes(train.Points[train.Len()-1].TS, cfg.Freq, cfg.Horizon)

	// Each model enforces its own minimum training length; a short holdout
	// split can leave naive with a single observation and that is enough.
	switch cfg.ModelType {
	case "naive":
		return naiveForecast(train, y, future, cfg), nil
	case "seasonal_naive":
		return seasonalNaiveForecast(train, y, future, cfg)
	case "random_walk_with_drift":
		if len(y) < 2 {
			return nil, fmt.Errorf("needs at least 2 observations to estimate drift, got %d", len(y))
		}
		return driftForecast(train, y, future, cfg), nil
	case "window_average":
		return windowAverageForecast(y, future, cfg)
	case "seasonal_window_average":
		return seasonalWindowAverageForecast(y, future, cfg)
	case "auto_ets":
		if len(y) < 2 {
			return nil, fmt.Errorf("needs at least 2 observations to initialise the trend, got %d", len(y))
		}
		return etsForecast(train, y, future, cfg)
	case "arima":
		return d.arimaForecast(train, y, future, cfg)
	case "auto_arima":
		return d.autoARIMAForecast(train, y, future, cfg)
	default:
		return nil, fmt.Errorf("model %q is not supported", cfg.ModelType)
	}
}

// zScore returns the two-sided normal quantile for a percentage level,
// e.g. 95 -> 1.96.
func zScore(level int) float64 {
	return math.Sqrt2 * math.Erfinv(float64(level)/100)
}

// residualStd estimates sigma from one-step in-sample residuals, skipping
// NaN entries from warm-up rows.
func residualStd(actual, fitted []float64) float64 {
	var sum float64
	n := 0
	for i := range actual {
		if math.IsNaN(fitted[i]) {
			continue
		}
		r := actual[i] - fitted[i]
		sum += r * r
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}

// attachIntervals adds bound columns around point values. Forecast-step
// widths grow with sqrt of the step count following the random-walk variance
// profile; pass growing=false for constant-width fitted bounds.
func attachIntervals(f *Frame, model string, point []float64, sigma float64, levels []int, growing bool) {
	for _, lvl := range levels {
		z := zScore(lvl)
		lower := make([]float64, len(point))
		upper := make([]float64, len(point))
		for i := range point {
			width := z * sigma
			if growing {
				width *= math.Sqrt(float64(i + 1))
			}
			lower[i] = point[i] - width
			upper[i] = point[i] + width
		}
		f.SetColumn(lowerColumn(model, lvl), lower)
		f.SetColumn(upperColumn(model, lvl), upper)
	}
}

// fittedFrame builds the in-sample frame over the training timestamps
func fittedFrame(train *timeseries.Table, model string, fitted []float64, sigma float64, levels []int) *Frame {
	f := NewFrame(train.Timestamps())
	f.SetColumn(model, fitted)
	attachIntervals(f, model, fitted, sigma, levels, false)
	return f
}

// naiveForecast repeats the last observation. Uncertainty comes from the
// one-step-ahead residuals of the naive predictor itself.
func naiveForecast(train *timeseries.Table, y []float64, future []time.Time, cfg Config) *ModelResult {
	n := len(y)
	fitted := make([]float64, n)
	fitted[0] = math.NaN()
	for i := 1; i < n; i++ {
		fitted[i] = y[i-1]
	}
	sigma := residualStd(y, fitted)

	point := make([]float64, cfg.Horizon)
	for i := range point {
		point[i] = y[n-1]
	}

	f := NewFrame(future)
	f.SetColumn(cfg.ModelType, point)
	attachIntervals(f, cfg.ModelType, point, sigma, cfg.Level, true)

	return &ModelResult{
		Forecast:      f,
		ResolvedModel: cfg.ModelType,
		Fitted:        fittedFrame(train, cfg.ModelType, fitted, sigma, cfg.Level),
	}
}

// seasonalNaiveForecast repeats the value from one season ago
func seasonalNaiveForecast(train *timeseries.Table, y []float64, future []time.Time, cfg Config) (*ModelResult, error) {
	n, s := len(y), cfg.SeasonLength
	if n < s {
		return nil, fmt.Errorf("needs at least one full season (%d observations), got %d", s, n)
	}

	fitted := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < s {
			fitted[i] = math.NaN()
		} else {
			fitted[i] = y[i-s]
		}
	}
	sigma := residualStd(y, fitted)

	point := make([]float64, cfg.Horizon)
	for i := range point {
		point[i] = y[n-s+i%s]
	}

	f := NewFrame(future)
	f.SetColumn(cfg.ModelType, point)
	attachIntervals(f, cfg.ModelType, point, sigma, cfg.Level, true)

	return &ModelResult{
		Forecast:      f,
		ResolvedModel: cfg.ModelType,
		Fitted:        fittedFrame(train, cfg.ModelType, fitted, sigma, cfg.Level),
	}, nil
}

// driftForecast extrapolates the line between the first and last observation
func driftForecast(train *timeseries.Table, y []float64, future []time.Time, cfg Config) *ModelResult {
	n := len(y)
	drift := (y[n-1] - y[0]) / float64(n-1)

	fitted := make([]float64, n)
	fitted[0] = math.NaN()
	for i := 1; i < n; i++ {
		fitted[i] = y[i-1] + drift
	}
	sigma := residualStd(y, fitted)

	point := make([]float64, cfg.Horizon)
	for i := range point {
		point[i] = y[n-1] + drift*float64(i+1)
	}

	f := NewFrame(future)
	f.SetColumn(cfg.ModelType, point)
	attachIntervals(f, cfg.ModelType, point, sigma, cfg.Level, true)

	return &ModelResult{
		Forecast:      f,
		ResolvedModel: cfg.ModelType,
		Fitted:        fittedFrame(train, cfg.ModelType, fitted, sigma, cfg.Level),
	}
}

// windowAverageForecast predicts the mean of the trailing window. No
// uncertainty estimate or fitted values are produced.
func windowAverageForecast(y []float64, future []time.Time, cfg Config) (*ModelResult, error) {
	window := windowSize(cfg.SeasonLength)
	if len(y) < window {
		return nil, fmt.Errorf("needs at least %d observations for the averaging window, got %d", window, len(y))
	}

	sum := 0.0
	for _, v := range y[len(y)-window:] {
		sum += v
	}
	avg := sum / float64(window)

	point := make([]float64, cfg.Horizon)
	for i := range point {
		point[i] = avg
	}

	f := NewFrame(future)
	f.SetColumn(cfg.ModelType, point)
	return &ModelResult{Forecast: f, ResolvedModel: cfg.ModelType}, nil
}

// seasonalWindowAverageForecast averages the last windowSize observations of
// each seasonal phase.
func seasonalWindowAverageForecast(y []float64, future []time.Time, cfg Config) (*ModelResult, error) {
	n, s := len(y), cfg.SeasonLength
	window := windowSize(s)
	if n < s*window {
		return nil, fmt.Errorf("needs at least %d observations (%d seasons of length %d), got %d",
			s*window, window, s, n)
	}

	// Per-phase trailing means. Phase of index j is j mod s; future index
	// n+i continues the same cycle.
	phaseAvg := make([]float64, s)
	for phase := 0; phase < s; phase++ {
		var values []float64
		for j := phase; j < n; j += s {
			values = append(values, y[j])
		}
		sum := 0.0
		for _, v := range values[len(values)-window:] {
			sum += v
		}
		phaseAvg[phase] = sum / float64(window)
	}

	point := make([]float64, cfg.Horizon)
	for i := range point {
		point[i] = phaseAvg[(n+i)%s]
	}

	f := NewFrame(future)
	f.SetColumn(cfg.ModelType, point)
	return &ModelResult{Forecast: f, ResolvedModel: cfg.ModelType}, nil
}

// windowSize derives the averaging window from the season length
func windowSize(seasonLength int) int {
	if seasonLength < 2 {
		return 2
	}
	return seasonLength
}
