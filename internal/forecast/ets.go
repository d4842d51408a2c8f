package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// smoothingGrid is the coarse parameter grid searched by auto_ets
var smoothingGrid = []float64{0.1, 0.3, 0.5, 0.7, 0.9}

// etsForecast selects an additive exponential-smoothing model by one-step
// in-sample SSE over a coarse smoothing grid. With enough seasonal history it
// fits Holt-Winters, otherwise Holt's linear trend method.
func etsForecast(train *timeseries.Table, y []float64, future []time.Time, cfg Config) (*ModelResult, error) {
	n, s := len(y), cfg.SeasonLength

	seasonal := s > 1 && n >= 2*s
	var best etsFit
	best.sse = math.Inf(1)

	for _, alpha := range smoothingGrid {
		for _, beta := range smoothingGrid {
			if !seasonal {
				if fit := holtFit(y, alpha, beta, cfg.Horizon); fit.sse < best.sse {
					best = fit
				}
				continue
			}
			for _, gamma := range smoothingGrid {
				if fit := holtWintersFit(y, s, alpha, beta, gamma, cfg.Horizon); fit.sse < best.sse {
					best = fit
				}
			}
		}
	}
	if math.IsInf(best.sse, 1) {
		return nil, fmt.Errorf("smoothing parameter search failed to converge")
	}

	sigma := residualStd(y, best.fitted)

	f := NewFrame(future)
	f.SetColumn(cfg.ModelType, best.forecast)
	attachIntervals(f, cfg.ModelType, best.forecast, sigma, cfg.Level, true)

	return &ModelResult{
		Forecast:      f,
		ResolvedModel: cfg.ModelType,
		Fitted:        fittedFrame(train, cfg.ModelType, best.fitted, sigma, cfg.Level),
	}, nil
}

type etsFit struct {
	fitted   []float64
	forecast []float64
	sse      float64
}

// holtFit runs Holt's linear trend method with fixed smoothing parameters
func holtFit(y []float64, alpha, beta float64, horizon int) etsFit {
	n := len(y)
	fitted := make([]float64, n)
	fitted[0] = math.NaN()

	level := y[0]
	trend := y[1] - y[0]
	sse := 0.0
	for i := 1; i < n; i++ {
		pred := level + trend
		fitted[i] = pred
		err := y[i] - pred
		sse += err * err

		prevLevel := level
		level = alpha*y[i] + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}

	forecast := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		forecast[h] = level + trend*float64(h+1)
	}
	return etsFit{fitted: fitted, forecast: forecast, sse: sse}
}

// holtWintersFit runs additive Holt-Winters with fixed smoothing parameters.
// Initial level and trend come from the first two seasons; initial seasonal
// components are first-season deviations from the first-season mean.
func holtWintersFit(y []float64, s int, alpha, beta, gamma float64, horizon int) etsFit {
	n := len(y)
	fitted := make([]float64, n)

	var firstMean, secondMean float64
	for i := 0; i < s; i++ {
		firstMean += y[i]
		secondMean += y[s+i]
	}
	firstMean /= float64(s)
	secondMean /= float64(s)

	level := firstMean
	trend := (secondMean - firstMean) / float64(s)
	season := make([]float64, s)
	for i := 0; i < s; i++ {
		season[i] = y[i] - firstMean
		fitted[i] = math.NaN()
	}

	sse := 0.0
	for i := s; i < n; i++ {
		idx := i % s
		pred := level + trend + season[idx]
		fitted[i] = pred
		err := y[i] - pred
		sse += err * err

		prevLevel := level
		level = alpha*(y[i]-season[idx]) + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		season[idx] = gamma*(y[i]-level) + (1-gamma)*season[idx]
	}

	forecast := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		forecast[h] = level + trend*float64(h+1) + season[(n+h)%s]
	}
	return etsFit{fitted: fitted, forecast: forecast, sse: sse}
}
