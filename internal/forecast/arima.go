package forecast

import (
	"fmt"
	"time"

	"github.com/sartorproj/goarima/arima"
	"github.com/sartorproj/goarima/autoarima"
	"github.com/sartorproj/goarima/sarima"
	garima "github.com/sartorproj/goarima/timeseries"

	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// arimaPredictor is the slice of the goarima model surface the adapter needs
type arimaPredictor interface {
	PredictWithInterval(steps int, confidence float64) (forecast, lower, upper []float64, err error)
	Residuals() []float64
}

// arimaForecast fits a fixed-order model: ARIMA(1,0,0), extended with a
// seasonal AR term when the season length is above one and enough history
// exists.
func (d *Dispatcher) arimaForecast(train *timeseries.Table, y []float64, future []time.Time, cfg Config) (*ModelResult, error) {
	series := &garima.Series{Values: append([]float64(nil), y...)}

	var predictor arimaPredictor
	if cfg.SeasonLength > 1 && len(y) >= 2*cfg.SeasonLength {
		model := sarima.New(1, 0, 0, 1, 0, 0, cfg.SeasonLength)
		if err := model.Fit(series); err != nil {
			return nil, fmt.Errorf("fit: %w", err)
		}
		predictor = model
	} else {
		model := arima.New(1, 0, 0)
		if err := model.Fit(series); err != nil {
			return nil, fmt.Errorf("fit: %w", err)
		}
		predictor = model
	}

	return assembleARIMAResult(predictor, train, y, future, cfg)
}

// autoARIMAForecast searches orders automatically. With tuning enabled the
// search scores candidates by cross-validation; otherwise it falls back to
// the cheaper AICc criterion so the model still constructs and runs.
func (d *Dispatcher) autoARIMAForecast(train *timeseries.Table, y []float64, future []time.Time, cfg Config) (*ModelResult, error) {
	series := &garima.Series{Values: append([]float64(nil), y...)}

	searchCfg := autoarima.DefaultConfig()
	searchCfg.Criterion = "aicc"
	if !d.caps.Tuning {
		searchCfg.ModelSelection = "aicc"
		d.log.Debug("tuning disabled, selecting arima order by information criterion")
	}
	if cfg.SeasonLength > 1 {
		searchCfg.SeasonalPeriods = []int{cfg.SeasonLength}
		searchCfg.SeasonalityThreshold = 0.1
	} else {
		searchCfg.AutoSeasonal = false
		searchCfg.CompareModels = false
	}

	result, err := autoarima.AutoARIMA(series, searchCfg)
	if err != nil {
		return nil, fmt.Errorf("order search: %w", err)
	}
	d.log.Debug("auto arima selected order",
		"order", result.Order(),
		"seasonal", result.IsSeasonal,
		"evaluated", result.ModelsEvaluated)

	return assembleARIMAResult(result, train, y, future, cfg)
}

// assembleARIMAResult turns a fitted goarima model into the uniform adapter
// shape: point column, per-level bound columns, and an in-sample fitted frame
// reconstructed from the residuals when they cover the full series.
func assembleARIMAResult(p arimaPredictor, train *timeseries.Table, y []float64, future []time.Time, cfg Config) (*ModelResult, error) {
	f := NewFrame(future)

	var point []float64
	for _, lvl := range cfg.Level {
		fc, lower, upper, err := p.PredictWithInterval(cfg.Horizon, float64(lvl)/100)
		if err != nil {
			return nil, fmt.Errorf("predict: %w", err)
		}
		if point == nil {
			if len(fc) != cfg.Horizon {
				return nil, fmt.Errorf("predict returned %d forecasts for horizon %d", len(fc), cfg.Horizon)
			}
			point = fc
			f.SetColumn(cfg.ModelType, point)
		}
		if len(lower) == cfg.Horizon && len(upper) == cfg.Horizon {
			f.SetColumn(lowerColumn(cfg.ModelType, lvl), lower)
			f.SetColumn(upperColumn(cfg.ModelType, lvl), upper)
		}
	}
	if point == nil {
		return nil, fmt.Errorf("predict returned no forecasts")
	}

	result := &ModelResult{Forecast: f, ResolvedModel: cfg.ModelType}

	if residuals := p.Residuals(); len(residuals) == len(y) {
		fitted := make([]float64, len(y))
		for i := range y {
			fitted[i] = y[i] - residuals[i]
		}
		sigma := residualStd(y, fitted)
		result.Fitted = fittedFrame(train, cfg.ModelType, fitted, sigma, cfg.Level)
	}
	return result, nil
}
