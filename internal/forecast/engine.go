package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/forecastlab/forecastlab/internal/logging"
	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// Capabilities toggles optional engine behavior sourced from configuration
type Capabilities struct {
	// Tuning enables hyperparameter search in the auto-selection models.
	// When disabled those models fall back to cheaper information-criterion
	// selection; they never fail to construct.
	Tuning bool
}

// runner executes one fit-and-predict cycle for a training table. The engine
// holds it as a field so tests can count or stub dispatch calls.
type runner func(train *timeseries.Table, cfg Config) (*ModelResult, error)

// Engine orchestrates forecasting runs: preprocessing, holdout splitting,
// one-step rolling evaluation, rolling backtests, response assembly and
// leaderboard ranking.
type Engine struct {
	log      *logging.Logger
	dispatch runner
}

// NewEngine builds an engine with the standard three-family dispatcher
func NewEngine(log *logging.Logger, caps Capabilities) *Engine {
	e := &Engine{log: log}
	d := &Dispatcher{log: log, caps: caps}
	e.dispatch = d.Run
	return e
}

// Forecast runs a single configuration against the table. The config must
// already be normalized and validated. The caller's table is never mutated.
func (e *Engine) Forecast(tbl *timeseries.Table, cfg Config) (*Response, error) {
	data, cfg, err := e.preprocess(tbl, cfg)
	if err != nil {
		return nil, err
	}

	holdoutSize := determineTestSize(data.Len(), cfg)

	// One-step evaluation rolls forward a step at a time.
	runCfg := cfg
	if cfg.Strategy == StrategyOneStep {
		runCfg = cfg.withHorizon(1)
	}

	modelData := data
	if cfg.LogTransform {
		if modelData, err = applyLogTransform(data); err != nil {
			return nil, err
		}
	}
	train, holdout, actuals := splitTrainTest(modelData, holdoutSize, data)

	var result *ModelResult
	if cfg.Strategy == StrategyOneStep && holdout != nil {
		if result, err = e.oneStepForecast(train, holdout, runCfg); err != nil {
			return nil, err
		}
	} else if result, err = e.dispatch(train, runCfg); err != nil {
		return nil, err
	}

	modelColumn, err := resolveModelColumn(result.Forecast, result.ResolvedModel)
	if err != nil {
		return nil, err
	}

	fcst, err := e.dropNonFiniteRows(result.Forecast, modelColumn, runCfg.Level, true)
	if err != nil {
		return nil, err
	}
	fitted := result.Fitted
	if fitted != nil {
		if fitted, err = e.dropNonFiniteRows(fitted, modelColumn, runCfg.Level, false); err != nil {
			return nil, err
		}
	}

	if runCfg.LogTransform {
		invertLogTransform(fcst, modelColumn, runCfg.Level)
		if fitted != nil {
			invertLogTransform(fitted, modelColumn, runCfg.Level)
		}
	}

	aligned, metrics := alignWithActuals(fcst, actuals, modelColumn)

	resp := &Response{
		Timestamps: isoTimestamps(aligned.Times),
		Bounds:     buildIntervals(aligned, modelColumn, runCfg.Level),
		Metrics:    metrics,
		Config:     cfg,
	}
	values, _ := aligned.Column(modelColumn)
	resp.Forecast = append([]float64(nil), values...)

	if fitted != nil {
		fittedValues, _ := fitted.Column(modelColumn)
		resp.Fitted = &Series{
			Timestamps: isoTimestamps(fitted.Times),
			Forecast:   append([]float64(nil), fittedValues...),
			Bounds:     buildIntervals(fitted, modelColumn, runCfg.Level),
		}
	}
	return resp, nil
}

// ForecastBatch runs each configuration on its own copy of the table and
// ranks the outcomes. Configs run sequentially; a single failing config fails
// the batch with its error.
func (e *Engine) ForecastBatch(tbl *timeseries.Table, cfgs []Config) (*BatchResponse, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("at least one config is required")
	}

	results := make([]*Response, 0, len(cfgs))
	rows := make([]LeaderboardEntry, 0, len(cfgs))
	for i, cfg := range cfgs {
		resp, err := e.Forecast(tbl.Clone(), cfg)
		if err != nil {
			return nil, fmt.Errorf("config %d (%s): %w", i+1, cfg.Label(), err)
		}
		results = append(results, resp)
		rows = append(rows, LeaderboardEntry{
			ModelLabel: resp.Config.Label(),
			ModuleType: resp.Config.ModuleType,
			Metrics:    resp.Metrics,
			Config:     resp.Config,
		})
	}

	return &BatchResponse{Results: results, Leaderboard: rankLeaderboard(rows)}, nil
}

// Backtest evaluates each configuration over rolling windows walking forward
// through the tail of the series.
func (e *Engine) Backtest(tbl *timeseries.Table, cfgs []Config, windows, stepSize int) (*BacktestResponse, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("at least one config is required")
	}
	if windows <= 0 {
		return nil, fmt.Errorf("windows must be greater than zero")
	}
	if stepSize <= 0 {
		return nil, fmt.Errorf("step_size must be greater than zero")
	}

	results := make([]BacktestModelResult, 0, len(cfgs))
	rows := make([]LeaderboardEntry, 0, len(cfgs))

	for i, cfg := range cfgs {
		data, runBase, err := e.preprocess(tbl, cfg)
		if err != nil {
			return nil, fmt.Errorf("config %d (%s): %w", i+1, cfg.Label(), err)
		}

		modelData := data
		if runBase.LogTransform {
			if modelData, err = applyLogTransform(data); err != nil {
				return nil, fmt.Errorf("config %d (%s): %w", i+1, cfg.Label(), err)
			}
		}

		slices := buildBacktestSlices(modelData.Len(), runBase.Horizon, windows, stepSize)
		windowResults := make([]BacktestWindowResult, 0, len(slices))
		var buffer []Metrics

		for _, s := range slices {
			train := modelData.Slice(0, s.trainEnd)
			holdout := modelData.Slice(s.testStart, s.testEnd)
			actuals := data.Slice(s.testStart, s.testEnd)
			if holdout.Len() == 0 || train.Len() < minObservations {
				continue
			}

			runCfg := runBase.withHorizon(holdout.Len())
			var result *ModelResult
			if runCfg.Strategy == StrategyOneStep {
				result, err = e.oneStepForecast(train, holdout, runCfg.withHorizon(1))
			} else {
				result, err = e.dispatch(train, runCfg)
			}
			if err != nil {
				return nil, fmt.Errorf("config %d (%s) window %d: %w", i+1, cfg.Label(), s.window, err)
			}

			modelColumn, err := resolveModelColumn(result.Forecast, result.ResolvedModel)
			if err != nil {
				return nil, fmt.Errorf("config %d (%s) window %d: %w", i+1, cfg.Label(), s.window, err)
			}
			fcst, err := e.dropNonFiniteRows(result.Forecast, modelColumn, runCfg.Level, true)
			if err != nil {
				return nil, fmt.Errorf("config %d (%s) window %d: %w", i+1, cfg.Label(), s.window, err)
			}
			if runCfg.LogTransform {
				invertLogTransform(fcst, modelColumn, runCfg.Level)
			}

			_, metrics := alignWithActuals(fcst, actuals, modelColumn)
			windowResults = append(windowResults, BacktestWindowResult{
				Window:    s.window,
				TrainSize: train.Len(),
				TestSize:  holdout.Len(),
				Metrics:   metrics,
			})
			buffer = append(buffer, metrics)
		}

		aggregate := averageMetrics(buffer)
		results = append(results, BacktestModelResult{
			Config:    runBase,
			Aggregate: aggregate,
			Windows:   windowResults,
		})
		rows = append(rows, LeaderboardEntry{
			ModelLabel: runBase.Label(),
			ModuleType: runBase.ModuleType,
			Metrics:    aggregate,
			Config:     runBase,
		})
	}

	return &BacktestResponse{Results: results, Leaderboard: rankLeaderboard(rows)}, nil
}

// oneStepForecast rolls forward through the holdout one step at a time,
// appending each true observation to the training set before predicting the
// next step. The model is effectively refit once per holdout row.
func (e *Engine) oneStepForecast(train, holdout *timeseries.Table, cfg Config) (*ModelResult, error) {
	if holdout == nil || holdout.Len() == 0 {
		return nil, fmt.Errorf("one-step forecasting requires holdout data")
	}

	rolling := train.Clone()
	stepCfg := cfg.withHorizon(1)

	predictions := make([]float64, 0, holdout.Len())
	type bounds struct{ lower, upper []float64 }
	buffers := make(map[int]*bounds, len(cfg.Level))
	for _, lvl := range cfg.Level {
		buffers[lvl] = &bounds{}
	}

	var resolved, modelColumn string
	for idx := 0; idx < holdout.Len(); idx++ {
		result, err := e.dispatch(rolling, stepCfg)
		if err != nil {
			return nil, err
		}
		resolved = result.ResolvedModel

		if modelColumn, err = resolveModelColumn(result.Forecast, resolved); err != nil {
			return nil, err
		}
		values, _ := result.Forecast.Column(modelColumn)
		predictions = append(predictions, values[0])

		for _, lvl := range cfg.Level {
			if lower, ok := result.Forecast.Column(lowerColumn(modelColumn, lvl)); ok {
				buffers[lvl].lower = append(buffers[lvl].lower, lower[0])
			}
			if upper, ok := result.Forecast.Column(upperColumn(modelColumn, lvl)); ok {
				buffers[lvl].upper = append(buffers[lvl].upper, upper[0])
			}
		}

		rolling.Append(holdout.Points[idx].TS, holdout.Points[idx].Value)
	}

	frame := NewFrame(holdout.Timestamps())
	frame.SetColumn(modelColumn, predictions)
	for _, lvl := range cfg.Level {
		b := buffers[lvl]
		if len(b.lower) == len(predictions) && len(b.upper) == len(predictions) && len(b.lower) > 0 {
			frame.SetColumn(lowerColumn(modelColumn, lvl), b.lower)
			frame.SetColumn(upperColumn(modelColumn, lvl), b.upper)
		}
	}
	return &ModelResult{Forecast: frame, ResolvedModel: resolved}, nil
}

// determineTestSize computes the trailing holdout row count. A nil fraction
// defaults to min(horizon, total-1); a fraction of zero or less disables the
// holdout entirely; otherwise ceil(total*fraction) clamped to [1, total-1].
func determineTestSize(totalRows int, cfg Config) int {
	if totalRows <= 1 {
		return 0
	}
	if cfg.TestSizeFraction == nil {
		holdout := cfg.Horizon
		if totalRows-1 < holdout {
			holdout = totalRows - 1
		}
		if holdout < 0 {
			return 0
		}
		return holdout
	}
	if *cfg.TestSizeFraction <= 0 {
		return 0
	}

	holdout := int(math.Ceil(float64(totalRows) * *cfg.TestSizeFraction))
	if holdout < 1 {
		holdout = 1
	}
	if holdout > totalRows-1 {
		holdout = totalRows - 1
	}
	return holdout
}

// splitTrainTest holds out the trailing rows when possible. actuals come from
// the untransformed table so metrics are computed in the original scale.
func splitTrainTest(model *timeseries.Table, holdoutSize int, raw *timeseries.Table) (train, holdout, actuals *timeseries.Table) {
	n := model.Len()
	if holdoutSize <= 0 || n <= holdoutSize {
		return model, nil, nil
	}
	train = model.Slice(0, n-holdoutSize)
	holdout = model.Slice(n-holdoutSize, n)
	actuals = raw.Slice(raw.Len()-holdoutSize, raw.Len())
	return train, holdout, actuals
}

// backtestSlice is one rolling window's positional boundaries
type backtestSlice struct {
	window    int
	trainEnd  int
	testStart int
	testEnd   int
}

// buildBacktestSlices walks the window grid forward from
// max(1, total - horizon*windows), skipping windows that would leave fewer
// than two training rows or an empty test range. Window indexes are 1-based
// and keep their slot even when earlier windows are skipped.
func buildBacktestSlices(totalRows, horizon, windows, step int) []backtestSlice {
	if totalRows <= 2 || horizon <= 0 {
		return nil
	}

	start := totalRows - horizon*windows
	if start < 1 {
		start = 1
	}

	var slices []backtestSlice
	for idx := 0; idx < windows; idx++ {
		testStart := start + idx*step
		testEnd := testStart + horizon
		if testEnd > totalRows {
			testEnd = totalRows
		}
		trainEnd := testStart
		if trainEnd < 2 || testStart >= totalRows || testEnd <= testStart {
			continue
		}
		slices = append(slices, backtestSlice{
			window:    idx + 1,
			trainEnd:  trainEnd,
			testStart: testStart,
			testEnd:   testEnd,
		})
	}
	return slices
}

func isoTimestamps(times []time.Time) []string {
	out := make([]string, len(times))
	for i, ts := range times {
		out[i] = ts.Format(time.RFC3339)
	}
	return out
}
