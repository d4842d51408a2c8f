package forecast

import (
	"strings"
	"testing"

	"github.com/forecastlab/forecastlab/internal/timeseries"
)

func TestDetermineTestSize_DefaultUsesHorizon(t *testing.T) {
	cfg := baseConfig("naive", 3)

	if got := determineTestSize(10, cfg); got != 3 {
		t.Errorf("Expected holdout 3, got %d", got)
	}
}

func TestDetermineTestSize_DefaultClampsToTotalMinusOne(t *testing.T) {
	cfg := baseConfig("naive", 12)

	if got := determineTestSize(5, cfg); got != 4 {
		t.Errorf("Expected holdout 4, got %d", got)
	}
}

func TestDetermineTestSize_ZeroFractionDisablesHoldout(t *testing.T) {
	cfg := baseConfig("naive", 3)
	cfg.TestSizeFraction = floatPtr(0)

	if got := determineTestSize(10, cfg); got != 0 {
		t.Errorf("Expected no holdout, got %d", got)
	}
}

func TestDetermineTestSize_FractionCeilsAndClamps(t *testing.T) {
	cfg := baseConfig("naive", 3)

	cases := []struct {
		total    int
		fraction float64
		want     int
	}{
		{6, 0.5, 3},
		{10, 0.25, 3}, // ceil(2.5)
		{10, 0.01, 1}, // floor clamp to 1
		{10, 0.99, 9}, // ceil(9.9) clamped to total-1
		{1, 0.5, 0},   // single row never splits
		{4, -0.25, 0}, // negative disables
	}
	for _, tc := range cases {
		cfg.TestSizeFraction = floatPtr(tc.fraction)
		if got := determineTestSize(tc.total, cfg); got != tc.want {
			t.Errorf("total=%d fraction=%v: expected %d, got %d", tc.total, tc.fraction, tc.want, got)
		}
	}
}

func TestSplitTrainTest_ActualsComeFromRawTable(t *testing.T) {
	model := dailyTable(0, 0.69, 1.09, 1.38)
	raw := dailyTable(0, 1, 2, 3)

	train, holdout, actuals := splitTrainTest(model, 2, raw)
	if train.Len() != 2 || holdout.Len() != 2 {
		t.Fatalf("Expected 2/2 split, got %d/%d", train.Len(), holdout.Len())
	}
	if actuals.Values()[0] != 2 || actuals.Values()[1] != 3 {
		t.Errorf("Expected actuals from the raw table, got %v", actuals.Values())
	}
}

func TestBuildBacktestSlices(t *testing.T) {
	// 20 rows, horizon 4, 3 windows, step 4: start = 20 - 12 = 8
	slices := buildBacktestSlices(20, 4, 3, 4)
	if len(slices) != 3 {
		t.Fatalf("Expected 3 windows, got %d", len(slices))
	}
	expected := []backtestSlice{
		{window: 1, trainEnd: 8, testStart: 8, testEnd: 12},
		{window: 2, trainEnd: 12, testStart: 12, testEnd: 16},
		{window: 3, trainEnd: 16, testStart: 16, testEnd: 20},
	}
	for i, want := range expected {
		if slices[i] != want {
			t.Errorf("Window %d: expected %+v, got %+v", i+1, want, slices[i])
		}
	}
}

func TestBuildBacktestSlices_SkipsOutOfRangeWindows(t *testing.T) {
	// 6 rows, horizon 4, 3 windows: start = max(1, 6-12) = 1.
	// Window 3 starts at 1+2*4=9 >= 6 and is skipped.
	slices := buildBacktestSlices(6, 4, 3, 4)
	if len(slices) != 1 {
		t.Fatalf("Expected 1 kept window, got %d", len(slices))
	}
	// trainEnd 1 < 2 skips window 1, so only window 2 survives
	if slices[0].window != 2 {
		t.Errorf("Expected window index 2, got %d", slices[0].window)
	}
	if slices[0].testEnd != 6 {
		t.Errorf("Expected truncated testEnd 6, got %d", slices[0].testEnd)
	}
}

func TestBuildBacktestSlices_TooFewRows(t *testing.T) {
	if got := buildBacktestSlices(2, 1, 3, 1); got != nil {
		t.Errorf("Expected no windows for a 2-row series, got %v", got)
	}
}

func TestOneStepForecast_DispatchesOncePerHoldoutRow(t *testing.T) {
	e := newTestEngine()

	calls := 0
	var trainSizes []int
	e.dispatch = func(train *timeseries.Table, cfg Config) (*ModelResult, error) {
		calls++
		trainSizes = append(trainSizes, train.Len())
		if cfg.Horizon != 1 {
			t.Errorf("Expected horizon 1 in one-step dispatch, got %d", cfg.Horizon)
		}
		last := train.Points[train.Len()-1]
		frame := NewFrame(timeseries.NextTimes(last.TS, "D", 1))
		frame.SetColumn("naive", []float64{last.Value})
		return &ModelResult{Forecast: frame, ResolvedModel: "naive"}, nil
	}

	cfg := baseConfig("naive", 4)
	cfg.Strategy = StrategyOneStep
	tbl := generateLinearData(10, 1, 0)

	resp, err := e.Forecast(tbl, cfg)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if calls != 4 {
		t.Errorf("Expected 4 dispatch calls for a 4-row holdout, got %d", calls)
	}
	// Each step appends the observed value before refitting
	for i, size := range trainSizes {
		if size != 6+i {
			t.Errorf("Step %d: expected train size %d, got %d", i, 6+i, size)
		}
	}
	if len(resp.Forecast) != 4 {
		t.Errorf("Expected 4 predictions, got %d", len(resp.Forecast))
	}
}

func TestForecast_EndToEndSeasonalWindowAverage(t *testing.T) {
	e := newTestEngine()

	cfg := Config{
		ModuleType:   ModuleStatistical,
		ModelType:    "seasonal_window_average",
		Freq:         "D",
		SeasonLength: 2,
		Horizon:      2,
	}
	cfg.Normalize()
	cfg.TestSizeFraction = floatPtr(0)
	tbl := dailyTable(1, 2, 3, 4, 5, 6)

	resp, err := e.Forecast(tbl, cfg)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if len(resp.Timestamps) != 2 || len(resp.Forecast) != 2 {
		t.Fatalf("Expected 2 forecast rows, got %d/%d", len(resp.Timestamps), len(resp.Forecast))
	}
	// Future timestamps continue the daily grid
	if resp.Timestamps[0] != "2024-01-07T00:00:00Z" || resp.Timestamps[1] != "2024-01-08T00:00:00Z" {
		t.Errorf("Unexpected future timestamps: %v", resp.Timestamps)
	}
	// Trailing per-phase means: odd phase (3+5)/2=4, even phase (4+6)/2=5
	assertClose(t, resp.Forecast[0], 4, 1e-9, "step 1")
	assertClose(t, resp.Forecast[1], 5, 1e-9, "step 2")
	if len(resp.Bounds) != 0 {
		t.Errorf("Expected no intervals for window averages, got %d", len(resp.Bounds))
	}
	if resp.Fitted != nil {
		t.Errorf("Expected no fitted series for window averages")
	}
	if resp.Metrics.MAE != nil {
		t.Errorf("Expected nil metrics without a holdout, got %v", *resp.Metrics.MAE)
	}
}

func TestForecast_NaiveSurvivesSingleRowTrain(t *testing.T) {
	e := newTestEngine()

	// Three rows with horizon 2: the default holdout takes min(horizon,
	// total-1) = 2 rows and leaves a single training observation, which
	// naive must still accept.
	cfg := baseConfig("naive", 2)
	tbl := dailyTable(5, 7, 9)

	resp, err := e.Forecast(tbl, cfg)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if len(resp.Forecast) != 2 {
		t.Fatalf("Expected 2 forecast rows, got %d", len(resp.Forecast))
	}
	// Both steps repeat the lone training value
	assertClose(t, resp.Forecast[0], 5, 1e-9, "step 1")
	assertClose(t, resp.Forecast[1], 5, 1e-9, "step 2")
	if resp.Metrics.MAE == nil {
		t.Fatal("Expected holdout metrics")
	}
	// Actuals 7 and 9 against a constant 5
	assertClose(t, *resp.Metrics.MAE, 3.0, 1e-9, "MAE")
}

func TestForecast_DriftRejectsSingleRowTrain(t *testing.T) {
	e := newTestEngine()

	cfg := baseConfig("random_walk_with_drift", 2)
	tbl := dailyTable(5, 7, 9)

	if _, err := e.Forecast(tbl, cfg); err == nil {
		t.Fatal("Expected error: drift cannot be estimated from one observation")
	}
}

func TestForecast_LogTransformRoundTrip(t *testing.T) {
	e := newTestEngine()

	cfg := baseConfig("naive", 2)
	cfg.TestSizeFraction = floatPtr(0)
	cfg.LogTransform = true
	tbl := dailyTable(1, 2, 3, 4, 5, 6)

	resp, err := e.Forecast(tbl, cfg)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	// Naive repeats log1p(6); the response must come back in the
	// original scale.
	if len(resp.Forecast) != 2 {
		t.Fatalf("Expected 2 forecast rows, got %d", len(resp.Forecast))
	}
	assertClose(t, resp.Forecast[0], 6, 1e-9, "step 1")
	assertClose(t, resp.Forecast[1], 6, 1e-9, "step 2")
	for _, b := range resp.Bounds {
		for i := range resp.Forecast {
			if b.Lower[i] > resp.Forecast[i] || b.Upper[i] < resp.Forecast[i] {
				t.Errorf("Level %d row %d: bounds [%v, %v] do not cover %v after inversion",
					b.Level, i, b.Lower[i], b.Upper[i], resp.Forecast[i])
			}
		}
	}
	if resp.Fitted == nil {
		t.Fatal("Expected fitted values for naive")
	}
	// Fitted values shift the series by one step and invert back too
	last := resp.Fitted.Forecast[len(resp.Fitted.Forecast)-1]
	assertClose(t, last, 5, 1e-9, "last fitted value")
}

func TestForecast_HoldoutProducesMetrics(t *testing.T) {
	e := newTestEngine()

	cfg := baseConfig("naive", 3)
	tbl := generateLinearData(12, 1, 0)

	resp, err := e.Forecast(tbl, cfg)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if resp.Metrics.MAE == nil || resp.Metrics.RMSE == nil {
		t.Fatal("Expected metrics with a holdout present")
	}
	// Naive repeats the last train value (8); actuals are 9,10,11
	assertClose(t, *resp.Metrics.MAE, 2.0, 1e-9, "MAE")
	if len(resp.Forecast) != 3 {
		t.Errorf("Expected 3 rows, got %d", len(resp.Forecast))
	}
	// Output arrays stay aligned
	if len(resp.Timestamps) != len(resp.Forecast) {
		t.Errorf("Timestamp/forecast length mismatch: %d vs %d", len(resp.Timestamps), len(resp.Forecast))
	}
	for _, b := range resp.Bounds {
		if len(b.Lower) != len(resp.Forecast) || len(b.Upper) != len(resp.Forecast) {
			t.Errorf("Interval level %d length mismatch", b.Level)
		}
	}
}

func TestForecastBatch_RanksConfigs(t *testing.T) {
	e := newTestEngine()

	good := baseConfig("naive", 2)
	bad := baseConfig("window_average", 2)
	bad.SeasonLength = 1
	tbl := generateLinearData(14, 1, 0)

	resp, err := e.ForecastBatch(tbl, []Config{bad, good})
	if err != nil {
		t.Fatalf("ForecastBatch failed: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(resp.Results))
	}
	if len(resp.Leaderboard) != 2 {
		t.Fatalf("Expected 2 leaderboard rows, got %d", len(resp.Leaderboard))
	}
	// Naive lags by one step on a linear trend; a 2-point window average lags more
	if resp.Leaderboard[0].ModelLabel != "statistical/naive" {
		t.Errorf("Expected naive to rank first, got %s", resp.Leaderboard[0].ModelLabel)
	}
}

func TestForecastBatch_FailingConfigNamesItsIndex(t *testing.T) {
	e := newTestEngine()

	cfg := baseConfig("seasonal_naive", 2)
	cfg.SeasonLength = 40 // longer than the series
	tbl := generateLinearData(10, 1, 0)

	_, err := e.ForecastBatch(tbl, []Config{cfg})
	if err == nil {
		t.Fatal("Expected error for an impossible seasonal config")
	}
	if !strings.Contains(err.Error(), "config 1") {
		t.Errorf("Expected error to name the failing config, got: %v", err)
	}
}

func TestBacktest_WindowsAndAggregate(t *testing.T) {
	e := newTestEngine()

	cfg := baseConfig("naive", 4)
	tbl := generateLinearData(24, 1, 0)

	resp, err := e.Backtest(tbl, []Config{cfg}, 3, 4)
	if err != nil {
		t.Fatalf("Backtest failed: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("Expected 1 model result, got %d", len(resp.Results))
	}
	model := resp.Results[0]
	if len(model.Windows) != 3 {
		t.Fatalf("Expected 3 windows, got %d", len(model.Windows))
	}
	for i, w := range model.Windows {
		if w.Window != i+1 {
			t.Errorf("Expected window index %d, got %d", i+1, w.Window)
		}
		if w.TestSize != 4 {
			t.Errorf("Window %d: expected test size 4, got %d", w.Window, w.TestSize)
		}
		if w.Metrics.MAE == nil {
			t.Errorf("Window %d: expected MAE", w.Window)
		}
	}
	if model.Aggregate.MAE == nil {
		t.Fatal("Expected aggregate MAE")
	}
	// Naive on a slope-1 trend: errors are 1..h per window, MAE = 2.5 each
	assertClose(t, *model.Aggregate.MAE, 2.5, 1e-9, "aggregate MAE")
	if len(resp.Leaderboard) != 1 {
		t.Errorf("Expected a leaderboard row per config, got %d", len(resp.Leaderboard))
	}
}

func TestBacktest_RejectsBadGrid(t *testing.T) {
	e := newTestEngine()
	tbl := generateLinearData(10, 1, 0)
	cfg := baseConfig("naive", 2)

	if _, err := e.Backtest(tbl, []Config{cfg}, 0, 1); err == nil {
		t.Error("Expected error for zero windows")
	}
	if _, err := e.Backtest(tbl, []Config{cfg}, 2, 0); err == nil {
		t.Error("Expected error for zero step size")
	}
	if _, err := e.Backtest(tbl, nil, 2, 1); err == nil {
		t.Error("Expected error for empty config list")
	}
}
