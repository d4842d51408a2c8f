package services

import (
	"testing"
	"time"

	"github.com/forecastlab/forecastlab/internal/forecast"
	"github.com/forecastlab/forecastlab/internal/logging"
	"github.com/forecastlab/forecastlab/internal/models"
	"github.com/forecastlab/forecastlab/internal/timeseries"
)

func newForecastService(maxHorizon, maxWindows int) *ForecastService {
	logger := logging.NewDevelopment()
	engine := forecast.NewEngine(logger, forecast.Capabilities{})
	return NewForecastService(logger, engine, maxHorizon, maxWindows)
}

func dailyTestTable(t *testing.T, values ...float64) *timeseries.Table {
	t.Helper()
	tbl := &timeseries.Table{}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		tbl.Append(base.AddDate(0, 0, i), v)
	}
	return tbl
}

func naiveConfig(horizon int) forecast.Config {
	return forecast.Config{
		ModuleType:   forecast.ModuleStatistical,
		ModelType:    "naive",
		Freq:         "D",
		SeasonLength: 1,
		Horizon:      horizon,
	}
}

func TestForecastService_Forecast(t *testing.T) {
	svc := newForecastService(0, 0)
	tbl := dailyTestTable(t, 1, 2, 3, 4, 5, 6)

	resp, err := svc.Forecast(tbl, naiveConfig(2))
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if len(resp.Timestamps) < 2 || len(resp.Forecast) != len(resp.Timestamps) {
		t.Errorf("Expected aligned forecast rows, got %d timestamps and %d values",
			len(resp.Timestamps), len(resp.Forecast))
	}
}

func TestForecastService_Forecast_InvalidConfig(t *testing.T) {
	svc := newForecastService(0, 0)
	tbl := dailyTestTable(t, 1, 2, 3)

	cfg := naiveConfig(0)
	_, err := svc.Forecast(tbl, cfg)
	expectServiceError(t, err, CodeValidation, "horizon")
}

func TestForecastService_Forecast_HorizonCap(t *testing.T) {
	svc := newForecastService(5, 0)
	tbl := dailyTestTable(t, 1, 2, 3, 4, 5, 6)

	_, err := svc.Forecast(tbl, naiveConfig(10))
	expectServiceError(t, err, CodeValidation, "horizon must not exceed 5.")
}

func TestForecastService_Batch_RequiresConfigs(t *testing.T) {
	svc := newForecastService(0, 0)
	tbl := dailyTestTable(t, 1, 2, 3)

	_, err := svc.ForecastBatch(tbl, &models.BatchForecastRequest{})
	expectServiceError(t, err, CodeValidation, "Provide at least one configuration.")
}

func TestForecastService_Batch_NamesFailingConfig(t *testing.T) {
	svc := newForecastService(0, 0)
	tbl := dailyTestTable(t, 1, 2, 3, 4, 5, 6)

	req := &models.BatchForecastRequest{
		Configs: []forecast.Config{naiveConfig(2), naiveConfig(0)},
	}
	_, err := svc.ForecastBatch(tbl, req)
	expectServiceError(t, err, CodeValidation, "config 1:")
}

func TestForecastService_Batch(t *testing.T) {
	svc := newForecastService(0, 0)
	tbl := dailyTestTable(t, 1, 2, 3, 4, 5, 6, 7, 8)

	req := &models.BatchForecastRequest{
		Configs: []forecast.Config{naiveConfig(2)},
	}
	resp, err := svc.ForecastBatch(tbl, req)
	if err != nil {
		t.Fatalf("ForecastBatch failed: %v", err)
	}
	if len(resp.Results) != 1 || len(resp.Leaderboard) != 1 {
		t.Errorf("Unexpected batch response: results=%d leaderboard=%d", len(resp.Results), len(resp.Leaderboard))
	}
}

func TestForecastService_Backtest_GridValidation(t *testing.T) {
	svc := newForecastService(0, 10)
	tbl := dailyTestTable(t, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	cfgs := []forecast.Config{naiveConfig(2)}

	_, err := svc.Backtest(tbl, &models.BacktestRequest{Configs: cfgs, Windows: 0, StepSize: 2})
	expectServiceError(t, err, CodeValidation, "windows must be greater than zero.")

	_, err = svc.Backtest(tbl, &models.BacktestRequest{Configs: cfgs, Windows: 2, StepSize: 0})
	expectServiceError(t, err, CodeValidation, "step_size must be greater than zero.")

	_, err = svc.Backtest(tbl, &models.BacktestRequest{Configs: cfgs, Windows: 50, StepSize: 2})
	expectServiceError(t, err, CodeValidation, "windows must not exceed 10.")

	_, err = svc.Backtest(tbl, &models.BacktestRequest{Windows: 2, StepSize: 2})
	expectServiceError(t, err, CodeValidation, "Provide at least one configuration.")
}

func TestForecastService_Backtest(t *testing.T) {
	svc := newForecastService(0, 0)
	values := make([]float64, 0, 20)
	for i := 0; i < 20; i++ {
		values = append(values, float64(i))
	}
	tbl := dailyTestTable(t, values...)

	resp, err := svc.Backtest(tbl, &models.BacktestRequest{
		Configs:  []forecast.Config{naiveConfig(2)},
		Windows:  3,
		StepSize: 2,
	})
	if err != nil {
		t.Fatalf("Backtest failed: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("Expected 1 backtest result, got %d", len(resp.Results))
	}
}
