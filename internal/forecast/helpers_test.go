package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/forecastlab/forecastlab/internal/logging"
	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// Common test data and helpers for all forecast tests

var testBaseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(logging.NewDevelopment(), Capabilities{})
}

// dailyTable creates a daily table from explicit values
func dailyTable(values ...float64) *timeseries.Table {
	tbl := &timeseries.Table{}
	for i, v := range values {
		tbl.Append(testBaseTime.AddDate(0, 0, i), v)
	}
	return tbl
}

// generateLinearData creates daily data following y = slope*i + intercept
func generateLinearData(n int, slope, intercept float64) *timeseries.Table {
	tbl := &timeseries.Table{}
	for i := 0; i < n; i++ {
		tbl.Append(testBaseTime.AddDate(0, 0, i), slope*float64(i)+intercept)
	}
	return tbl
}

// generateSeasonalData creates daily data with a sine seasonality of the
// given period plus a mild trend
func generateSeasonalData(n, period int) *timeseries.Table {
	tbl := &timeseries.Table{}
	for i := 0; i < n; i++ {
		seasonal := 10 * math.Sin(2*math.Pi*float64(i%period)/float64(period))
		tbl.Append(testBaseTime.AddDate(0, 0, i), 50+0.1*float64(i)+seasonal)
	}
	return tbl
}

func baseConfig(model string, horizon int) Config {
	cfg := Config{
		ModuleType:   ModuleStatistical,
		ModelType:    model,
		Freq:         "D",
		SeasonLength: 1,
		Horizon:      horizon,
	}
	cfg.Normalize()
	return cfg
}

func floatPtr(v float64) *float64 { return &v }

func assertClose(t *testing.T, got, want, tol float64, label string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: expected %v, got %v", label, want, got)
	}
}
