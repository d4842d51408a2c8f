package forecast

import (
	"fmt"

	"github.com/forecastlab/forecastlab/internal/logging"
	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// ModelResult is the uniform shape every family adapter returns: a forecast
// frame, the resolved model name (used to locate the point column), and an
// optional in-sample fitted frame with the same column layout.
type ModelResult struct {
	Forecast      *Frame
	ResolvedModel string
	Fitted        *Frame
}

// Dispatcher routes a config to its model-family adapter
type Dispatcher struct {
	log  *logging.Logger
	caps Capabilities
}

// Run fits and predicts with the configured model. Backend failures are
// wrapped into one descriptive error naming the family and model.
func (d *Dispatcher) Run(train *timeseries.Table, cfg Config) (*ModelResult, error) {
	var (
		result *ModelResult
		err    error
	)
	switch cfg.ModuleType {
	case ModuleStatistical:
		result, err = d.forecastStatistical(train, cfg)
	case ModuleLagRegression:
		result, err = d.forecastLagRegression(train, cfg)
	case ModuleNeural:
		result, err = d.forecastNeural(train, cfg)
	default:
		return nil, fmt.Errorf("module %q is not supported", cfg.ModuleType)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s forecast failed: %w", cfg.ModuleType, cfg.ModelType, err)
	}
	return result, nil
}
