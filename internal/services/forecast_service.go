package services

import (
	"fmt"

	"github.com/forecastlab/forecastlab/internal/forecast"
	"github.com/forecastlab/forecastlab/internal/logging"
	"github.com/forecastlab/forecastlab/internal/models"
	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// ForecastService validates forecast requests and drives the engine
type ForecastService struct {
	logger     *logging.Logger
	engine     *forecast.Engine
	maxHorizon int
	maxWindows int
}

// NewForecastService creates a new ForecastService
func NewForecastService(logger *logging.Logger, engine *forecast.Engine, maxHorizon, maxWindows int) *ForecastService {
	return &ForecastService{
		logger:     logger,
		engine:     engine,
		maxHorizon: maxHorizon,
		maxWindows: maxWindows,
	}
}

// Forecast runs a single configuration against the resolved table
func (s *ForecastService) Forecast(tbl *timeseries.Table, cfg forecast.Config) (*forecast.Response, error) {
	if err := s.prepareConfig(&cfg); err != nil {
		return nil, err
	}

	resp, err := s.engine.Forecast(tbl, cfg)
	if err != nil {
		s.logger.Warn("Forecast failed", "model", cfg.Label(), "error", err.Error())
		return nil, validationError(err.Error())
	}
	return resp, nil
}

// ForecastBatch runs several configurations on the same series and ranks them
func (s *ForecastService) ForecastBatch(tbl *timeseries.Table, req *models.BatchForecastRequest) (*forecast.BatchResponse, error) {
	if len(req.Configs) == 0 {
		return nil, validationError("Provide at least one configuration.")
	}
	cfgs := make([]forecast.Config, len(req.Configs))
	for i := range req.Configs {
		cfgs[i] = req.Configs[i]
		if err := s.prepareConfig(&cfgs[i]); err != nil {
			return nil, validationError(fmt.Sprintf("config %d: %s", i, err.Error()))
		}
	}

	resp, err := s.engine.ForecastBatch(tbl, cfgs)
	if err != nil {
		s.logger.Warn("Batch forecast failed", "configs", len(cfgs), "error", err.Error())
		return nil, validationError(err.Error())
	}
	return resp, nil
}

// Backtest runs rolling-window evaluation for each configuration
func (s *ForecastService) Backtest(tbl *timeseries.Table, req *models.BacktestRequest) (*forecast.BacktestResponse, error) {
	if len(req.Configs) == 0 {
		return nil, validationError("Provide at least one configuration.")
	}
	if req.Windows <= 0 {
		return nil, validationError("windows must be greater than zero.")
	}
	if s.maxWindows > 0 && req.Windows > s.maxWindows {
		return nil, validationError(fmt.Sprintf("windows must not exceed %d.", s.maxWindows))
	}
	if req.StepSize <= 0 {
		return nil, validationError("step_size must be greater than zero.")
	}
	cfgs := make([]forecast.Config, len(req.Configs))
	for i := range req.Configs {
		cfgs[i] = req.Configs[i]
		if err := s.prepareConfig(&cfgs[i]); err != nil {
			return nil, validationError(fmt.Sprintf("config %d: %s", i, err.Error()))
		}
	}

	resp, err := s.engine.Backtest(tbl, cfgs, req.Windows, req.StepSize)
	if err != nil {
		s.logger.Warn("Backtest failed", "configs", len(cfgs), "windows", req.Windows, "error", err.Error())
		return nil, validationError(err.Error())
	}
	return resp, nil
}

func (s *ForecastService) prepareConfig(cfg *forecast.Config) error {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return validationError(err.Error())
	}
	if s.maxHorizon > 0 && cfg.Horizon > s.maxHorizon {
		return validationError(fmt.Sprintf("horizon must not exceed %d.", s.maxHorizon))
	}
	return nil
}
