// Package models defines the HTTP request and response shapes of the API.
package models

import (
	"github.com/forecastlab/forecastlab/internal/forecast"
	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// DataSource carries the fields every forecast-style request uses to name
// its input series: a prior upload, a bundled dataset, or inline records.
type DataSource struct {
	UploadID  string              `json:"upload_id,omitempty"`
	DatasetID string              `json:"dataset_id,omitempty"`
	Records   []timeseries.Record `json:"records,omitempty"`
}

// ForecastRequest runs a single configuration against a data source.
// The config fields are embedded at the top level.
type ForecastRequest struct {
	DataSource
	forecast.Config
}

// BatchForecastRequest runs several configs on the same series
type BatchForecastRequest struct {
	DataSource
	Configs []forecast.Config `json:"configs"`
}

// BacktestRequest runs rolling-window backtests across one or more configs
type BacktestRequest struct {
	DataSource
	Configs  []forecast.Config `json:"configs"`
	Windows  int               `json:"windows"`
	StepSize int               `json:"step_size"`
}

// SavedConfigRequest persists a configuration for reuse
type SavedConfigRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Config      forecast.Config `json:"config"`
}
