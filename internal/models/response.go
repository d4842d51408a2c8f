package models

import (
	"github.com/forecastlab/forecastlab/internal/datasets"
	"github.com/forecastlab/forecastlab/internal/store"
	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// UploadResponse describes a parsed CSV upload.
type UploadResponse struct {
	UploadID     string              `json:"upload_id"`
	Preview      []timeseries.Record `json:"preview"`
	Rows         int                 `json:"rows"`
	DetectedFreq string              `json:"detected_freq,omitempty"`
}

// DatasetsResponse lists the bundled sample datasets.
type DatasetsResponse struct {
	Datasets []datasets.Info `json:"datasets"`
}

// DatasetDetailResponse returns one dataset with its full records.
type DatasetDetailResponse struct {
	Dataset datasets.Info       `json:"dataset"`
	Records []timeseries.Record `json:"records"`
}

// SavedConfigsResponse lists persisted forecast configurations.
type SavedConfigsResponse struct {
	Configs []store.SavedConfig `json:"configs"`
}

// ErrorResponse is the envelope returned for any failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human message.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}
