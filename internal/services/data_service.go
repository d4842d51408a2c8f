package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/forecastlab/forecastlab/internal/datasets"
	"github.com/forecastlab/forecastlab/internal/logging"
	"github.com/forecastlab/forecastlab/internal/models"
	"github.com/forecastlab/forecastlab/internal/store"
	"github.com/forecastlab/forecastlab/internal/timeseries"
)

const uploadPreviewRows = 5

// DataService manages uploaded series and the bundled sample datasets
type DataService struct {
	logger         *logging.Logger
	uploads        store.UploadStore
	maxUploadBytes int64
}

// NewDataService creates a new DataService
func NewDataService(logger *logging.Logger, uploads store.UploadStore, maxUploadBytes int64) *DataService {
	return &DataService{
		logger:         logger,
		uploads:        uploads,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload parses a CSV payload, stores the validated series under a fresh id
// and returns a preview with the detected frequency.
func (s *DataService) Upload(ctx context.Context, file io.Reader, size int64, dsCol, yCol string) (*models.UploadResponse, error) {
	if s.maxUploadBytes > 0 && size > s.maxUploadBytes {
		return nil, validationError(fmt.Sprintf("upload exceeds the maximum size of %d bytes", s.maxUploadBytes))
	}

	dsName := strings.TrimSpace(dsCol)
	yName := strings.TrimSpace(yCol)
	if dsName != "" && strings.EqualFold(dsName, yName) {
		return nil, validationError("Timestamp and target columns must be different.")
	}

	reader := file
	if s.maxUploadBytes > 0 {
		reader = io.LimitReader(file, s.maxUploadBytes+1)
	}
	tbl, err := timeseries.ParseCSV(reader, timeseries.ParseCSVOptions{
		TimestampColumn: dsName,
		ValueColumn:     yName,
	})
	if err != nil {
		s.logger.Warn("Upload validation failed", "error", err.Error())
		return nil, validationError(err.Error())
	}

	uploadID := uuid.New().String()
	if err := s.uploads.Put(ctx, uploadID, tbl); err != nil {
		s.logger.Error("Failed to store upload", "upload_id", uploadID, "error", err.Error())
		return nil, NewServiceError(CodeInternal, "Failed to store upload.")
	}

	records := tbl.Records()
	preview := records
	if len(preview) > uploadPreviewRows {
		preview = preview[:uploadPreviewRows]
	}

	s.logger.Info("Stored upload", "upload_id", uploadID, "rows", tbl.Len())
	return &models.UploadResponse{
		UploadID:     uploadID,
		Preview:      preview,
		Rows:         tbl.Len(),
		DetectedFreq: timeseries.InferFrequency(tbl.Timestamps()),
	}, nil
}

// Resolve returns the table backing a request data source: a stored upload,
// a bundled dataset, or inline records. Exactly one source must be set.
func (s *DataService) Resolve(ctx context.Context, src models.DataSource) (*timeseries.Table, error) {
	sources := 0
	if src.UploadID != "" {
		sources++
	}
	if src.DatasetID != "" {
		sources++
	}
	if src.Records != nil {
		sources++
	}
	if sources != 1 {
		return nil, validationError("Provide exactly one of upload_id, dataset_id or records.")
	}

	switch {
	case src.UploadID != "":
		tbl, err := s.uploads.Get(ctx, src.UploadID)
		if err == store.ErrUploadNotFound {
			return nil, notFoundError(fmt.Sprintf("Upload '%s' was not found or expired.", src.UploadID))
		}
		if err != nil {
			s.logger.Error("Upload lookup failed", "upload_id", src.UploadID, "error", err.Error())
			return nil, NewServiceError(CodeInternal, "Failed to load upload.")
		}
		return tbl, nil

	case src.DatasetID != "":
		tbl, _, err := datasets.Load(src.DatasetID)
		if err != nil {
			return nil, notFoundError(fmt.Sprintf("Dataset '%s' was not found.", src.DatasetID))
		}
		return tbl, nil

	default:
		if len(src.Records) == 0 {
			return nil, validationError("records cannot be an empty list.")
		}
		tbl, err := timeseries.FromRecords(src.Records)
		if err != nil {
			return nil, validationError(err.Error())
		}
		return tbl, nil
	}
}

// ListDatasets returns metadata for every bundled dataset
func (s *DataService) ListDatasets() *models.DatasetsResponse {
	return &models.DatasetsResponse{Datasets: datasets.List()}
}

// GetDataset returns one bundled dataset with its full records
func (s *DataService) GetDataset(id string) (*models.DatasetDetailResponse, error) {
	tbl, info, err := datasets.Load(id)
	if err != nil {
		return nil, notFoundError(fmt.Sprintf("Dataset '%s' was not found.", id))
	}
	return &models.DatasetDetailResponse{Dataset: info, Records: tbl.Records()}, nil
}
