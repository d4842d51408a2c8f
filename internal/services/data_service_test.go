package services

import (
	"context"
	"strings"
	"testing"

	"github.com/forecastlab/forecastlab/internal/logging"
	"github.com/forecastlab/forecastlab/internal/models"
	"github.com/forecastlab/forecastlab/internal/store"
	"github.com/forecastlab/forecastlab/internal/timeseries"
)

func newDataService(maxBytes int64) (*DataService, *store.MemoryUploadStore) {
	uploads := store.NewMemoryUploadStore(0)
	return NewDataService(logging.NewDevelopment(), uploads, maxBytes), uploads
}

func expectServiceError(t *testing.T, err error, code, contains string) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected an error")
	}
	svcErr, ok := err.(*ServiceError)
	if !ok {
		t.Fatalf("Expected *ServiceError, got %T: %v", err, err)
	}
	if svcErr.Code != code {
		t.Errorf("Expected code %q, got %q", code, svcErr.Code)
	}
	if !strings.Contains(svcErr.Message, contains) {
		t.Errorf("Expected message to contain %q, got %q", contains, svcErr.Message)
	}
}

func TestDataService_Upload(t *testing.T) {
	svc, uploads := newDataService(0)
	csv := "ds,y\n2024-01-01,1\n2024-01-02,2\n2024-01-03,3\n"

	resp, err := svc.Upload(context.Background(), strings.NewReader(csv), int64(len(csv)), "", "")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if resp.UploadID == "" || resp.Rows != 3 {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if len(resp.Preview) != 3 {
		t.Errorf("Expected full preview for a short upload, got %d rows", len(resp.Preview))
	}
	if resp.DetectedFreq != timeseries.FreqDaily {
		t.Errorf("Expected daily frequency, got %q", resp.DetectedFreq)
	}

	if _, err := uploads.Get(context.Background(), resp.UploadID); err != nil {
		t.Errorf("Expected upload to be stored: %v", err)
	}
}

func TestDataService_Upload_PreviewCapped(t *testing.T) {
	svc, _ := newDataService(0)
	var sb strings.Builder
	sb.WriteString("ds,y\n")
	for i := 1; i <= 9; i++ {
		sb.WriteString("2024-01-0")
		sb.WriteByte(byte('0' + i))
		sb.WriteString(",1\n")
	}

	resp, err := svc.Upload(context.Background(), strings.NewReader(sb.String()), int64(sb.Len()), "ds", "y")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if len(resp.Preview) != uploadPreviewRows {
		t.Errorf("Expected preview capped at %d rows, got %d", uploadPreviewRows, len(resp.Preview))
	}
}

func TestDataService_Upload_SameColumnRejected(t *testing.T) {
	svc, _ := newDataService(0)
	csv := "ds,y\n2024-01-01,1\n"

	_, err := svc.Upload(context.Background(), strings.NewReader(csv), int64(len(csv)), "ds", "DS")
	expectServiceError(t, err, CodeValidation, "Timestamp and target columns must be different.")
}

func TestDataService_Upload_SizeLimit(t *testing.T) {
	svc, _ := newDataService(10)
	csv := "ds,y\n2024-01-01,1\n2024-01-02,2\n"

	_, err := svc.Upload(context.Background(), strings.NewReader(csv), int64(len(csv)), "", "")
	expectServiceError(t, err, CodeValidation, "maximum size")
}

func TestDataService_Upload_InvalidCSV(t *testing.T) {
	svc, _ := newDataService(0)
	csv := "ds,y\n2024-01-01,1\n2024-01-01,2\n"

	_, err := svc.Upload(context.Background(), strings.NewReader(csv), int64(len(csv)), "", "")
	expectServiceError(t, err, CodeValidation, "duplicate timestamps")
}

func TestDataService_Resolve_ExactlyOneSource(t *testing.T) {
	svc, _ := newDataService(0)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, models.DataSource{})
	expectServiceError(t, err, CodeValidation, "exactly one of upload_id, dataset_id or records")

	_, err = svc.Resolve(ctx, models.DataSource{
		UploadID:  "a",
		DatasetID: "airpassengers",
	})
	expectServiceError(t, err, CodeValidation, "exactly one of upload_id, dataset_id or records")
}

func TestDataService_Resolve_Upload(t *testing.T) {
	svc, uploads := newDataService(0)
	ctx := context.Background()

	tbl, err := timeseries.FromRecords([]timeseries.Record{
		{DS: "2024-01-01", Y: 1},
		{DS: "2024-01-02", Y: 2},
	})
	if err != nil {
		t.Fatalf("FromRecords failed: %v", err)
	}
	if err := uploads.Put(ctx, "known", tbl); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := svc.Resolve(ctx, models.DataSource{UploadID: "known"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("Expected 2 rows, got %d", got.Len())
	}

	_, err = svc.Resolve(ctx, models.DataSource{UploadID: "missing"})
	expectServiceError(t, err, CodeNotFound, "Upload 'missing' was not found or expired.")
}

func TestDataService_Resolve_Dataset(t *testing.T) {
	svc, _ := newDataService(0)
	ctx := context.Background()

	got, err := svc.Resolve(ctx, models.DataSource{DatasetID: "airpassengers"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Len() != 144 {
		t.Errorf("Expected 144 rows, got %d", got.Len())
	}

	_, err = svc.Resolve(ctx, models.DataSource{DatasetID: "nope"})
	expectServiceError(t, err, CodeNotFound, "Dataset 'nope' was not found.")
}

func TestDataService_Resolve_Records(t *testing.T) {
	svc, _ := newDataService(0)
	ctx := context.Background()

	got, err := svc.Resolve(ctx, models.DataSource{Records: []timeseries.Record{
		{DS: "2024-01-02", Y: 2},
		{DS: "2024-01-01", Y: 1},
	}})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Values()[0] != 1 {
		t.Errorf("Expected records sorted by timestamp, got %v", got.Values())
	}

	_, err = svc.Resolve(ctx, models.DataSource{Records: []timeseries.Record{}})
	expectServiceError(t, err, CodeValidation, "records cannot be an empty list.")

	_, err = svc.Resolve(ctx, models.DataSource{Records: []timeseries.Record{
		{DS: "bad", Y: 1},
		{DS: "2024-01-01", Y: 2},
	}})
	expectServiceError(t, err, CodeValidation, "invalid or missing timestamps")
}

func TestDataService_GetDataset(t *testing.T) {
	svc, _ := newDataService(0)

	resp, err := svc.GetDataset("airpassengers")
	if err != nil {
		t.Fatalf("GetDataset failed: %v", err)
	}
	if resp.Dataset.ID != "airpassengers" || len(resp.Records) != 144 {
		t.Errorf("Unexpected response: id=%s records=%d", resp.Dataset.ID, len(resp.Records))
	}

	_, err = svc.GetDataset("nope")
	expectServiceError(t, err, CodeNotFound, "Dataset 'nope' was not found.")
}

func TestDataService_ListDatasets(t *testing.T) {
	svc, _ := newDataService(0)

	resp := svc.ListDatasets()
	if len(resp.Datasets) != 4 {
		t.Errorf("Expected 4 datasets, got %d", len(resp.Datasets))
	}
}
