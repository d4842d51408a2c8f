package services

import "testing"

func TestServiceError_Error(t *testing.T) {
	err := NewServiceError(CodeValidation, "horizon must be positive")
	if err.Error() != "horizon must be positive" {
		t.Errorf("Expected message, got %q", err.Error())
	}
	if err.Code != CodeValidation {
		t.Errorf("Expected code %q, got %q", CodeValidation, err.Code)
	}
}

func TestNewServiceErrorWithDetails(t *testing.T) {
	details := map[string]interface{}{"field": "horizon"}
	err := NewServiceErrorWithDetails(CodeNotFound, "not found", details)
	if err.Details["field"] != "horizon" {
		t.Errorf("Expected details to be kept, got %v", err.Details)
	}
}
