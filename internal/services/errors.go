// Package services provides the business logic layer between handlers and the
// forecast engine. Services validate requests, resolve data sources and
// orchestrate engine calls.
package services

// Service error codes mapped to HTTP statuses by the error middleware.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL_ERROR"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func validationError(message string) *ServiceError {
	return NewServiceError(CodeValidation, message)
}

func notFoundError(message string) *ServiceError {
	return NewServiceError(CodeNotFound, message)
}
