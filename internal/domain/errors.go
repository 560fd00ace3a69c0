package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is the sentinel for missing persisted records.
var ErrNotFound = errors.New("resource not found")

// Error codes for different failure scenarios
const (
	ErrUnknownAssessment  = "UNKNOWN_ASSESSMENT"
	ErrMissingGender      = "MISSING_GENDER"
	ErrInvalidGender      = "INVALID_GENDER"
	ErrMissingCondition   = "MISSING_CONDITION"
	ErrNoMatchingCriteria = "NO_MATCHING_CRITERIA"
	ErrConfiguration      = "CONFIGURATION_ERROR"
	ErrInvalidInput       = "INVALID_INPUT"
	ErrResourceNotFound   = "NOT_FOUND"
	ErrDatabaseError      = "DATABASE_ERROR"
	ErrReportGeneration   = "REPORT_GENERATION_ERROR"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
)

// ScoringError is a structured, per-request scoring failure. It is returned
// inside result envelopes rather than raised, so callers can still persist
// raw responses without a score.
type ScoringError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ScoringError) Error() string {
	return e.Message
}

// NewScoringError creates a new ScoringError
func NewScoringError(code, message string) *ScoringError {
	return &ScoringError{Code: code, Message: message}
}

// APIError is the standardized HTTP error response body.
type APIError struct {
	Code          string    `json:"code"`
	Message       string    `json:"message"`
	Details       string    `json:"details,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, correlationID string) *APIError {
	return &APIError{
		Code:          code,
		Message:       message,
		Details:       details,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
	}
}
