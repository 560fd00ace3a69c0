package domain

import (
	"testing"
	"time"
)

func TestScoringError(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		message string
	}{
		{
			name:    "Unknown assessment",
			code:    ErrUnknownAssessment,
			message: "Assessment 'XYZ' not found.",
		},
		{
			name:    "Missing gender",
			code:    ErrMissingGender,
			message: "Gender is required for this assessment.",
		},
		{
			name:    "Missing condition",
			code:    ErrMissingCondition,
			message: "Additional conditions required for this assessment.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewScoringError(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, err.Code)
			}

			if err.Error() != tt.message {
				t.Errorf("Expected message %s, got %s", tt.message, err.Error())
			}
		})
	}
}

func TestAPIError(t *testing.T) {
	before := time.Now().UTC()
	err := NewAPIError(ErrInvalidInput, "survey_type is required", "empty request body", "corr-123")

	if err.Code != ErrInvalidInput {
		t.Errorf("Expected code %s, got %s", ErrInvalidInput, err.Code)
	}

	if err.CorrelationID != "corr-123" {
		t.Errorf("Expected correlation ID corr-123, got %s", err.CorrelationID)
	}

	if err.Timestamp.Before(before) {
		t.Error("Expected timestamp to be set")
	}

	expected := "INVALID_INPUT: survey_type is required"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}

func TestCriterionMatchesRange(t *testing.T) {
	low := 10
	high := 19

	tests := []struct {
		name     string
		criteria Criterion
		score    int
		want     bool
	}{
		{"below lower bound", Criterion{Range: []*int{&low, &high}}, 9, false},
		{"at lower bound", Criterion{Range: []*int{&low, &high}}, 10, true},
		{"at upper bound", Criterion{Range: []*int{&low, &high}}, 19, true},
		{"above upper bound", Criterion{Range: []*int{&low, &high}}, 20, false},
		{"open upper bound", Criterion{Range: []*int{&low, nil}}, 1000, true},
		{"open upper bound below", Criterion{Range: []*int{&low, nil}}, 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.criteria.MatchesRange(tt.score); got != tt.want {
				t.Errorf("MatchesRange(%d) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}
