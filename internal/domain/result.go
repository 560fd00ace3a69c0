package domain

import "time"

// ScoreRequest is the input contract for a single scoring invocation.
type ScoreRequest struct {
	SurveyType           string         `json:"survey_type"`
	Responses            map[string]any `json:"responses"`
	Gender               string         `json:"gender,omitempty"`
	AdditionalConditions map[string]any `json:"additional_conditions,omitempty"`
}

// Interpretation is the outcome of walking an assessment's rule list.
type Interpretation struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ScoreResult is the uniform envelope handed to report generation and
// persistence. When scoring fails for a data-level reason, Error carries
// the structured message and Category/Description stay empty.
type ScoreResult struct {
	ToolName       string         `json:"tool_name"`
	TotalScore     *int           `json:"total_score"`
	Subscores      map[string]int `json:"subscores,omitempty"`
	Interpretation string         `json:"interpretation"`
	Category       string         `json:"category,omitempty"`
	Description    string         `json:"description,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// HasError reports whether the envelope carries a structured scoring error.
func (r *ScoreResult) HasError() bool {
	return r.Error != ""
}

// SurveyResult is a persisted scoring outcome for a patient submission.
// Responses and Subscores are stored as JSON documents so new instruments
// never need schema changes.
type SurveyResult struct {
	ID             string         `json:"id"`
	PatientID      string         `json:"patient_id"`
	SurveyType     string         `json:"survey_type"`
	Responses      map[string]any `json:"responses"`
	Score          *int           `json:"score"`
	Subscores      map[string]int `json:"subscores,omitempty"`
	Interpretation string         `json:"interpretation"`
	Category       string         `json:"category,omitempty"`
	Summary        string         `json:"summary,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// SurveySubmission is a survey payload submitted on behalf of a patient.
type SurveySubmission struct {
	PatientID            string         `json:"patient_id"`
	SurveyType           string         `json:"survey_type"`
	Responses            map[string]any `json:"responses"`
	Gender               string         `json:"gender,omitempty"`
	AdditionalConditions map[string]any `json:"additional_conditions,omitempty"`
}
