package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Aggregate reporting over stored survey results. Queries run read-only
// against the result store's connection.

// Risk cutoffs per instrument: the first value flags moderate risk, the
// second flags high risk.
var riskThresholds = map[string][2]int{
	"AUDIT": {8, 16},
	"PSQI":  {6, 12},
	"BDI":   {14, 29},
	"BAI":   {16, 26},
	"K-MDQ": {7, 10},
}

// ScoreStatistics summarizes the score distribution for one instrument.
type ScoreStatistics struct {
	SurveyType string  `json:"survey_type"`
	Count      int     `json:"count"`
	Mean       float64 `json:"mean"`
	Min        int     `json:"min"`
	Max        int     `json:"max"`
	StdDev     float64 `json:"std_dev"`
}

// MonthlyTrend is the per-month submission volume and average score.
type MonthlyTrend struct {
	Month        string  `json:"month"`
	Count        int     `json:"count"`
	AverageScore float64 `json:"average_score"`
}

// RiskAssessment classifies the current patient population for one
// instrument from each patient's latest score.
type RiskAssessment struct {
	SurveyType   string `json:"survey_type"`
	Patients     int    `json:"patients"`
	HighRisk     int    `json:"high_risk"`
	ModerateRisk int    `json:"moderate_risk"`
	RiskLevel    string `json:"risk_level"`
}

// Service computes aggregate statistics over persisted survey results.
type Service struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewService creates an analytics service over the result store connection.
func NewService(db *sql.DB, logger *logrus.Logger) *Service {
	return &Service{db: db, log: logger}
}

// ScoreStatistics computes count, mean, min, max, and sample standard
// deviation for an instrument's scored submissions.
func (s *Service) ScoreStatistics(ctx context.Context, surveyType string) (*ScoreStatistics, error) {
	query := `
		SELECT score FROM survey_results
		WHERE survey_type = ? AND score IS NOT NULL`

	rows, err := s.db.QueryContext(ctx, query, surveyType)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"survey_type": surveyType,
			"error":       err,
		}).Error("Failed to query score statistics")
		return nil, fmt.Errorf("querying score statistics: %w", err)
	}
	defer rows.Close()

	var scores []int
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("scanning score row: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating score rows: %w", err)
	}

	stats := &ScoreStatistics{SurveyType: surveyType, Count: len(scores)}
	if len(scores) == 0 {
		return stats, nil
	}

	stats.Min = scores[0]
	stats.Max = scores[0]
	sum := 0
	for _, score := range scores {
		sum += score
		if score < stats.Min {
			stats.Min = score
		}
		if score > stats.Max {
			stats.Max = score
		}
	}
	stats.Mean = float64(sum) / float64(len(scores))

	if len(scores) > 1 {
		variance := 0.0
		for _, score := range scores {
			diff := float64(score) - stats.Mean
			variance += diff * diff
		}
		stats.StdDev = math.Sqrt(variance / float64(len(scores)-1))
	}

	return stats, nil
}

// MonthlyTrends returns submission volume and average score per calendar
// month for one instrument, oldest month first.
func (s *Service) MonthlyTrends(ctx context.Context, surveyType string) ([]MonthlyTrend, error) {
	query := `
		SELECT strftime('%Y-%m', created_at) AS month, COUNT(*), AVG(score)
		FROM survey_results
		WHERE survey_type = ? AND score IS NOT NULL
		GROUP BY month
		ORDER BY month`

	rows, err := s.db.QueryContext(ctx, query, surveyType)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"survey_type": surveyType,
			"error":       err,
		}).Error("Failed to query monthly trends")
		return nil, fmt.Errorf("querying monthly trends: %w", err)
	}
	defer rows.Close()

	var trends []MonthlyTrend
	for rows.Next() {
		var trend MonthlyTrend
		if err := rows.Scan(&trend.Month, &trend.Count, &trend.AverageScore); err != nil {
			return nil, fmt.Errorf("scanning trend row: %w", err)
		}
		trends = append(trends, trend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trend rows: %w", err)
	}
	return trends, nil
}

// PatientRiskAssessment classifies the patient population for one
// instrument. Each patient contributes their most recent score; high-risk
// patients count double toward the population risk ratio.
func (s *Service) PatientRiskAssessment(ctx context.Context, surveyType string) (*RiskAssessment, error) {
	query := `
		SELECT sr.patient_id, sr.score
		FROM survey_results sr
		WHERE sr.survey_type = ? AND sr.score IS NOT NULL
		AND sr.created_at = (
			SELECT MAX(created_at) FROM survey_results
			WHERE patient_id = sr.patient_id
			AND survey_type = sr.survey_type
			AND score IS NOT NULL
		)`

	rows, err := s.db.QueryContext(ctx, query, surveyType)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"survey_type": surveyType,
			"error":       err,
		}).Error("Failed to query patient risk")
		return nil, fmt.Errorf("querying patient risk: %w", err)
	}
	defer rows.Close()

	assessment := &RiskAssessment{SurveyType: surveyType, RiskLevel: "unknown"}
	thresholds, known := riskThresholds[surveyType]

	for rows.Next() {
		var patientID string
		var score int
		if err := rows.Scan(&patientID, &score); err != nil {
			return nil, fmt.Errorf("scanning risk row: %w", err)
		}
		assessment.Patients++

		if !known {
			continue
		}
		switch {
		case score >= thresholds[1]:
			assessment.HighRisk++
		case score >= thresholds[0]:
			assessment.ModerateRisk++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating risk rows: %w", err)
	}

	if !known || assessment.Patients == 0 {
		return assessment, nil
	}

	// High-risk patients weigh 2, moderate 1, against a max of 2 per
	// patient.
	ratio := float64(2*assessment.HighRisk+assessment.ModerateRisk) /
		float64(2*assessment.Patients)
	switch {
	case ratio >= 0.5:
		assessment.RiskLevel = "high"
	case ratio >= 0.25:
		assessment.RiskLevel = "moderate"
	default:
		assessment.RiskLevel = "low"
	}

	return assessment, nil
}
