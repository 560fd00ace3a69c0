package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/survey-scoring-server/internal/criteria"
	"github.com/survey-scoring-server/internal/domain"
)

// ScoringService orchestrates the full scoring workflow: reduce raw
// responses to a total, classify the total against the criteria table,
// and assemble the uniform result envelope.
type ScoringService struct {
	criteria    *criteria.Repository
	interpreter *Interpreter
	logger      *logrus.Logger
}

// NewScoringService creates a new scoring service over the criteria table.
func NewScoringService(repo *criteria.Repository, logger *logrus.Logger) *ScoringService {
	return &ScoringService{
		criteria:    repo,
		interpreter: NewInterpreter(repo, logger),
		logger:      logger,
	}
}

// flatCalculators maps item-keyed instruments to their dedicated
// flat-sum calculators. Everything else in the criteria table goes
// through the generic recursive reducer.
var flatCalculators = map[string]func(map[string]any) int{
	"AUDIT": ScoreAUDIT,
	"BDI":   ScoreBDI,
	"BAI":   ScoreBAI,
	"K-MDQ": ScoreKMDQ,
}

// Score converts a raw survey submission into a result envelope. Scoring
// never panics on data-quality problems: malformed values degrade to 0
// and structural problems come back as a structured error inside the
// envelope.
func (s *ScoringService) Score(req *domain.ScoreRequest) *domain.ScoreResult {
	name := NormalizeSurveyType(req.SurveyType)

	log := s.logger.WithFields(logrus.Fields{
		"survey_type": name,
		"items":       len(req.Responses),
	})
	log.Debug("Scoring survey")

	// The PSQI derives its own components and classifies its own total;
	// it never consults the rule table.
	if name == "PSQI" {
		return s.scorePSQI(name, req.Responses)
	}

	total := s.computeTotal(name, req.Responses)

	interpretation, err := s.interpreter.Interpret(name, total, req.Gender, req.AdditionalConditions)
	if err != nil {
		scoringErr, ok := err.(*domain.ScoringError)
		if !ok {
			scoringErr = domain.NewScoringError(domain.ErrInternalServer, err.Error())
		}
		log.WithField("code", scoringErr.Code).Info("Scoring returned structured error")

		result := &domain.ScoreResult{
			ToolName:       name,
			Interpretation: scoringErr.Message,
			Error:          scoringErr.Message,
		}
		// Unknown assessments have no meaningful total; everything else
		// keeps the computed total so callers can persist it.
		if scoringErr.Code != domain.ErrUnknownAssessment {
			result.TotalScore = &total
		}
		return result
	}

	log.WithFields(logrus.Fields{
		"total_score": total,
		"category":    interpretation.Category,
	}).Info("Scored survey")

	return &domain.ScoreResult{
		ToolName:       name,
		TotalScore:     &total,
		Interpretation: fmt.Sprintf("%s - %s", interpretation.Category, interpretation.Description),
		Category:       interpretation.Category,
		Description:    interpretation.Description,
	}
}

func (s *ScoringService) scorePSQI(name string, responses map[string]any) *domain.ScoreResult {
	score := ScorePSQI(responses)
	category := score.Category()

	s.logger.WithFields(logrus.Fields{
		"survey_type": name,
		"total_score": score.Total,
		"category":    category,
	}).Info("Scored survey")

	total := score.Total
	return &domain.ScoreResult{
		ToolName:       name,
		TotalScore:     &total,
		Subscores:      score.Subscores,
		Interpretation: category,
		Category:       category,
	}
}

func (s *ScoringService) computeTotal(name string, responses map[string]any) int {
	if calculate, ok := flatCalculators[name]; ok {
		return calculate(responses)
	}

	// Generic path: recursive sum, with reverse-scored items reflected
	// first when the assessment defines them.
	if assessment, ok := s.criteria.Get(name); ok {
		if items := assessment.ReverseItemSet(); items != nil {
			return SumWithReverseScoring(responses, items,
				assessment.ScoringRange[0], assessment.ScoringRange[1])
		}
	}
	return SumResponses(responses)
}

// NormalizeSurveyType maps frontend survey type spellings onto criteria
// table names ("audit" -> "AUDIT", "k-mdq" -> "K-MDQ").
func NormalizeSurveyType(surveyType string) string {
	return strings.ToUpper(strings.TrimSpace(surveyType))
}
