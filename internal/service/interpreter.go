package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/survey-scoring-server/internal/criteria"
	"github.com/survey-scoring-server/internal/domain"
)

const (
	categoryNormal        = "정상"
	categoryConditionFail = "조건 불충족"

	descriptionBelowThreshold = "점수가 임계값 미만이므로 정상으로 간주됩니다."
)

// Interpreter walks an assessment's ordered rule list and classifies a
// total score. Data-quality failures come back as *domain.ScoringError so
// callers can persist raw responses without a score.
type Interpreter struct {
	criteria *criteria.Repository
	logger   *logrus.Logger
}

// NewInterpreter creates a new rule interpreter over the criteria table.
func NewInterpreter(repo *criteria.Repository, logger *logrus.Logger) *Interpreter {
	return &Interpreter{criteria: repo, logger: logger}
}

// Interpret classifies score against the named assessment's rules. Gender
// is required for gender-keyed assessments; conditions supply the
// auxiliary fields referenced by threshold rules. Rules are evaluated in
// table order and the first satisfying rule wins.
func (i *Interpreter) Interpret(name string, score int, gender string, conditions map[string]any) (*domain.Interpretation, error) {
	assessment, ok := i.criteria.Get(name)
	if !ok {
		return nil, domain.NewScoringError(domain.ErrUnknownAssessment,
			fmt.Sprintf("Assessment '%s' not found.", name))
	}

	rules := assessment.Criteria
	if assessment.HasGenderCriteria() {
		if gender == "" {
			return nil, domain.NewScoringError(domain.ErrMissingGender,
				"Gender is required for this assessment.")
		}
		genderRules, ok := assessment.CriteriaByGender[gender]
		if !ok {
			expected := strings.Join(quoteAll(i.criteria.GenderKeys(name)), " or ")
			return nil, domain.NewScoringError(domain.ErrInvalidGender,
				fmt.Sprintf("Invalid gender '%s'. Expected %s.", gender, expected))
		}
		rules = genderRules
	}

	for idx := range rules {
		rule := &rules[idx]

		if rule.IsRange() {
			if rule.MatchesRange(score) {
				return &domain.Interpretation{
					Category:    rule.Category,
					Description: rule.Description,
				}, nil
			}
			continue
		}

		if score < *rule.Threshold {
			continue
		}

		// Threshold hit. A carried condition requalifies the match; a
		// failed condition is terminal, never a fallthrough.
		if cond := rule.AdditionalCondition; cond != nil {
			if conditions == nil {
				return nil, domain.NewScoringError(domain.ErrMissingCondition,
					"Additional conditions required for this assessment.")
			}
			actual := conditions[cond.Field]
			if !conditionMet(actual, cond.Value) {
				return &domain.Interpretation{
					Category: categoryConditionFail,
					Description: fmt.Sprintf("%s 값이 '%s'이어야 하지만 '%v'입니다.",
						cond.Field, cond.Value, actual),
				}, nil
			}
		}

		return &domain.Interpretation{
			Category:    rule.Category,
			Description: rule.Description,
		}, nil
	}

	// Below every threshold implies the baseline class, but only for
	// threshold-style rule lists. A gap in a range-style list is a table
	// problem and stays an explicit error.
	if len(rules) > 0 && rules[0].IsThreshold() {
		return &domain.Interpretation{
			Category:    categoryNormal,
			Description: descriptionBelowThreshold,
		}, nil
	}

	i.logger.WithFields(logrus.Fields{
		"assessment": name,
		"score":      score,
	}).Warn("No matching criteria for score")

	return nil, domain.NewScoringError(domain.ErrNoMatchingCriteria,
		"No matching criteria found for the given score.")
}

func quoteAll(values []string) []string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return quoted
}
