package criteria

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/survey-scoring-server/internal/domain"
)

//go:embed scoring_criteria.json
var embeddedCriteria []byte

// Repository exposes the immutable per-assessment scoring rule table.
// It is loaded once at process start and is safe for concurrent reads.
type Repository struct {
	byName map[string]*domain.Assessment
	names  []string
}

// Load builds a Repository from the criteria artifact at path. An empty
// path selects the embedded default table. A missing or malformed table
// is a fatal configuration error, not a per-request concern.
func Load(path string, logger *logrus.Logger) (*Repository, error) {
	data := embeddedCriteria
	source := "embedded"

	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read criteria file %s: %w", domain.ErrConfiguration, path, err)
		}
		data = fileData
		source = path
	}

	var table domain.CriteriaTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%s: failed to parse criteria table: %w", domain.ErrConfiguration, err)
	}

	repo := &Repository{byName: make(map[string]*domain.Assessment, len(table.Assessments))}
	for i := range table.Assessments {
		a := &table.Assessments[i]
		if err := validateAssessment(a); err != nil {
			return nil, fmt.Errorf("%s: assessment %q: %w", domain.ErrConfiguration, a.Name, err)
		}
		if _, exists := repo.byName[a.Name]; exists {
			return nil, fmt.Errorf("%s: duplicate assessment %q", domain.ErrConfiguration, a.Name)
		}
		repo.byName[a.Name] = a
		repo.names = append(repo.names, a.Name)
	}
	sort.Strings(repo.names)

	logger.WithFields(logrus.Fields{
		"source":      source,
		"assessments": len(repo.names),
	}).Info("Loaded scoring criteria table")

	return repo, nil
}

// Get returns the assessment definition for name.
func (r *Repository) Get(name string) (*domain.Assessment, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Names returns all assessment names in sorted order.
func (r *Repository) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// GenderKeys returns the sorted gender keys for a gender-keyed assessment.
func (r *Repository) GenderKeys(name string) []string {
	a, ok := r.byName[name]
	if !ok || !a.HasGenderCriteria() {
		return nil
	}
	keys := make([]string, 0, len(a.CriteriaByGender))
	for k := range a.CriteriaByGender {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func validateAssessment(a *domain.Assessment) error {
	if a.Name == "" {
		return fmt.Errorf("name is required")
	}

	hasPlain := len(a.Criteria) > 0
	hasGender := len(a.CriteriaByGender) > 0
	if hasPlain == hasGender {
		return fmt.Errorf("exactly one of criteria / criteria_by_gender must be present")
	}

	lists := [][]domain.Criterion{a.Criteria}
	if hasGender {
		lists = lists[:0]
		for _, rules := range a.CriteriaByGender {
			lists = append(lists, rules)
		}
	}
	for _, rules := range lists {
		for i, c := range rules {
			if err := validateCriterion(&c); err != nil {
				return fmt.Errorf("criterion %d: %w", i, err)
			}
		}
	}

	if len(a.ReverseScoringItems) > 0 && len(a.ScoringRange) != 2 {
		return fmt.Errorf("reverse_scoring_items requires a two-element scoring_range")
	}
	return nil
}

func validateCriterion(c *domain.Criterion) error {
	if c.IsRange() == c.IsThreshold() {
		return fmt.Errorf("exactly one of range / threshold must be present")
	}
	if c.IsRange() {
		if len(c.Range) != 2 {
			return fmt.Errorf("range must have exactly two elements")
		}
		if c.Range[0] == nil {
			return fmt.Errorf("range lower bound must not be null")
		}
	}
	if c.AdditionalCondition != nil {
		if !c.IsThreshold() {
			return fmt.Errorf("additional_condition is only valid on threshold rules")
		}
		if c.AdditionalCondition.Field == "" {
			return fmt.Errorf("additional_condition field is required")
		}
	}
	if c.Category == "" {
		return fmt.Errorf("category is required")
	}
	return nil
}
