package domain

// Assessment defines the scoring and interpretation rules for one clinical
// questionnaire. Exactly one of Criteria / CriteriaByGender is populated.
type Assessment struct {
	Name                string                 `json:"name"`
	Criteria            []Criterion            `json:"criteria,omitempty"`
	CriteriaByGender    map[string][]Criterion `json:"criteria_by_gender,omitempty"`
	ReverseScoringItems []int                  `json:"reverse_scoring_items,omitempty"`
	ScoringRange        []int                  `json:"scoring_range,omitempty"`
}

// HasGenderCriteria reports whether interpretation requires a gender key.
func (a *Assessment) HasGenderCriteria() bool {
	return len(a.CriteriaByGender) > 0
}

// ReverseItemSet returns the reverse-scored item positions as a set.
func (a *Assessment) ReverseItemSet() map[int]bool {
	if len(a.ReverseScoringItems) == 0 {
		return nil
	}
	set := make(map[int]bool, len(a.ReverseScoringItems))
	for _, item := range a.ReverseScoringItems {
		set[item] = true
	}
	return set
}

// Criterion is a single ordered interpretation rule. Range rules carry a
// two-element inclusive interval where a nil upper bound means unbounded
// above; threshold rules match when the total score reaches Threshold.
type Criterion struct {
	Range               []*int               `json:"range,omitempty"`
	Threshold           *int                 `json:"threshold,omitempty"`
	Category            string               `json:"category"`
	Description         string               `json:"description"`
	AdditionalCondition *AdditionalCondition `json:"additional_condition,omitempty"`
}

// IsRange reports whether this is a range rule.
func (c *Criterion) IsRange() bool {
	return len(c.Range) > 0
}

// IsThreshold reports whether this is a threshold rule.
func (c *Criterion) IsThreshold() bool {
	return c.Threshold != nil
}

// MatchesRange reports whether score falls inside the inclusive interval.
func (c *Criterion) MatchesRange(score int) bool {
	if len(c.Range) != 2 || c.Range[0] == nil {
		return false
	}
	if score < *c.Range[0] {
		return false
	}
	if c.Range[1] != nil && score > *c.Range[1] {
		return false
	}
	return true
}

// AdditionalCondition requalifies a threshold hit against a named
// boolean-like field in the auxiliary condition set.
type AdditionalCondition struct {
	Field       string `json:"field"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// CriteriaTable is the top-level shape of the scoring criteria artifact.
type CriteriaTable struct {
	Assessments []Assessment `json:"assessments"`
}
