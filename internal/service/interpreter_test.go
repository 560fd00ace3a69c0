package service

import (
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/survey-scoring-server/internal/criteria"
	"github.com/survey-scoring-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func newTestInterpreter(t *testing.T) *Interpreter {
	t.Helper()
	repo, err := criteria.Load("", testLogger())
	require.NoError(t, err)
	return NewInterpreter(repo, testLogger())
}

func TestInterpret_BDIRanges(t *testing.T) {
	interp := newTestInterpreter(t)

	tests := []struct {
		score    int
		category string
	}{
		{0, "정상"},
		{5, "정상"},
		{9, "정상"},
		{10, "가벼운 우울"},
		{12, "가벼운 우울"},
		{15, "가벼운 우울"},
		{16, "중등도 우울"},
		{20, "중등도 우울"},
		{25, "중등도 우울"},
		{26, "심한 우울"},
		{30, "심한 우울"},
		{63, "심한 우울"},
	}

	for _, tt := range tests {
		result, err := interp.Interpret("BDI", tt.score, "", nil)
		require.NoError(t, err, "score %d", tt.score)
		assert.Equal(t, tt.category, result.Category, "score %d", tt.score)
		assert.NotEmpty(t, result.Description)
	}
}

func TestInterpret_Determinism(t *testing.T) {
	interp := newTestInterpreter(t)

	first, err := interp.Interpret("BDI", 12, "", nil)
	require.NoError(t, err)
	second, err := interp.Interpret("BDI", 12, "", nil)
	require.NoError(t, err)

	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, first.Description, second.Description)
}

func TestInterpret_AUDITGenderBoundaries(t *testing.T) {
	interp := newTestInterpreter(t)

	tests := []struct {
		gender   string
		score    int
		category string
	}{
		{"남", 9, "정상음주"},
		{"남", 10, "위험음주"},
		{"남", 19, "위험음주"},
		{"남", 20, "알코올사용장애"},
		{"남", 200, "알코올사용장애"},
		{"여", 3, "정상음주"},
		{"여", 5, "정상음주"},
		{"여", 6, "위험음주"},
		{"여", 9, "위험음주"},
		{"여", 10, "알코올사용장애"},
	}

	for _, tt := range tests {
		result, err := interp.Interpret("AUDIT", tt.score, tt.gender, nil)
		require.NoError(t, err, "gender %s score %d", tt.gender, tt.score)
		assert.Equal(t, tt.category, result.Category, "gender %s score %d", tt.gender, tt.score)
	}
}

func TestInterpret_AUDITMissingGender(t *testing.T) {
	interp := newTestInterpreter(t)

	_, err := interp.Interpret("AUDIT", 10, "", nil)
	require.Error(t, err)

	var scoringErr *domain.ScoringError
	require.ErrorAs(t, err, &scoringErr)
	assert.Equal(t, domain.ErrMissingGender, scoringErr.Code)
	assert.Contains(t, strings.ToLower(scoringErr.Message), "gender")
}

func TestInterpret_AUDITInvalidGender(t *testing.T) {
	interp := newTestInterpreter(t)

	_, err := interp.Interpret("AUDIT", 10, "기타", nil)
	require.Error(t, err)

	var scoringErr *domain.ScoringError
	require.ErrorAs(t, err, &scoringErr)
	assert.Equal(t, domain.ErrInvalidGender, scoringErr.Code)
	assert.Contains(t, scoringErr.Message, "'기타'")
	assert.Contains(t, scoringErr.Message, "'남' or '여'")
}

func TestInterpret_KMDQThresholdWithCondition(t *testing.T) {
	interp := newTestInterpreter(t)

	// Threshold hit with matching condition.
	result, err := interp.Interpret("K-MDQ", 8, "", map[string]any{"simultaneity": "예"})
	require.NoError(t, err)
	assert.Equal(t, "조울증 의심", result.Category)

	// Threshold hit with failing condition is terminal, not a fallthrough.
	result, err = interp.Interpret("K-MDQ", 8, "", map[string]any{"simultaneity": "아니오"})
	require.NoError(t, err)
	assert.Equal(t, "조건 불충족", result.Category)
	assert.Contains(t, result.Description, "simultaneity 값이")
	assert.Contains(t, result.Description, "'예'")

	// Threshold hit with no conditions supplied.
	_, err = interp.Interpret("K-MDQ", 8, "", nil)
	require.Error(t, err)
	var scoringErr *domain.ScoringError
	require.ErrorAs(t, err, &scoringErr)
	assert.Equal(t, domain.ErrMissingCondition, scoringErr.Code)
}

func TestInterpret_ThresholdBelowDefaultsToNormal(t *testing.T) {
	interp := newTestInterpreter(t)

	result, err := interp.Interpret("K-MDQ", 5, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "정상", result.Category)
	assert.Contains(t, result.Description, "임계값 미만")

	result, err = interp.Interpret("OCI-R", 15, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "정상", result.Category)
}

func TestInterpret_OCIRThreshold(t *testing.T) {
	interp := newTestInterpreter(t)

	result, err := interp.Interpret("OCI-R", 25, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "유의한 강박장애", result.Category)

	result, err = interp.Interpret("OCI-R", 21, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "유의한 강박장애", result.Category, "threshold is inclusive")
}

func TestInterpret_UnknownAssessment(t *testing.T) {
	interp := newTestInterpreter(t)

	_, err := interp.Interpret("UNKNOWN_SCALE", 10, "", nil)
	require.Error(t, err)

	var scoringErr *domain.ScoringError
	require.ErrorAs(t, err, &scoringErr)
	assert.Equal(t, domain.ErrUnknownAssessment, scoringErr.Code)
	assert.Contains(t, scoringErr.Message, "not found")
}

func TestInterpret_RangeGapStaysError(t *testing.T) {
	table := `{"assessments": [
		{"name": "GAPPED", "criteria": [
			{"range": [10, 19], "category": "a", "description": "b"}
		]}
	]}`
	path := writeTempCriteria(t, table)
	repo, err := criteria.Load(path, testLogger())
	require.NoError(t, err)

	interp := NewInterpreter(repo, testLogger())
	_, err = interp.Interpret("GAPPED", 5, "", nil)
	require.Error(t, err)

	var scoringErr *domain.ScoringError
	require.ErrorAs(t, err, &scoringErr)
	assert.Equal(t, domain.ErrNoMatchingCriteria, scoringErr.Code)
}

func writeTempCriteria(t *testing.T, table string) string {
	t.Helper()
	path := t.TempDir() + "/criteria.json"
	require.NoError(t, os.WriteFile(path, []byte(table), 0644))
	return path
}
