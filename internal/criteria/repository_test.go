package criteria

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func TestLoad_Embedded(t *testing.T) {
	repo, err := Load("", testLogger())
	require.NoError(t, err)

	names := repo.Names()
	assert.Contains(t, names, "BDI")
	assert.Contains(t, names, "BAI")
	assert.Contains(t, names, "AUDIT")
	assert.Contains(t, names, "K-MDQ")
	assert.Contains(t, names, "OCI-R")
	assert.Contains(t, names, "GDS")
	assert.Contains(t, names, "GDS-SF")
}

func TestLoad_FileOverride(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "criteria.json")

	table := `{"assessments": [
		{"name": "PHQ-9", "criteria": [
			{"range": [0, 4], "category": "정상", "description": "정상 범위입니다."},
			{"range": [5, null], "category": "우울 의심", "description": "우울이 의심됩니다."}
		]}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(table), 0644))

	repo, err := Load(path, testLogger())
	require.NoError(t, err)

	a, ok := repo.Get("PHQ-9")
	require.True(t, ok)
	assert.Len(t, a.Criteria, 2)
	assert.Nil(t, a.Criteria[1].Range[1], "open upper bound should decode as nil")

	_, ok = repo.Get("BDI")
	assert.False(t, ok, "file override should replace the embedded table")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/criteria.json", testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIGURATION_ERROR")
}

func TestLoad_MalformedJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{ not json"), 0644))

	_, err := Load(path, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIGURATION_ERROR")
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		table string
	}{
		{
			name:  "both criteria kinds",
			table: `{"assessments": [{"name": "X", "criteria": [{"range": [0, 1], "category": "a", "description": "b"}], "criteria_by_gender": {"남": [{"range": [0, 1], "category": "a", "description": "b"}]}}]}`,
		},
		{
			name:  "neither criteria kind",
			table: `{"assessments": [{"name": "X"}]}`,
		},
		{
			name:  "range and threshold on one rule",
			table: `{"assessments": [{"name": "X", "criteria": [{"range": [0, 1], "threshold": 2, "category": "a", "description": "b"}]}]}`,
		},
		{
			name:  "null lower bound",
			table: `{"assessments": [{"name": "X", "criteria": [{"range": [null, 9], "category": "a", "description": "b"}]}]}`,
		},
		{
			name:  "condition on range rule",
			table: `{"assessments": [{"name": "X", "criteria": [{"range": [0, 9], "category": "a", "description": "b", "additional_condition": {"field": "f", "value": "v"}}]}]}`,
		},
		{
			name:  "reverse items without scoring range",
			table: `{"assessments": [{"name": "X", "reverse_scoring_items": [1], "criteria": [{"range": [0, 9], "category": "a", "description": "b"}]}]}`,
		},
		{
			name:  "duplicate assessment",
			table: `{"assessments": [{"name": "X", "criteria": [{"range": [0, 9], "category": "a", "description": "b"}]}, {"name": "X", "criteria": [{"range": [0, 9], "category": "a", "description": "b"}]}]}`,
		},
	}

	tmpDir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "table.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.table), 0644))

			_, err := Load(path, testLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "CONFIGURATION_ERROR")
		})
	}
}

func TestGenderKeys(t *testing.T) {
	repo, err := Load("", testLogger())
	require.NoError(t, err)

	keys := repo.GenderKeys("AUDIT")
	assert.Equal(t, []string{"남", "여"}, keys)

	assert.Nil(t, repo.GenderKeys("BDI"))
	assert.Nil(t, repo.GenderKeys("UNKNOWN"))
}
