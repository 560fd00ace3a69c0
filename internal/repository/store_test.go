package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/survey-scoring-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)

	store, err := NewStore(filepath.Join(t.TempDir(), "survey.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(patientID string) *domain.SurveyResult {
	score := 12
	return &domain.SurveyResult{
		PatientID:  patientID,
		SurveyType: "BDI",
		Responses: map[string]any{
			"q1": float64(2),
			"q2": "많이 힘듭니다",
		},
		Score:          &score,
		Interpretation: "가벼운 우울 - 가벼운 우울 상태입니다.",
		Category:       "가벼운 우울",
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result := sampleResult("patient-1")
	require.NoError(t, store.Save(ctx, result))
	require.NotEmpty(t, result.ID)
	require.False(t, result.CreatedAt.IsZero())

	loaded, err := store.GetByID(ctx, result.ID)
	require.NoError(t, err)

	assert.Equal(t, result.PatientID, loaded.PatientID)
	assert.Equal(t, result.SurveyType, loaded.SurveyType)
	require.NotNil(t, loaded.Score)
	assert.Equal(t, 12, *loaded.Score)
	assert.Equal(t, result.Category, loaded.Category)
	assert.Equal(t, result.Responses, loaded.Responses)
}

func TestStore_SavePreservesSubscores(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	score := 5
	result := &domain.SurveyResult{
		PatientID:  "patient-psqi",
		SurveyType: "PSQI",
		Responses:  map[string]any{"sleep_duration": float64(6)},
		Score:      &score,
		Subscores: map[string]int{
			"Sleep duration":           1,
			"Subjective sleep quality": 1,
		},
		Interpretation: "좋은 수면",
		Category:       "좋은 수면",
	}
	require.NoError(t, store.Save(ctx, result))

	loaded, err := store.GetByID(ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Subscores, loaded.Subscores)
}

func TestStore_SaveWithoutScore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result := &domain.SurveyResult{
		PatientID:      "patient-2",
		SurveyType:     "AUDIT",
		Responses:      map[string]any{"q1": float64(2)},
		Interpretation: "Gender is required for this assessment.",
	}
	require.NoError(t, store.Save(ctx, result))

	loaded, err := store.GetByID(ctx, result.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.Score)
	assert.Empty(t, loaded.Category)
}

func TestStore_GetByIDNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetByID(context.Background(), "missing-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListByPatient(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, store.Save(ctx, sampleResult("patient-a")))
	}
	require.NoError(t, store.Save(ctx, sampleResult("patient-b")))

	results, err := store.ListByPatient(ctx, "patient-a", 10, 0)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	limited, err := store.ListByPatient(ctx, "patient-a", 2, 0)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	empty, err := store.ListByPatient(ctx, "patient-c", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_CountAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result := sampleResult("patient-d")
	require.NoError(t, store.Save(ctx, result))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.Delete(ctx, result.ID))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	err = store.Delete(ctx, result.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Health(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Health(context.Background()))
}
