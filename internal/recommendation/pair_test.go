package recommendation

import (
	"context"
	"errors"
	"testing"

	"college-recommender/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistoryStore struct {
	history []models.Cutoff
	err     error
	calls   int
	minYear int
}

func (f *fakeHistoryStore) CutoffHistory(ctx context.Context, collegeID, courseID string, exam models.ExamType, category models.Category, minYear int) ([]models.Cutoff, error) {
	f.calls++
	f.minYear = minYear
	return f.history, f.err
}

func pairQuery() *PairQuery {
	return &PairQuery{
		CollegeID: "c1",
		CourseID:  "c1-cs",
		ExamType:  models.ExamTypeCET,
		Category:  models.CategoryOpen,
	}
}

func TestPredictPair_WithoutRank(t *testing.T) {
	store := &fakeHistoryStore{history: []models.Cutoff{
		cutoff(2024, intPtr(4000), intPtr(5000)),
		cutoff(2023, intPtr(3800), intPtr(6000)),
		cutoff(2022, intPtr(4200), intPtr(7000)),
	}}
	engine := newTestEngine(&fakeStore{}, Config{})

	prediction, err := engine.PredictPair(context.Background(), store, pairQuery())

	require.NoError(t, err)
	assert.Equal(t, 5333, prediction.PredictedCutoff.ClosingRank)
	assert.Len(t, prediction.HistoricalCutoffs, 3)
	assert.Nil(t, prediction.Chance)
	assert.Nil(t, prediction.EffectiveRank)
	assert.Equal(t, 2022, store.minYear)
}

func TestPredictPair_WithPercentile(t *testing.T) {
	store := &fakeHistoryStore{history: []models.Cutoff{cutoff(2024, intPtr(4000), intPtr(10000))}}
	engine := newTestEngine(&fakeStore{}, Config{})
	q := pairQuery()
	q.Percentile = floatPtr(99)

	prediction, err := engine.PredictPair(context.Background(), store, q)

	require.NoError(t, err)
	require.NotNil(t, prediction.Chance)
	assert.Equal(t, 4000, *prediction.EffectiveRank)
	assert.Equal(t, ChanceSafe, prediction.Chance.Category)
}

func TestPredictPair_EmptyHistory(t *testing.T) {
	engine := newTestEngine(&fakeStore{}, Config{})
	q := pairQuery()
	q.Rank = intPtr(5000)

	prediction, err := engine.PredictPair(context.Background(), &fakeHistoryStore{}, q)

	require.NoError(t, err)
	assert.Equal(t, PredictedCutoff{}, prediction.PredictedCutoff)
	assert.NotNil(t, prediction.HistoricalCutoffs)
	assert.Equal(t, AdmissionChance{Category: ChanceAspirational, Percentage: 20}, *prediction.Chance)
}

func TestPredictPair_Errors(t *testing.T) {
	engine := newTestEngine(&fakeStore{}, Config{})

	t.Run("invalid", func(t *testing.T) {
		store := &fakeHistoryStore{}
		q := pairQuery()
		q.CourseID = ""

		_, err := engine.PredictPair(context.Background(), store, q)

		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.EqualError(t, err, "College and course are required")
		assert.Equal(t, 0, store.calls)
	})

	t.Run("store", func(t *testing.T) {
		cause := errors.New("db down")
		_, err := engine.PredictPair(context.Background(), &fakeHistoryStore{err: cause}, pairQuery())

		assert.ErrorIs(t, err, ErrStoreFailure)
		assert.ErrorIs(t, err, cause)
	})
}
