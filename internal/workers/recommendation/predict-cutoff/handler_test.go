package predictcutoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/validation"
	"college-recommender/internal/recommendation"
	"college-recommender/internal/store"
	"college-recommender/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

const historyQuery = `FROM cutoffs\s+WHERE college_id = \$1 AND course_id = \$2 AND exam_type = \$3 AND category = \$4 AND year >= \$5`

var historyColumns = []string{
	"id", "college_id", "course_id", "year", "round", "exam_type", "category",
	"opening_rank", "closing_rank", "opening_percentile", "closing_percentile",
}

func createTestHandler(t *testing.T, withValidator bool) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := LoadConfig()
	cfg.Timeout = 5 * time.Second
	cfg.Now = func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }

	var validator *validation.SchemaValidator
	if withValidator {
		reg, err := registry.LoadRegistry("../../../../configs/activity-registry.json")
		require.NoError(t, err)
		validator, err = validation.NewSchemaValidator(reg)
		require.NoError(t, err)
	}

	return NewHandler(cfg, store.NewPostgresStore(db), validator, logger.NewTestLogger(t)), mock
}

func intPtr(v int) *int { return &v }

func validInput() *Input {
	return &Input{
		CollegeID: "c1",
		CourseID:  "co1",
		ExamType:  "CET",
		Category:  "OPEN",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	handler, mock := createTestHandler(t, false)
	mock.ExpectQuery(historyQuery).
		WithArgs("c1", "co1", "CET", "OPEN", 2022).
		WillReturnRows(sqlmock.NewRows(historyColumns).
			AddRow("cu1", "c1", "co1", int64(2024), int64(1), "CET", "OPEN", int64(4000), int64(5000), nil, nil).
			AddRow("cu2", "c1", "co1", int64(2023), int64(1), "CET", "OPEN", int64(3800), int64(6000), nil, nil).
			AddRow("cu3", "c1", "co1", int64(2022), int64(1), "CET", "OPEN", int64(4200), int64(7000), nil, nil))

	input := validInput()
	input.Rank = intPtr(5000)

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, recommendation.PredictedCutoff{OpeningRank: 3333, ClosingRank: 5333, Confidence: 86}, output.PredictedCutoff)
	assert.Len(t, output.HistoricalCutoffs, 3)
	assert.Equal(t, 5000, *output.EffectiveRank)
	assert.Equal(t, recommendation.ChanceBorderline, output.AdmissionChance)
	require.NotNil(t, output.ChancePercentage)
	assert.Equal(t, 64, *output.ChancePercentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoRankSkipsChance(t *testing.T) {
	handler, mock := createTestHandler(t, false)
	mock.ExpectQuery(historyQuery).
		WillReturnRows(sqlmock.NewRows(historyColumns))

	output, err := handler.Execute(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, recommendation.PredictedCutoff{}, output.PredictedCutoff)
	assert.NotNil(t, output.HistoricalCutoffs)
	assert.Empty(t, output.AdmissionChance)
	assert.Nil(t, output.ChancePercentage)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(in *Input)
		mock     func(mock sqlmock.Sqlmock)
		wantCode apperrors.ErrorCode
		wantMsg  string
	}{
		{
			name:     "missing course",
			mutate:   func(in *Input) { in.CourseID = "" },
			wantCode: apperrors.ErrCodeInvalidInput,
			wantMsg:  "College and course are required",
		},
		{
			name:     "unknown category",
			mutate:   func(in *Input) { in.Category = "GENERAL" },
			wantCode: apperrors.ErrCodeInvalidInput,
			wantMsg:  `Unsupported category "GENERAL"`,
		},
		{
			name: "query failure",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(historyQuery).WillReturnError(errors.New("relation does not exist"))
			},
			wantCode: apperrors.ErrCodeStoreQueryFailed,
			wantMsg:  "College store query failed",
		},
		{
			name: "query timeout",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(historyQuery).WillReturnError(context.DeadlineExceeded)
			},
			wantCode: apperrors.ErrCodeStoreTimeout,
			wantMsg:  "College store query timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mock := createTestHandler(t, false)
			if tt.mock != nil {
				tt.mock(mock)
			}
			input := validInput()
			if tt.mutate != nil {
				tt.mutate(input)
			}

			output, err := handler.Execute(context.Background(), input)

			assert.Nil(t, output)
			var stdErr *apperrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantMsg, stdErr.Message)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Run_SchemaRejectsMissingFields(t *testing.T) {
	handler, mock := createTestHandler(t, true)
	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7, Variables: `{"collegeId":"c1","examType":"CET","category":"OPEN"}`}}

	_, err := handler.run(context.Background(), job)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code)
	assert.Contains(t, stdErr.Message, "courseId")
	assert.NoError(t, mock.ExpectationsWereMet())
}
