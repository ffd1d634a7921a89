package importcutoffs

import (
	"context"
	"errors"
	"strings"
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
	"college-recommender/internal/store"
	"college-recommender/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

const header = "collegeCode,branchCode,year,round,examType,category,openingRank,closingRank,openingPercentile,closingPercentile"

type stubCache struct {
	calls int
	err   error
}

func (s *stubCache) Invalidate(ctx context.Context) (int, error) {
	s.calls++
	return 3, s.err
}

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.Timeout = time.Second
	return cfg
}

func newWriter(t *testing.T) (*store.PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.NewPostgresStore(db), mock
}

func csvOf(lines ...string) string {
	return strings.Join(append([]string{header}, lines...), "\n") + "\n"
}

func expectCollege(mock sqlmock.Sqlmock, code, id string) {
	rows := sqlmock.NewRows([]string{"id"})
	if id != "" {
		rows.AddRow(id)
	}
	mock.ExpectQuery(`SELECT id FROM colleges WHERE code = \$1`).WithArgs(code).WillReturnRows(rows)
}

func expectCourse(mock sqlmock.Sqlmock, collegeID, branch, id string) {
	rows := sqlmock.NewRows([]string{"id"})
	if id != "" {
		rows.AddRow(id)
	}
	mock.ExpectQuery(`SELECT id FROM courses WHERE college_id = \$1 AND branch_code = \$2`).
		WithArgs(collegeID, branch).WillReturnRows(rows)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ImportsAndSkipsRows(t *testing.T) {
	writer, mock := newWriter(t)

	expectCollege(mock, "3012", "c1")
	expectCourse(mock, "c1", "CS", "k1")
	mock.ExpectExec(`INSERT INTO cutoffs`).
		WithArgs(sqlmock.AnyArg(), "c1", "k1", 2024, 1, "CET", "OPEN",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectCollege(mock, "9999", "")

	expectCollege(mock, "3012", "c1")
	expectCourse(mock, "c1", "IT", "k2")
	mock.ExpectExec(`INSERT INTO cutoffs`).
		WithArgs(sqlmock.AnyArg(), "c1", "k2", 2023, 2, "CET", "OBC",
			nil, sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cache := &stubCache{}
	handler := NewHandler(createTestConfig(), writer, cache, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{CSV: csvOf(
		"3012,CS,2024,1,CET,OPEN,100,5000,99.1,95.5",
		"9999,CS,2024,1,CET,OPEN,100,5000,,",
		"3012,CS,abc,1,CET,OPEN,100,5000,,",
		"3012,IT,2023,2,cet,obc,,6000,,",
	)})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Imported)
	assert.Equal(t, 2, output.Skipped)
	assert.Equal(t, "Imported 2 cutoffs, skipped 2", output.Message)
	assert.NotEmpty(t, output.BatchID)
	require.Len(t, output.Errors, 2)
	assert.Contains(t, output.Errors[0], "line 3: college not found")
	assert.Equal(t, `line 4: invalid year "abc"`, output.Errors[1])
	assert.Equal(t, 1, cache.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ColumnOrderIsFree(t *testing.T) {
	writer, mock := newWriter(t)
	expectCollege(mock, "3012", "c1")
	expectCourse(mock, "c1", "CS", "k1")
	mock.ExpectExec(`INSERT INTO cutoffs`).WillReturnResult(sqlmock.NewResult(0, 1))

	handler := NewHandler(createTestConfig(), writer, nil, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{CSV: "\ufeffyear, round, collegeCode, branchCode, examType, category, closingRank, openingRank, closingPercentile, openingPercentile\n" +
		"2024, 1, 3012, CS, JEE, EWS, 9000, 7000, , \n"})

	require.NoError(t, err)
	assert.Equal(t, 1, output.Imported)
	assert.Equal(t, 0, output.Skipped)
	assert.Empty(t, output.Errors)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_RowFailures(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		setup   func(mock sqlmock.Sqlmock)
		wantErr string
	}{
		{
			name:    "unknown exam",
			row:     "3012,CS,2024,1,NEET,OPEN,,5000,,",
			wantErr: `unsupported exam type "NEET"`,
		},
		{
			name:    "unknown category",
			row:     "3012,CS,2024,1,CET,GENERAL,,5000,,",
			wantErr: `unsupported category "GENERAL"`,
		},
		{
			name:    "bad rank",
			row:     "3012,CS,2024,1,CET,OPEN,,5k,,",
			wantErr: `invalid closingRank "5k"`,
		},
		{
			name:    "bad percentile",
			row:     "3012,CS,2024,1,CET,OPEN,,5000,,high",
			wantErr: `invalid closingPercentile "high"`,
		},
		{
			name:    "negative rank",
			row:     "3012,CS,2024,1,CET,OPEN,,-5,,",
			wantErr: "closingRank: must be no less than 1",
		},
		{
			name:    "percentile above range",
			row:     "3012,CS,2024,1,CET,OPEN,,,,120",
			wantErr: "closingPercentile: must be no greater than 100",
		},
		{
			name:    "round zero",
			row:     "3012,CS,2024,0,CET,OPEN,,5000,,",
			wantErr: "round: cannot be blank",
		},
		{
			name:    "short row",
			row:     "3012,CS",
			wantErr: `invalid year ""`,
		},
		{
			name:    "missing branch",
			row:     "3012,,2024,1,CET,OPEN,,5000,,",
			wantErr: "collegeCode and branchCode are required",
		},
		{
			name: "unknown course",
			row:  "3012,XX,2024,1,CET,OPEN,,5000,,",
			setup: func(mock sqlmock.Sqlmock) {
				expectCollege(mock, "3012", "c1")
				expectCourse(mock, "c1", "XX", "")
			},
			wantErr: "course not found",
		},
		{
			name: "write fails",
			row:  "3012,CS,2024,1,CET,OPEN,,5000,,",
			setup: func(mock sqlmock.Sqlmock) {
				expectCollege(mock, "3012", "c1")
				expectCourse(mock, "c1", "CS", "k1")
				mock.ExpectExec(`INSERT INTO cutoffs`).WillReturnError(errors.New("deadlock detected"))
			},
			wantErr: "deadlock detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer, mock := newWriter(t)
			if tt.setup != nil {
				tt.setup(mock)
			}
			cache := &stubCache{}
			handler := NewHandler(createTestConfig(), writer, cache, nil, logger.NewTestLogger(t))

			output, err := handler.Execute(context.Background(), &Input{CSV: csvOf(tt.row)})

			require.NoError(t, err)
			assert.Equal(t, 0, output.Imported)
			assert.Equal(t, 1, output.Skipped)
			assert.Equal(t, "Imported 0 cutoffs, skipped 1", output.Message)
			require.Len(t, output.Errors, 1)
			assert.Contains(t, output.Errors[0], tt.wantErr)
			assert.Equal(t, 0, cache.calls)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_ReportedErrorsAreCapped(t *testing.T) {
	writer, _ := newWriter(t)
	cfg := createTestConfig()
	cfg.MaxReportedErrors = 2
	handler := NewHandler(cfg, writer, nil, nil, logger.NewTestLogger(t))

	bad := "3012,CS,2024,1,CET,NOPE,,5000,,"
	output, err := handler.Execute(context.Background(), &Input{CSV: csvOf(bad, bad, bad, bad)})

	require.NoError(t, err)
	assert.Equal(t, 4, output.Skipped)
	assert.Len(t, output.Errors, 2)
}

func TestHandler_Execute_CacheFailureDoesNotFailImport(t *testing.T) {
	writer, mock := newWriter(t)
	expectCollege(mock, "3012", "c1")
	expectCourse(mock, "c1", "CS", "k1")
	mock.ExpectExec(`INSERT INTO cutoffs`).WillReturnResult(sqlmock.NewResult(0, 1))

	cache := &stubCache{err: errors.New("redis: connection refused")}
	handler := NewHandler(createTestConfig(), writer, cache, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{CSV: csvOf("3012,CS,2024,1,CET,OPEN,,5000,,")})

	require.NoError(t, err)
	assert.Equal(t, 1, output.Imported)
	assert.Equal(t, 1, cache.calls)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_RejectsFile(t *testing.T) {
	tests := []struct {
		name       string
		csv        string
		wantDetail string
	}{
		{"empty", "", "file is empty"},
		{"missing columns", "collegeCode,branchCode,year\n3012,CS,2024\n", "missing columns: round, examType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer, mock := newWriter(t)
			handler := NewHandler(createTestConfig(), writer, nil, nil, logger.NewTestLogger(t))

			output, err := handler.Execute(context.Background(), &Input{CSV: tt.csv})

			require.Error(t, err)
			assert.Nil(t, output)
			stdErr := apperrors.Normalize(err)
			assert.Equal(t, apperrors.ErrCodeImportFailed, stdErr.Code)
			assert.Contains(t, stdErr.Details, tt.wantDetail)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Run_SchemaRequiresCSV(t *testing.T) {
	reg, err := registry.LoadRegistry("../../../../configs/activity-registry.json")
	require.NoError(t, err)
	validator, err := validation.NewSchemaValidator(reg)
	require.NoError(t, err)

	writer, _ := newWriter(t)
	handler := NewHandler(createTestConfig(), writer, nil, validator, logger.NewTestLogger(t))

	for _, vars := range []string{`{}`, `{"csv": ""}`} {
		_, err = handler.run(context.Background(), entities.Job{ActivatedJob: &pb.ActivatedJob{Variables: vars}})

		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr, vars)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code, vars)
	}
}
