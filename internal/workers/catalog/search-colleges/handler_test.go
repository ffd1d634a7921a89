package searchcolleges

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/validation"
	"college-recommender/internal/models"
	"college-recommender/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

type stubSearcher struct {
	docs      []models.CollegeDocument
	err       error
	calls     int
	lastQuery string
	lastLimit int
}

func (s *stubSearcher) Search(ctx context.Context, q string, limit int) ([]models.CollegeDocument, error) {
	s.calls++
	s.lastQuery = q
	s.lastLimit = limit
	return s.docs, s.err
}

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.Timeout = time.Second
	return cfg
}

func intPtr(v int) *int { return &v }

var puneDocs = []models.CollegeDocument{
	{ID: "c1", Name: "Alpha Institute", Code: "3012", City: "Pune", District: "Pune", Type: models.CollegeTypeGovernment},
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_UsesIndex(t *testing.T) {
	index := &stubSearcher{docs: puneDocs}
	fallback := &stubSearcher{}
	handler := NewHandler(createTestConfig(), index, fallback, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Query: "  pune "})

	require.NoError(t, err)
	assert.Equal(t, SourceElasticsearch, output.Source)
	assert.Equal(t, 1, output.Total)
	assert.Equal(t, puneDocs, output.Colleges)
	assert.Equal(t, "pune", index.lastQuery)
	assert.Equal(t, 10, index.lastLimit)
	assert.Equal(t, 0, fallback.calls)
}

func TestHandler_Execute_ShortQueryReturnsEmpty(t *testing.T) {
	for _, q := range []string{"", " ", "p", " p "} {
		index := &stubSearcher{docs: puneDocs}
		fallback := &stubSearcher{docs: puneDocs}
		handler := NewHandler(createTestConfig(), index, fallback, nil, logger.NewTestLogger(t))

		output, err := handler.Execute(context.Background(), &Input{Query: q})

		require.NoError(t, err)
		assert.Empty(t, output.Colleges, q)
		assert.NotNil(t, output.Colleges, q)
		assert.Equal(t, 0, index.calls+fallback.calls, q)
	}
}

func TestHandler_Execute_Limit(t *testing.T) {
	tests := []struct {
		name  string
		limit *int
		want  int
	}{
		{"default", nil, 10},
		{"smaller", intPtr(3), 3},
		{"capped", intPtr(50), 10},
		{"non-positive", intPtr(0), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := &stubSearcher{}
			handler := NewHandler(createTestConfig(), index, &stubSearcher{}, nil, logger.NewTestLogger(t))

			_, err := handler.Execute(context.Background(), &Input{Query: "pune", Limit: tt.limit})

			require.NoError(t, err)
			assert.Equal(t, tt.want, index.lastLimit)
		})
	}
}

func TestHandler_Execute_FallsBackToPostgres(t *testing.T) {
	index := &stubSearcher{err: errors.New("index not found")}
	fallback := &stubSearcher{docs: puneDocs}
	handler := NewHandler(createTestConfig(), index, fallback, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Query: "3012"})

	require.NoError(t, err)
	assert.Equal(t, SourcePostgres, output.Source)
	assert.Equal(t, puneDocs, output.Colleges)
	assert.Equal(t, 1, fallback.calls)
}

func TestHandler_Execute_NoIndexConfigured(t *testing.T) {
	fallback := &stubSearcher{}
	handler := NewHandler(createTestConfig(), nil, fallback, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Query: "nagpur"})

	require.NoError(t, err)
	assert.Equal(t, SourcePostgres, output.Source)
	assert.NotNil(t, output.Colleges)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_BothBackendsFail(t *testing.T) {
	handler := NewHandler(createTestConfig(),
		&stubSearcher{err: errors.New("cluster unavailable")},
		&stubSearcher{err: errors.New("too many connections")},
		nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Query: "pune"})

	assert.Nil(t, output)
	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeStoreQueryFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Run_SchemaRequiresQuery(t *testing.T) {
	reg, err := registry.LoadRegistry("../../../../configs/activity-registry.json")
	require.NoError(t, err)
	validator, err := validation.NewSchemaValidator(reg)
	require.NoError(t, err)

	handler := NewHandler(createTestConfig(), &stubSearcher{}, &stubSearcher{}, validator, logger.NewTestLogger(t))

	_, err = handler.run(context.Background(), entities.Job{ActivatedJob: &pb.ActivatedJob{Variables: `{"limit": 5}`}})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code)
}
