package searchcolleges

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/metrics"
	"college-recommender/internal/common/validation"
	"college-recommender/internal/models"
)

const (
	TaskType = "search-colleges"
)

// Searcher is implemented by both the Elasticsearch index and the Postgres
// store.
type Searcher interface {
	Search(ctx context.Context, q string, limit int) ([]models.CollegeDocument, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, q string, limit int) ([]models.CollegeDocument, error)

func (f SearcherFunc) Search(ctx context.Context, q string, limit int) ([]models.CollegeDocument, error) {
	return f(ctx, q, limit)
}

type Handler struct {
	config       *Config
	index        Searcher
	fallback     Searcher
	validator    *validation.SchemaValidator
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

// NewHandler searches index first and falls back to fallback when the index
// fails. index may be nil.
func NewHandler(config *Config, index, fallback Searcher, validator *validation.SchemaValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		index:        index,
		fallback:     fallback,
		validator:    validator,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.run(ctx, job)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Normalize(err).Code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	h.completeJob(ctx, client, job, output)

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	return nil
}

func (h *Handler) run(ctx context.Context, job entities.Job) (*Output, error) {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, apperrors.NewParseError(err)
	}
	result, err := h.validator.Validate(TaskType, vars)
	if err != nil {
		return nil, apperrors.NewParseError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Summary())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewParseError(err)
	}
	return h.execute(ctx, &input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	q := strings.TrimSpace(input.Query)
	if utf8.RuneCountInString(q) < h.config.MinQueryLength {
		return &Output{Colleges: []models.CollegeDocument{}, Source: SourceNone}, nil
	}

	limit := h.config.MaxResults
	if input.Limit != nil && *input.Limit > 0 && *input.Limit < limit {
		limit = *input.Limit
	}

	if h.index != nil {
		docs, err := h.index.Search(ctx, q, limit)
		if err == nil {
			return newOutput(docs, SourceElasticsearch), nil
		}
		h.logger.Warn("index search failed, falling back to postgres", map[string]interface{}{
			"query": q,
			"error": err,
		})
	}

	docs, err := h.fallback.Search(ctx, q, limit)
	if err != nil {
		return nil, apperrors.NewStoreError(string(models.QueryTypeCollegeSearch), err)
	}
	return newOutput(docs, SourcePostgres), nil
}

func newOutput(docs []models.CollegeDocument, source string) *Output {
	if docs == nil {
		docs = []models.CollegeDocument{}
	}
	return &Output{Colleges: docs, Total: len(docs), Source: source}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
