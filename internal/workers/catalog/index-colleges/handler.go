package indexcolleges

import (
	"context"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/metrics"
	"college-recommender/internal/models"
	"college-recommender/internal/store"
)

const (
	TaskType = "index-colleges"
)

type DocumentSource interface {
	CollegeDocuments(ctx context.Context) ([]models.CollegeDocument, error)
}

type Indexer interface {
	Name() string
	EnsureIndex(ctx context.Context) error
	BulkIndex(ctx context.Context, docs []models.CollegeDocument) (*store.BulkResult, error)
}

type Handler struct {
	config       *Config
	source       DocumentSource
	indexer      Indexer
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, source DocumentSource, indexer Indexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		source:       source,
		indexer:      indexer,
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

	output, err := h.execute(ctx, &Input{})
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Normalize(err).Code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	h.completeJob(ctx, client, job, output)

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.logger.Info("colleges indexed", map[string]interface{}{
		"jobKey":   job.Key,
		"indexed":  output.Indexed,
		"failed":   output.Failed,
		"duration": time.Since(start).String(),
	})
	return nil
}

func (h *Handler) execute(ctx context.Context, _ *Input) (*Output, error) {
	docs, err := h.source.CollegeDocuments(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(string(models.QueryTypeCollegeDocuments), err)
	}

	if err := h.indexer.EnsureIndex(ctx); err != nil {
		return nil, h.searchError(err)
	}

	output := &Output{Errors: []string{}}
	batchSize := max(h.config.BatchSize, 1)

	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))
		result, err := h.indexer.BulkIndex(ctx, docs[start:end])
		if err != nil {
			return nil, h.searchError(err)
		}
		output.Indexed += result.Indexed
		output.Failed += result.Failed
		output.Errors = append(output.Errors, result.Errors...)
	}

	return output, nil
}

func (h *Handler) searchError(err error) error {
	if errors.Is(err, store.ErrIndexNotFound) {
		return apperrors.NewIndexNotFoundError(h.indexer.Name())
	}
	return apperrors.NewSearchError(err)
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
