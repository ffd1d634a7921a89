package generaterecommendations

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/metrics"
	"college-recommender/internal/common/validation"
	"college-recommender/internal/models"
	"college-recommender/internal/recommendation"
)

const (
	TaskType = "generate-recommendations"

	failureMessage = "Failed to generate recommendations"
)

type Handler struct {
	config       *Config
	engine       *recommendation.Engine
	validator    *validation.SchemaValidator
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store recommendation.Store, validator *validation.SchemaValidator, log logger.Logger) *Handler {
	engine := recommendation.NewEngine(observedStore{next: store}, config.Engine)
	if config.Now != nil {
		engine.Now = config.Now
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
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
	h.logger.Info("recommendations generated", map[string]interface{}{
		"jobKey":   job.Key,
		"total":    output.Total,
		"duration": time.Since(start).String(),
	})
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
	results, err := h.engine.Generate(ctx, input.query())
	if err != nil {
		var invalid *recommendation.ValidationError
		if errors.As(err, &invalid) {
			return nil, apperrors.NewInvalidInputError(invalid.Message)
		}
		return nil, apperrors.NewInternalFailureError(failureMessage, err)
	}

	for _, r := range results {
		metrics.RecommendationsGenerated.WithLabelValues(string(r.AdmissionChance)).Inc()
	}

	return &Output{
		Recommendations: results,
		Total:           len(results),
	}, nil
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

// observedStore records how many colleges each candidate query returned.
type observedStore struct {
	next recommendation.Store
}

func (s observedStore) FindColleges(ctx context.Context, filter models.CollegeFilter) ([]models.College, error) {
	colleges, err := s.next.FindColleges(ctx, filter)
	if err == nil {
		metrics.RecommendationCandidates.Observe(float64(len(colleges)))
	}
	return colleges, err
}
