package importcutoffs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/metrics"
	"college-recommender/internal/common/validation"
	"college-recommender/internal/models"
)

const (
	TaskType = "import-cutoffs"
)

// CutoffWriter resolves catalog codes and writes cutoffs.
type CutoffWriter interface {
	CollegeIDByCode(ctx context.Context, code string) (string, error)
	CourseIDByBranchCode(ctx context.Context, collegeID, branchCode string) (string, error)
	UpsertCutoff(ctx context.Context, c models.Cutoff) error
}

// CacheInvalidator drops cached recommendation candidates.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) (int, error)
}

type Handler struct {
	config       *Config
	writer       CutoffWriter
	cache        CacheInvalidator
	validator    *validation.SchemaValidator
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the import handler. cache may be nil when the candidate
// cache is disabled.
func NewHandler(config *Config, writer CutoffWriter, cache CacheInvalidator, validator *validation.SchemaValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		writer:       writer,
		cache:        cache,
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
	h.logger.Info("cutoff import finished", map[string]interface{}{
		"jobKey":   job.Key,
		"batchId":  output.BatchID,
		"imported": output.Imported,
		"skipped":  output.Skipped,
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
	reader := csv.NewReader(strings.NewReader(input.CSV))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewImportFailedError("file is empty")
		}
		return nil, apperrors.NewImportFailedError(fmt.Sprintf("read header: %v", err))
	}
	columns, err := indexColumns(header)
	if err != nil {
		return nil, apperrors.NewImportFailedError(err.Error())
	}

	output := &Output{BatchID: uuid.New().String()}
	line := 1

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			h.skip(output, line, err)
			continue
		}
		if ctx.Err() != nil {
			return nil, apperrors.NewImportFailedError(fmt.Sprintf("stopped at line %d: %v", line, ctx.Err()))
		}

		if err := h.importRow(ctx, columns.row(record)); err != nil {
			h.skip(output, line, err)
			continue
		}
		output.Imported++
		metrics.CutoffsImported.WithLabelValues("imported").Inc()
	}

	if output.Imported > 0 {
		h.invalidateCache(ctx)
	}

	output.Message = fmt.Sprintf("Imported %d cutoffs, skipped %d", output.Imported, output.Skipped)
	return output, nil
}

func (h *Handler) skip(output *Output, line int, err error) {
	output.Skipped++
	metrics.CutoffsImported.WithLabelValues("skipped").Inc()
	if len(output.Errors) < h.config.MaxReportedErrors {
		output.Errors = append(output.Errors, fmt.Sprintf("line %d: %v", line, err))
	}
}

func (h *Handler) importRow(ctx context.Context, row map[string]string) error {
	cutoff, err := parseCutoff(row)
	if err != nil {
		return err
	}

	collegeID, err := h.writer.CollegeIDByCode(ctx, row["collegeCode"])
	if err != nil {
		return err
	}
	courseID, err := h.writer.CourseIDByBranchCode(ctx, collegeID, row["branchCode"])
	if err != nil {
		return err
	}

	cutoff.CollegeID = collegeID
	cutoff.CourseID = courseID
	return h.writer.UpsertCutoff(ctx, cutoff)
}

func (h *Handler) invalidateCache(ctx context.Context) {
	if h.cache == nil {
		return
	}
	deleted, err := h.cache.Invalidate(ctx)
	if err != nil {
		h.logger.Warn("failed to invalidate candidate cache", map[string]interface{}{
			"error": err,
		})
		return
	}
	h.logger.Debug("candidate cache invalidated", map[string]interface{}{
		"keys": deleted,
	})
}

type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	columns := columnIndex{}
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func (c columnIndex) row(record []string) map[string]string {
	row := make(map[string]string, len(requiredColumns))
	for _, name := range requiredColumns {
		if i := c[name]; i < len(record) {
			row[name] = strings.TrimSpace(record[i])
		}
	}
	return row
}

func parseCutoff(row map[string]string) (models.Cutoff, error) {
	var c models.Cutoff
	var err error

	if row["collegeCode"] == "" || row["branchCode"] == "" {
		return c, errors.New("collegeCode and branchCode are required")
	}
	if c.Year, err = strconv.Atoi(row["year"]); err != nil {
		return c, fmt.Errorf("invalid year %q", row["year"])
	}
	if c.Round, err = strconv.Atoi(row["round"]); err != nil {
		return c, fmt.Errorf("invalid round %q", row["round"])
	}

	c.ExamType = models.ExamType(strings.ToUpper(row["examType"]))
	if !c.ExamType.Valid() {
		return c, fmt.Errorf("unsupported exam type %q", row["examType"])
	}
	c.Category = models.Category(strings.ToUpper(row["category"]))
	if !c.Category.Valid() {
		return c, fmt.Errorf("unsupported category %q", row["category"])
	}

	if c.OpeningRank, err = optionalInt(row, "openingRank"); err != nil {
		return c, err
	}
	if c.ClosingRank, err = optionalInt(row, "closingRank"); err != nil {
		return c, err
	}
	if c.OpeningPercentile, err = optionalFloat(row, "openingPercentile"); err != nil {
		return c, err
	}
	if c.ClosingPercentile, err = optionalFloat(row, "closingPercentile"); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func optionalInt(row map[string]string, column string) (*int, error) {
	if row[column] == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(row[column])
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", column, row[column])
	}
	return &v, nil
}

func optionalFloat(row map[string]string, column string) (*float64, error) {
	if row[column] == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(row[column], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", column, row[column])
	}
	return &v, nil
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
