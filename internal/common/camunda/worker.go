// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"college-recommender/internal/common/config"
	"college-recommender/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler reports the job outcome to the broker itself and returns the
// error it reported, if any.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// Recorder receives one observation per handled job.
type Recorder interface {
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler JobHandler,
	recorder Recorder,
	log logger.Logger,
) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, recorder, log)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

// Instrument adapts a JobHandler to the Zeebe handler signature and records
// the outcome.
func Instrument(taskType string, handler JobHandler, recorder Recorder, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		status := "completed"
		if err := handler.Handle(client, job); err != nil {
			status = "failed"
			log.Debug("handler returned error", map[string]interface{}{
				"jobKey": job.Key,
				"error":  err,
			})
		}
		recorder.RecordJob(context.Background(), taskType, status, time.Since(start))
	}
}

func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
