package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"college-recommender/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	err   error
	calls int
}

func (h *stubHandler) Handle(client worker.JobClient, job entities.Job) error {
	h.calls++
	return h.err
}

type recordedJob struct {
	taskType string
	status   string
}

type stubRecorder struct {
	jobs []recordedJob
}

func (r *stubRecorder) RecordJob(ctx context.Context, taskType, status string, duration time.Duration) {
	r.jobs = append(r.jobs, recordedJob{taskType: taskType, status: status})
}

func TestInstrument(t *testing.T) {
	tests := []struct {
		name       string
		handlerErr error
		wantStatus string
	}{
		{"completed", nil, "completed"},
		{"failed", errors.New("store down"), "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &stubHandler{err: tt.handlerErr}
			recorder := &stubRecorder{}

			fn := Instrument("generate-recommendations", handler, recorder, logger.NewTestLogger(t))
			fn(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42}})

			assert.Equal(t, 1, handler.calls)
			require.Len(t, recorder.jobs, 1)
			assert.Equal(t, recordedJob{"generate-recommendations", tt.wantStatus}, recorder.jobs[0])
		})
	}
}

func TestBackoff(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, backoff(cfg, 0))
	assert.Equal(t, 2*time.Second, backoff(cfg, 1))
	assert.Equal(t, 4*time.Second, backoff(cfg, 2))
	assert.Equal(t, 5*time.Second, backoff(cfg, 3))
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(errors.New("rpc error: code = Unavailable desc = connection refused")))
	assert.True(t, isRetryableZeebeError(errors.New("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(errors.New("permission denied")))
}
