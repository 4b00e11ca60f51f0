// internal/common/camunda/worker.go
package camunda

import (
	"fmt"
	"time"

	"semantics-workers/internal/common/logger"
	"semantics-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler completes or fails the job itself; nothing is reported back.
type JobHandler func(client worker.JobClient, job entities.Job)

// WorkerOptions are the per-task-type job worker settings.
type WorkerOptions struct {
	Name          string
	MaxJobsActive int
	Timeout       time.Duration
	PollInterval  time.Duration
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. Handler panics are logged and the job is
// left to time out so Zeebe hands it out again.
func NewWorker(client zbc.Client, taskType string, opts WorkerOptions, handler JobHandler, log logger.Logger) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(InstrumentHandler(taskType, handler, log)).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Name != "" {
		builder = builder.Name(opts.Name)
	}
	if opts.Timeout > 0 {
		builder = builder.Timeout(opts.Timeout)
	}
	if opts.PollInterval > 0 {
		builder = builder.PollInterval(opts.PollInterval)
	}

	w := &CamundaWorker{
		worker:   builder.Open(),
		logger:   log,
		taskType: taskType,
	}
	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": opts.MaxJobsActive,
		"timeout":       opts.Timeout.String(),
	})
	return w
}

// InstrumentHandler tracks in-flight jobs and recovers handler panics.
func InstrumentHandler(taskType string, handler JobHandler, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		defer func() {
			if r := recover(); r != nil {
				metrics.WorkerJobsFailed.WithLabelValues(taskType, "PANIC").Inc()
				log.Error("job handler panicked", map[string]interface{}{
					"jobKey": job.Key,
					"panic":  fmt.Sprint(r),
				})
			}
		}()

		handler(client, job)
	}
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

// Stop closes the job worker and waits for in-flight handlers. The shared Zeebe
// client stays open.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
