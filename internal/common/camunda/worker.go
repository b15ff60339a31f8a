// internal/common/camunda/worker.go
package camunda

import (
	"dental-claims/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler completes or fails the job itself; a returned error is only logged.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

type JobWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

func NewWorker(client zbc.Client, taskType string, maxJobsActive int, handler JobHandler, log logger.Logger) *JobWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(func(c worker.JobClient, job entities.Job) {
			if err := handler.Handle(c, job); err != nil {
				log.Error("Handler returned error", map[string]interface{}{
					"jobKey": job.Key,
					"error":  err.Error(),
				})
			}
		}).
		MaxJobsActive(maxJobsActive).
		Open()

	log.Info("worker started", map[string]interface{}{"maxJobsActive": maxJobsActive})

	return &JobWorker{worker: jobWorker, logger: log, taskType: taskType}
}

// Stop closes the job stream and waits for in-flight jobs.
func (w *JobWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
