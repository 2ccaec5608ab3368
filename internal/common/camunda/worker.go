// internal/common/camunda/worker.go
package camunda

import (
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"risk-predictor/internal/common/logger"
)

// JobHandler handles one activated job and reports job completion itself.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType on client.
func NewWorker(client zbc.Client, taskType string, maxJobsActive int, handler JobHandler, log logger.Logger) *Worker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(maxJobsActive).
		Open()

	log.Info("worker started", map[string]interface{}{"taskType": taskType, "maxJobsActive": maxJobsActive})

	return &Worker{worker: jobWorker, logger: log, taskType: taskType}
}

func (w *Worker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}
