// internal/common/errors/handler.go
package errors

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler turns pipeline errors into job failures or BPMN errors.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError fails the job with retries for transient codes and throws a
// BPMN error for everything else.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logError(job, stdErr, bpmnErr)

	if ShouldRetry(stdErr, job.Retries) {
		h.failJobWithRetries(ctx, client, job, bpmnErr)
		return
	}
	h.throwBPMNError(ctx, client, job, bpmnErr)
}

// ShouldRetry reports whether a failed job should be handed back to the
// engine with retries instead of raising a BPMN error.
func ShouldRetry(stdErr *StandardError, remaining int32) bool {
	return GetRetryCount(stdErr.Code) > 0 && remaining > 0
}

// RetriesFor caps the recommended retry count by what the engine has left.
func RetriesFor(code ErrorCode, remaining int32) int32 {
	retries := int32(GetRetryCount(code))
	if remaining > 0 && remaining-1 < retries {
		retries = remaining - 1
	}
	if retries < 0 {
		retries = 0
	}
	return retries
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(RetriesFor(ErrorCode(bpmnErr.Code), job.Retries)).
		ErrorMessage(bpmnErr.Message)

	if withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables()); err == nil {
		_, _ = withVars.Send(ctx)
		return
	}
	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables()); err == nil {
		_, _ = withVars.Send(ctx)
		return
	}
	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"message":          stdErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          bpmnErr.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
