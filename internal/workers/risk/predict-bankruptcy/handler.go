// internal/workers/risk/predict-bankruptcy/handler.go
package predictbankruptcy

import (
	"context"
	"encoding/json"
	"strconv"

	"risk-predictor/internal/common/errors"
	"risk-predictor/internal/common/logger"
	"risk-predictor/internal/service"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType   = "risk.bankruptcy.predict"
	WorkerName = "predict-bankruptcy"
)

type Handler struct {
	config       *Config
	service      *service.Service
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, svc *service.Service, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		service:      svc,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.Execute(service.WithRequestID(ctx, jobRequestID(job)), input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	raw := []byte(job.Variables)
	if err := validateVariables(raw); err != nil {
		return nil, err
	}
	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, errors.NewInvalidRequestBodyError(err)
	}
	return &input, nil
}

// Execute runs the prediction for one decoded job input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	resp, err := h.service.Predict(ctx, input.Features, service.TransportWorkflow)
	if err != nil {
		return nil, err
	}

	h.logger.Info("bankruptcy risk predicted", map[string]interface{}{
		"requestId":      resp.RequestID,
		"prediction":     resp.Result.Prediction,
		"bankruptcyRisk": resp.Result.BankruptcyRisk,
		"cached":         resp.Cached,
	})

	return &Output{RiskPrediction: resp.Result, RequestID: resp.RequestID}, nil
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

func jobRequestID(job entities.Job) string {
	return "job-" + strconv.FormatInt(job.Key, 10)
}
