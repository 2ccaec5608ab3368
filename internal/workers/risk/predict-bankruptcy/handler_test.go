// internal/workers/risk/predict-bankruptcy/handler_test.go
package predictbankruptcy

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"risk-predictor/internal/common/config"
	"risk-predictor/internal/common/errors"
	"risk-predictor/internal/common/logger"
	"risk-predictor/internal/prediction"
	"risk-predictor/internal/service"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

type constantClassifier struct {
	label prediction.Label
	proba []float64
}

func (c constantClassifier) Classes() []prediction.Label {
	return []prediction.Label{prediction.IntLabel(0), prediction.IntLabel(1)}
}
func (c constantClassifier) InputWidth() int { return 18 }
func (c constantClassifier) PredictLabel([]float64) (prediction.Label, error) {
	return c.label, nil
}
func (c constantClassifier) PredictProbabilities([]float64) ([]float64, error) {
	return c.proba, nil
}

func createTestHandler(t *testing.T, clf prediction.Classifier) *Handler {
	log := newTestLogger(t)
	p := prediction.NewPipeline(prediction.DefaultSchema(), clf, nil, log)
	svc := service.New(p, service.Options{}, log)
	return NewHandler(&Config{Timeout: 5 * time.Second, MaxJobsActive: 5}, svc, log)
}

func createFeatures() map[string]interface{} {
	features := make(map[string]interface{}, 18)
	for i := 1; i <= 18; i++ {
		features[fmt.Sprintf("X%d", i)] = float64(i) * 1.5
	}
	return features
}

func createJob(t *testing.T, variables interface{}) entities.Job {
	raw, err := json.Marshal(variables)
	require.NoError(t, err)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:       2251799813685249,
		Type:      TaskType,
		Variables: string(raw),
		Retries:   3,
	}}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		classifier     constantClassifier
		wantPrediction string
		wantRisk       float64
	}{
		{
			name:           "healthy company",
			classifier:     constantClassifier{label: prediction.IntLabel(0), proba: []float64{0.9, 0.1}},
			wantPrediction: "Healthy",
			wantRisk:       10,
		},
		{
			name:           "failing company",
			classifier:     constantClassifier{label: prediction.IntLabel(1), proba: []float64{0.123, 0.877}},
			wantPrediction: "Bankrupt",
			wantRisk:       87.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, tt.classifier)
			output, err := handler.Execute(context.Background(), &Input{Features: createFeatures()})

			require.NoError(t, err)
			require.NotNil(t, output.RiskPrediction)
			assert.Equal(t, tt.wantPrediction, output.RiskPrediction.Prediction)
			assert.Equal(t, tt.wantRisk, output.RiskPrediction.BankruptcyRisk)
			assert.NotEmpty(t, output.RequestID)
		})
	}
}

func TestHandler_Execute_Errors(t *testing.T) {
	missing := createFeatures()
	delete(missing, "X18")

	invalid := createFeatures()
	invalid["X9"] = true

	tests := []struct {
		name     string
		clf      prediction.Classifier
		features map[string]interface{}
		wantCode errors.ErrorCode
	}{
		{"missing feature", constantClassifier{label: prediction.IntLabel(0), proba: []float64{1, 0}}, missing, errors.ErrCodeMissingFeature},
		{"invalid numeric", constantClassifier{label: prediction.IntLabel(0), proba: []float64{1, 0}}, invalid, errors.ErrCodeInvalidNumericValue},
		{"no model", nil, createFeatures(), errors.ErrCodeArtifactUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, tt.clf)
			_, err := handler.Execute(context.Background(), &Input{Features: tt.features})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
		})
	}
}

func TestHandler_ParseInput(t *testing.T) {
	handler := createTestHandler(t, nil)

	t.Run("valid variables", func(t *testing.T) {
		input, err := handler.parseInput(createJob(t, map[string]interface{}{"features": createFeatures(), "other": 1}))
		require.NoError(t, err)
		assert.Len(t, input.Features, 18)
	})

	t.Run("features missing", func(t *testing.T) {
		_, err := handler.parseInput(createJob(t, map[string]interface{}{"company": "acme"}))
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidRequestBody, errors.CodeOf(err))
	})

	t.Run("features not an object", func(t *testing.T) {
		_, err := handler.parseInput(createJob(t, map[string]interface{}{"features": []int{1, 2}}))
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidRequestBody, errors.CodeOf(err))
	})
}

func TestHandler_FailuresMapToBPMNErrors(t *testing.T) {
	handler := createTestHandler(t, constantClassifier{label: prediction.IntLabel(0), proba: []float64{1, 0}})
	features := createFeatures()
	delete(features, "X1")

	_, err := handler.Execute(context.Background(), &Input{Features: features})
	require.Error(t, err)

	bpmn := errors.ConvertToBPMNError(errors.Normalize(err))
	assert.Equal(t, "MISSING_FEATURE", bpmn.Code)
	assert.Equal(t, "X1", bpmn.ToErrorVariables()["feature"])
	assert.False(t, errors.ShouldRetry(errors.Normalize(err), 3))
}

func TestLoadConfig(t *testing.T) {
	cfg := &config.Config{Workers: map[string]config.WorkerConfig{
		WorkerName: {Enabled: true, MaxJobsActive: 8, Timeout: 15000, MaxRetries: 3},
	}}
	c := LoadConfig(cfg)
	assert.Equal(t, 15*time.Second, c.Timeout)
	assert.Equal(t, 8, c.MaxJobsActive)

	defaults := LoadConfig(&config.Config{})
	assert.Equal(t, 30*time.Second, defaults.Timeout)
	assert.Equal(t, 5, defaults.MaxJobsActive)
}

func TestJobRequestID(t *testing.T) {
	assert.Equal(t, "job-2251799813685249", jobRequestID(createJob(t, map[string]interface{}{})))
}
