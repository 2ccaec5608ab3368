package prediction

import (
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk-predictor/internal/common/errors"
)

// ==========================
// End-to-end
// ==========================

func TestPipeline_HealthyScenario(t *testing.T) {
	schema := DefaultSchema()
	clf := healthyStub()
	p := newTestPipeline(t, schema, clf, nil)

	result, err := p.Predict(zeroInput(schema))
	require.NoError(t, err)

	assert.Equal(t, "Healthy", result.Prediction)
	assert.Equal(t, 10.0, result.BankruptcyRisk)
	assert.Equal(t, 90.0, result.HealthyProbability)
	assert.Equal(t, 90.0, result.Confidence)
	assert.Equal(t, "0", result.RawPrediction)
	assert.Equal(t, []Label{IntLabel(0), IntLabel(1)}, result.ModelClasses)
	assert.Equal(t, StepLiteral, result.Resolution.Step)
	assert.Equal(t, make([]float64, 18), clf.rows[0])
}

func TestPipeline_ResponseShape(t *testing.T) {
	schema := DefaultSchema()
	p := newTestPipeline(t, schema, healthyStub(), nil)

	result, err := p.Predict(zeroInput(schema))
	require.NoError(t, err)

	body, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"prediction": "Healthy",
		"bankruptcy_risk": 10,
		"healthy_probability": 90,
		"confidence": 90,
		"raw_prediction": "0",
		"model_classes": [0, 1]
	}`, string(body))
}

func TestPipeline_BankruptWithStringClasses(t *testing.T) {
	schema := DefaultSchema()
	clf := &stubClassifier{
		classes: []Label{StringLabel("alive"), StringLabel("failed")},
		label:   StringLabel("failed"),
		proba:   []float64{0.2, 0.8},
	}
	p := newTestPipeline(t, schema, clf, nil)

	result, err := p.Predict(zeroInput(schema))
	require.NoError(t, err)
	assert.Equal(t, "Bankrupt", result.Prediction)
	assert.Equal(t, 80.0, result.BankruptcyRisk)
	assert.Equal(t, 80.0, result.Confidence)
	assert.Equal(t, "failed", result.RawPrediction)
}

func TestPipeline_Idempotent(t *testing.T) {
	schema := DefaultSchema()
	p := newTestPipeline(t, schema, healthyStub(), nil)
	input := zeroInput(schema)

	first, err := p.Predict(input)
	require.NoError(t, err)
	second, err := p.Predict(input)
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.Equal(t, a, b)
}

func TestPipeline_Concurrent(t *testing.T) {
	schema := DefaultSchema()
	clf := healthyStub()
	p := newTestPipeline(t, schema, clf, nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := p.Predict(zeroInput(schema))
			assert.NoError(t, err)
			assert.Equal(t, 10.0, r.BankruptcyRisk)
		}()
	}
	wg.Wait()
	assert.Equal(t, 32, clf.Calls())
}

// ==========================
// Validation failures
// ==========================

func TestPipeline_MissingFeatureSkipsClassifier(t *testing.T) {
	schema := DefaultSchema()
	clf := healthyStub()
	p := newTestPipeline(t, schema, clf, nil)

	input := zeroInput(schema)
	delete(input, "X5")

	_, err := p.Predict(input)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeMissingFeature, stdErr.Code)
	assert.Equal(t, "X5", stdErr.Feature())
	assert.Equal(t, 0, clf.Calls())
}

func TestPipeline_InvalidNumeric(t *testing.T) {
	schema := DefaultSchema()
	clf := healthyStub()
	p := newTestPipeline(t, schema, clf, nil)

	input := zeroInput(schema)
	input["X3"] = "abc"

	_, err := p.Predict(input)
	stdErr, _ := errors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, errors.ErrCodeInvalidNumericValue, stdErr.Code)
	assert.Equal(t, "X3", stdErr.Feature())
	assert.Equal(t, 0, clf.Calls())
}

// ==========================
// Artifact availability
// ==========================

func TestPipeline_ClassifierUnavailable(t *testing.T) {
	p := newTestPipeline(t, DefaultSchema(), nil, nil)

	// checked before validation, so even an empty body reports it
	_, err := p.Predict(map[string]interface{}{})
	stdErr, _ := errors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, errors.ErrCodeArtifactUnavailable, stdErr.Code)
	assert.Equal(t, errors.ArtifactClassifier, stdErr.Metadata["artifact"])
	assert.False(t, p.ClassifierLoaded())
}

func TestPipeline_EncoderRequiredForCategorical(t *testing.T) {
	schema, err := NewFeatureSchema([]string{"sector", "X1"}, []string{"sector"})
	require.NoError(t, err)

	p := newTestPipeline(t, schema, healthyStub(), nil)
	_, err = p.Predict(map[string]interface{}{"sector": "retail", "X1": 1})
	stdErr, _ := errors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, errors.ErrCodeArtifactUnavailable, stdErr.Code)
	assert.Equal(t, errors.ArtifactEncoder, stdErr.Metadata["artifact"])
}

func TestPipeline_EncoderFittedOnOtherFeatures(t *testing.T) {
	schema, err := NewFeatureSchema([]string{"sector", "X1"}, []string{"sector"})
	require.NoError(t, err)
	enc, err := NewOneHotEncoder([]string{"region"}, [][]interface{}{{"north", "south"}})
	require.NoError(t, err)

	p := newTestPipeline(t, schema, healthyStub(), enc)
	assert.False(t, p.EncoderLoaded())
	assert.Equal(t, errors.ErrCodeArtifactUnavailable, errors.CodeOf(p.Available()))
}

func TestPipeline_EncoderIgnoredForNumericSchema(t *testing.T) {
	enc, err := NewOneHotEncoder([]string{"sector"}, [][]interface{}{{"a"}})
	require.NoError(t, err)

	p := newTestPipeline(t, DefaultSchema(), healthyStub(), enc)
	assert.False(t, p.EncoderLoaded())
	assert.NoError(t, p.Available())
}

// ==========================
// Encoding
// ==========================

func TestPipeline_EncodedRowLayout(t *testing.T) {
	schema, err := NewFeatureSchema([]string{"X1", "sector", "X2"}, []string{"sector"})
	require.NoError(t, err)
	enc, err := NewOneHotEncoder([]string{"sector"}, [][]interface{}{{"energy", "retail", "tech"}})
	require.NoError(t, err)

	clf := healthyStub()
	clf.width = 5
	p := newTestPipeline(t, schema, clf, enc)
	assert.True(t, p.EncoderLoaded())

	_, err = p.Predict(map[string]interface{}{"X1": 1.5, "sector": "tech", "X2": "2"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1.5, 2}, clf.rows[0])

	_, err = p.Predict(map[string]interface{}{"X1": 1.5, "sector": "mining", "X2": "2"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 1.5, 2}, clf.rows[1])
}

func TestPipeline_WidthMismatch(t *testing.T) {
	schema := DefaultSchema()
	clf := healthyStub()
	clf.width = 20
	p := newTestPipeline(t, schema, clf, nil)

	_, err := p.Predict(zeroInput(schema))
	stdErr, _ := errors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, errors.ErrCodeEncodingWidthMismatch, stdErr.Code)
	assert.Equal(t, 20, stdErr.Metadata["expected"])
	assert.Equal(t, 18, stdErr.Metadata["actual"])
	assert.Equal(t, 0, clf.Calls())
}

// ==========================
// Classifier failures
// ==========================

func TestPipeline_ClassifierFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*stubClassifier)
		detail string
	}{
		{"label error", func(s *stubClassifier) { s.labelErr = stderrors.New("model corrupted") }, "model corrupted"},
		{"panic", func(s *stubClassifier) { s.panicMsg = "index out of range" }, "index out of range"},
		{"short probability vector", func(s *stubClassifier) { s.proba = []float64{1} }, "1 probabilities for 2 classes"},
		{"probabilities do not sum to one", func(s *stubClassifier) { s.proba = []float64{0.5, 0.6} }, "sum to"},
		{"no classes", func(s *stubClassifier) { s.classes = nil }, "no classes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := DefaultSchema()
			clf := healthyStub()
			tt.mutate(clf)
			p := newTestPipeline(t, schema, clf, nil)

			result, err := p.Predict(zeroInput(schema))
			assert.Nil(t, result)

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInternalPredictionFailure, stdErr.Code)
			assert.Contains(t, stdErr.Details, tt.detail)
			assert.Equal(t, "Prediction failed. See server logs for details.", stdErr.Public().Error)
		})
	}
}
