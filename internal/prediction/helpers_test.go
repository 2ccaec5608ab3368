package prediction

import (
	"sync"
	"testing"

	"risk-predictor/internal/common/logger"
)

// stubClassifier returns fixed outputs and records every row it sees.
type stubClassifier struct {
	classes  []Label
	width    int
	label    Label
	proba    []float64
	labelErr error
	panicMsg string

	mu    sync.Mutex
	calls int
	rows  [][]float64
}

func (s *stubClassifier) Classes() []Label { return s.classes }
func (s *stubClassifier) InputWidth() int  { return s.width }

func (s *stubClassifier) PredictLabel(x []float64) (Label, error) {
	s.mu.Lock()
	s.calls++
	s.rows = append(s.rows, append([]float64(nil), x...))
	s.mu.Unlock()
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.label, s.labelErr
}

func (s *stubClassifier) PredictProbabilities(x []float64) ([]float64, error) {
	return s.proba, nil
}

func (s *stubClassifier) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func healthyStub() *stubClassifier {
	return &stubClassifier{
		classes: []Label{IntLabel(0), IntLabel(1)},
		width:   18,
		label:   IntLabel(0),
		proba:   []float64{0.9, 0.1},
	}
}

func zeroInput(schema *FeatureSchema) map[string]interface{} {
	input := make(map[string]interface{}, schema.Len())
	for _, name := range schema.Names() {
		input[name] = 0.0
	}
	return input
}

func newTestPipeline(t *testing.T, schema *FeatureSchema, clf Classifier, enc Encoder) *Pipeline {
	t.Helper()
	return NewPipeline(schema, clf, enc, logger.NewTestLogger(t))
}
