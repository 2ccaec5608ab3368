package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk-predictor/internal/common/errors"
	"risk-predictor/internal/prediction"
)

func TestDecodeClassifier_StubDocument(t *testing.T) {
	doc, err := StubClassifierDocument(18)
	require.NoError(t, err)

	clf, err := DecodeClassifier(doc)
	require.NoError(t, err)

	assert.Equal(t, 18, clf.InputWidth())
	assert.Equal(t, []prediction.Label{prediction.IntLabel(0), prediction.IntLabel(1)}, clf.Classes())

	label, err := clf.PredictLabel(make([]float64, 18))
	require.NoError(t, err)
	assert.Equal(t, "0", label.String())

	proba, err := clf.PredictProbabilities(make([]float64, 18))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, proba)
}

func TestDecodeClassifier_ConstantWithProbabilities(t *testing.T) {
	clf, err := DecodeClassifier([]byte(`{
		"kind": "classifier", "type": "constant",
		"classes": [0, 1], "n_features": 18,
		"label": 0, "probabilities": [0.9, 0.1]
	}`))
	require.NoError(t, err)

	proba, _ := clf.PredictProbabilities(nil)
	assert.Equal(t, []float64{0.9, 0.1}, proba)
}

func TestDecodeClassifier_Logistic(t *testing.T) {
	clf, err := DecodeClassifier([]byte(`{
		"kind": "classifier", "type": "logistic",
		"classes": ["alive", "failed"], "n_features": 2,
		"weights": [2.0, -1.0], "bias": 0.0
	}`))
	require.NoError(t, err)
	assert.Equal(t, 2, clf.InputWidth())

	proba, err := clf.PredictProbabilities([]float64{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, proba[1], 1e-12)

	label, _ := clf.PredictLabel([]float64{0, 0})
	assert.Equal(t, "failed", label.String(), "threshold is inclusive")

	label, _ = clf.PredictLabel([]float64{-3, 0})
	assert.Equal(t, "alive", label.String())

	_, err = clf.PredictProbabilities([]float64{1})
	assert.Error(t, err)
}

const boostedDoc = `{
	"kind": "classifier", "type": "gradient_boosting",
	"classes": [0, 1], "n_features": 2,
	"init_score": -1.0, "learning_rate": 0.5,
	"trees": [
		{
			"children_left":  [1, -1, -1],
			"children_right": [2, -1, -1],
			"feature":        [0, -2, -2],
			"threshold":      [0.5, -2, -2],
			"value":          [0, -2.0, 4.0]
		},
		{
			"children_left":  [-1],
			"children_right": [-1],
			"feature":        [-2],
			"threshold":      [-2],
			"value":          [1.0]
		}
	]
}`

func TestDecodeClassifier_GradientBoosting(t *testing.T) {
	clf, err := DecodeClassifier([]byte(boostedDoc))
	require.NoError(t, err)

	// left leaf: -1 + 0.5*(-2 + 1) = -1.5
	proba, err := clf.PredictProbabilities([]float64{0.5, 9})
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(-1.5), proba[1], 1e-12)
	label, _ := clf.PredictLabel([]float64{0.5, 9})
	assert.Equal(t, "0", label.String())

	// right leaf: -1 + 0.5*(4 + 1) = 1.5
	proba, _ = clf.PredictProbabilities([]float64{0.6, 9})
	assert.InDelta(t, sigmoid(1.5), proba[1], 1e-12)
	assert.InDelta(t, 1.0, proba[0]+proba[1], 1e-12)
	label, _ = clf.PredictLabel([]float64{0.6, 9})
	assert.Equal(t, "1", label.String())

	gb, ok := clf.(*GradientBoostingClassifier)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0}, gb.FeatureImportances())
}

func TestDecodeClassifier_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"wrong kind", `{"kind":"encoder","type":"constant","classes":[0],"n_features":1,"label":0}`},
		{"unknown type", `{"kind":"classifier","type":"svm","classes":[0,1],"n_features":1}`},
		{"no classes", `{"kind":"classifier","type":"constant","classes":[],"n_features":1,"label":0}`},
		{"constant without label", `{"kind":"classifier","type":"constant","classes":[0,1],"n_features":1}`},
		{"label not a class", `{"kind":"classifier","type":"constant","classes":[0,1],"n_features":1,"label":2}`},
		{"probabilities do not sum", `{"kind":"classifier","type":"constant","classes":[0,1],"n_features":1,"label":0,"probabilities":[0.5,0.4]}`},
		{"duplicate classes", `{"kind":"classifier","type":"constant","classes":[1,1.0],"n_features":1,"label":1}`},
		{"logistic three classes", `{"kind":"classifier","type":"logistic","classes":[0,1,2],"n_features":1,"weights":[1],"bias":0}`},
		{"logistic weight count", `{"kind":"classifier","type":"logistic","classes":[0,1],"n_features":2,"weights":[1],"bias":0}`},
		{"tree backward child", `{"kind":"classifier","type":"gradient_boosting","classes":[0,1],"n_features":1,"init_score":0,"learning_rate":0.1,
			"trees":[{"children_left":[0],"children_right":[0],"feature":[0],"threshold":[0],"value":[0]}]}`},
		{"tree feature out of range", `{"kind":"classifier","type":"gradient_boosting","classes":[0,1],"n_features":1,"init_score":0,"learning_rate":0.1,
			"trees":[{"children_left":[1,-1,-1],"children_right":[2,-1,-1],"feature":[3,-2,-2],"threshold":[0,0,0],"value":[0,0,0]}]}`},
		{"tree ragged arrays", `{"kind":"classifier","type":"gradient_boosting","classes":[0,1],"n_features":1,"init_score":0,"learning_rate":0.1,
			"trees":[{"children_left":[-1],"children_right":[-1],"feature":[-2],"threshold":[0],"value":[0,1]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeClassifier([]byte(tt.doc))
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeArtifactInvalid, errors.CodeOf(err))
		})
	}
}

func TestDecodeEncoder(t *testing.T) {
	enc, err := DecodeEncoder([]byte(`{
		"kind": "encoder", "type": "one_hot",
		"features": ["sector", "size_band"],
		"categories": [["energy", "retail"], [1, 2, 3]],
		"handle_unknown": "ignore"
	}`))
	require.NoError(t, err)
	assert.Equal(t, 5, enc.Width())

	row, err := enc.Transform([]interface{}{"retail", "3"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 0, 1}, row)
}

func TestDecodeEncoder_Invalid(t *testing.T) {
	tests := []string{
		`{"kind":"encoder","type":"ordinal","features":["a"],"categories":[["x"]]}`,
		`{"kind":"encoder","type":"one_hot","features":["a"],"categories":[[]]}`,
		`{"kind":"encoder","type":"one_hot","features":["a","b"],"categories":[["x"]]}`,
		`{"kind":"encoder","type":"one_hot","features":["a"],"categories":[["x"]],"handle_unknown":"error"}`,
	}

	for _, doc := range tests {
		_, err := DecodeEncoder([]byte(doc))
		require.Error(t, err, doc)
		assert.Equal(t, errors.ErrCodeArtifactInvalid, errors.CodeOf(err))
	}
}
