package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"risk-predictor/internal/common/errors"
	"risk-predictor/internal/prediction"
)

const (
	KindClassifier = "classifier"
	KindEncoder    = "encoder"
)

type classifierDocument struct {
	Kind          string             `json:"kind"`
	Type          string             `json:"type"`
	Classes       []prediction.Label `json:"classes"`
	NFeatures     int                `json:"n_features"`
	Label         *prediction.Label  `json:"label,omitempty"`
	Probabilities []float64          `json:"probabilities,omitempty"`
	Weights       []float64          `json:"weights,omitempty"`
	Bias          float64            `json:"bias,omitempty"`
	Threshold     *float64           `json:"threshold,omitempty"`
	InitScore     float64            `json:"init_score,omitempty"`
	LearningRate  float64            `json:"learning_rate,omitempty"`
	Trees         []treeDocument     `json:"trees,omitempty"`
}

type treeDocument struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

type encoderDocument struct {
	Kind          string          `json:"kind"`
	Type          string          `json:"type"`
	Features      []string        `json:"features"`
	Categories    [][]interface{} `json:"categories"`
	HandleUnknown string          `json:"handle_unknown,omitempty"`
}

// DecodeClassifier validates and decodes a classifier document.
func DecodeClassifier(doc []byte) (prediction.Classifier, error) {
	res, err := classifierSchema.ValidateBytes(doc)
	if err != nil {
		return nil, errors.NewArtifactInvalidError(KindClassifier, err.Error())
	}
	if !res.Valid {
		return nil, errors.NewArtifactInvalidError(KindClassifier, res.String())
	}

	var d classifierDocument
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, errors.NewArtifactInvalidError(KindClassifier, err.Error())
	}

	clf, err := d.build()
	if err != nil {
		return nil, errors.NewArtifactInvalidError(KindClassifier, err.Error())
	}
	return clf, nil
}

func (d *classifierDocument) build() (prediction.Classifier, error) {
	if err := uniqueLabels(d.Classes); err != nil {
		return nil, err
	}

	switch d.Type {
	case "constant":
		return d.buildConstant()
	case "logistic":
		return d.buildLogistic()
	case "gradient_boosting":
		return d.buildGradientBoosting()
	default:
		return nil, fmt.Errorf("unsupported classifier type %q", d.Type)
	}
}

func (d *classifierDocument) buildConstant() (prediction.Classifier, error) {
	idx := -1
	for i, c := range d.Classes {
		if eq, ok := c.Compare(*d.Label); ok && eq {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("label %s is not one of the classes", d.Label)
	}

	proba := d.Probabilities
	if proba == nil {
		proba = make([]float64, len(d.Classes))
		proba[idx] = 1
	}
	if len(proba) != len(d.Classes) {
		return nil, fmt.Errorf("%d probabilities for %d classes", len(proba), len(d.Classes))
	}
	if err := sumsToOne(proba); err != nil {
		return nil, err
	}

	return &ConstantClassifier{
		classes: d.Classes,
		width:   d.NFeatures,
		label:   d.Classes[idx],
		proba:   proba,
	}, nil
}

func (d *classifierDocument) buildLogistic() (prediction.Classifier, error) {
	if len(d.Weights) != d.NFeatures {
		return nil, fmt.Errorf("%d weights for %d features", len(d.Weights), d.NFeatures)
	}
	threshold := 0.5
	if d.Threshold != nil {
		threshold = *d.Threshold
	}
	return &LogisticClassifier{
		classes:   d.Classes,
		weights:   d.Weights,
		bias:      d.Bias,
		threshold: threshold,
	}, nil
}

func (d *classifierDocument) buildGradientBoosting() (prediction.Classifier, error) {
	trees := make([]regressionTree, 0, len(d.Trees))
	for i, td := range d.Trees {
		t, err := td.build(d.NFeatures)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees = append(trees, t)
	}
	return &GradientBoostingClassifier{
		classes:      d.Classes,
		width:        d.NFeatures,
		initScore:    d.InitScore,
		learningRate: d.LearningRate,
		trees:        trees,
	}, nil
}

// build checks the flat arrays. Children must point forward so traversal
// always terminates.
func (td treeDocument) build(nFeatures int) (regressionTree, error) {
	n := len(td.ChildrenLeft)
	if len(td.ChildrenRight) != n || len(td.Feature) != n || len(td.Threshold) != n || len(td.Value) != n {
		return regressionTree{}, fmt.Errorf("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		l, r := td.ChildrenLeft[i], td.ChildrenRight[i]
		if l == leafMarker {
			if r != leafMarker {
				return regressionTree{}, fmt.Errorf("node %d has only a right child", i)
			}
			continue
		}
		if l <= i || l >= n || r <= i || r >= n {
			return regressionTree{}, fmt.Errorf("node %d has out of range children", i)
		}
		if td.Feature[i] < 0 || td.Feature[i] >= nFeatures {
			return regressionTree{}, fmt.Errorf("node %d splits on feature %d of %d", i, td.Feature[i], nFeatures)
		}
	}
	return regressionTree{
		childrenLeft:  td.ChildrenLeft,
		childrenRight: td.ChildrenRight,
		feature:       td.Feature,
		threshold:     td.Threshold,
		value:         td.Value,
	}, nil
}

// DecodeEncoder validates and decodes an encoder document.
func DecodeEncoder(doc []byte) (prediction.Encoder, error) {
	res, err := encoderSchema.ValidateBytes(doc)
	if err != nil {
		return nil, errors.NewArtifactInvalidError(KindEncoder, err.Error())
	}
	if !res.Valid {
		return nil, errors.NewArtifactInvalidError(KindEncoder, res.String())
	}

	var d encoderDocument
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&d); err != nil {
		return nil, errors.NewArtifactInvalidError(KindEncoder, err.Error())
	}

	enc, err := prediction.NewOneHotEncoder(d.Features, d.Categories)
	if err != nil {
		return nil, errors.NewArtifactInvalidError(KindEncoder, err.Error())
	}
	return enc, nil
}

func uniqueLabels(classes []prediction.Label) error {
	for i := range classes {
		for j := i + 1; j < len(classes); j++ {
			if eq, ok := classes[i].Compare(classes[j]); ok && eq {
				return fmt.Errorf("duplicate class %s", classes[i])
			}
		}
	}
	return nil
}

func sumsToOne(proba []float64) error {
	sum := 0.0
	for _, p := range proba {
		sum += p
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("probabilities sum to %v", sum)
	}
	return nil
}
