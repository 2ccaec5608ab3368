package artifact

import (
	"fmt"
	"math"

	"risk-predictor/internal/prediction"
)

func sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

// ConstantClassifier always predicts the same label with fixed probabilities.
type ConstantClassifier struct {
	classes []prediction.Label
	width   int
	label   prediction.Label
	proba   []float64
}

func (c *ConstantClassifier) Classes() []prediction.Label { return c.classes }
func (c *ConstantClassifier) InputWidth() int             { return c.width }

func (c *ConstantClassifier) PredictLabel(x []float64) (prediction.Label, error) {
	return c.label, nil
}

func (c *ConstantClassifier) PredictProbabilities(x []float64) ([]float64, error) {
	return append([]float64(nil), c.proba...), nil
}

// LogisticClassifier is a binary logistic regression:
// p(classes[1]) = sigmoid(w·x + b).
type LogisticClassifier struct {
	classes   []prediction.Label
	weights   []float64
	bias      float64
	threshold float64
}

func (c *LogisticClassifier) Classes() []prediction.Label { return c.classes }
func (c *LogisticClassifier) InputWidth() int             { return len(c.weights) }

func (c *LogisticClassifier) positive(x []float64) (float64, error) {
	if len(x) != len(c.weights) {
		return 0, fmt.Errorf("logistic model expects %d inputs, got %d", len(c.weights), len(x))
	}
	z := c.bias
	for i, v := range x {
		z += c.weights[i] * v
	}
	return sigmoid(z), nil
}

func (c *LogisticClassifier) PredictLabel(x []float64) (prediction.Label, error) {
	p, err := c.positive(x)
	if err != nil {
		return prediction.Label{}, err
	}
	if p >= c.threshold {
		return c.classes[1], nil
	}
	return c.classes[0], nil
}

func (c *LogisticClassifier) PredictProbabilities(x []float64) ([]float64, error) {
	p, err := c.positive(x)
	if err != nil {
		return nil, err
	}
	return []float64{1 - p, p}, nil
}

// regressionTree is a fitted tree in flat-array form. Node i is a leaf when
// childrenLeft[i] == -1; otherwise x[feature[i]] <= threshold[i] goes left.
type regressionTree struct {
	childrenLeft  []int
	childrenRight []int
	feature       []int
	threshold     []float64
	value         []float64
}

func (t *regressionTree) predict(x []float64) float64 {
	node := 0
	for t.childrenLeft[node] != leafMarker {
		if x[t.feature[node]] <= t.threshold[node] {
			node = t.childrenLeft[node]
		} else {
			node = t.childrenRight[node]
		}
	}
	return t.value[node]
}

const leafMarker = -1

// GradientBoostingClassifier is a binary boosted tree ensemble with a
// log-odds output: p(classes[1]) = sigmoid(init + lr·Σ tree(x)).
type GradientBoostingClassifier struct {
	classes      []prediction.Label
	width        int
	initScore    float64
	learningRate float64
	trees        []regressionTree
}

func (c *GradientBoostingClassifier) Classes() []prediction.Label { return c.classes }
func (c *GradientBoostingClassifier) InputWidth() int             { return c.width }

func (c *GradientBoostingClassifier) positive(x []float64) (float64, error) {
	if len(x) != c.width {
		return 0, fmt.Errorf("gradient boosting model expects %d inputs, got %d", c.width, len(x))
	}
	raw := c.initScore
	for i := range c.trees {
		raw += c.learningRate * c.trees[i].predict(x)
	}
	return sigmoid(raw), nil
}

// PredictLabel is the argmax of the probability vector; ties go to classes[0].
func (c *GradientBoostingClassifier) PredictLabel(x []float64) (prediction.Label, error) {
	p, err := c.positive(x)
	if err != nil {
		return prediction.Label{}, err
	}
	if p > 0.5 {
		return c.classes[1], nil
	}
	return c.classes[0], nil
}

func (c *GradientBoostingClassifier) PredictProbabilities(x []float64) ([]float64, error) {
	p, err := c.positive(x)
	if err != nil {
		return nil, err
	}
	return []float64{1 - p, p}, nil
}

// FeatureImportances returns the share of splits made on each input column.
func (c *GradientBoostingClassifier) FeatureImportances() []float64 {
	counts := make([]float64, c.width)
	total := 0.0
	for _, t := range c.trees {
		for i, left := range t.childrenLeft {
			if left == leafMarker {
				continue
			}
			counts[t.feature[i]]++
			total++
		}
	}
	if total > 0 {
		for i := range counts {
			counts[i] /= total
		}
	}
	return counts
}
