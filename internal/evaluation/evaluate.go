// Package evaluation scores a loaded pipeline against a labelled CSV split.
package evaluation

import (
	"fmt"
	"math"
	"sort"

	"risk-predictor/internal/common/errors"
	"risk-predictor/internal/common/logger"
	"risk-predictor/internal/dataset"
	"risk-predictor/internal/prediction"
)

const (
	DefaultTarget  = "status_label"
	maxExamples    = 5
	exampleColumns = 8
	maxImportances = 10
	negative       = 0
	positive       = 1
)

// DefaultDrop are the non-feature columns of the bankruptcy dataset.
var DefaultDrop = []string{"status_label", "company_name", "year"}

// Percentiles reported for the positive class probability.
var Percentiles = []float64{0, 10, 25, 50, 75, 90, 100}

type Options struct {
	Target string
	Drop   []string
	// Importances, when set, are reported as the top feature indices.
	Importances []float64
}

type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

type Percentile struct {
	Percent float64
	Value   float64
}

type Example struct {
	Row    int
	Values []string
	Risk   float64
}

type Importance struct {
	Index int
	Value float64
}

type Report struct {
	Header       []string
	Rows         int
	Evaluated    int
	Failures     map[errors.ErrorCode]int
	Distribution map[string]int

	Classes   [2]ClassMetrics
	Accuracy  float64
	Confusion [2][2]int // [actual][predicted], index 1 is Bankrupt

	MeanHealthy     float64
	MeanRisk        float64
	RiskPercentiles []Percentile

	FalseNegatives        int
	FalseNegativeExamples []Example
	TopImportances        []Importance
}

// Evaluate runs every row of d through the pipeline. Rows the pipeline
// rejects are counted by error code and left out of the metrics.
func Evaluate(p *prediction.Pipeline, d *dataset.Dataset, opts Options, log logger.Logger) (*Report, error) {
	if opts.Target == "" {
		opts.Target = DefaultTarget
	}
	if opts.Drop == nil {
		opts.Drop = DefaultDrop
	}
	drop := append([]string{opts.Target}, opts.Drop...)

	targetCol := d.Column(opts.Target)
	if targetCol < 0 {
		return nil, fmt.Errorf("target column %q not found in columns %v", opts.Target, d.Header)
	}
	if err := p.Available(); err != nil {
		return nil, err
	}

	r := &Report{
		Header:       d.Header,
		Rows:         d.Len(),
		Failures:     map[errors.ErrorCode]int{},
		Distribution: map[string]int{},
	}

	var risks []float64
	var healthySum float64
	for i, row := range d.Rows {
		target := row[targetCol]
		r.Distribution[target]++

		result, err := p.Predict(d.Record(i, drop...))
		if err != nil {
			code := errors.CodeOf(err)
			r.Failures[code]++
			log.Debug("row rejected", map[string]interface{}{"row": i, "errorCode": string(code)})
			continue
		}
		r.Evaluated++

		actual := negative
		if prediction.IsPositiveTarget(prediction.ParseLabelText(target)) {
			actual = positive
		}
		predicted := negative
		if result.Prediction == prediction.VerdictBankrupt {
			predicted = positive
		}
		r.Confusion[actual][predicted]++

		risks = append(risks, result.PositiveProbability)
		healthySum += 1 - result.PositiveProbability

		if actual == positive && predicted == negative {
			r.FalseNegatives++
			if len(r.FalseNegativeExamples) < maxExamples {
				r.FalseNegativeExamples = append(r.FalseNegativeExamples, Example{
					Row:    i,
					Values: firstColumns(row, exampleColumns),
					Risk:   result.BankruptcyRisk,
				})
			}
		}
	}

	r.computeClassMetrics()
	if r.Evaluated > 0 {
		riskSum := 0.0
		for _, v := range risks {
			riskSum += v
		}
		r.MeanRisk = riskSum / float64(r.Evaluated) * 100
		r.MeanHealthy = healthySum / float64(r.Evaluated) * 100
		r.RiskPercentiles = percentiles(risks, Percentiles)
	}
	r.TopImportances = topImportances(opts.Importances, maxImportances)

	return r, nil
}

func (r *Report) computeClassMetrics() {
	labels := [2]string{prediction.VerdictHealthy, prediction.VerdictBankrupt}
	correct := 0
	for c := 0; c < 2; c++ {
		tp := r.Confusion[c][c]
		predicted := r.Confusion[0][c] + r.Confusion[1][c]
		support := r.Confusion[c][0] + r.Confusion[c][1]
		correct += tp

		m := ClassMetrics{Label: labels[c], Support: support}
		m.Precision = ratio(tp, predicted)
		m.Recall = ratio(tp, support)
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes[c] = m
	}
	r.Accuracy = ratio(correct, r.Evaluated)
}

// ratio returns 0 for an empty denominator.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// percentiles uses linear interpolation between closest ranks.
func percentiles(values []float64, ps []float64) []Percentile {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	out := make([]Percentile, len(ps))
	for i, p := range ps {
		pos := p / 100 * float64(len(sorted)-1)
		lo, hi := int(math.Floor(pos)), int(math.Ceil(pos))
		v := sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
		out[i] = Percentile{Percent: p, Value: v}
	}
	return out
}

func topImportances(importances []float64, k int) []Importance {
	out := make([]Importance, len(importances))
	for i, v := range importances {
		out[i] = Importance{Index: i, Value: v}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Value > out[b].Value })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func firstColumns(row []string, n int) []string {
	if len(row) < n {
		n = len(row)
	}
	return append([]string(nil), row[:n]...)
}
