package prediction

import "math"

const (
	VerdictBankrupt = "Bankrupt"
	VerdictHealthy  = "Healthy"
)

// Result is the caller-facing verdict.
type Result struct {
	Prediction         string  `json:"prediction"`
	BankruptcyRisk     float64 `json:"bankruptcy_risk"`
	HealthyProbability float64 `json:"healthy_probability"`
	Confidence         float64 `json:"confidence"`
	RawPrediction      string  `json:"raw_prediction"`
	ModelClasses       []Label `json:"model_classes"`

	Resolution Resolution `json:"-"`

	// PositiveProbability is the unrounded probability of the positive class.
	PositiveProbability float64 `json:"-"`
}

// FormatResult computes the rounded percentages. healthy is derived from the
// rounded risk so the pair always sums to exactly 100.
func FormatResult(res Resolution, probabilities []float64, positive bool, raw Label, classes []Label) *Result {
	risk := round2(probabilities[res.Index] * 100)
	healthy := round2(100 - risk)

	verdict := VerdictHealthy
	if positive {
		verdict = VerdictBankrupt
	}

	return &Result{
		Prediction:         verdict,
		BankruptcyRisk:     risk,
		HealthyProbability: healthy,
		Confidence:         math.Max(risk, healthy),
		RawPrediction:      raw.String(),
		ModelClasses:       append([]Label(nil), classes...),
		Resolution:         res,

		PositiveProbability: probabilities[res.Index],
	}
}

// round2 rounds half away from zero, which is half-up for percentages.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
