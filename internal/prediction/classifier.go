package prediction

// Classifier is a pre-trained probabilistic classifier. Implementations
// must be safe for concurrent use and must not change after construction.
type Classifier interface {
	// Classes lists the class labels; PredictProbabilities is aligned with it.
	Classes() []Label
	// InputWidth is the expected encoded row length, or 0 when unknown.
	InputWidth() int
	PredictLabel(x []float64) (Label, error)
	PredictProbabilities(x []float64) ([]float64, error)
}
