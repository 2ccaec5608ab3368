package prediction

import (
	"fmt"
	"math"
	"slices"

	"risk-predictor/internal/common/errors"
	"risk-predictor/internal/common/logger"
)

const probabilityTolerance = 1e-6

// Pipeline runs one request through builder, encoder, classifier, resolver
// and formatter. It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	schema     *FeatureSchema
	classifier Classifier
	encoder    Encoder
	resolution Resolution
	logger     logger.Logger
}

// NewPipeline wires loaded artifacts to a schema. A nil classifier or a nil
// encoder (when the schema has categorical slots) leaves the pipeline in an
// unavailable state; Predict then reports ARTIFACT_UNAVAILABLE. An encoder
// fitted on different categorical features is treated as not loaded.
func NewPipeline(schema *FeatureSchema, clf Classifier, enc Encoder, log logger.Logger) *Pipeline {
	p := &Pipeline{
		schema:     schema,
		classifier: clf,
		logger:     log.WithFields(map[string]interface{}{"component": "prediction"}),
	}

	if schema.HasCategorical() && enc != nil {
		if !slices.Equal(enc.Features(), schema.CategoricalNames()) {
			p.logger.Error("encoder fitted on different categorical features", map[string]interface{}{
				"encoderFeatures": enc.Features(),
				"schemaFeatures":  schema.CategoricalNames(),
			})
			enc = nil
		}
	}
	if schema.HasCategorical() {
		p.encoder = enc
	}

	if clf != nil {
		classes := clf.Classes()
		p.resolution = ResolvePositiveClass(classes)
		fields := map[string]interface{}{
			"classes":       labelStrings(classes),
			"positiveIndex": p.resolution.Index,
			"step":          string(p.resolution.Step),
		}
		if p.resolution.Step.Fallback() {
			p.logger.Warn("positive class not recognized from labels, using positional default", fields)
		} else {
			p.logger.Info("positive class resolved", fields)
		}
	}

	return p
}

func (p *Pipeline) Schema() *FeatureSchema { return p.schema }

// Resolution returns the positive class resolution for the loaded classifier.
func (p *Pipeline) Resolution() Resolution { return p.resolution }

func (p *Pipeline) ClassifierLoaded() bool { return p.classifier != nil }

// EncoderLoaded reports whether an encoder is in use. It is false for
// all-numeric schemas, which need none.
func (p *Pipeline) EncoderLoaded() bool { return p.encoder != nil }

// Available returns ARTIFACT_UNAVAILABLE when a required artifact is missing.
func (p *Pipeline) Available() error {
	if p.classifier == nil {
		return errors.NewArtifactUnavailableError(errors.ArtifactClassifier)
	}
	if p.schema.HasCategorical() && p.encoder == nil {
		return errors.NewArtifactUnavailableError(errors.ArtifactEncoder)
	}
	return nil
}

// Predict validates input and returns the verdict, or a *errors.StandardError.
func (p *Pipeline) Predict(input map[string]interface{}) (*Result, error) {
	if err := p.Available(); err != nil {
		return nil, err
	}

	fv, err := BuildFeatureVector(input, p.schema)
	if err != nil {
		return nil, err
	}

	row, err := p.encode(fv)
	if err != nil {
		return nil, err
	}

	if width := p.classifier.InputWidth(); width > 0 && width != len(row) {
		return nil, errors.NewEncodingWidthMismatchError(width, len(row))
	}

	return p.classify(row)
}

// encode concatenates the one-hot block and the numeric values.
func (p *Pipeline) encode(fv *FeatureVector) ([]float64, error) {
	if p.encoder == nil {
		return append([]float64(nil), fv.Numeric...), nil
	}

	encoded, err := p.encoder.Transform(fv.Categorical)
	if err != nil {
		return nil, err
	}
	if len(encoded) != p.encoder.Width() {
		return nil, errors.NewEncodingWidthMismatchError(p.encoder.Width(), len(encoded))
	}

	row := make([]float64, 0, len(encoded)+len(fv.Numeric))
	row = append(row, encoded...)
	return append(row, fv.Numeric...), nil
}

func (p *Pipeline) classify(row []float64) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = p.internalFailure(fmt.Errorf("classifier panic: %v", r))
			result = nil
		}
	}()

	classes := p.classifier.Classes()
	if len(classes) == 0 {
		return nil, p.internalFailure(fmt.Errorf("classifier declares no classes"))
	}

	label, err := p.classifier.PredictLabel(row)
	if err != nil {
		return nil, p.internalFailure(fmt.Errorf("predict label: %w", err))
	}

	proba, err := p.classifier.PredictProbabilities(row)
	if err != nil {
		return nil, p.internalFailure(fmt.Errorf("predict probabilities: %w", err))
	}
	if err := checkProbabilities(proba, len(classes)); err != nil {
		return nil, p.internalFailure(err)
	}

	positive := IsPositive(label, classes, p.resolution)
	return FormatResult(p.resolution, proba, positive, label, classes), nil
}

func (p *Pipeline) internalFailure(cause error) error {
	p.logger.Error("prediction failed", map[string]interface{}{
		"cause": cause,
	})
	return errors.NewInternalPredictionFailureError(cause)
}

func checkProbabilities(proba []float64, classes int) error {
	if len(proba) != classes {
		return fmt.Errorf("classifier returned %d probabilities for %d classes", len(proba), classes)
	}
	sum := 0.0
	for _, v := range proba {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("classifier returned probability %v", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return fmt.Errorf("classifier probabilities sum to %v", sum)
	}
	return nil
}

func labelStrings(labels []Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.String()
	}
	return out
}
