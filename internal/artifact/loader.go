package artifact

import (
	"context"
	stderrors "errors"

	"risk-predictor/internal/common/errors"
	"risk-predictor/internal/common/logger"
	"risk-predictor/internal/common/metrics"
	"risk-predictor/internal/prediction"
)

// Set holds the artifacts loaded at start. A nil member failed to load.
type Set struct {
	Classifier            prediction.Classifier
	Encoder               prediction.Encoder
	ClassifierFingerprint string
	EncoderFingerprint    string
}

// Loader loads the classifier and encoder once from a Source.
type Loader struct {
	source Source
	logger logger.Logger
}

func NewLoader(source Source, log logger.Logger) *Loader {
	return &Loader{source: source, logger: log.WithFields(map[string]interface{}{"component": "artifact-loader"})}
}

// Load never fails as a whole: an artifact that cannot be fetched or decoded
// is logged and left nil so the pipeline can report it as unavailable.
// encoderRequired only changes how loudly a missing encoder is logged.
func (l *Loader) Load(ctx context.Context, encoderRequired bool) *Set {
	set := &Set{}

	if doc, ok := l.fetch(ctx, KindClassifier, true); ok {
		clf, err := DecodeClassifier(doc)
		if err != nil {
			l.logFailure(KindClassifier, err, true)
		} else {
			set.Classifier = clf
			set.ClassifierFingerprint = Fingerprint(doc)
		}
	}

	if doc, ok := l.fetch(ctx, KindEncoder, encoderRequired); ok {
		enc, err := DecodeEncoder(doc)
		if err != nil {
			l.logFailure(KindEncoder, err, encoderRequired)
		} else {
			set.Encoder = enc
			set.EncoderFingerprint = Fingerprint(doc)
		}
	}

	metrics.SetArtifactLoaded(KindClassifier, set.Classifier != nil)
	metrics.SetArtifactLoaded(KindEncoder, set.Encoder != nil)

	if set.Classifier != nil {
		l.logger.Info("classifier loaded", map[string]interface{}{
			"fingerprint": set.ClassifierFingerprint,
			"inputWidth":  set.Classifier.InputWidth(),
		})
	}
	if set.Encoder != nil {
		l.logger.Info("encoder loaded", map[string]interface{}{
			"fingerprint": set.EncoderFingerprint,
			"width":       set.Encoder.Width(),
		})
	}

	return set
}

func (l *Loader) fetch(ctx context.Context, kind string, required bool) ([]byte, bool) {
	doc, location, err := l.source.Fetch(ctx, kind)
	if err == nil {
		return doc, true
	}

	if stderrors.Is(err, ErrNotFound) {
		fields := map[string]interface{}{"artifact": kind, "location": location}
		if required {
			l.logger.Warn("artifact not found", fields)
		} else {
			l.logger.Debug("artifact not found", fields)
		}
		return nil, false
	}

	l.logFailure(kind, errors.NewArtifactLoadFailedError(kind, location, err), required)
	return nil, false
}

func (l *Loader) logFailure(kind string, err error, required bool) {
	std := errors.Normalize(err)
	fields := map[string]interface{}{
		"artifact":  kind,
		"errorCode": string(std.Code),
		"details":   std.Details,
	}
	if required {
		l.logger.Error("artifact failed to load", fields)
	} else {
		l.logger.Warn("artifact failed to load", fields)
	}
}

// Pipeline wires the loaded artifacts to schema.
func (s *Set) Pipeline(schema *prediction.FeatureSchema, log logger.Logger) *prediction.Pipeline {
	return prediction.NewPipeline(schema, s.Classifier, s.Encoder, log)
}

// FeatureImportances returns the classifier's split importances when it
// exposes them.
func (s *Set) FeatureImportances() []float64 {
	if fi, ok := s.Classifier.(interface{ FeatureImportances() []float64 }); ok {
		return fi.FeatureImportances()
	}
	return nil
}
