// internal/service/service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"risk-predictor/internal/alerts"
	"risk-predictor/internal/common/errors"
	"risk-predictor/internal/common/logger"
	"risk-predictor/internal/common/metrics"
	"risk-predictor/internal/common/observability"
	"risk-predictor/internal/prediction"

	"github.com/google/uuid"
)

// Transport names used as metric labels.
const (
	TransportHTTP     = "http"
	TransportWorkflow = "workflow"
	TransportCLI      = "cli"
)

// Cache is the prediction record store consulted before the pipeline runs.
type Cache interface {
	Key(fingerprint string, features map[string]interface{}) (string, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, record []byte) error
}

type Options struct {
	Cache              Cache
	Alerts             alerts.Publisher
	AlertThreshold     float64
	ModelFingerprint   string
	EncoderFingerprint string
	Observability      *observability.Observability
}

// Service wraps the prediction pipeline for the HTTP API, the workflow
// worker and the offline tools.
type Service struct {
	pipeline  *prediction.Pipeline
	cache     Cache
	alerts    alerts.Publisher
	threshold float64
	modelFP   string
	encoderFP string
	obs       *observability.Observability
	logger    logger.Logger
}

// Response carries the verdict and its serialized record. Record is what
// transports return; a cache hit returns the stored bytes unchanged.
type Response struct {
	RequestID string
	Result    *prediction.Result
	Record    []byte
	Cached    bool
}

// HealthStatus mirrors GET /api/health.
type HealthStatus struct {
	Status             string `json:"status"`
	ModelLoaded        bool   `json:"model_loaded"`
	EncoderLoaded      bool   `json:"encoder_loaded"`
	ModelFingerprint   string `json:"model_fingerprint,omitempty"`
	EncoderFingerprint string `json:"encoder_fingerprint,omitempty"`
	PositiveClassStep  string `json:"positive_class_step,omitempty"`
}

func New(pipeline *prediction.Pipeline, opts Options, log logger.Logger) *Service {
	pub := opts.Alerts
	if pub == nil {
		pub = alerts.NoopPublisher{}
	}
	return &Service{
		pipeline:  pipeline,
		cache:     opts.Cache,
		alerts:    pub,
		threshold: opts.AlertThreshold,
		modelFP:   opts.ModelFingerprint,
		encoderFP: opts.EncoderFingerprint,
		obs:       opts.Observability,
		logger:    log.WithFields(map[string]interface{}{"component": "service"}),
	}
}

type requestIDKey struct{}

// WithRequestID lets a transport supply its own request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func (s *Service) Schema() *prediction.FeatureSchema { return s.pipeline.Schema() }

func (s *Service) Health() HealthStatus {
	h := HealthStatus{
		Status:        "ok",
		ModelLoaded:   s.pipeline.ClassifierLoaded(),
		EncoderLoaded: s.pipeline.EncoderLoaded(),
	}
	if h.ModelLoaded {
		h.ModelFingerprint = s.modelFP
		h.PositiveClassStep = string(s.pipeline.Resolution().Step)
	}
	if h.EncoderLoaded {
		h.EncoderFingerprint = s.encoderFP
	}
	return h
}

// Predict runs one feature record. Errors are *errors.StandardError values
// from the pipeline; cache and alert failures are logged and never returned.
func (s *Service) Predict(ctx context.Context, input map[string]interface{}, transport string) (*Response, error) {
	start := time.Now()
	requestID := requestIDFrom(ctx)
	log := s.logger.WithFields(map[string]interface{}{
		"requestId": requestID,
		"transport": transport,
	})

	cacheKey := s.cacheKey(input, log)
	if cacheKey != "" {
		if resp := s.lookup(ctx, cacheKey, requestID, log); resp != nil {
			s.observe(ctx, transport, start, resp.Result.Prediction)
			log.Info("prediction served from cache", map[string]interface{}{
				"prediction":     resp.Result.Prediction,
				"bankruptcyRisk": resp.Result.BankruptcyRisk,
			})
			return resp, nil
		}
	}

	result, err := s.pipeline.Predict(input)
	if err != nil {
		s.fail(ctx, transport, start, err, log)
		return nil, err
	}

	record, err := json.Marshal(result)
	if err != nil {
		internal := errors.NewInternalPredictionFailureError(err)
		s.fail(ctx, transport, start, internal, log)
		return nil, internal
	}

	metrics.ClassResolution.WithLabelValues(string(result.Resolution.Step)).Inc()

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, record); err != nil {
			log.Warn("failed to store prediction in cache", map[string]interface{}{"error": err})
		}
	}

	s.maybeAlert(ctx, requestID, transport, result, log)
	s.observe(ctx, transport, start, result.Prediction)

	log.Info("prediction completed", map[string]interface{}{
		"prediction":     result.Prediction,
		"bankruptcyRisk": result.BankruptcyRisk,
		"rawPrediction":  result.RawPrediction,
		"durationMs":     time.Since(start).Milliseconds(),
	})

	return &Response{RequestID: requestID, Result: result, Record: record}, nil
}

// cacheKey projects the input onto the schema so unrelated keys in the
// request do not split cache entries. An empty key disables caching.
func (s *Service) cacheKey(input map[string]interface{}, log logger.Logger) string {
	if s.cache == nil || s.modelFP == "" || s.pipeline.Available() != nil {
		return ""
	}
	projected := make(map[string]interface{}, s.pipeline.Schema().Len())
	for _, name := range s.pipeline.Schema().Names() {
		if v, ok := input[name]; ok {
			projected[name] = v
		}
	}
	fingerprint := s.modelFP
	if s.pipeline.EncoderLoaded() && s.encoderFP != "" {
		fingerprint += "." + s.encoderFP
	}
	key, err := s.cache.Key(fingerprint, projected)
	if err != nil {
		log.Debug("prediction not cacheable", map[string]interface{}{"error": err})
		return ""
	}
	return key
}

func (s *Service) lookup(ctx context.Context, key, requestID string, log logger.Logger) *Response {
	record, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.PredictionCache.WithLabelValues("error").Inc()
		log.Warn("prediction cache lookup failed", map[string]interface{}{"error": err})
		return nil
	}
	if !hit {
		metrics.PredictionCache.WithLabelValues("miss").Inc()
		return nil
	}

	var result prediction.Result
	if err := json.Unmarshal(record, &result); err != nil {
		metrics.PredictionCache.WithLabelValues("error").Inc()
		log.Warn("discarding unreadable cache entry", map[string]interface{}{"error": err})
		return nil
	}
	result.Resolution = s.pipeline.Resolution()

	metrics.PredictionCache.WithLabelValues("hit").Inc()
	return &Response{RequestID: requestID, Result: &result, Record: record, Cached: true}
}

func (s *Service) maybeAlert(ctx context.Context, requestID, transport string, result *prediction.Result, log logger.Logger) {
	if result.Prediction != prediction.VerdictBankrupt || result.BankruptcyRisk < s.threshold {
		return
	}

	err := s.alerts.Publish(ctx, alerts.Alert{
		RequestID:        requestID,
		Prediction:       result.Prediction,
		BankruptcyRisk:   result.BankruptcyRisk,
		Confidence:       result.Confidence,
		Threshold:        s.threshold,
		ModelFingerprint: s.modelFP,
		Transport:        transport,
		RaisedAt:         time.Now().UTC(),
	})
	if err != nil {
		metrics.RiskAlerts.WithLabelValues("failed").Inc()
		log.Warn("failed to publish risk alert", map[string]interface{}{"error": err})
		return
	}
	metrics.RiskAlerts.WithLabelValues("sent").Inc()
}

func (s *Service) observe(ctx context.Context, transport string, start time.Time, verdict string) {
	elapsed := time.Since(start)
	metrics.PredictionsTotal.WithLabelValues(verdict).Inc()
	metrics.PredictionDuration.WithLabelValues(transport).Observe(elapsed.Seconds())
	s.obs.RecordPrediction(ctx, "success")
	s.obs.RecordPredictionDuration(ctx, elapsed, "success")
}

func (s *Service) fail(ctx context.Context, transport string, start time.Time, err error, log logger.Logger) {
	elapsed := time.Since(start)
	code := errors.CodeOf(err)
	metrics.PredictionFailures.WithLabelValues(string(code)).Inc()
	metrics.PredictionDuration.WithLabelValues(transport).Observe(elapsed.Seconds())
	s.obs.RecordPrediction(ctx, "error")
	s.obs.RecordPredictionDuration(ctx, elapsed, "error")

	fields := map[string]interface{}{
		"errorCode":     string(code),
		"errorCategory": errors.GetErrorCategory(code),
	}
	if std, ok := errors.AsStandardError(err); ok && errors.GetErrorCategory(code) == "CLIENT" {
		fields["error"] = std.Message
		log.Warn("prediction rejected", fields)
		return
	}
	log.Error("prediction failed", fields)
}
