// internal/alerts/publisher.go
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"risk-predictor/internal/common/errors"
)

const alertSubject = "High bankruptcy risk"

// Alert describes a Bankrupt verdict at or above the configured risk threshold.
type Alert struct {
	RequestID        string    `json:"request_id"`
	Prediction       string    `json:"prediction"`
	BankruptcyRisk   float64   `json:"bankruptcy_risk"`
	Confidence       float64   `json:"confidence"`
	Threshold        float64   `json:"threshold"`
	ModelFingerprint string    `json:"model_fingerprint"`
	Transport        string    `json:"transport"`
	RaisedAt         time.Time `json:"raised_at"`
}

type Publisher interface {
	Publish(ctx context.Context, alert Alert) error
}

// MessagePublisher is satisfied by aws.SNSClient.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, topicARN, subject, message string, attributes map[string]string) (string, error)
}

// SNSPublisher sends alerts to a single SNS topic.
type SNSPublisher struct {
	client   MessagePublisher
	topicARN string
	timeout  time.Duration
}

func NewSNSPublisher(client MessagePublisher, topicARN string, timeout time.Duration) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN, timeout: timeout}
}

func (p *SNSPublisher) Publish(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return errors.NewAlertPublishFailedError(fmt.Errorf("marshal alert: %w", err))
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	attrs := map[string]string{
		"prediction":       alert.Prediction,
		"modelFingerprint": alert.ModelFingerprint,
	}
	if _, err := p.client.PublishMessage(ctx, p.topicARN, alertSubject, string(body), attrs); err != nil {
		return errors.NewAlertPublishFailedError(err)
	}
	return nil
}

// NoopPublisher drops alerts when delivery is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Alert) error { return nil }
