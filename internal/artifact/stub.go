package artifact

import (
	"encoding/json"

	"risk-predictor/internal/prediction"
)

// StubClassifierDocument returns a constant classifier document that always
// predicts 0 over classes [0, 1]. It lets the API run without a trained model.
func StubClassifierDocument(nFeatures int) ([]byte, error) {
	label := prediction.IntLabel(0)
	return json.MarshalIndent(classifierDocument{
		Kind:      KindClassifier,
		Type:      "constant",
		Classes:   []prediction.Label{prediction.IntLabel(0), prediction.IntLabel(1)},
		NFeatures: nFeatures,
		Label:     &label,
	}, "", "  ")
}
