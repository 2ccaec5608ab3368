// internal/workers/risk/predict-bankruptcy/models.go
package predictbankruptcy

import "risk-predictor/internal/prediction"

type Input struct {
	Features map[string]interface{} `json:"features"`
}

type Output struct {
	RiskPrediction *prediction.Result `json:"riskPrediction"`
	RequestID      string             `json:"riskPredictionRequestId"`
}
