// internal/workers/risk/predict-bankruptcy/config.go
package predictbankruptcy

import (
	"time"

	"risk-predictor/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
}

func LoadConfig(cfg *config.Config) *Config {
	w := config.GetWorkerConfig(cfg, WorkerName)
	return &Config{
		Timeout:       config.GetDuration(w.Timeout),
		MaxJobsActive: w.MaxJobsActive,
	}
}
