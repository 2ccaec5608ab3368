// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var defaultCORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// DefaultFeatureNames is the X1..X18 financial ratio schema.
func DefaultFeatureNames() []string {
	names := make([]string, 18)
	for i := range names {
		names[i] = fmt.Sprintf("X%d", i+1)
	}
	return names
}

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := currentEnvironment()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	expandEnvVars(v)

	return finalize(v, env)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(v)

	return finalize(v, currentEnvironment())
}

func finalize(v *viper.Viper, env string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func currentEnvironment() string {
	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	return env
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			// unset variables expand to "" so overrideEmptyConfig and defaults can apply
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if val := os.Getenv("CORS_ORIGINS"); val != "" && cfg.App.Environment == "production" {
		cfg.Server.CORSOrigins = splitOrigins(val)
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}

	if cfg.Alerts.TopicARN == "" {
		if val := os.Getenv("ALERTS_TOPIC_ARN"); val != "" {
			cfg.Alerts.TopicARN = val
		}
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "risk-predictor"
	}

	// Server
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5001
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10000
	}
	if cfg.Server.BodyLimit == 0 {
		cfg.Server.BodyLimit = 1 << 20
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		switch cfg.App.Environment {
		case "development", "testing":
			cfg.Server.CORSOrigins = []string{"*"}
		default:
			cfg.Server.CORSOrigins = append([]string(nil), defaultCORSOrigins...)
		}
	}

	// Model artifacts
	if cfg.Model.Source == "" {
		cfg.Model.Source = "file"
	}
	if cfg.Model.ModelPath == "" {
		cfg.Model.ModelPath = "model.json"
	}
	if cfg.Model.EncoderPath == "" {
		cfg.Model.EncoderPath = "encoder.json"
	}
	if cfg.Model.ModelName == "" {
		cfg.Model.ModelName = "bankruptcy-classifier"
	}
	if cfg.Model.EncoderName == "" {
		cfg.Model.EncoderName = "bankruptcy-encoder"
	}

	if len(cfg.Features.Names) == 0 {
		cfg.Features.Names = DefaultFeatureNames()
	}

	// Database defaults
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// Cache
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "prediction"
	}

	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	// Alerts
	if cfg.Alerts.RiskThreshold == 0 {
		cfg.Alerts.RiskThreshold = 75
	}
	if cfg.Alerts.Timeout == 0 {
		cfg.Alerts.Timeout = 5000
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	seen := make(map[string]struct{}, len(cfg.Features.Names))
	for _, name := range cfg.Features.Names {
		if name == "" {
			return fmt.Errorf("features.names must not contain empty names")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("features.names contains duplicate %q", name)
		}
		seen[name] = struct{}{}
	}
	for _, name := range cfg.Features.Categorical {
		if _, ok := seen[name]; !ok {
			return fmt.Errorf("features.categorical %q is not a declared feature", name)
		}
	}

	switch cfg.Model.Source {
	case "file":
	case "postgres":
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required when model.source is postgres")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required when model.source is postgres")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required when model.source is postgres")
		}
	default:
		return fmt.Errorf("model.source must be file or postgres, got %q", cfg.Model.Source)
	}

	if cfg.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when cache is enabled")
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	if cfg.Alerts.Enabled && cfg.Alerts.TopicARN == "" {
		return fmt.Errorf("alerts.topic_arn is required when alerts are enabled")
	}
	if cfg.Alerts.RiskThreshold < 0 || cfg.Alerts.RiskThreshold > 100 {
		return fmt.Errorf("alerts.risk_threshold must be within 0..100")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
