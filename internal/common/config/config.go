// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Server   ServerConfig            `mapstructure:"server"`
	Model    ModelConfig             `mapstructure:"model"`
	Features FeaturesConfig          `mapstructure:"features"`
	Database DatabaseConfig          `mapstructure:"database"`
	Cache    CacheConfig             `mapstructure:"cache"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Alerts   AlertsConfig            `mapstructure:"alerts"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig drives the HTTP API and the health/metrics listener.
type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	MetricsPort  int      `mapstructure:"metrics_port"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	ReadTimeout  int      `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int      `mapstructure:"write_timeout"` // milliseconds
	BodyLimit    int      `mapstructure:"body_limit"`    // bytes
}

// Address returns the listen address for the API.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

// MetricsAddress returns the listen address for /health, /ready and /metrics.
func (s ServerConfig) MetricsAddress() string {
	return fmt.Sprintf(":%d", s.MetricsPort)
}

// AllowsAnyOrigin reports whether CORS is open to every origin.
func (s ServerConfig) AllowsAnyOrigin() bool {
	for _, o := range s.CORSOrigins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}

// ModelConfig tells the artifact loader where the classifier and encoder live.
type ModelConfig struct {
	Source      string `mapstructure:"source"` // "file" or "postgres"
	ModelPath   string `mapstructure:"model_path"`
	EncoderPath string `mapstructure:"encoder_path"`
	ModelName   string `mapstructure:"model_name"`
	EncoderName string `mapstructure:"encoder_name"`
}

// FeaturesConfig declares the ordered feature schema.
type FeaturesConfig struct {
	Names       []string `mapstructure:"names"`
	Categorical []string `mapstructure:"categorical"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"ssl_mode"`
}

// GetDSN returns the lib/pq connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig controls the Redis prediction cache.
type CacheConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	TTL       int    `mapstructure:"ttl"` // seconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// AlertsConfig controls SNS notifications for high-risk verdicts.
type AlertsConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Region        string  `mapstructure:"region"`
	TopicARN      string  `mapstructure:"topic_arn"`
	RiskThreshold float64 `mapstructure:"risk_threshold"` // percent
	Timeout       int     `mapstructure:"timeout"`        // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
