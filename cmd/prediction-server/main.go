// cmd/prediction-server/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"risk-predictor/internal/alerts"
	"risk-predictor/internal/api"
	"risk-predictor/internal/artifact"
	"risk-predictor/internal/cache"
	"risk-predictor/internal/common/aws"
	"risk-predictor/internal/common/camunda"
	"risk-predictor/internal/common/config"
	"risk-predictor/internal/common/database"
	"risk-predictor/internal/common/logger"
	"risk-predictor/internal/common/observability"
	"risk-predictor/internal/prediction"
	"risk-predictor/internal/service"
	predictbankruptcy "risk-predictor/internal/workers/risk/predict-bankruptcy"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting prediction server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("modelSource", cfg.Model.Source),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schema, err := prediction.NewFeatureSchema(cfg.Features.Names, cfg.Features.Categorical)
	if err != nil {
		zapLog.Fatal("invalid feature schema", zap.Error(err))
	}

	// --- Artifacts ---
	var source artifact.Source
	switch cfg.Model.Source {
	case "postgres":
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		source = artifact.NewPostgresSource(pg, cfg.Model.ModelName, cfg.Model.EncoderName)
	default:
		source = &artifact.FileSource{ModelPath: cfg.Model.ModelPath, EncoderPath: cfg.Model.EncoderPath}
	}

	set := artifact.NewLoader(source, log).Load(ctx, schema.HasCategorical())
	pipeline := set.Pipeline(schema, log)
	if err := pipeline.Available(); err != nil {
		zapLog.Warn("serving without a complete model; predictions will return 503", zap.Error(err))
	}

	opts := service.Options{
		AlertThreshold:   cfg.Alerts.RiskThreshold,
		ModelFingerprint: set.ClassifierFingerprint,
		Observability:    obs,
	}
	if pipeline.EncoderLoaded() {
		opts.EncoderFingerprint = set.EncoderFingerprint
	}

	// --- Prediction cache ---
	if cfg.Cache.Enabled {
		rc := database.NewRedis(cfg.Database.Redis)
		if err := rc.Ping(ctx); err != nil {
			zapLog.Warn("redis unavailable, prediction cache disabled", zap.Error(err))
			_ = rc.Close()
		} else {
			defer rc.Close()
			opts.Cache = cache.NewPredictionCache(rc.Client, cfg.Cache.KeyPrefix, time.Duration(cfg.Cache.TTL)*time.Second)
			zapLog.Info("Prediction cache enabled", zap.Int("ttlSeconds", cfg.Cache.TTL))
		}
	}

	// --- Risk alerts ---
	if cfg.Alerts.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Alerts.Region)
		if err != nil {
			zapLog.Fatal("failed to create SNS client", zap.Error(err))
		}
		opts.Alerts = alerts.NewSNSPublisher(snsClient, cfg.Alerts.TopicARN, config.GetDuration(cfg.Alerts.Timeout))
		zapLog.Info("Risk alerts enabled", zap.Float64("threshold", cfg.Alerts.RiskThreshold))
	}

	svc := service.New(pipeline, opts, log)

	// --- Workflow worker ---
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled && config.IsWorkerEnabled(cfg, predictbankruptcy.WorkerName) {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
				RetryConfig:            camunda.DefaultRetryConfig,
			})
			return err
		}, 5, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()

		workerCfg := predictbankruptcy.LoadConfig(cfg)
		handler := predictbankruptcy.NewHandler(workerCfg, svc, log)
		w := camunda.NewWorker(zeebe.GetClient(), predictbankruptcy.TaskType, workerCfg.MaxJobsActive, handler, log)
		defer w.Stop()
	}

	// --- Health & Metrics Server ---
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	metricsMux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if pipeline.Available() != nil {
			writeStatus(w, http.StatusServiceUnavailable, "model not loaded")
			return
		}
		if zeebe != nil {
			hctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := zeebe.HealthCheck(hctx); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, "workflow engine unreachable")
				return
			}
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.Server.MetricsAddress(), Handler: metricsMux}

	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	// --- API ---
	app := api.NewServer(svc, cfg.Server, log)
	go func() {
		zapLog.Info("API listening", zap.String("addr", cfg.Server.Address()))
		if err := app.Listen(cfg.Server.Address()); err != nil {
			zapLog.Error("api server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutting down prediction server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zapLog.Error("api shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("metrics server shutdown failed", zap.Error(err))
	}
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
