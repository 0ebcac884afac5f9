package main

import (
	"os"

	"github.com/hibiken/asynq"

	"github.com/embervale/backend-vapor/internal/common"
	"github.com/embervale/backend-vapor/internal/config"
	"github.com/embervale/backend-vapor/internal/notify"
	"github.com/embervale/backend-vapor/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "vapor")
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	queueOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse queue redis uri")
	}

	srv := asynq.NewServer(queueOpt, asynq.Config{
		Concurrency: cfg.QueueConcurrency,
		Queues: map[string]int{
			"default": 1,
		},
	})

	worker := &notify.Worker{
		Email: common.NopEmailSender{},
		Log:   logger,
	}

	mux := asynq.NewServeMux()
	worker.Register(mux)

	logger.Info().Int("concurrency", cfg.QueueConcurrency).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker shutdown complete")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
