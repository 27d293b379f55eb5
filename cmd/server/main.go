// TelemetryFlow engine process - wires the ingestion pipeline, threshold
// bridge, and execution engine together and runs until signalled to stop.
//
// There is no bundled HTTP/gRPC surface, persistence engine, or CLI here:
// those are explicitly out of scope for the core (see SPEC_FULL.md §6).
// A deployment wires its own transport and repository implementations
// against the ports this module exposes (pkg/telemetry.WorkflowRepository,
// pkg/telemetry.TelemetryRepository) and calls into pkg/engine directly.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/smilemakc/telemetryflow/internal/config"
	"github.com/smilemakc/telemetryflow/internal/logger"
	"github.com/smilemakc/telemetryflow/pkg/engine"
	"github.com/smilemakc/telemetryflow/pkg/telemetry"
	"github.com/smilemakc/telemetryflow/pkg/threshold"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	logger.SetDefault(appLogger)

	appLogger.Info("starting telemetryflow engine",
		"maxSteps", cfg.Engine.MaxSteps,
		"stepTimeout", cfg.Engine.StepTimeout,
	)

	analysisCache, err := buildAnalysisCache(cfg.Analysis)
	if err != nil {
		appLogger.Error("failed to build analysis cache", "error", err)
		os.Exit(1)
	}

	thresholds := threshold.NewRegistry()
	rolling := telemetry.NewRollingWindow(nil)
	analyzer := telemetry.NewAnalyzer(analysisCache)

	eng := engine.New(engine.ExecutionOptions{
		StepTimeout:         cfg.Engine.StepTimeout,
		MaxSteps:            cfg.Engine.MaxSteps,
		ActionCacheCapacity: cfg.Engine.ActionCacheCapacity,
	}, nil)

	// Wired here for a deployment's repository implementations and
	// transport to build on; this process only proves the composition
	// succeeds and then idles until signalled to stop.
	_ = eng
	_ = thresholds
	_ = rolling
	_ = analyzer

	appLogger.Info("telemetryflow engine ready; repository and transport wiring is the deployment's responsibility")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	appLogger.Info("shutting down telemetryflow engine")
}

func buildAnalysisCache(cfg config.AnalysisCacheConfig) (telemetry.AnalysisCache, error) {
	if cfg.Backend == "redis" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return telemetry.NewRedisCache(redis.NewClient(opts)), nil
	}
	return telemetry.NewMapCache(nil), nil
}
