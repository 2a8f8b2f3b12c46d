package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/researchd/internal/agents"
	"github.com/fyrsmithlabs/researchd/internal/config"
	"github.com/fyrsmithlabs/researchd/internal/llm"
	"github.com/fyrsmithlabs/researchd/internal/logging"
	"github.com/fyrsmithlabs/researchd/internal/orchestrator"
	"github.com/fyrsmithlabs/researchd/internal/runner"
	"github.com/fyrsmithlabs/researchd/internal/telemetry"
	"github.com/fyrsmithlabs/researchd/internal/tracing"
)

type rootFlags struct {
	configPath     string
	timeout        time.Duration
	metricsAddr    string
	parallelSearch bool
}

func runResearch(ctx context.Context, query string, flags rootFlags) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	tel, err := telemetry.New(ctx, telemetryConfig(cfg))
	if err != nil {
		return err
	}
	defer tel.Shutdown(context.Background()) //nolint:errcheck
	if degraded, reason := tel.Degraded(); degraded {
		log.Warn(ctx, "telemetry degraded", zap.String("reason", reason))
	}

	tracer := tracing.New(tel.Tracer("researchd"), log.Named("trace"))

	if flags.metricsAddr != "" {
		go serveMetrics(ctx, log, flags.metricsAddr)
	}

	driver, err := buildDriver(ctx, cfg, tracer, log, flags.parallelSearch)
	if err != nil {
		return err
	}

	failed := false
	for line := range driver.Run(ctx, query) {
		fmt.Println(line)
		if strings.HasPrefix(line, "research failed:") {
			failed = true
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed {
		return fmt.Errorf("research run failed")
	}
	return nil
}

// buildDriver wires the LLM clients, agents, runner, and orchestration
// driver from configuration.
func buildDriver(ctx context.Context, cfg *config.Config, tracer *tracing.Tracer, log *logging.Logger, parallelSearch bool) (*orchestrator.Driver, error) {
	chat, err := llm.NewOpenAI(cfg.LLM.OpenAI)
	if err != nil {
		return nil, err
	}

	// Validation runs on the Google model when configured; otherwise the
	// chat model covers it.
	var validator agents.Completer = chat
	if cfg.LLM.Google.APIKey.Value() != "" {
		googleClient, err := llm.NewGoogleAI(ctx, cfg.LLM.Google)
		if err != nil {
			return nil, err
		}
		validator = googleClient
	} else {
		log.Warn(ctx, "no google api key configured, validating with the chat model")
	}

	r := runner.New(runner.Options{
		Tracer:  tracer,
		Logger:  log.Named("runner"),
		Metrics: runner.NewMetrics(prometheus.DefaultRegisterer),
	})
	agents.RegisterAll(r, agents.Deps{
		Chat:        chat,
		Validator:   validator,
		MaxSearches: cfg.Pipeline.MaxSearches,
		Tracer:      tracer,
		Logger:      log.Named("agents"),
	})

	return orchestrator.New(orchestrator.Options{
		Runner:            r,
		Tracer:            tracer,
		Logger:            log.Named("orchestrator"),
		MaxSearches:       cfg.Pipeline.MaxSearches,
		IncludeValidation: cfg.Pipeline.IncludeValidation,
		ParallelSearch:    parallelSearch,
		StepTimeout:       cfg.Pipeline.StepTimeout.Duration(),
	}), nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logCfg := logging.NewDefaultConfig()
	logCfg.Format = cfg.Logging.Format
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logCfg.Level = level
	return logging.New(logCfg)
}

func telemetryConfig(cfg *config.Config) *telemetry.Config {
	telCfg := telemetry.NewDefaultConfig()
	telCfg.Enabled = cfg.Observability.EnableTelemetry
	telCfg.Endpoint = cfg.Observability.Endpoint
	telCfg.Protocol = cfg.Observability.Protocol
	telCfg.ServiceName = cfg.Observability.ServiceName
	telCfg.ServiceVersion = version
	telCfg.Insecure = cfg.Observability.Insecure
	return telCfg
}

// serveMetrics exposes the Prometheus registry until ctx is done.
func serveMetrics(ctx context.Context, log *logging.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics server stopped", zap.Error(err))
	}
}
