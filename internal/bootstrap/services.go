package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/target/vista-ui/config"
	"github.com/target/vista-ui/internal/adapters/apiclient"
	"github.com/target/vista-ui/internal/observability/statsd"
	"github.com/target/vista-ui/internal/service"
)

const shutdownWaitTimeout = 10 * time.Second

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Storage  StorageBackend
	Sessions *service.SessionRegistry
	API      *apiclient.Client
	Calendar *service.CalendarService
	Metrics  *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config  *config.AppConfig
	Storage StorageBackend
	Logger  *slog.Logger
}

// NewServices wires the API client, session registry and calendar service.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require config")
	}
	if deps.Storage == nil {
		return ServiceContainer{}, errors.New("service deps require storage")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	metrics := buildMetrics(logger, cfg.Observability.Metrics)

	api, err := apiclient.New(apiclient.Config{
		BaseURL:          cfg.API.BaseURL,
		Timeout:          cfg.API.Timeout,
		ErrorMessagePath: cfg.API.ErrorMessagePath,
		Metrics:          metrics,
		Logger:           logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create api client: %w", err)
	}

	sessions := service.NewSessionRegistry(service.SessionRegistryOptions{
		Storage:  deps.Storage,
		APIs:     api,
		Capacity: cfg.Session.RegistryCapacity,
		IdleTTL:  cfg.Session.RegistryIdleTTL,
		Metrics:  metrics,
		Logger:   logger,
	})

	return ServiceContainer{
		Storage:  deps.Storage,
		Sessions: sessions,
		API:      api,
		Calendar: service.NewCalendarService(service.CalendarServiceOptions{Logger: logger}),
		Metrics:  metrics,
	}, nil
}

// buildMetrics returns a StatsD client; a disabled or failing config yields
// a client that discards everything.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err == nil {
		return client
	}
	logger.Error("failed to initialise statsd client", "error", err)
	disabled, _ := statsd.NewClient(statsd.Config{})
	return disabled
}

// ServiceOrchestrationConfig contains dependencies for running the web server.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Health   func(ctx context.Context) error
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts the HTTP server and blocks until SIGINT,
// SIGTERM or a server failure.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	server, err := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Health:   cfg.Health,
		Logger:   logger,
		ErrCh:    errCh,
	})
	if err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return waitForShutdown(shutdownConfig{
		quit:       quit,
		errCh:      errCh,
		httpServer: server,
		metrics:    cfg.Services.Metrics,
		timeout:    cfg.Config.HTTP.ShutdownTimeout,
		logger:     logger,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	quit       <-chan os.Signal
	errCh      <-chan error
	httpServer *http.Server
	metrics    *statsd.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// waitForShutdown waits for shutdown signal or server error.
func waitForShutdown(cfg shutdownConfig) error {
	select {
	case sig := <-cfg.quit:
		cfg.logger.Info("shutting down services...", "signal", sig.String())
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop drains the HTTP server and flushes metrics.
func gracefulStop(cfg shutdownConfig) error {
	timeout := cfg.timeout
	if timeout <= 0 {
		timeout = shutdownWaitTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := ShutdownHTTPServer(ShutdownConfig{Context: ctx, Server: cfg.httpServer, Logger: cfg.logger})
	if cfg.metrics != nil {
		if cerr := cfg.metrics.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close metrics: %w", cerr))
		}
	}
	return err
}
