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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/gitnudge/portal/config"
	"github.com/gitnudge/portal/internal/adapters/backendapi"
	redisadapter "github.com/gitnudge/portal/internal/adapters/redis"
	httpx "github.com/gitnudge/portal/internal/http"
	"github.com/gitnudge/portal/internal/http/validation"
	"github.com/gitnudge/portal/internal/observability/metrics"
	"github.com/gitnudge/portal/internal/observability/statsd"
	"github.com/gitnudge/portal/internal/service"
)

const shutdownWaitTimeout = 10 * time.Second

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Accounts      *service.AccountService
	Validator     *validation.Validator
	RateLimiter   *httpx.RateLimiter
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink *statsd.Client
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var out ObservabilityContainer
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "gitnudge.portal",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			out.MetricsSink = client
		}
	}

	if cfg.Prometheus.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		out.Registry = reg
		out.HTTPMetrics = metrics.NewHTTPMetrics(cfg.Prometheus.Namespace, reg)
	}

	return out
}

// NewServices wires adapters into the auth and account services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	obs := buildObservability(deps.Logger, cfg.Observability)

	backend, err := backendapi.NewClient(backendapi.Config{
		BaseURL:    cfg.Backend.BaseURL,
		Timeout:    cfg.Backend.Timeout,
		ErrorsPath: cfg.Backend.ErrorsPath,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("backend client: %w", err)
	}

	var sink statsd.Sink
	if obs.MetricsSink != nil {
		sink = obs.MetricsSink
	}

	auth, err := BuildAuthService(AuthConfig{
		Auth:        cfg.Auth,
		RedisClient: deps.RedisClient,
		Logger:      deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("auth: %w", err)
	}

	container := ServiceContainer{
		Auth:          auth,
		Validator:     validation.New(),
		Observability: obs,
	}
	if deps.RedisClient != nil {
		container.Accounts = service.NewAccountService(service.AccountServiceOptions{
			Backend: backend,
			Flags: redisadapter.NewFlagStore(deps.RedisClient,
				redisadapter.WithFlagPrefix(cfg.Flags.Prefix),
				redisadapter.WithFlagTTL(cfg.Flags.TTL),
			),
			Telemetry: service.Telemetry{Logger: deps.Logger, Metrics: sink},
		})
	}
	if cfg.RateLimit.Enabled {
		container.RateLimiter = httpx.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	return container, nil
}

// ServiceOrchestrationConfig contains everything needed to run the portal.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown serves HTTP until SIGINT/SIGTERM or a server
// failure, then shuts down gracefully.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler, err := BuildHTTPHandler(HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	server := newServer(handler, cfg.Config.HTTP)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down services...")
		return ShutdownHTTPServer(ShutdownConfig{
			Context: context.WithoutCancel(ctx),
			Server:  server,
			Logger:  logger,
			Timeout: cfg.Config.HTTP.ShutdownTimeout,
		})
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
		return err
	}
	if cfg.Services.Observability.MetricsSink != nil {
		if err := cfg.Services.Observability.MetricsSink.Close(); err != nil {
			logger.Warn("close statsd client failed", "error", err)
		}
	}
	return nil
}
