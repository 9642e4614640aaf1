package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gitnudge/portal/config"
	httpx "github.com/gitnudge/portal/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP handler.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// BuildHTTPHandler assembles the router and the outer middleware.
// Order: Recover -> Logging -> Compression -> Router.
func BuildHTTPHandler(cfg HTTPServerConfig) (http.Handler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Validator:    cfg.Services.Validator,
		RateLimiter:  cfg.Services.RateLimiter,
		HTTPMetrics:  cfg.Services.Observability.HTTPMetrics,
		CookieDomain: appCfg.HTTP.CookieDomain,
		IsDev:        appCfg.IsDev,
		Logger:       logger,
	}
	// Typed nil pointers must not leak into the router's interfaces.
	if cfg.Services.Auth != nil {
		services.Auth = cfg.Services.Auth
	}
	if cfg.Services.Accounts != nil {
		services.Accounts = cfg.Services.Accounts
	}
	if cfg.Services.Observability.Registry != nil {
		services.Gatherer = cfg.Services.Observability.Registry
	}

	h := httpx.NewRouter(services)

	// Compression sits inside logging so logged sizes are compressed sizes.
	if appCfg.HTTP.CompressionEnabled {
		compress, err := httpx.Compression(httpx.CompressionConfig{
			Level:   appCfg.HTTP.CompressionLevel,
			MinSize: appCfg.HTTP.CompressionMinSize,
		})
		if err != nil {
			return nil, fmt.Errorf("compression middleware: %w", err)
		}
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		h = compress(h)
	}

	h = httpx.Logging(logger)(h)
	h = httpx.Recover(logger)(h)

	return h, nil
}

func newServer(handler http.Handler, cfg config.HTTPConfig) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	readHeader := cfg.ReadHeaderTimeout
	if readHeader <= 0 {
		readHeader = 10 * time.Second
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeader,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
	Timeout time.Duration // zero uses shutdownWaitTimeout
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = shutdownWaitTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
