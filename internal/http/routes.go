package httpx

import (
	"bytes"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	portal "github.com/gitnudge/portal"
	"github.com/gitnudge/portal/internal/observability/metrics"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth         AuthServiceInterface
	Accounts     AccountServiceInterface
	Validator    RegistrationValidator
	RateLimiter  *RateLimiter         // Optional: nil disables rate limiting
	HTTPMetrics  *metrics.HTTPMetrics // Optional: Prometheus request metrics
	Gatherer     prometheus.Gatherer  // Optional: serves /metrics when set
	CookieDomain string
	IsDev        bool         // Development mode: templates and assets from disk
	Logger       *slog.Logger // Logger for template and HTTP errors (optional)
}

func (s RouterServices) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// NewRouter creates and configures the portal router. Every route runs
// behind CSRF protection and the device scope; page routes add session
// and registration-gate checks per route.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	if services.Gatherer != nil {
		mux.Handle("GET /metrics", metricsHandler(services.Gatherer))
	}

	// Static assets at /static
	// Dev mode: serve from disk for hot reloading
	// Prod mode: serve from embedded FS
	mux.Handle("GET /static/", staticWithFallback(services.IsDev))

	cfg := routeConfig{services: services}
	if services.Auth != nil {
		authHandlers := &AuthHandlers{
			Svc:          services.Auth,
			Accounts:     services.Accounts,
			CookieDomain: services.CookieDomain,
			Logger:       services.Logger,
		}
		registerAuthRoutes(mux, authHandlers, cfg)
	}

	uiHandlers := setupUIHandlers(services)
	if uiHandlers != nil {
		registerUIRoutes(mux, uiHandlers, cfg)
	}

	handler := &notFoundHandler{
		mux:        mux,
		uiHandlers: uiHandlers,
		optional:   OptionalAuth(services.Auth),
	}

	return Chain(handler,
		RequestMetrics(services.HTTPMetrics, mux),
		CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain}),
		DeviceScope(services.CookieDomain),
	)
}

// setupUIHandlers creates UI handlers with a template renderer.
// In dev mode (services.IsDev=true), templates are loaded from disk for hot reloading.
// In production mode (services.IsDev=false), templates are loaded from embedded FS.
func setupUIHandlers(services RouterServices) *UIHandlers {
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS(services.IsDev),
		Logger:     services.Logger,
	})
	if err != nil {
		services.logger().Error("failed to create template renderer", slog.Any("error", err))
		return nil
	}

	return &UIHandlers{
		T:         tr,
		Accounts:  services.Accounts,
		Validator: services.Validator,
		IsDev:     services.IsDev,
		Logger:    services.Logger,
	}
}

func templateFS(isDev bool) fs.FS {
	tree, err := portal.Templates(isDev)
	if err != nil {
		log.Printf("embedded templates unavailable: %v; falling back to disk", err)
		return os.DirFS(portal.TemplatesDir)
	}
	return tree
}

// staticWithFallback serves /static/* assets.
// In dev mode (isDev=true), serves from disk for hot reloading.
// In production mode (isDev=false), serves from embedded FS.
func staticWithFallback(isDev bool) http.Handler {
	tree, err := portal.Static(isDev)
	if err != nil {
		log.Printf("embedded static assets unavailable: %v; falling back to disk", err)
		tree, isDev = os.DirFS(portal.StaticDir), true
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServerFS(tree)), !isDev)
}

// staticWithCacheHeaders lets embedded assets be cached for an hour; disk
// assets in dev are never cached.
func staticWithCacheHeaders(handler http.Handler, cacheable bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cacheable {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and provides custom 404 handling.
type notFoundHandler struct {
	mux        *http.ServeMux
	uiHandlers *UIHandlers
	optional   Middleware
}

// ServeHTTP implements http.Handler and provides custom 404 handling.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cw := newCaptureWriter(w)
	// Serve the request through the mux, capturing status, headers, and body
	h.mux.ServeHTTP(cw, r)

	if cw.status != http.StatusNotFound || strings.HasPrefix(r.URL.Path, "/static/") || h.uiHandlers == nil {
		cw.flushTo(w)
		return
	}
	h.optional(http.HandlerFunc(h.uiHandlers.NotFound)).ServeHTTP(w, r)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	rw     http.ResponseWriter
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter(w http.ResponseWriter) *captureWriter {
	return &captureWriter{rw: w, header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	if _, err := w.Write(c.buf.Bytes()); err != nil {
		log.Printf("failed to write captured response: %v", err)
	}
}

// routeConfig builds the per-route middleware stacks.
type routeConfig struct {
	services RouterServices
}

// limited applies the rate limiter when one is configured.
func (cfg routeConfig) limited() Middleware {
	if cfg.services.RateLimiter == nil {
		return nil
	}
	return cfg.services.RateLimiter.Middleware()
}

// authWrap returns a no-op wrapper when auth is nil, otherwise applies RequireAuthBrowser.
func (cfg routeConfig) authWrap() Middleware {
	if cfg.services.Auth == nil {
		return nil
	}
	return RequireAuthBrowser(cfg.services.Auth)
}

// gatedWrap requires a session and a finished registration for page.
func (cfg routeConfig) gatedWrap(h *UIHandlers, page string) Middleware {
	var gate NavigationGate
	if cfg.services.Accounts != nil {
		gate = cfg.services.Accounts
	}
	gated := requireRegistrationComplete(gateConfig{
		Gate:   gate,
		Render: h.Gate,
		Logger: cfg.services.logger(),
	}, page)
	auth := cfg.authWrap()
	return func(next http.Handler) http.Handler {
		return Chain(next, auth, gated)
	}
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, cfg routeConfig) {
	mux.Handle("GET /auth/login", Chain(http.HandlerFunc(h.Login), cfg.limited()))
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

// registerUIRoutes wires the browser pages.
func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, cfg routeConfig) {
	optional := OptionalAuth(cfg.services.Auth)
	mux.Handle("GET /{$}", Chain(http.HandlerFunc(h.Landing), optional))

	registerUIGatedRoutes(mux, h, cfg)
	registerUIAccountRoutes(mux, h, cfg)
}

// registerUIGatedRoutes wires the pages behind the registration gate.
func registerUIGatedRoutes(mux *http.ServeMux, h *UIHandlers, cfg routeConfig) {
	mux.Handle("GET /dashboard", Chain(http.HandlerFunc(h.Dashboard), cfg.gatedWrap(h, PageDashboard)))
	mux.Handle("GET /about", Chain(http.HandlerFunc(h.About), cfg.gatedWrap(h, PageAbout)))
	mux.Handle("GET /profile", Chain(http.HandlerFunc(h.Profile), cfg.gatedWrap(h, PageProfile)))
}

// registerUIAccountRoutes wires registration and account deletion.
func registerUIAccountRoutes(mux *http.ServeMux, h *UIHandlers, cfg routeConfig) {
	auth := cfg.authWrap()
	mux.Handle("GET /register", Chain(http.HandlerFunc(h.RegisterPage), auth))
	mux.Handle("POST /register", Chain(http.HandlerFunc(h.RegisterSubmit), cfg.limited(), auth))
	mux.Handle("POST /account/delete", Chain(http.HandlerFunc(h.DeleteAccount), cfg.limited(), auth))
}
