package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hongminglow/pizza-be/internal/auth"
	"github.com/hongminglow/pizza-be/internal/config"
	"github.com/hongminglow/pizza-be/internal/factory"
	"github.com/hongminglow/pizza-be/internal/http/handlers"
	"github.com/hongminglow/pizza-be/internal/metrics"
	"github.com/hongminglow/pizza-be/internal/middleware"
	"github.com/hongminglow/pizza-be/internal/storage"
)

// Deps are the collaborators the server is built from.
type Deps struct {
	Store storage.Store
	// Sessions overrides Store as the session registry when set.
	Sessions storage.SessionStore
	Factory  factory.Client
	Logger   *zap.Logger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Order placement waits on the factory.
		WriteTimeout: cfg.FactoryTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewHandler builds the full routed handler chain.
func NewHandler(cfg config.Config, deps Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = deps.Store
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authn := auth.NewAuthenticator(tokens, sessions, deps.Store)
	limiter := middleware.NewRateLimiter(cfg.LoginRatePerSecond, cfg.LoginRateBurst, cfg.TrustProxy)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), cfg.Version, probes(deps), log).Register(mux)
	handlers.NewDocsHandler(cfg.Version, cfg.FactoryURL).Register(mux)
	handlers.NewAuthHandler(deps.Store, authn, limiter, m, log).Register(mux)
	handlers.NewUserHandler(deps.Store, authn, log).Register(mux)
	handlers.NewFranchiseHandler(deps.Store, deps.Store, authn, log).Register(mux)
	handlers.NewOrderHandler(deps.Store, deps.Store, deps.Factory, authn, m, log).Register(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return middleware.RequestID(middleware.CORS(cfg.CORSOrigins, middleware.Logging(log, m, mux)))
}

func probes(deps Deps) map[string]storage.Pinger {
	out := make(map[string]storage.Pinger)
	if p, ok := deps.Store.(storage.Pinger); ok {
		out["database"] = p
	}
	if p, ok := deps.Sessions.(storage.Pinger); ok {
		out["sessions"] = p
	}
	return out
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
