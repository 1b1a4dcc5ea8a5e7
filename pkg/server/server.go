package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/rreusch2/fluxstreams/pkg/api/handlers"
	"github.com/rreusch2/fluxstreams/pkg/api/middleware"
	"github.com/rreusch2/fluxstreams/pkg/config"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/health"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/metrics"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/tracing"
)

// Operational routes, never rate limited.
const (
	ReadyRoute   = "/api/ready"
	VersionRoute = "/api/version"
	HealthRoute  = "/api/health"
)

// Deps are the collaborators the server routes requests to. Turns and
// Limiter are required; the rest fall back to no-ops.
type Deps struct {
	Turns   handlers.TurnHandler
	Limiter middleware.Limiter
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	Health  *health.Checker
	Logger  *slog.Logger

	Version   string
	Commit    string
	BuildTime string
}

// Server is the chat API server.
type Server struct {
	cfg        *config.Config
	deps       Deps
	handler    http.Handler
	httpServer *http.Server

	mu           sync.RWMutex
	addr         net.Addr
	running      bool
	shutdownOnce sync.Once
}

// New builds the server and its route table.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Turns == nil {
		return nil, errors.New("server: turn handler is required")
	}
	if deps.Limiter == nil {
		return nil, errors.New("server: limiter is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Health == nil {
		deps.Health = health.New(0)
	}

	s := &Server{cfg: cfg, deps: deps}
	s.handler = s.setupRoutes()
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes registers the API routes and applies the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	d := s.deps

	limited := func(route string, h http.Handler) http.Handler {
		return middleware.Chain(h,
			middleware.Instrument(route, d.Metrics),
			middleware.RateLimit(route, d.Limiter, d.Metrics, d.Logger),
		)
	}
	instrumented := func(route string, h http.Handler) http.Handler {
		return middleware.Instrument(route, d.Metrics)(h)
	}

	chat := handlers.NewChatHandler(d.Turns, s.cfg.Assistant.Apology, s.cfg.Server.MaxBodyBytes, d.Logger)
	mux.Handle("POST "+config.ChatRoute, limited(config.ChatRoute, chat))
	mux.Handle("GET "+config.GreetingRoute, limited(config.GreetingRoute, handlers.NewGreetingHandler(s.cfg.Assistant.Greeting)))
	mux.Handle("GET "+HealthRoute, limited(HealthRoute, handlers.NewHealthHandler()))

	mux.Handle("GET "+ReadyRoute, instrumented(ReadyRoute, d.Health.ReadinessHandler()))
	mux.Handle("GET "+VersionRoute, instrumented(VersionRoute, health.VersionHandler(d.Version, d.Commit, d.BuildTime)))

	if s.cfg.Telemetry.Metrics.Enabled && d.Metrics != nil {
		mux.Handle("GET "+s.cfg.Telemetry.Metrics.Path, d.Metrics.Handler())
	}

	return middleware.Chain(mux,
		middleware.Recovery(d.Logger),
		middleware.RequestID,
		middleware.ClientIP,
		middleware.Tracing(d.Tracer),
		middleware.Logging(d.Logger),
		middleware.CORS(s.cfg.Server.CORS),
	)
}

// Start listens on the configured address and serves until ctx is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	ln, err := net.Listen("tcp", s.cfg.Server.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Server.ListenAddress, err)
	}
	s.httpServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.cfg.Server.ReadTimeout,
		WriteTimeout:   s.cfg.Server.WriteTimeout,
		IdleTimeout:    s.cfg.Server.IdleTimeout,
		MaxHeaderBytes: s.cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.deps.Logger.Handler(), slog.LevelError),
	}
	s.addr = ln.Addr()
	s.running = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("starting chat API server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.deps.Logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return err
	}
}

// Shutdown gracefully stops the server. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		srv, running := s.httpServer, s.running
		s.mu.RUnlock()
		if !running || srv == nil {
			return
		}

		timeout := s.cfg.Server.ShutdownTimeout
		s.deps.Logger.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.deps.Logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		s.deps.Logger.Info("chat API server stopped")
	})

	return shutdownErr
}

// Addr returns the bound listener address once Start has begun serving.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
