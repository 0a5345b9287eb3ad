package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/desertthunder/reelx/internal/library"
	"github.com/desertthunder/reelx/internal/normalizer"
	"github.com/desertthunder/reelx/internal/repositories"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
)

const shutdownTimeout = 5 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Deps are the shared controllers the handlers drive.
type Deps struct {
	Catalog    services.Catalog
	CatalogFor func() services.Catalog // optional, resolved on every request
	Session    *session.Controller
	Library    *library.Store
	Activity   *repositories.ActivityLog // optional
	Normalizer *normalizer.Normalizer    // optional
	Logger     *log.Logger               // optional
}

// Server is the HTTP navigation surface.
type Server struct {
	deps   Deps
	cfg    shared.ServerConfig
	router chi.Router
	logger *log.Logger
}

// New builds the router. Nothing listens until [Server.ListenAndServe].
func New(cfg shared.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.Normalizer == nil {
		deps.Normalizer = normalizer.New(shared.MediaConfig{})
	}

	s := &Server{deps: deps, cfg: cfg, logger: deps.Logger}
	s.router = s.routes()
	return s
}

// catalog returns the catalog for the current request, following session changes.
func (s *Server) catalog() services.Catalog {
	if s.deps.CatalogFor != nil {
		if c := s.deps.CatalogFor(); c != nil {
			return c
		}
	}
	return s.deps.Catalog
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	stack := []Middleware{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(s.logger),
		cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	}
	if s.cfg.RateLimit > 0 {
		stack = append(stack, httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
	}
	stack = append(stack, RequireSession(s.deps.Session))
	for _, m := range stack {
		r.Use(m)
	}

	r.Get("/", s.handleHome)
	r.Get("/search", s.handleSearch)
	r.Get("/movies/{id}", s.handleMovie)
	r.Post("/login", s.handleLogin)
	r.Post("/register", s.handleRegister)
	r.Post("/logout", s.handleLogout)
	r.Get("/dashboard", s.handleDashboard)
	r.Post("/watchlist/{id}", s.handleToggle(library.Watchlist))
	r.Post("/favorites/{id}", s.handleToggle(library.Favorites))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// ServeHTTP implements [http.Handler] for the entire router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
