package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/navpatch/internal/ledger"
	"github.com/ziadkadry99/navpatch/internal/navpatch"
)

// Config holds server configuration.
type Config struct {
	Port       int
	SiteDir    string // built site served to clients
	AllowAll   bool   // allow all CORS origins (dev mode)
	LiveReload bool   // inject the reload client into served pages
}

// Server is the preview server. Pages are patched as they are served, so the
// site dir itself is never written.
type Server struct {
	cfg        Config
	patcher    *navpatch.Patcher
	ledger     *ledger.Store
	hub        *Hub
	log        *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a preview server. store may be nil.
func New(cfg Config, patcher *navpatch.Patcher, store *ledger.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		patcher: patcher,
		ledger:  store,
		hub:     NewHub(logger),
		log:     logger,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.log.Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The reload socket is long-lived and stays outside the timeout.
	r.Get("/ws/reload", s.hub.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/api/table", s.handleTable)
		r.Get("/api/plan", s.handlePlan)
		r.Get("/api/runs", s.handleRuns)
		r.Get("/*", s.handlePage)
		r.Head("/*", s.handlePage)
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Reload tells every connected browser to reload.
func (s *Server) Reload() { s.hub.Broadcast(reloadMessage) }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Info("preview server listening", "addr", addr, "site_dir", s.cfg.SiteDir)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
