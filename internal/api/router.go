package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"incidentService/internal/api/handlers/http/admin"
	"incidentService/internal/api/handlers/http/incidents"
	"incidentService/internal/api/handlers/http/system"
	"incidentService/internal/config"
	"incidentService/internal/middleware"
)

type Handlers struct {
	Incidents *incidents.Handler
	Admin     *admin.Handler
	System    *system.Handler
}

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

// NewServer builds the router. Background middleware work stops with ctx.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, h Handlers) *Server {
	r := InitRouter(ctx, cfg, h, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func InitRouter(ctx context.Context, cfg *config.Config, h Handlers, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	// RequestID first so chi's Logger and handler logs share the id.
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	apiKey := middleware.APIKeyMiddleware(cfg.APIKey)

	r.Route("/incidents", func(ir chi.Router) {
		if cfg.RateLimit.RPS > 0 {
			ir.Use(middleware.Limit(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TTL, logger))
		}

		ir.Get("/", h.Incidents.IncidentList)
		ir.Post("/", middleware.BindJSON(h.Incidents.IncidentCreate))

		ir.With(apiKey).Post("/reset", h.Incidents.IncidentsReset)

		ir.Get("/byname/{name}", h.Incidents.IncidentsByName)

		ir.Route("/incident/{id}", func(rr chi.Router) {
			rr.Get("/", h.Incidents.IncidentGet)
			rr.Put("/", middleware.BindJSON(h.Incidents.IncidentUpdate))
		})

		ir.Get("/{status}", h.Incidents.IncidentsByStatus)
	})

	if h.Admin != nil {
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(apiKey)
			ar.Get("/dropped-commands", h.Admin.DroppedCommandList)
		})
	}

	r.Route("/health", func(hr chi.Router) {
		hr.Get("/live", h.System.SystemLive)
		hr.Get("/ready", h.System.SystemReady)
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
