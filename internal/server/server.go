// Package server wires GameHome together and runs the HTTP server.
//
// COMPOSITION ROOT:
// Everything is built in New, in dependency order:
//
//	config → jsonfile.Store (seeded) → auth.Gate (hash initialised)
//	       → attachment.Store → events.Hub
//	       → services → handlers → chi router
//
// Each layer only receives what it needs. Services get repository
// interfaces, handlers get services, and nothing reaches for a global.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/RebotePadel/GameHome/internal/attachment"
	"github.com/RebotePadel/GameHome/internal/auth"
	"github.com/RebotePadel/GameHome/internal/config"
	"github.com/RebotePadel/GameHome/internal/events"
	"github.com/RebotePadel/GameHome/internal/handler"
	"github.com/RebotePadel/GameHome/internal/middleware"
	"github.com/RebotePadel/GameHome/internal/repository/jsonfile"
	"github.com/RebotePadel/GameHome/internal/service"
	"github.com/RebotePadel/GameHome/internal/validate"
)

const shutdownTimeout = 30 * time.Second

// Server owns the router and the long-lived pieces behind it.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  *jsonfile.Store
	files  *attachment.Store
	hub    *events.Hub
}

// Prepare opens the data directory, creates the default tags and prénoms
// when missing and makes sure a usable publish secret hash is stored. It
// is what `gamehome seed` runs, and the first step of New.
func Prepare(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*jsonfile.Store, *auth.Gate, error) {
	store, err := jsonfile.New(cfg.DataDir, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening data directory: %w", err)
	}
	if err := store.Seed(ctx); err != nil {
		return nil, nil, fmt.Errorf("seeding default data: %w", err)
	}

	gate := auth.NewGate(store, auth.NewPasswordService(), logger)
	if _, err := gate.Initialize(ctx); err != nil {
		return nil, nil, fmt.Errorf("initialising publish secret: %w", err)
	}
	return store, gate, nil
}

// New prepares storage and builds the router. Nothing listens yet.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, gate, err := Prepare(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	files, err := attachment.NewStore(cfg.UploadsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening uploads directory: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
		files:  files,
		hub:    events.NewHub(cfg.AllowedOrigins, logger),
	}
	s.setupRoutes(gate)
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the event hub so callers can run it.
func (s *Server) Hub() *events.Hub {
	return s.hub
}

// setupRoutes registers middleware and routes.
//
// MIDDLEWARE ORDER:
// RequestID first so every later log line can carry it. RealIP only runs
// with trust_proxy: it believes X-Forwarded-For, and the rate limiter keys
// on the address it leaves in RemoteAddr. Compression is kept off /api/ws:
// the upgrade needs the raw connection.
func (s *Server) setupRoutes(gate *auth.Gate) {
	r := s.router

	r.Use(chimiddleware.RequestID)
	if s.config.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", auth.HeaderPublishPassword},
		MaxAge:         300,
	}).Handler)

	compress := chimiddleware.Compress(5)
	rs := handler.NewResponder(s.logger, validate.New(), s.config.Debug())

	// Set before /api is mounted so the subrouter inherits it.
	spa := handler.NewSPAHandler(s.config.FrontendDir, rs)
	r.NotFound(compress(spa).ServeHTTP)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rs.JSON(w, http.StatusMethodNotAllowed, handler.ErrorResponse{
			Error: "method not allowed",
			Code:  "method_not_allowed",
		})
	})

	var pub events.Publisher = s.hub
	messageSvc := service.NewMessageService(s.store.Messages, s.files, pub, s.logger)
	tagSvc := service.NewTagService(s.store.Tags, s.store.Messages, pub, s.logger)
	prenomSvc := service.NewPrenomService(s.store.Prenoms, pub, s.logger)
	likeSvc := service.NewLikeService(s.store.Messages, s.store.Prenoms, pub, s.logger)
	commentSvc := service.NewCommentService(s.store.Messages, s.store.Prenoms, pub, s.logger)

	messages := handler.NewMessageHandler(messageSvc, s.files, attachment.DefaultPolicy(), rs)
	tags := handler.NewTagHandler(tagSvc, rs)
	prenoms := handler.NewPrenomHandler(prenomSvc, rs)
	likes := handler.NewLikeHandler(likeSvc, rs)
	comments := handler.NewCommentHandler(commentSvc, rs)
	authH := handler.NewAuthHandler(gate, rs)
	health := handler.NewHealthHandler(rs)
	gated := auth.RequirePublishSecret(gate)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.config.RateLimit, s.config.RateWindow))

		r.Get("/ws", s.hub.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(compress)

			r.Get("/health", health.HandleHealth)
			r.Post("/auth/verify", authH.HandleVerify)

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", messages.HandleList)
				r.Get("/by-tag/{tagId}", messages.HandleListByTag)
				r.Get("/{id}", messages.HandleGet)
				r.With(gated).Post("/", messages.HandleCreate)
				r.With(gated).Delete("/{id}", messages.HandleDelete)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", tags.HandleList)
				r.Post("/", tags.HandleCreate)
				r.Post("/reorder", tags.HandleReorder)
				r.Get("/{id}", tags.HandleGet)
				r.Put("/{id}", tags.HandleUpdate)
				r.Delete("/{id}", tags.HandleDelete)
			})

			r.Route("/prenoms", func(r chi.Router) {
				r.Get("/", prenoms.HandleList)
				r.Get("/active", prenoms.HandleListActive)
				r.Post("/", prenoms.HandleCreate)
				r.Get("/{id}", prenoms.HandleGet)
				r.Put("/{id}", prenoms.HandleUpdate)
				r.Delete("/{id}", prenoms.HandleDelete)
			})

			r.Route("/likes", func(r chi.Router) {
				r.Post("/", likes.HandleCreate)
				r.Post("/bulk", likes.HandleBulk)
				r.Delete("/{messageId}/{prenomId}", likes.HandleDelete)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Post("/", comments.HandleCreate)
				r.Get("/{messageId}", comments.HandleList)
				r.Delete("/{messageId}/{commentId}", comments.HandleDelete)
			})
		})
	})

	// GET /uploads/2025-01-31/<uuid>.png → <uploadsDir>/2025-01-31/<uuid>.png
	r.With(compress).Handle("/uploads/*", s.uploads(rs))
}

// uploads serves committed attachments. The path is cleaned before any
// check, the same way http.FileServer cleans it, so `//` and `..` cannot
// reach the temp holding area. Directories, temp/ and missing files all
// get a JSON 404.
func (s *Server) uploads(rs *handler.Responder) http.Handler {
	fileServer := http.StripPrefix("/uploads", http.FileServer(http.Dir(s.config.UploadsDir)))
	notFound := func(w http.ResponseWriter) {
		rs.JSON(w, http.StatusNotFound, handler.ErrorResponse{Error: "file not found", Code: "not_found"})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rel := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(r.URL.Path, "/uploads")), "/")
		if rel == "" || rel == attachment.TempDirName || strings.HasPrefix(rel, attachment.TempDirName+"/") {
			notFound(w)
			return
		}

		info, err := os.Stat(filepath.Join(s.config.UploadsDir, filepath.FromSlash(rel)))
		if err != nil || info.IsDir() {
			notFound(w)
			return
		}

		r2 := r.Clone(r.Context())
		r2.URL.Path = "/uploads/" + rel
		r2.URL.RawPath = ""
		fileServer.ServeHTTP(w, r2)
	})
}

// Start listens on the configured port and blocks until SIGINT/SIGTERM,
// then shuts down gracefully.
//
// Shutdown order: stop accepting connections, let in-flight requests
// finish (30s), then stop the hub, which closes the WebSocket clients.
func (s *Server) Start() error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No ReadTimeout/WriteTimeout: uploads can be large and /api/ws is
		// long-lived.
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("data_dir", s.config.DataDir),
			slog.String("uploads_dir", s.config.UploadsDir),
			slog.String("env", s.config.Env),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
