package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/goflicks/internal/api/handlers"
	"github.com/amaumene/goflicks/internal/api/middleware"
	"github.com/amaumene/goflicks/internal/config"
	"github.com/amaumene/goflicks/internal/models"
	"github.com/amaumene/goflicks/internal/services/auth"
	"github.com/amaumene/goflicks/internal/services/imdb"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, catalog *imdb.Client, verifier auth.Verifier, logger *logrus.Logger) *Server {
	s := &Server{
		logger: logger,
	}

	router := mux.NewRouter()
	router.Use(middleware.Metrics)
	s.setupRoutes(router, db, catalog, verifier)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(router, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(router *mux.Router, db *models.Database, catalog *imdb.Client, verifier auth.Verifier) {
	// Unauthenticated endpoints
	healthHandler := handlers.NewHealthHandler(s.logger)
	router.Handle("/health", healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Everything else requires a verified identity
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(mux.MiddlewareFunc(middleware.Auth(verifier, s.logger)))

	movieHandler := handlers.NewMovieHandler(catalog, s.logger)
	protected.HandleFunc("/movies", movieHandler.Search).Methods(http.MethodGet)
	protected.HandleFunc("/movies/{id}", movieHandler.GetTitle).Methods(http.MethodGet)
	protected.HandleFunc("/top-movies", movieHandler.TopMovies).Methods(http.MethodGet)
	protected.HandleFunc("/trailer/{id}", movieHandler.GetTrailer).Methods(http.MethodGet)

	watchlistHandler := handlers.NewWatchlistHandler(db, s.logger)
	protected.HandleFunc("/watchlist", watchlistHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/watchlist/add", watchlistHandler.AddMovie).Methods(http.MethodPut)
	protected.HandleFunc("/watchlist/delete", watchlistHandler.DeleteMovie).Methods(http.MethodPut)
	protected.HandleFunc("/watchlist", watchlistHandler.GetAll).Methods(http.MethodGet)
	protected.HandleFunc("/watchlist/{id}", watchlistHandler.GetOne).Methods(http.MethodGet)
}

// Handler exposes the configured handler chain, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
