package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"brai/internal/config"
	"brai/internal/handler"
	"brai/internal/middleware"
	"brai/internal/repository"
	"brai/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Server owns the HTTP router and the prediction store.
type Server struct {
	cfg      *config.Config
	router   *gin.Engine
	store    repository.PredictionRepository
	registry *prometheus.Registry
	logger   *zap.Logger
}

// New wires repositories, the prediction engine and the HTTP routes.
func New(ctx context.Context, cfg *config.Config, version string, logger *zap.Logger) (*Server, error) {
	catalogs, err := BuildCatalogs(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := repository.NewPredictionRepository(cfg.Store.Driver, cfg.Store.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open prediction store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	predictor := service.NewPredictor(catalogs.Datasets, catalogs.Strains, catalogs.Models, store,
		service.NewMetrics(registry), logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORS())
	if cfg.Metrics.Enabled {
		router.Use(middleware.NewHTTPMetrics(registry).Handler())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	}

	apiHandler := handler.NewHandler(catalogs.Datasets, catalogs.Strains, catalogs.Models, predictor, handler.Info{
		Name:    "brai",
		Version: version,
		Mode:    cfg.Server.Mode,
	}, logger)
	if cfg.Auth.Enabled {
		apiHandler.ProtectWrites(middleware.AuthMiddleware([]byte(cfg.Auth.JWTSecret), logger))
		logger.Info("Prediction writes require a bearer token")
	}
	apiHandler.RegisterRoutes(router)

	return &Server{
		cfg:      cfg,
		router:   router,
		store:    store,
		registry: registry,
		logger:   logger,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", s.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("Server starting", zap.String("address", listener.Addr().String()))

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	<-errCh

	s.logger.Info("Server exited")
	return nil
}

// Close releases the prediction store.
func (s *Server) Close() error {
	return s.store.Close()
}
