package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

// shutdownTimeout bounds graceful shutdown once the serve context ends.
const shutdownTimeout = 10 * time.Second

// Config holds the dependencies of a Server.
type Config struct {
	Products driving.ProductService
	Runs     driving.RunHistory
	Sync     driving.SyncOrchestrator
	Storage  driven.StorageProbe
	APIKey   string

	// Log receives request logs. Defaults to a no-op logger.
	Log *zap.Logger
}

// Server serves the catalog API.
type Server struct {
	engine   *gin.Engine
	products driving.ProductService
	runs     driving.RunHistory
	sync     driving.SyncOrchestrator
	storage  driven.StorageProbe
	log      *zap.Logger
	apiKey   atomic.Pointer[string]

	startedAt time.Time
	now       func() time.Time
}

// NewServer creates a server and registers its routes.
func NewServer(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		products:  cfg.Products,
		runs:      cfg.Runs,
		sync:      cfg.Sync,
		storage:   cfg.Storage,
		log:       log,
		startedAt: time.Now(),
		now:       time.Now,
	}
	s.SetAPIKey(cfg.APIKey)
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(s.log), corsMiddleware())

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "The requested endpoint does not exist")
	})

	// Public
	router.GET("/", s.health)

	// Protected
	protected := router.Group("/")
	protected.Use(requireAPIKey(s.currentAPIKey))
	protected.GET("/products", s.listProducts)
	protected.GET("/products/:code", s.getProduct)
	protected.PUT("/products/:code", s.updateProduct)
	protected.DELETE("/products/:code", s.deleteProduct)
	protected.GET("/imports", s.listImports)

	return router
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// SetAPIKey replaces the key protected routes require.
func (s *Server) SetAPIKey(key string) {
	s.apiKey.Store(&key)
}

func (s *Server) currentAPIKey() string {
	if k := s.apiKey.Load(); k != nil {
		return *k
	}
	return ""
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("API listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
