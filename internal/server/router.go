package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kitchenpos/internal/httpx"
	"kitchenpos/internal/logger"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouteRegistrar mounts a group of endpoints under /api
type RouteRegistrar interface {
	RegisterRoutes(api *gin.RouterGroup)
}

// NewRouter builds the gin engine with logging, request timeouts and the health endpoint
func NewRouter(log *logger.Logger, timeout time.Duration, store Pinger, registrars ...RouteRegistrar) *gin.Engine {
	r := gin.New()
	r.Use(httpx.WithLogging(log), gin.Recovery(), httpx.Timeout(timeout))

	r.GET("/health", healthCheck(store))

	api := r.Group("/api")
	for _, reg := range registrars {
		reg.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		httpx.WriteError(c, log, "route_not_found", errors.New("route not found"), http.StatusNotFound)
	})
	return r
}

func healthCheck(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		response := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "kitchenpos",
		}

		if err := store.Ping(ctx); err != nil {
			response["status"] = "unhealthy"
			response["error"] = fmt.Sprintf("store unavailable: %v", err)
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		c.JSON(http.StatusOK, response)
	}
}

// Server runs the HTTP API until its context is cancelled
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

func New(port int, handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("service_started", fmt.Sprintf("API server listening on %s", s.httpServer.Addr), requestID, nil)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("graceful_shutdown", "Shutting down HTTP server", requestID, nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
