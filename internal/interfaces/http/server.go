// Package http is the REST surface of the task bridge. It is a thin adapter
// that maps verbs and paths to case service calls and owns the translation
// of domain and engine failures into HTTP outcomes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tracerail/task-bridge/internal/auth"
	"github.com/tracerail/task-bridge/internal/config"
	"github.com/tracerail/task-bridge/internal/engine"
	"github.com/tracerail/task-bridge/internal/service"
)

// Server is the HTTP server adapter
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	router     *gin.Engine
	cases      service.CaseService
	engine     engine.Client
	logger     *zap.Logger
}

// NewServer creates the HTTP server with its routes and middleware.
func NewServer(cfg *config.Config, cases service.CaseService, engineClient engine.Client, logger *zap.Logger) *Server {
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		cfg:    cfg,
		router: gin.New(),
		cases:  cases,
		engine: engineClient,
		logger: logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(corsMiddleware(s.cfg.Server.AllowedOrigins))
	s.router.Use(metricsMiddleware())
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)

		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// corsMiddleware adds CORS headers for the configured origins
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origins[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.cases, s.engine, s.logger)

	s.router.GET("/", handlers.Root)
	s.router.GET("/health", handlers.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/v1")
	{
		// Single-tenant mode entry points; multi-tenant deployments put the
		// gate in front of these too.
		api.POST("/cases", handlers.CreateCase)
		api.GET("/workflows", handlers.ListWorkflows)

		resolver := auth.NewPrefixResolver(s.cfg.Auth.TokenPrefix)
		tenants := api.Group("/tenants/:tenantId", auth.Middleware(resolver, s.logger))
		{
			tenants.GET("/cases/:caseId", handlers.GetCase)
			tenants.POST("/cases/:caseId/decision", handlers.SubmitDecision)
		}
	}

	// Test-only control channel; never registered in production profiles.
	if s.cfg.Pact.Enabled {
		pact := NewPactHandler(s.engine, s.cfg.Cases, s.cfg.Pact, s.logger)
		s.router.POST("/_pact/provider_states", pact.SetupProviderState)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	s.logger.Info("HTTP server listening", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
