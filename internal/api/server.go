// Package api provides the HTTP server: route registration, session
// authentication, request logging and metrics middleware, and graceful
// shutdown. Configuration changes picked up by the watcher apply to new
// requests without a restart.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/recallweb/recall/internal/api/handlers"
	"github.com/recallweb/recall/internal/api/middleware"
	"github.com/recallweb/recall/internal/buildinfo"
	"github.com/recallweb/recall/internal/config"
	"github.com/recallweb/recall/internal/logging"
	"github.com/recallweb/recall/internal/usage"
)

// Server wraps the Gin engine and the underlying HTTP server.
type Server struct {
	// engine is the Gin web framework engine instance.
	engine *gin.Engine

	// server is the underlying HTTP server.
	server *http.Server

	// handlers is the request handler set.
	handlers *handlers.Handlers

	// getCfg returns the current configuration snapshot.
	getCfg func() *config.Config

	// stats aggregates per-route and per-identity usage.
	stats *usage.Statistics
}

// New builds the server and registers all routes.
func New(getCfg func() *config.Config, h *handlers.Handlers, stats *usage.Statistics) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		logging.GinLogrusLogger(),
		logging.GinLogrusRecovery(),
		logging.GinRequestBodyLogger(func() bool { return getCfg().RequestLog }),
		middleware.PrometheusMiddleware(),
	)

	s := &Server{
		engine:   engine,
		handlers: h,
		getCfg:   getCfg,
		stats:    stats,
	}
	s.registerRoutes()

	cfg := getCfg()
	s.server = &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: engine,
		// The write side stays unbounded: completions stream for as long
		// as the model keeps producing tokens.
		ReadTimeout: cfg.Server.ReadTimeout,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		logging.SkipGinRequestLogging(c)
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": buildinfo.Version,
		})
	})
	s.engine.GET("/metrics", func(c *gin.Context) {
		logging.SkipGinRequestLogging(c)
		middleware.MetricsHandler()(c)
	})

	s.engine.GET("/auth/login", s.handlers.Login)
	s.engine.GET("/auth/callback", s.handlers.Callback)
	s.engine.POST("/auth/logout", s.handlers.Logout)

	api := s.engine.Group("/api", middleware.SessionAuth(s.handlers.Sessions()), s.recordUsage())
	api.POST("/chat", s.handlers.Chat)
	api.POST("/search", s.handlers.Search)
	api.GET("/memories", s.handlers.ListMemories)
	api.POST("/memories", s.handlers.CreateMemory)
	api.DELETE("/memories/:id", s.handlers.DeleteMemory)
	api.POST("/conversations", s.handlers.CreateConversation)
	api.GET("/conversations/:id", s.handlers.GetConversation)
	api.DELETE("/conversations/:id", s.handlers.DeleteConversation)
	api.GET("/usage", s.handlers.Usage)
}

// recordUsage feeds the in-memory usage aggregates after each API request.
func (s *Server) recordUsage() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		s.stats.RecordRequest(route, c.Writer.Status(), time.Since(start))
	}
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	log.WithFields(log.Fields{
		"addr":    s.server.Addr,
		"version": buildinfo.Version,
	}).Info("starting server")
	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, including open completion streams,
// within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")
	return s.server.Shutdown(ctx)
}
