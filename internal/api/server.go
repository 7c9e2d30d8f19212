// Package api provides the HTTP server for the Stampley content service.
//
// It exposes JSON endpoints for chat turns, raw selection, check-ins, the weekly focus and
// nudges, all answering with the models.APIResponse envelope.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Balaji0706816/nurseproject/internal/flow"
)

// Server configuration defaults
const (
	// DefaultAddr is the listen address used when none is configured
	DefaultAddr = ":8080"
	// DefaultShutdownTimeout bounds graceful shutdown
	DefaultShutdownTimeout = 10 * time.Second
	// DefaultReadHeaderTimeout bounds reading request headers
	DefaultReadHeaderTimeout = 5 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithAllowedOrigins enables CORS for the given portal origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(o *Opts) { o.AllowedOrigins = append([]string(nil), origins...) }
}

// WithShutdownTimeout overrides DefaultShutdownTimeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Opts) { o.ShutdownTimeout = d }
}

// Server serves the HTTP API on top of a flow.Conversation.
type Server struct {
	conv            *flow.Conversation
	addr            string
	allowedOrigins  []string
	shutdownTimeout time.Duration
	router          *gin.Engine
}

// NewServer builds the server and its routes.
func NewServer(conv *flow.Conversation, opts ...Option) (*Server, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is required")
	}
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	s := &Server{
		conv:            conv,
		addr:            cfg.Addr,
		allowedOrigins:  cfg.AllowedOrigins,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	s.router = s.newRouter()
	return s, nil
}

// Router returns the gin engine, mostly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	if len(s.allowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  s.allowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{"Content-Type", "X-Requested-With"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.GET("/healthz", s.healthHandler)

	api := router.Group("/api")
	{
		api.POST("/chat", s.chatHandler)
		api.POST("/select", s.selectHandler)
		api.POST("/nudge", s.nudgeHandler)
		api.GET("/focus", s.focusHandler)

		api.POST("/checkins", s.recordCheckInHandler)
		api.GET("/checkins/:participant", s.checkInHistoryHandler)
		api.GET("/checkins/:participant/last", s.lastCheckInHandler)
		api.GET("/checkins/:participant/:date", s.checkInForDateHandler)
		api.DELETE("/checkins/:participant", s.clearCheckInsHandler)
	}
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("Server: request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Run: listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("Server.Run: listener failed", "error", err)
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Server.Run: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server.Run: forced shutdown", "error", err)
		return err
	}
	slog.Info("Server.Run: shutdown complete")
	return nil
}
