package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server wraps the gin engine with lifecycle management.
type Server struct {
	logger *slog.Logger
	http   *http.Server
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(handlers *Handlers, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsCfg.AllowOrigins = allowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsCfg))

	router.GET("/health", handlers.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/insights/analyze", handlers.Analyze)
		v1.POST("/rebuild/trigger", handlers.TriggerRebuild)
		v1.GET("/rebuild/plan/:formId", handlers.LastPlan)
		v1.GET("/rebuild/plan/:formId/last-run", handlers.LastRun)
		v1.DELETE("/rebuild/plan/:formId", handlers.ClearPlan)
	}
	return router
}

// NewServer binds the router to an address.
func NewServer(logger *slog.Logger, address string, router *gin.Engine) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger: logger,
		http: &http.Server{
			Addr:              address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("address", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
