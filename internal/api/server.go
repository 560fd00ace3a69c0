package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/survey-scoring-server/internal/analytics"
	"github.com/survey-scoring-server/internal/cache"
	"github.com/survey-scoring-server/internal/config"
	"github.com/survey-scoring-server/internal/criteria"
	"github.com/survey-scoring-server/internal/middleware"
	"github.com/survey-scoring-server/internal/report"
	"github.com/survey-scoring-server/internal/repository"
	"github.com/survey-scoring-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	configManager *config.Manager
	scoring       *service.ScoringService
	store         *repository.Store
	analytics     *analytics.Service
	reports       *report.Service
	demographics  *cache.DemographicsCache
	criteria      *criteria.Repository
	log           *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(
	configManager *config.Manager,
	scoring *service.ScoringService,
	store *repository.Store,
	analyticsService *analytics.Service,
	reports *report.Service,
	demographics *cache.DemographicsCache,
	criteriaRepo *criteria.Repository,
	logger *logrus.Logger,
) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.RequestTimeout(cfg.Server.WriteTimeout))
	router.Use(corsMiddleware())

	server := &Server{
		configManager: configManager,
		scoring:       scoring,
		store:         store,
		analytics:     analyticsService,
		reports:       reports,
		demographics:  demographics,
		criteria:      criteriaRepo,
		log:           logger,
		router:        router,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("starting server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.log.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// Router exposes the underlying handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/assessments", s.handleListAssessments)

		v1.POST("/surveys/score", s.handleScore)
		v1.POST("/surveys/submit", s.handleSubmit)

		v1.GET("/results/:id", s.handleGetResult)
		v1.DELETE("/results/:id", s.handleDeleteResult)
		v1.GET("/patients/:patient_id/results", s.handleListPatientResults)

		v1.GET("/analytics/statistics/:survey_type", s.handleStatistics)
		v1.GET("/analytics/trends/:survey_type", s.handleTrends)
		v1.GET("/analytics/risk/:survey_type", s.handleRisk)
	}
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Correlation-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
