// Package http provides the HTTP server adapter for the application layer.
// It translates HTTP requests into application service calls; all workflow
// rules live below it.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bgftrust/bgf-dashboard/internal/application/service"
	"github.com/bgftrust/bgf-dashboard/internal/domain/entity"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	requestService service.RequestService,
	workflowService service.WorkflowService,
	commentService service.CommentService,
	notificationService service.NotificationService,
	reportService service.ReportService,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config: config,
		router: gin.New(),
		handlers: NewHandlers(
			requestService,
			workflowService,
			commentService,
			notificationService,
			reportService,
			logger,
		),
		logger: logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(loggingMiddleware(s.logger))
	s.router.Use(corsMiddleware())
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/api/v1")
	api.Use(actorMiddleware())
	{
		api.POST("/requests", s.handlers.CreateRequest)
		api.GET("/requests", s.handlers.ListRequests)
		api.GET("/requests/:id", s.handlers.GetRequest)
		api.GET("/requests/:id/history", s.handlers.GetHistory)

		hop := requireRole(entity.RoleHeadOfPrograms)
		api.POST("/requests/:id/hop-review", hop, s.handlers.SubmitHopInitialReview)
		api.POST("/requests/:id/assign-officer", hop, s.handlers.AssignToOfficer)
		api.POST("/requests/:id/officer-review",
			requireRole(entity.RoleAssistantProjectOfficer, entity.RoleProjectManager),
			s.handlers.SubmitOfficerReview)
		api.POST("/requests/:id/hop-final-review", hop, s.handlers.SubmitHopFinalReview)
		api.POST("/requests/:id/assign-director", hop, s.handlers.AssignToDirector)
		api.POST("/requests/:id/director-review",
			requireRole(entity.RoleDirector), s.handlers.SubmitDirectorReview)
		api.POST("/requests/:id/executive-approval",
			requireRole(entity.RoleCEO, entity.RolePatron), s.handlers.SubmitExecutiveApproval)

		api.GET("/requests/:id/comments", s.handlers.ListComments)
		api.POST("/requests/:id/comments", s.handlers.AddComment)

		api.GET("/queue", s.handlers.MyQueue)
		api.GET("/notifications", s.handlers.ListNotifications)
		api.POST("/notifications/:id/read", s.handlers.MarkNotificationRead)

		api.GET("/reports/requests", s.handlers.RequestsRegister)
	}
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

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

	s.logger.Info("Stopping HTTP server")

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
