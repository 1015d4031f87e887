// Package httpapi serves the compliance views and writes over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/services"
)

const shutdownTimeout = 10 * time.Second

// Engine is the compliance surface the API needs.
type Engine interface {
	Load(ctx context.Context) *services.View
	Current(ctx context.Context) *services.View
	Insights(ctx context.Context, view *services.View) services.InsightResult
	ToggleRule(ctx context.Context, ruleID string, enabled bool) (*services.View, error)
	UpdateCaseStatus(ctx context.Context, caseID string, status entities.CaseStatus, opts services.StatusUpdateOptions) (*services.View, error)
	AddCaseComment(ctx context.Context, caseID, author, body string) (*entities.CaseComment, error)
	CaseComments(ctx context.Context, caseID string) ([]entities.CaseComment, error)
}

// Server exposes an Engine through gin.
type Server struct {
	engine  Engine
	metrics http.Handler
	logger  *zap.Logger
	router  *gin.Engine
}

// NewServer builds the router. metrics may be nil, in which case /metrics
// is not registered.
func NewServer(engine Engine, metrics http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:  engine,
		metrics: metrics,
		logger:  logger.Named("http"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics))
	}

	api := r.Group("/api")
	api.GET("/dashboard", s.dashboard)
	api.GET("/rules", s.listRules)
	api.PATCH("/rules/:id", s.toggleRule)
	api.GET("/cases", s.listCases)
	api.PATCH("/cases/:id/status", s.updateCaseStatus)
	api.GET("/cases/:id/comments", s.listComments)
	api.POST("/cases/:id/comments", s.addComment)
	api.GET("/documents", s.listDocuments)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
