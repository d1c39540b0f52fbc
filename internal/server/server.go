// Package server exposes the dashboard view models over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/BotView/internal/download"
	"github.com/Alias1177/BotView/models"
)

// BacktestCache is the optional result cache
type BacktestCache interface {
	Get(ctx context.Context, filename, strategy string) (*models.BacktestResult, error)
	Set(ctx context.Context, filename, strategy string, result *models.BacktestResult) error
}

// JobStore is the optional download history
type JobStore interface {
	SaveJob(ctx context.Context, jobID string, req models.DownloadRequest) (*models.DownloadJob, error)
	ListJobs(ctx context.Context, limit int) ([]models.DownloadJob, error)
}

// Deps are the collaborators of the server. Cache and Jobs may be nil.
type Deps struct {
	Bot          models.BotClient
	Tracker      *download.Tracker
	Cache        BacktestCache
	Jobs         JobStore
	User         string
	PasswordHash string

	// AllowedOrigins are browser origins, besides the server's own host, that may open the job websocket
	AllowedOrigins []string
}

// Server serves the JSON API, the job websocket and metrics
type Server struct {
	deps   Deps
	hub    *Hub
	engine *gin.Engine
	logger zerolog.Logger
}

// New wires routes and subscribes the websocket hub to job updates
func New(deps Deps) *Server {
	s := &Server{
		deps:   deps,
		hub:    NewHub(deps.Tracker, deps.AllowedOrigins),
		logger: log.With().Str("component", "server").Logger(),
	}
	deps.Tracker.OnUpdate(s.hub.Broadcast)

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authorized := engine.Group("/", basicAuth(deps.User, deps.PasswordHash, s.logger))
	authorized.GET("/ws/jobs", s.hub.Serve)

	api := authorized.Group("/api/v1")
	api.GET("/backtest/:filename/:strategy/metrics", s.backtestMetrics)
	api.GET("/pairs/summary", s.pairSummary)
	api.GET("/download/templates", s.pairTemplates)
	api.POST("/download", s.startDownload)
	api.GET("/jobs", s.runningJobs)
	api.DELETE("/jobs", s.clearJobs)
	api.GET("/jobs/history", s.jobHistory)

	s.engine = engine
	return s
}

// Handler returns the root http handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.hub.Close()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request handled")
	}
}
