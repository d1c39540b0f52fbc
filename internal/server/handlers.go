package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Alias1177/BotView/internal/api/freqtrade"
	"github.com/Alias1177/BotView/internal/download"
	"github.com/Alias1177/BotView/internal/pairs"
	httpClient "github.com/Alias1177/BotView/internal/platform/http"
	"github.com/Alias1177/BotView/internal/stats"
	"github.com/Alias1177/BotView/models"
)

type metricsResponse struct {
	Metrics  []stats.Row `json:"metrics"`
	Settings []stats.Row `json:"settings"`
	Cached   bool        `json:"cached"`
}

func (s *Server) backtestMetrics(c *gin.Context) {
	ctx := c.Request.Context()
	filename, strategy := c.Param("filename"), c.Param("strategy")

	var result *models.BacktestResult
	cached := false
	if s.deps.Cache != nil {
		var err error
		if result, err = s.deps.Cache.Get(ctx, filename, strategy); err != nil {
			s.logger.Warn().Err(err).Msg("Backtest cache unavailable")
		}
		cached = result != nil
	}

	if result == nil {
		var err error
		result, err = s.deps.Bot.BacktestHistoryResult(ctx, filename, strategy)
		if err != nil {
			s.botError(c, err)
			return
		}
		if s.deps.Cache != nil {
			if err := s.deps.Cache.Set(ctx, filename, strategy, result); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to cache backtest result")
			}
		}
	}

	c.JSON(http.StatusOK, metricsResponse{
		Metrics:  stats.FormatMetrics(result),
		Settings: stats.FormatSettings(result),
		Cached:   cached,
	})
}

func (s *Server) pairSummary(c *gin.Context) {
	var startingBalance float64
	if raw := c.Query("starting_balance"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid starting_balance"})
			return
		}
		startingBalance = v
	}

	var (
		whitelist []string
		trades    []models.Trade
		locks     []models.Lock
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		whitelist, err = s.deps.Bot.Whitelist(ctx)
		return err
	})
	g.Go(func() (err error) {
		trades, err = s.deps.Bot.OpenTrades(ctx)
		return err
	})
	g.Go(func() (err error) {
		locks, err = s.deps.Bot.Locks(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.botError(c, err)
		return
	}

	c.JSON(http.StatusOK, pairs.Rank(pairs.Options{
		Pairlist:        whitelist,
		Trades:          trades,
		Locks:           locks,
		SortMethod:      pairs.ParseSortMethod(c.DefaultQuery("sort", string(pairs.SortNormal))),
		StartingBalance: startingBalance,
		Filter:          c.Query("filter"),
	}))
}

func (s *Server) pairTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, download.PairTemplates)
}

func (s *Server) startDownload(c *gin.Context) {
	form := download.NewForm()
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID, req, err := download.Submit(c.Request.Context(), s.deps.Bot, form)
	if err != nil {
		s.botError(c, err)
		return
	}

	s.deps.Tracker.Track(jobID, models.JobCategoryDownloadData)
	if s.deps.Jobs != nil {
		if _, err := s.deps.Jobs.SaveJob(c.Request.Context(), jobID, req); err != nil {
			s.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to store download job")
		}
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "request": req})
}

func (s *Server) runningJobs(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Tracker.RunningJobs())
}

func (s *Server) clearJobs(c *gin.Context) {
	s.deps.Tracker.Clear()
	c.Status(http.StatusNoContent)
}

func (s *Server) jobHistory(c *gin.Context) {
	if s.deps.Jobs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "job history is not configured"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	jobs, err := s.deps.Jobs.ListJobs(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list download jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	if jobs == nil {
		jobs = []models.DownloadJob{}
	}
	c.JSON(http.StatusOK, jobs)
}

// botError maps bot client failures onto gateway responses
func (s *Server) botError(c *gin.Context, err error) {
	var statusErr *httpClient.HTTPStatusError
	switch {
	case errors.Is(err, freqtrade.ErrStrategyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &statusErr) && statusErr.StatusCode < 500:
		c.JSON(statusErr.StatusCode, gin.H{"error": err.Error()})
	default:
		s.logger.Error().Err(err).Str("path", c.FullPath()).Msg("Bot API request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
