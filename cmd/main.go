package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Alias1177/BotView/config"
	"github.com/Alias1177/BotView/internal/api/freqtrade"
	"github.com/Alias1177/BotView/internal/cache"
	"github.com/Alias1177/BotView/internal/database"
	"github.com/Alias1177/BotView/internal/download"
	"github.com/Alias1177/BotView/internal/logging"
	"github.com/Alias1177/BotView/internal/notify"
	"github.com/Alias1177/BotView/internal/server"
	"github.com/Alias1177/BotView/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot := freqtrade.NewClient(freqtrade.ClientOptions{
		BaseURL:         cfg.BotAPIURL,
		Username:        cfg.BotUsername,
		Password:        cfg.BotPassword,
		Token:           cfg.BotJWTToken,
		RequestTimeout:  time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec:  cfg.RequestsPerSec,
		MaxRetryTimeout: time.Minute,
	})

	tracker := download.NewTracker(bot, cfg.PollInterval)
	deps := server.Deps{
		Bot:          bot,
		Tracker:      tracker,
		User:         cfg.DashboardUser,
		PasswordHash: cfg.DashboardPasswordHash,

		AllowedOrigins: cfg.WSAllowedOrigins,
	}

	if cfg.DBHost != "" {
		db, err := database.New(ctx, database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		deps.Jobs = db
		tracker.OnUpdate(func(status models.BackgroundTaskStatus) {
			err := db.UpdateJobStatus(ctx, status.JobID, status.Status, jobProgress(status))
			if err != nil && !errors.Is(err, database.ErrJobNotFound) {
				logger.Error().Err(err).Str("job_id", status.JobID).Msg("Failed to update job status")
			}
		})
		logger.Info().Msg("Download history enabled")
	}

	if cfg.RedisAddr != "" {
		c, err := cache.New(ctx, cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer c.Close()
		deps.Cache = c
		logger.Info().Dur("ttl", cfg.CacheTTL).Msg("Backtest cache enabled")
	}

	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Error().Err(err).Msg("Telegram notifications disabled")
		} else {
			tracker.OnFinished(tg.JobFinished)
		}
	}

	srv := server.New(deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tracker.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx, cfg.ListenAddr) })

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("Service stopped with error")
	}
	logger.Info().Msg("Shutdown complete")
}

// jobProgress is the reported overall progress, or the mean of the sub-tasks when the bot omits it
func jobProgress(status models.BackgroundTaskStatus) float64 {
	if status.Status == models.JobStatusSuccess {
		return 100
	}
	if status.Progress != nil {
		return *status.Progress
	}
	if len(status.ProgressTasks) == 0 {
		return 0
	}
	var sum float64
	for _, task := range status.ProgressTasks {
		sum += download.TaskPercent(task)
	}
	return sum / float64(len(status.ProgressTasks))
}
