// Command download submits a data download to the bot and follows it until it finishes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Alias1177/BotView/config"
	"github.com/Alias1177/BotView/internal/api/freqtrade"
	"github.com/Alias1177/BotView/internal/download"
	"github.com/Alias1177/BotView/internal/logging"
	"github.com/Alias1177/BotView/models"
)

func main() {
	flags := newFlagSet()
	flags.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}

	v, err := bindFlags(flags)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to bind flags")
	}
	form := formFromViper(v)

	if !form.Time.UseCustomTimerange {
		for _, tf := range form.Timeframes {
			logger.Info().
				Str("timeframe", tf).
				Int("candles_per_pair", models.CalculateCandlesForDays(tf, form.Time.Days)).
				Msg("Estimated download size")
		}
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

	jobID, req, err := download.Submit(ctx, bot, form)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start download")
	}
	logger.Info().Str("job_id", jobID).Strs("pairs", req.Pairs).Strs("timeframes", req.Timeframes).Msg("Download started")

	done := make(chan models.BackgroundTaskStatus, 1)
	tracker := download.NewTracker(bot, cfg.PollInterval)
	tracker.OnUpdate(func(status models.BackgroundTaskStatus) {
		printProgress(status)
		if status.Finished() {
			select {
			case done <- status:
			default:
			}
		}
	})
	tracker.Track(jobID, models.JobCategoryDownloadData)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go tracker.Run(runCtx)

	select {
	case <-ctx.Done():
		logger.Warn().Str("job_id", jobID).Msg("Interrupted, the bot keeps downloading in the background")
	case status := <-done:
		if status.Status == models.JobStatusFailed {
			logger.Error().Str("job_id", jobID).Str("error", status.Error).Msg("Download failed")
			os.Exit(1)
		}
		logger.Info().Str("job_id", jobID).Msg("Download finished")
	}
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("download", pflag.ExitOnError)
	flags.StringSlice("pairs", []string{"BTC/USDT", "ETH/USDT"}, "pairs or pair regexes to download")
	flags.String("template", "", "predefined pair group to add, e.g. \"All USDT Pairs\"")
	flags.StringSlice("timeframes", []string{"5m", "1h"}, "timeframes to download")
	flags.Int("days", download.DefaultDays, "days of history to download")
	flags.String("timerange", "", "explicit timerange (YYYYMMDD-YYYYMMDD), overrides --days")
	flags.Bool("erase", false, "erase existing data first")
	flags.Bool("dl-trades", false, "download trades instead of candles")
	flags.String("exchange", "", "exchange to use instead of the bot's configured one")
	flags.String("trading-mode", download.TradingModeSpot, "spot or futures")
	flags.String("margin-mode", download.MarginModeNone, "isolated or cross (futures only)")
	return flags
}

// bindFlags layers DOWNLOAD_* environment variables under the command line flags,
// e.g. DOWNLOAD_DL_TRADES=true
func bindFlags(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("download")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	return v, nil
}

// formFromViper fills the download form. The advanced panel counts as expanded as
// soon as any advanced option is requested.
func formFromViper(v *viper.Viper) download.Form {
	form := download.NewForm()
	form.Pairs = v.GetStringSlice("pairs")
	template := v.GetString("template")
	for _, t := range download.PairTemplates {
		if t.Description == template {
			form.AddPairs(t.Pairs...)
		}
	}
	form.Timeframes = v.GetStringSlice("timeframes")

	timerange := v.GetString("timerange")
	form.Time = download.TimeSelection{
		UseCustomTimerange: timerange != "",
		Timerange:          timerange,
		Days:               v.GetInt("days"),
	}

	exchange := v.GetString("exchange")
	form.Advanced.Erase = v.GetBool("erase")
	form.Advanced.DownloadTrades = v.GetBool("dl-trades")
	form.Advanced.Expanded = form.Advanced.Erase || form.Advanced.DownloadTrades || exchange != ""
	if exchange != "" {
		form.Advanced.CustomExchange = true
		form.Advanced.Exchange = download.ExchangeSelection{
			Exchange:    exchange,
			TradingMode: v.GetString("trading-mode"),
			MarginMode:  v.GetString("margin-mode"),
		}
	}
	return form
}

func printProgress(status models.BackgroundTaskStatus) {
	ids := make([]string, 0, len(status.ProgressTasks))
	for id := range status.ProgressTasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("[%s] %s\n", status.JobID, status.Status)
	for _, id := range ids {
		task := status.ProgressTasks[id]
		fmt.Printf("  %-40s %6.2f%%\n", task.Description, download.TaskPercent(task))
	}
}
