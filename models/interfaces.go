package models

import "context"

// BotClient is the subset of the bot REST API the dashboard consumes
type BotClient interface {
	StartDataDownload(ctx context.Context, req DownloadRequest) (*BackgroundJobResponse, error)
	BackgroundJob(ctx context.Context, jobID string) (*BackgroundTaskStatus, error)
	OpenTrades(ctx context.Context) ([]Trade, error)
	Locks(ctx context.Context) ([]Lock, error)
	Whitelist(ctx context.Context) ([]string, error)
	BacktestHistoryResult(ctx context.Context, filename, strategy string) (*BacktestResult, error)
}
