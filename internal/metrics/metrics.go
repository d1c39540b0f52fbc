// Package metrics holds the Prometheus collectors served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BotRequests counts bot API attempts by method and status code
	BotRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "botview_bot_requests_total",
		Help: "Requests sent to the bot REST API",
	}, []string{"method", "status"})

	// BotRequestLatency observes bot API calls end to end
	BotRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "botview_bot_request_duration_seconds",
		Help: "Latency of bot REST API requests, retries included",
	}, []string{"method"})

	// DownloadJobs counts jobs reaching a terminal state
	DownloadJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "botview_download_jobs_total",
		Help: "Download jobs by final status",
	}, []string{"status"})

	// RunningJobs is the number of tracked jobs not yet finished
	RunningJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "botview_running_jobs",
		Help: "Background jobs currently tracked",
	})

	// WSConnections is the number of open job websockets
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "botview_ws_connections",
		Help: "Active job-progress websocket connections",
	})

	// CacheLookups counts backtest cache hits, misses and errors
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "botview_cache_lookups_total",
		Help: "Backtest cache lookups by outcome",
	}, []string{"outcome"})
)
