package models

import (
	"time"
)

// Config is the service configuration, loaded from the environment
type Config struct {
	BotAPIURL      string
	BotUsername    string
	BotPassword    string
	BotJWTToken    string
	RequestTimeout int // seconds
	RequestsPerSec int

	ListenAddr            string
	DashboardUser         string
	DashboardPasswordHash string // bcrypt
	WSAllowedOrigins      []string

	PollInterval time.Duration
	CacheTTL     time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TelegramToken  string
	TelegramChatID int64

	LogLevel string
	LogFile  string
}

// BacktestResult mirrors a single strategy entry of the bot's backtest result payload.
// Pointer fields are optional on the wire; nil means the bot did not report them.
type BacktestResult struct {
	StakeCurrency         string `json:"stake_currency"`
	StakeCurrencyDecimals int    `json:"stake_currency_decimals"`

	ProfitTotal     float64  `json:"profit_total"`
	ProfitTotalAbs  float64  `json:"profit_total_abs"`
	CAGR            *float64 `json:"cagr,omitempty"`
	Sortino         *float64 `json:"sortino,omitempty"`
	Sharpe          *float64 `json:"sharpe,omitempty"`
	Calmar          *float64 `json:"calmar,omitempty"`
	SQN             *float64 `json:"sqn,omitempty"`
	Expectancy      *float64 `json:"expectancy,omitempty"`
	ExpectancyRatio *float64 `json:"expectancy_ratio,omitempty"`
	ProfitFactor    *float64 `json:"profit_factor,omitempty"`

	TotalTrades  int     `json:"total_trades"`
	TradesPerDay float64 `json:"trades_per_day"`

	BestDay        float64 `json:"backtest_best_day"`
	BestDayAbs     float64 `json:"backtest_best_day_abs"`
	WorstDay       float64 `json:"backtest_worst_day"`
	WorstDayAbs    float64 `json:"backtest_worst_day_abs"`
	WinningDays    int     `json:"winning_days"`
	DrawDays       int     `json:"draw_days"`
	LosingDays     int     `json:"losing_days"`
	WinnerHoldingS float64 `json:"winner_holding_avg_s"`
	LoserHoldingS  float64 `json:"loser_holding_avg_s"`

	MaxConsecutiveWins   *int `json:"max_consecutive_wins,omitempty"`
	MaxConsecutiveLosses *int `json:"max_consecutive_losses,omitempty"`
	RejectedSignals      int  `json:"rejected_signals"`
	TimedoutEntryOrders  int  `json:"timedout_entry_orders"`
	TimedoutExitOrders   int  `json:"timedout_exit_orders"`
	CanceledTradeEntries *int `json:"canceled_trade_entries,omitempty"`
	CanceledEntryOrders  *int `json:"canceled_entry_orders,omitempty"`
	ReplacedEntryOrders  *int `json:"replaced_entry_orders,omitempty"`

	TradeCountLong      int      `json:"trade_count_long"`
	TradeCountShort     int      `json:"trade_count_short"`
	ProfitTotalLong     *float64 `json:"profit_total_long,omitempty"`
	ProfitTotalLongAbs  float64  `json:"profit_total_long_abs"`
	ProfitTotalShort    *float64 `json:"profit_total_short,omitempty"`
	ProfitTotalShortAbs float64  `json:"profit_total_short_abs"`

	CsumMin      float64 `json:"csum_min"`
	CsumMax      float64 `json:"csum_max"`
	MarketChange float64 `json:"market_change"`

	MaxDrawdownAccount float64 `json:"max_drawdown_account"`
	MaxDrawdownAbs     float64 `json:"max_drawdown_abs"`
	MaxDrawdownHigh    float64 `json:"max_drawdown_high"`
	MaxDrawdownLow     float64 `json:"max_drawdown_low"`
	DrawdownStartTs    int64   `json:"drawdown_start_ts"`
	DrawdownEndTs      int64   `json:"drawdown_end_ts"`

	BestPair  PairProfit `json:"best_pair"`
	WorstPair PairProfit `json:"worst_pair"`

	Trades         []Trade         `json:"trades"`
	ResultsPerPair []PerPairResult `json:"results_per_pair"`

	BacktestSettings
}

// BacktestSettings holds the run configuration echoed back in a backtest result.
type BacktestSettings struct {
	BacktestStartTs    int64   `json:"backtest_start_ts"`
	BacktestEndTs      int64   `json:"backtest_end_ts"`
	BacktestRunStartTs int64   `json:"backtest_run_start_ts"` // seconds
	BacktestRunEndTs   int64   `json:"backtest_run_end_ts"`   // seconds
	TradingMode        string  `json:"trading_mode,omitempty"`
	MarginMode         string  `json:"margin_mode,omitempty"`
	MaxOpenTrades      int     `json:"max_open_trades"`
	Timeframe          string  `json:"timeframe"`
	TimeframeDetail    string  `json:"timeframe_detail,omitempty"`
	Timerange          string  `json:"timerange"`
	Stoploss           float64 `json:"stoploss"`

	TrailingStop                bool               `json:"trailing_stop"`
	TrailingOnlyOffsetIsReached bool               `json:"trailing_only_offset_is_reached"`
	TrailingStopPositive        *float64           `json:"trailing_stop_positive,omitempty"`
	TrailingStopPositiveOffset  float64            `json:"trailing_stop_positive_offset"`
	UseCustomStoploss           bool               `json:"use_custom_stoploss"`
	MinimalROI                  map[string]float64 `json:"minimal_roi"`
	UseExitSignal               *bool              `json:"use_exit_signal,omitempty"`
	UseSellSignal               *bool              `json:"use_sell_signal,omitempty"`
	ExitProfitOnly              *bool              `json:"exit_profit_only,omitempty"`
	SellProfitOnly              *bool              `json:"sell_profit_only,omitempty"`
	ExitProfitOffset            *float64           `json:"exit_profit_offset,omitempty"`
	SellProfitOffset            *float64           `json:"sell_profit_offset,omitempty"`
	EnableProtections           bool               `json:"enable_protections"`

	StartingBalance float64 `json:"starting_balance"`
	FinalBalance    float64 `json:"final_balance"`
	AvgStakeAmount  float64 `json:"avg_stake_amount"`
	TotalVolume     float64 `json:"total_volume"`
}

// PairProfit is the best/worst pair summary of a backtest
type PairProfit struct {
	Key         string  `json:"key"`
	ProfitTotal float64 `json:"profit_total"`
}

// Trade is one open or closed position
type Trade struct {
	TradeID       int64    `json:"trade_id"`
	Pair          string   `json:"pair"`
	IsOpen        bool     `json:"is_open"`
	OpenTimestamp int64    `json:"open_timestamp"` // ms
	ProfitRatio   float64  `json:"profit_ratio"`
	ProfitAbs     *float64 `json:"profit_abs,omitempty"`
}

// PerPairResult is one row of the per-pair table; the bot appends a TOTAL row last
type PerPairResult struct {
	Key         string   `json:"key"`
	Trades      int      `json:"trades"`
	Wins        int      `json:"wins"`
	Draws       int      `json:"draws"`
	Losses      int      `json:"losses"`
	Winrate     *float64 `json:"winrate,omitempty"`
	ProfitTotal float64  `json:"profit_total"`
}

// Lock suspends trading on a pair until LockEndTimestamp
type Lock struct {
	ID               int64  `json:"id"`
	Pair             string `json:"pair"`
	LockEndTimestamp int64  `json:"lock_end_timestamp"` // ms
	Side             string `json:"side"`
	Reason           string `json:"reason"`
}

// LocksResponse is the payload of GET /locks
type LocksResponse struct {
	LockCount int    `json:"lock_count"`
	Locks     []Lock `json:"locks"`
}

// WhitelistResponse is the payload of GET /whitelist
type WhitelistResponse struct {
	Whitelist []string `json:"whitelist"`
	Length    int      `json:"length"`
	Method    []string `json:"method"`
}

// DownloadRequest is the body of POST /download_data.
// Exactly one of Timerange and Days is set.
type DownloadRequest struct {
	Pairs          []string `json:"pairs"`
	Timeframes     []string `json:"timeframes"`
	Timerange      string   `json:"timerange,omitempty"`
	Days           *int     `json:"days,omitempty"`
	Erase          *bool    `json:"erase,omitempty"`
	DownloadTrades *bool    `json:"download_trades,omitempty"`
	Exchange       string   `json:"exchange,omitempty"`
	TradingMode    string   `json:"trading_mode,omitempty"`
	MarginMode     string   `json:"margin_mode,omitempty"`
}

// BackgroundJobResponse is returned when the bot accepts a background job
type BackgroundJobResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// ProgressTask is one sub-task of a background job
type ProgressTask struct {
	Description string  `json:"description"`
	Progress    float64 `json:"progress"`
	Total       float64 `json:"total"`
}

// BackgroundTaskStatus is the payload of GET /background/{id}
type BackgroundTaskStatus struct {
	JobID         string                  `json:"job_id"`
	JobCategory   string                  `json:"job_category"`
	Status        string                  `json:"status"`
	Running       bool                    `json:"running"`
	Progress      *float64                `json:"progress,omitempty"`
	ProgressTasks map[string]ProgressTask `json:"progress_tasks,omitempty"`
	Error         string                  `json:"error,omitempty"`
}

// Background job states reported by the bot
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusSuccess = "success"
	JobStatusFailed  = "failed"

	JobCategoryDownloadData = "download_data"
)

// Finished reports whether the job reached a terminal state
func (s BackgroundTaskStatus) Finished() bool {
	return s.Status == JobStatusSuccess || s.Status == JobStatusFailed
}

// DownloadJob is a persisted record of a submitted download
type DownloadJob struct {
	JobID      string          `json:"job_id"`
	Pairs      []string        `json:"pairs"`
	Timeframes []string        `json:"timeframes"`
	Request    DownloadRequest `json:"request"`
	Status     string          `json:"status"`
	Progress   float64         `json:"progress"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BacktestHistoryResponse is the payload of GET /backtest/history/result
type BacktestHistoryResponse struct {
	Status         string `json:"status"`
	BacktestResult struct {
		Strategy map[string]BacktestResult `json:"strategy"`
	} `json:"backtest_result"`
}
