// Package download builds data-download requests from form state and follows the resulting background jobs.
package download

import (
	"context"
	"fmt"

	"github.com/Alias1177/BotView/models"
)

// DefaultDays is the relative range used when no custom timerange is given
const DefaultDays = 30

// Trading and margin modes accepted by the bot
const (
	TradingModeSpot    = "spot"
	TradingModeFutures = "futures"
	MarginModeNone     = ""
	MarginModeIsolated = "isolated"
	MarginModeCross    = "cross"
)

// TimeSelection picks either a relative day count or an explicit timerange
type TimeSelection struct {
	UseCustomTimerange bool   `json:"use_custom_timerange"`
	Timerange          string `json:"timerange"`
	Days               int    `json:"days"`
}

// ExchangeSelection overrides the bot's configured exchange
type ExchangeSelection struct {
	Exchange    string `json:"exchange"`
	TradingMode string `json:"trading_mode"`
	MarginMode  string `json:"margin_mode"`
}

// AdvancedOptions only contribute to the request while Expanded is set
type AdvancedOptions struct {
	Expanded       bool              `json:"expanded"`
	Erase          bool              `json:"erase"`
	DownloadTrades bool              `json:"download_trades"`
	CustomExchange bool              `json:"custom_exchange"`
	Exchange       ExchangeSelection `json:"exchange"`
}

// Form is the state of the data-download view
type Form struct {
	Pairs      []string        `json:"pairs"`
	Timeframes []string        `json:"timeframes"`
	Time       TimeSelection   `json:"time"`
	Advanced   AdvancedOptions `json:"advanced"`
}

// NewForm returns the form defaults
func NewForm() Form {
	return Form{
		Pairs:      []string{"BTC/USDT", "ETH/USDT", ""},
		Timeframes: []string{"5m", "1h"},
		Time:       TimeSelection{Days: DefaultDays},
		Advanced: AdvancedOptions{
			Exchange: ExchangeSelection{
				Exchange:    "binance",
				TradingMode: TradingModeSpot,
				MarginMode:  MarginModeNone,
			},
		},
	}
}

// PairTemplate is a named group of pair expressions that can be appended to a form
type PairTemplate struct {
	Description string   `json:"description"`
	Pairs       []string `json:"pairs"`
}

// PairTemplates are the predefined pair groups
var PairTemplates = []PairTemplate{
	{Description: "All USDT Pairs", Pairs: []string{".*/USDT"}},
	{Description: "All USDT Futures Pairs", Pairs: []string{".*/USDT:USDT"}},
}

// AddPairs appends pairs, e.g. from a template
func (f *Form) AddPairs(pairs ...string) {
	f.Pairs = append(f.Pairs, pairs...)
}

// Build assembles the request payload. The form itself is not modified.
func Build(f Form) models.DownloadRequest {
	req := models.DownloadRequest{
		Pairs:      nonEmpty(f.Pairs),
		Timeframes: nonEmpty(f.Timeframes),
	}

	if f.Time.UseCustomTimerange && f.Time.Timerange != "" {
		req.Timerange = f.Time.Timerange
	} else {
		days := f.Time.Days
		req.Days = &days
	}

	if f.Advanced.Expanded {
		erase := f.Advanced.Erase
		downloadTrades := f.Advanced.DownloadTrades
		req.Erase = &erase
		req.DownloadTrades = &downloadTrades

		if f.Advanced.CustomExchange {
			req.Exchange = f.Advanced.Exchange.Exchange
			req.TradingMode = f.Advanced.Exchange.TradingMode
			req.MarginMode = f.Advanced.Exchange.MarginMode
		}
	}
	return req
}

// Starter is the bot operation Submit delegates to
type Starter interface {
	StartDataDownload(ctx context.Context, req models.DownloadRequest) (*models.BackgroundJobResponse, error)
}

// Submit builds the request and hands it to the bot. Errors are returned as they come.
func Submit(ctx context.Context, bot Starter, f Form) (string, models.DownloadRequest, error) {
	req := Build(f)
	resp, err := bot.StartDataDownload(ctx, req)
	if err != nil {
		return "", req, err
	}
	if resp == nil || resp.JobID == "" {
		return "", req, fmt.Errorf("bot accepted download without a job id")
	}
	return resp.JobID, req, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
