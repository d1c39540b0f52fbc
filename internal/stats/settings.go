package stats

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Alias1177/BotView/internal/format"
	"github.com/Alias1177/BotView/models"
)

// FormatSettings renders the strategy configuration a backtest ran with.
// Legacy sell_* fields are used when the exit_* equivalents are missing.
func FormatSettings(r *models.BacktestResult) []Row {
	s := r.BacktestSettings
	price := format.CurrencyFormatter(r.StakeCurrency, r.StakeCurrencyDecimals)

	rows := []Row{
		row("Backtesting from", format.TimestampMs(s.BacktestStartTs)),
		row("Backtesting to", format.TimestampMs(s.BacktestEndTs)),
	}
	if mode, ok := tradingMode(s); ok {
		rows = append(rows, row("Trading Mode", mode))
	}

	timeframeDetail := s.TimeframeDetail
	if timeframeDetail == "" {
		timeframeDetail = format.NA
	}

	rows = append(rows,
		row("BT execution time", format.Duration(float64(s.BacktestRunEndTs-s.BacktestRunStartTs))),
		row("Max open trades", strconv.Itoa(s.MaxOpenTrades)),
		row("Timeframe", s.Timeframe),
		row("Timeframe Detail", timeframeDetail),
		row("Timerange", s.Timerange),
		row("Stoploss", format.Percent(s.Stoploss, 2)),
		row("Trailing Stoploss", strconv.FormatBool(s.TrailingStop)),
		row("Trail only when offset is reached", strconv.FormatBool(s.TrailingOnlyOffsetIsReached)),
		row("Trailing Stop positive", optionalFloat(s.TrailingStopPositive)),
		row("Trailing stop positive offset", strconv.FormatFloat(s.TrailingStopPositiveOffset, 'f', -1, 64)),
		row("Custom Stoploss", strconv.FormatBool(s.UseCustomStoploss)),
		row("ROI", roiJSON(s.MinimalROI)),
		row("Use Exit Signal", optionalBool(firstBool(s.UseExitSignal, s.UseSellSignal))),
		row("Exit profit only", optionalBool(firstBool(s.ExitProfitOnly, s.SellProfitOnly))),
		row("Exit profit offset", optionalFloat(firstFloat(s.ExitProfitOffset, s.SellProfitOffset))),
		row("Enable protections", strconv.FormatBool(s.EnableProtections)),
		row("Starting balance", price(s.StartingBalance)),
		row("Final balance", price(s.FinalBalance)),
		row("Avg. stake amount", price(s.AvgStakeAmount)),
		row("Total trade volume", price(s.TotalVolume)),
	)
	return rows
}

// tradingMode is only reported when both modes are known: "Spot" or e.g. "Isolated Futures"
func tradingMode(s models.BacktestSettings) (string, bool) {
	if s.TradingMode == "" || s.MarginMode == "" {
		return "", false
	}
	if s.TradingMode == "spot" {
		return format.Capitalize(s.TradingMode), true
	}
	return fmt.Sprintf("%s %s", format.Capitalize(s.MarginMode), format.Capitalize(s.TradingMode)), true
}

func roiJSON(roi map[string]float64) string {
	if roi == nil {
		return "{}"
	}
	// encoding/json sorts map keys, so the output is stable
	b, err := json.Marshal(roi)
	if err != nil {
		return format.NA
	}
	return string(b)
}

func firstBool(values ...*bool) *bool {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func optionalBool(v *bool) string {
	if v == nil {
		return format.NA
	}
	return strconv.FormatBool(*v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return format.NA
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
