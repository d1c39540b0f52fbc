// Package stats turns a backtest result into the ordered label/value rows shown on the dashboard.
package stats

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/Alias1177/BotView/internal/format"
	"github.com/Alias1177/BotView/models"
)

// Row is a single line of a statistics table. Separator rows carry no label or value.
type Row struct {
	Label       string `json:"label,omitempty"`
	Value       string `json:"value,omitempty"`
	IsSeparator bool   `json:"is_separator,omitempty"`
}

func row(label, value string) Row {
	return Row{Label: label, Value: value}
}

func separator() Row {
	return Row{IsSeparator: true}
}

// FormatMetrics renders the result statistics in dashboard order
func FormatMetrics(r *models.BacktestResult) []Row {
	price := format.CurrencyFormatter(r.StakeCurrency, r.StakeCurrencyDecimals)
	pct := format.PercentDefault

	best, worst := bestWorstTrade(r.Trades)

	rows := []Row{
		row("Total Profit", fmt.Sprintf("%s | %s", pct(r.ProfitTotal), price(r.ProfitTotalAbs))),
		row("CAGR", optionalPercent(r.CAGR)),
		row("Sortino", format.Ratio(r.Sortino, 2)),
		row("Sharpe", format.Ratio(r.Sharpe, 2)),
		row("Calmar", format.Ratio(r.Calmar, 2)),
		row("System Quality Number (SQN)", format.Ratio(r.SQN, 2)),
		expectancyRow(r),
		row("Profit factor", format.Ratio(r.ProfitFactor, 3)),
		row("Total trades / Daily Avg Trades", fmt.Sprintf("%d / %s", r.TotalTrades, strconv.FormatFloat(r.TradesPerDay, 'f', -1, 64))),
		row("Best day", fmt.Sprintf("%s | %s", format.Percent(r.BestDay, 2), price(r.BestDayAbs))),
		row("Worst day", fmt.Sprintf("%s | %s", format.Percent(r.WorstDay, 2), price(r.WorstDayAbs))),
		winDrawLossRow(r.ResultsPerPair),
		row("Days win/draw/loss", fmt.Sprintf("%d / %d / %d", r.WinningDays, r.DrawDays, r.LosingDays)),
		row("Avg. Duration winners", format.Duration(r.WinnerHoldingS)),
		row("Avg. Duration Losers", format.Duration(r.LoserHoldingS)),
		row("Max Consecutive Wins / Loss", consecutiveValue(r)),
		row("Rejected entry signals", strconv.Itoa(r.RejectedSignals)),
		row("Entry/Exit timeouts", fmt.Sprintf("%d / %d", r.TimedoutEntryOrders, r.TimedoutExitOrders)),
		row("Canceled Trade Entries", optionalInt(r.CanceledTradeEntries)),
		row("Canceled Entry Orders", optionalInt(r.CanceledEntryOrders)),
		row("Replaced Entry Orders", optionalInt(r.ReplacedEntryOrders)),
	}

	if r.TradeCountShort > 0 {
		rows = append(rows,
			separator(),
			row("Long / Short", fmt.Sprintf("%d / %d", r.TradeCountLong, r.TradeCountShort)),
			row("Total profit Long", fmt.Sprintf("%s | %s", pct(valueOrZero(r.ProfitTotalLong)), price(r.ProfitTotalLongAbs))),
			row("Total profit Short", fmt.Sprintf("%s | %s", pct(valueOrZero(r.ProfitTotalShort)), price(r.ProfitTotalShortAbs))),
		)
	}

	rows = append(rows,
		separator(),
		row("Min balance", price(r.CsumMin)),
		row("Max balance", price(r.CsumMax)),
		row("Market change", pct(r.MarketChange)),

		separator(),
		row("Max Drawdown (Account)", pct(r.MaxDrawdownAccount)),
		row("Max Drawdown ABS", price(r.MaxDrawdownAbs)),
		row("Drawdown high | low", fmt.Sprintf("%s | %s", price(r.MaxDrawdownHigh), price(r.MaxDrawdownLow))),
		row("Drawdown start", format.TimestampMs(r.DrawdownStartTs)),
		row("Drawdown end", format.TimestampMs(r.DrawdownEndTs)),

		separator(),
		row("Best Pair", fmt.Sprintf("%s %s", r.BestPair.Key, pct(r.BestPair.ProfitTotal))),
		row("Worst Pair", fmt.Sprintf("%s %s", r.WorstPair.Key, pct(r.WorstPair.ProfitTotal))),
		row("Best single Trade", best),
		row("Worst single Trade", worst),
	)

	return rows
}

// bestWorstTrade sorts a copy of the trades by profit ratio; the input order is left untouched
func bestWorstTrade(trades []models.Trade) (string, string) {
	if len(trades) == 0 {
		return format.NA, format.NA
	}

	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProfitRatio < sorted[j].ProfitRatio
	})

	render := func(t models.Trade) string {
		return fmt.Sprintf("%s %s", t.Pair, format.Percent(t.ProfitRatio, 2))
	}
	return render(sorted[len(sorted)-1]), render(sorted[0])
}

func expectancyRow(r *models.BacktestResult) Row {
	hasRatio := r.ExpectancyRatio != nil && *r.ExpectancyRatio != 0

	label := "Expectancy"
	if hasRatio {
		label = "Expectancy (ratio)"
	}

	if r.Expectancy == nil || *r.Expectancy == 0 {
		return row(label, format.NA)
	}
	value := format.Price(*r.Expectancy, 2)
	if hasRatio {
		value = fmt.Sprintf("%s (%s)", value, format.Price(*r.ExpectancyRatio, 2))
	}
	return row(label, value)
}

// winDrawLossRow reads the last per-pair row, which the bot fills with totals
func winDrawLossRow(perPair []models.PerPairResult) Row {
	const label = "Win/Draw/Loss"
	if len(perPair) == 0 {
		return row(label, format.NA)
	}

	total := perPair[len(perPair)-1]
	value := fmt.Sprintf("%d / %d / %d", total.Wins, total.Draws, total.Losses)
	if total.Winrate != nil {
		value += fmt.Sprintf(" (WR: %s)", format.Percent(*total.Winrate, 2))
	}
	return row(label, value)
}

func consecutiveValue(r *models.BacktestResult) string {
	if r.MaxConsecutiveWins == nil {
		return format.NA
	}
	return fmt.Sprintf("%d / %s", *r.MaxConsecutiveWins, optionalInt(r.MaxConsecutiveLosses))
}

func optionalPercent(v *float64) string {
	if v == nil || *v == 0 {
		return format.NA
	}
	return format.PercentDefault(*v)
}

func optionalInt(v *int) string {
	if v == nil {
		return format.NA
	}
	return strconv.Itoa(*v)
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
