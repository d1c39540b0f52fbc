// Package pairs builds the per-pair summary list: open trade, active lock and aggregated profit per pair.
package pairs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/BotView/internal/format"
	"github.com/Alias1177/BotView/models"
)

// SortMethod selects the ordering of the summary
type SortMethod string

const (
	SortNormal SortMethod = "normal"
	SortProfit SortMethod = "profit"
)

// ParseSortMethod maps unknown values to SortNormal
func ParseSortMethod(s string) SortMethod {
	if SortMethod(s) == SortProfit {
		return SortProfit
	}
	return SortNormal
}

// Options are the inputs of Rank. Slices are read, never modified.
type Options struct {
	Pairlist        []string
	Trades          []models.Trade
	Locks           []models.Lock
	SortMethod      SortMethod
	StartingBalance float64
	Filter          string
}

// PairSummary is one line of the pair list
type PairSummary struct {
	Pair         string        `json:"pair"`
	Trade        *models.Trade `json:"trade,omitempty"`
	Lock         *models.Lock  `json:"lock,omitempty"`
	LockReason   string        `json:"lock_reason"`
	ProfitString string        `json:"profit_string"`
	Profit       float64       `json:"profit"`
	ProfitAbs    float64       `json:"profit_abs"`
	TradeCount   int           `json:"trade_count"`
}

// Rank joins pairs with their trades and locks and sorts the result for display
func Rank(opts Options) []PairSummary {
	filter := strings.ToLower(opts.Filter)
	summaries := make([]PairSummary, 0, len(opts.Pairlist))

	for _, pair := range opts.Pairlist {
		if filter != "" && !strings.Contains(strings.ToLower(pair), filter) {
			continue
		}
		summaries = append(summaries, summarize(pair, opts))
	}

	if opts.SortMethod == SortProfit {
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].Profit > summaries[j].Profit
		})
	} else {
		sort.SliceStable(summaries, func(i, j int) bool {
			return lessNormal(summaries[i], summaries[j])
		})
	}
	return summaries
}

func summarize(pair string, opts Options) PairSummary {
	s := PairSummary{Pair: pair}

	var trades []models.Trade
	for _, t := range opts.Trades {
		if t.Pair == pair {
			trades = append(trades, t)
		}
	}

	// Most recent lock wins
	for i := range opts.Locks {
		l := opts.Locks[i]
		if l.Pair != pair {
			continue
		}
		if s.Lock == nil || l.LockEndTimestamp > s.Lock.LockEndTimestamp {
			s.Lock = &l
		}
	}
	if s.Lock != nil {
		s.LockReason = fmt.Sprintf("%s - %s - %s", format.TimestampMs(s.Lock.LockEndTimestamp), s.Lock.Side, s.Lock.Reason)
	}

	profit := decimal.Zero
	profitAbs := decimal.Zero
	for _, t := range trades {
		profit = profit.Add(decimal.NewFromFloat(t.ProfitRatio))
		if t.ProfitAbs != nil {
			profitAbs = profitAbs.Add(decimal.NewFromFloat(*t.ProfitAbs))
		}
	}
	// In profit mode the ratio is relative to the starting balance, not the sum of per-trade ratios
	if opts.SortMethod == SortProfit && opts.StartingBalance != 0 {
		profit = profitAbs.Div(decimal.NewFromFloat(opts.StartingBalance))
	}

	s.Profit = profit.InexactFloat64()
	s.ProfitAbs = profitAbs.InexactFloat64()
	s.TradeCount = len(trades)

	if len(trades) > 0 {
		first := trades[0]
		s.Trade = &first
		s.ProfitString = fmt.Sprintf("Current profit: %s\nOpen since: %s",
			format.PercentDefault(s.Profit), format.TimestampMs(first.OpenTimestamp))
	}
	return s
}

// lessNormal orders pairs with an open trade first (by trade id), then locked pairs
// (earliest lock end first), then the rest in pairlist order.
func lessNormal(a, b PairSummary) bool {
	ta, tb := tier(a), tier(b)
	if ta != tb {
		return ta < tb
	}
	switch ta {
	case 0:
		return a.Trade.TradeID < b.Trade.TradeID
	case 1:
		return a.Lock.LockEndTimestamp < b.Lock.LockEndTimestamp
	}
	return false
}

func tier(s PairSummary) int {
	switch {
	case s.Trade != nil:
		return 0
	case s.Lock != nil:
		return 1
	}
	return 2
}
