package pairs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/BotView/models"
)

func ptr[T any](v T) *T {
	return &v
}

func pairsOf(summaries []PairSummary) []string {
	out := make([]string, len(summaries))
	for i, s := range summaries {
		out[i] = s.Pair
	}
	return out
}

func TestRank_OpenTradeFirst(t *testing.T) {
	result := Rank(Options{
		Pairlist:   []string{"B", "A"},
		Trades:     []models.Trade{{Pair: "A", ProfitRatio: 0.1}},
		SortMethod: SortNormal,
	})

	assert.Equal(t, []string{"A", "B"}, pairsOf(result))
}

func TestRank_NormalThreeTiers(t *testing.T) {
	result := Rank(Options{
		Pairlist: []string{"FREE1", "LOCK_LATE", "TRADE_9", "LOCK_EARLY", "TRADE_2", "FREE2"},
		Trades: []models.Trade{
			{TradeID: 9, Pair: "TRADE_9"},
			{TradeID: 2, Pair: "TRADE_2"},
		},
		Locks: []models.Lock{
			{Pair: "LOCK_LATE", LockEndTimestamp: 2000},
			{Pair: "LOCK_EARLY", LockEndTimestamp: 1000},
		},
		SortMethod: SortNormal,
	})

	assert.Equal(t,
		[]string{"TRADE_2", "TRADE_9", "LOCK_EARLY", "LOCK_LATE", "FREE1", "FREE2"},
		pairsOf(result))
}

func TestRank_ProfitModeUsesStartingBalance(t *testing.T) {
	result := Rank(Options{
		Pairlist: []string{"A"},
		Trades: []models.Trade{
			{Pair: "A", ProfitRatio: 0.3, ProfitAbs: ptr(20.0)},
			{Pair: "A", ProfitRatio: 0.4, ProfitAbs: ptr(30.0)},
		},
		SortMethod:      SortProfit,
		StartingBalance: 1000,
	})

	require.Len(t, result, 1)
	assert.Equal(t, 0.05, result[0].Profit)
	assert.Equal(t, 50.0, result[0].ProfitAbs)
	assert.Equal(t, 2, result[0].TradeCount)
}

func TestRank_ProfitModeWithoutBalanceSumsRatios(t *testing.T) {
	result := Rank(Options{
		Pairlist: []string{"A", "B"},
		Trades: []models.Trade{
			{Pair: "A", ProfitRatio: 0.1},
			{Pair: "B", ProfitRatio: 0.2},
			{Pair: "B", ProfitRatio: 0.1},
		},
		SortMethod: SortProfit,
	})

	assert.Equal(t, []string{"B", "A"}, pairsOf(result))
	assert.Equal(t, 0.3, result[0].Profit)
}

func TestRank_NormalModeIgnoresStartingBalance(t *testing.T) {
	result := Rank(Options{
		Pairlist:        []string{"A"},
		Trades:          []models.Trade{{Pair: "A", ProfitRatio: 0.1, ProfitAbs: ptr(50.0)}},
		SortMethod:      SortNormal,
		StartingBalance: 1000,
	})

	assert.Equal(t, 0.1, result[0].Profit)
}

func TestRank_Filter(t *testing.T) {
	pairlist := []string{"BTC/USDT", "ETH/USDT", "ETH/BTC", "XRP/USDT"}

	tests := []struct {
		name     string
		filter   string
		expected int
	}{
		{name: "empty filter keeps all", filter: "", expected: 4},
		{name: "case insensitive", filter: "eth", expected: 2},
		{name: "quote match", filter: "/usdt", expected: 3},
		{name: "no match", filter: "doge", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Rank(Options{Pairlist: pairlist, Filter: tt.filter})
			assert.Len(t, result, tt.expected)
		})
	}
}

func TestRank_LatestLockAndStrings(t *testing.T) {
	locks := []models.Lock{
		{Pair: "A", LockEndTimestamp: 1704067200000, Side: "long", Reason: "old"},
		{Pair: "A", LockEndTimestamp: 1704153600000, Side: "*", Reason: "cooldown"},
		{Pair: "B", LockEndTimestamp: 1704240000000, Side: "short", Reason: "other"},
	}
	trades := []models.Trade{{Pair: "A", TradeID: 1, ProfitRatio: 0.0123, OpenTimestamp: 1704067200000}}

	result := Rank(Options{Pairlist: []string{"A"}, Trades: trades, Locks: locks})

	require.Len(t, result, 1)
	require.NotNil(t, result[0].Lock)
	assert.Equal(t, "cooldown", result[0].Lock.Reason)
	assert.Equal(t, "2024-01-02 00:00:00 - * - cooldown", result[0].LockReason)
	assert.Equal(t, "Current profit: 1.230%\nOpen since: 2024-01-01 00:00:00", result[0].ProfitString)

	// inputs untouched
	assert.Equal(t, "old", locks[0].Reason)
	assert.Equal(t, int64(1704067200000), locks[0].LockEndTimestamp)
}

func TestRank_NoTradesHasEmptyProfitString(t *testing.T) {
	result := Rank(Options{Pairlist: []string{"A"}})

	require.Len(t, result, 1)
	assert.Empty(t, result[0].ProfitString)
	assert.Nil(t, result[0].Trade)
	assert.Zero(t, result[0].Profit)
}

func TestParseSortMethod(t *testing.T) {
	assert.Equal(t, SortProfit, ParseSortMethod("profit"))
	assert.Equal(t, SortNormal, ParseSortMethod("normal"))
	assert.Equal(t, SortNormal, ParseSortMethod("bogus"))
}
