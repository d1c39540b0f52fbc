package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/BotView/internal/download"
)

func TestFormFromFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		env      map[string]string
		expected func(t *testing.T, f download.Form)
	}{
		{
			name: "defaults keep the advanced panel collapsed",
			expected: func(t *testing.T, f download.Form) {
				assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, f.Pairs)
				assert.Equal(t, []string{"5m", "1h"}, f.Timeframes)
				assert.Equal(t, download.DefaultDays, f.Time.Days)
				assert.False(t, f.Time.UseCustomTimerange)
				assert.False(t, f.Advanced.Expanded)
			},
		},
		{
			name: "template and timerange",
			args: []string{"--pairs", "SOL/USDT", "--template", "All USDT Pairs", "--timerange", "20240101-20240201"},
			expected: func(t *testing.T, f download.Form) {
				assert.Equal(t, []string{"SOL/USDT", ".*/USDT"}, f.Pairs)
				assert.True(t, f.Time.UseCustomTimerange)
				assert.Equal(t, "20240101-20240201", f.Time.Timerange)
			},
		},
		{
			name: "custom exchange expands the panel",
			args: []string{"--exchange", "bybit", "--trading-mode", "futures", "--margin-mode", "isolated"},
			expected: func(t *testing.T, f download.Form) {
				assert.True(t, f.Advanced.Expanded)
				assert.True(t, f.Advanced.CustomExchange)
				assert.Equal(t, download.ExchangeSelection{Exchange: "bybit", TradingMode: "futures", MarginMode: "isolated"}, f.Advanced.Exchange)
			},
		},
		{
			name: "environment fills unset flags",
			env:  map[string]string{"DOWNLOAD_DL_TRADES": "true", "DOWNLOAD_DAYS": "5"},
			expected: func(t *testing.T, f download.Form) {
				assert.True(t, f.Advanced.Expanded)
				assert.True(t, f.Advanced.DownloadTrades)
				assert.False(t, f.Advanced.Erase)
				assert.Equal(t, 5, f.Time.Days)
			},
		},
		{
			name: "flags win over environment",
			args: []string{"--days", "7"},
			env:  map[string]string{"DOWNLOAD_DAYS": "5"},
			expected: func(t *testing.T, f download.Form) {
				assert.Equal(t, 7, f.Time.Days)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			flags := newFlagSet()
			require.NoError(t, flags.Parse(tt.args))

			v, err := bindFlags(flags)
			require.NoError(t, err)

			tt.expected(t, formFromViper(v))
		})
	}
}
