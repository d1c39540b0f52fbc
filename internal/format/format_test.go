package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		ratio    float64
		decimals int
		expected string
	}{
		{name: "zero", ratio: 0, decimals: 3, expected: "0.000%"},
		{name: "positive", ratio: 0.0512, decimals: 3, expected: "5.120%"},
		{name: "negative two decimals", ratio: -0.1234, decimals: 2, expected: "-12.34%"},
		{name: "whole", ratio: 1, decimals: 0, expected: "100%"},
		{name: "nan", ratio: math.NaN(), decimals: 2, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Percent(tt.ratio, tt.decimals))
		})
	}
}

func TestPriceCurrency(t *testing.T) {
	assert.Equal(t, "12.350 USDT", PriceCurrency(12.35, "USDT", 3))
	assert.Equal(t, "-1.50", PriceCurrency(-1.5, "", 2))

	f := CurrencyFormatter("BTC", 4)
	assert.Equal(t, "0.0010 BTC", f(0.001))
}

func TestRatio(t *testing.T) {
	v := 1.23456
	zero := 0.0

	assert.Equal(t, "1.23", Ratio(&v, 2))
	assert.Equal(t, NA, Ratio(nil, 2))
	assert.Equal(t, NA, Ratio(&zero, 2))
}

func TestDuration(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0s"},
		{-5, "0s"},
		{59, "59s"},
		{3600, "1h"},
		{90061, "1d 1h 1m 1s"},
		{7260, "2h 1m"},
	}

	for _, tt := range tests {
		if got := Duration(tt.seconds); got != tt.expected {
			t.Errorf("Duration(%v) = %v, want %v", tt.seconds, got, tt.expected)
		}
	}
}

func TestTimestampMs(t *testing.T) {
	assert.Equal(t, NA, TimestampMs(0))
	assert.Equal(t, "2024-01-02 03:04:05", TimestampMs(1704164645000))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Futures", Capitalize("futures"))
	assert.Equal(t, "", Capitalize(""))
}
