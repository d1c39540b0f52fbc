// Package format renders numbers, durations and timestamps the way the dashboard shows them.
// None of the helpers modify their input.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/BotView/models"
)

// NA is rendered for every statistic the bot did not report
const NA = "N/A"

const timestampLayout = "2006-01-02 15:04:05"

// Percent renders a ratio as a percentage, e.g. 0.0512 -> "5.120%" with 3 decimals
func Percent(ratio float64, decimals int) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return ""
	}
	return decimal.NewFromFloat(ratio).Shift(2).StringFixed(int32(decimals)) + "%"
}

// PercentDefault renders a ratio with 3 decimals
func PercentDefault(ratio float64) string {
	return Percent(ratio, 3)
}

// Price renders a number with a fixed number of decimals
func Price(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ""
	}
	return decimal.NewFromFloat(value).StringFixed(int32(decimals))
}

// PriceCurrency renders "value CUR"
func PriceCurrency(value float64, currency string, decimals int) string {
	return strings.TrimSpace(Price(value, decimals) + " " + currency)
}

// CurrencyFormatter returns a PriceCurrency closure bound to a stake currency
func CurrencyFormatter(currency string, decimals int) func(float64) string {
	return func(v float64) string {
		return PriceCurrency(v, currency, decimals)
	}
}

// Ratio renders an optional ratio with fixed decimals, or N/A when absent or zero
func Ratio(v *float64, decimals int) string {
	if v == nil || *v == 0 {
		return NA
	}
	return Price(*v, decimals)
}

// Duration renders a number of seconds as "1d 2h 3m 4s", dropping zero components
func Duration(seconds float64) string {
	if math.IsNaN(seconds) || seconds <= 0 {
		return "0s"
	}

	d := time.Duration(math.Round(seconds)) * time.Second
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	secs := d / time.Second

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if secs > 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}

// TimestampMs renders a millisecond timestamp in UTC, or N/A for zero
func TimestampMs(ms int64) string {
	if ms == 0 {
		return NA
	}
	return models.TimeFromMillis(ms).Format(timestampLayout)
}

// Capitalize upper-cases the first letter
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
