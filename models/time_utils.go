package models

import "time"

// TimeframeDuration converts a bot timeframe ("5m", "1h", "1d", "1w", "1M") to its duration.
// Unknown timeframes return 0.
func TimeframeDuration(timeframe string) time.Duration {
	if len(timeframe) < 2 {
		return 0
	}

	var n int
	for _, r := range timeframe[:len(timeframe)-1] {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}

	unit := time.Duration(n)
	switch timeframe[len(timeframe)-1] {
	case 's':
		return unit * time.Second
	case 'm':
		return unit * time.Minute
	case 'h':
		return unit * time.Hour
	case 'd':
		return unit * 24 * time.Hour
	case 'w':
		return unit * 7 * 24 * time.Hour
	case 'M':
		// Approximate month
		return unit * 30 * 24 * time.Hour
	}
	return 0
}

// CalculateCandlesForDays estimates how many candles a download of `days` covers for a timeframe
func CalculateCandlesForDays(timeframe string, days int) int {
	d := TimeframeDuration(timeframe)
	if d <= 0 || days <= 0 {
		return 0
	}
	return int(time.Duration(days) * 24 * time.Hour / d)
}

// TimeFromMillis converts a bot millisecond timestamp to UTC time
func TimeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
