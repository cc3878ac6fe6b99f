package exporter

import (
	"math"
	"strconv"
)

// roundScore keeps two decimals, enough for interpolated assigned scores.
func roundScore(f float64) float64 {
	return math.Round(f*100) / 100
}

// formatScore formats a score for CSV output without trailing zeros.
func formatScore(f float64) string {
	return strconv.FormatFloat(roundScore(f), 'f', -1, 64)
}

// formatRank formats a rank, leaving unplaced students blank.
func formatRank(rank int) string {
	if rank <= 0 {
		return ""
	}
	return strconv.Itoa(rank)
}
