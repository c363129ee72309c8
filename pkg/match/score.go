package match

import "strconv"

// Score returns matched/total as a percentage rounded to one decimal place.
// Rounding is applied to the exact binary value with ties to even, so 6.25
// becomes 6.2 and 18.75 becomes 18.8. A non-positive total scores 0.
func Score(matched, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(matched) / float64(total) * 100
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(pct, 'f', 1, 64), 64)
	return rounded
}

// FormatScore renders a score with exactly one decimal ("100.0", "33.3").
func FormatScore(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64)
}
