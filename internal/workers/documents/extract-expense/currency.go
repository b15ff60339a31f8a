package extractexpense

import (
	"math"
	"strconv"
	"strings"
)

// ParseCurrency reads a printed money amount such as "R$ 1.234,56" or
// "$1,234.56". When both separators appear, the last one is the decimal
// separator; a lone comma is decimal. Returns nil when no number is found.
func ParseCurrency(text string) *float64 {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := strings.Trim(b.String(), ".,")
	if clean == "" {
		return nil
	}

	lastComma := strings.LastIndex(clean, ",")
	lastDot := strings.LastIndex(clean, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0:
		if strings.Count(clean, ",") > 1 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.Replace(clean, ",", ".", 1)
		}
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
