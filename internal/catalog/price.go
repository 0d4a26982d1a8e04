package catalog

import (
	"math"
	"strconv"
	"strings"
)

// ParsePrice derives a numeric sort key from a free-text price label such as
// "$49/mo" or "1,200". Every rune other than an ASCII digit or '.' is dropped.
// Labels that are empty or do not reduce to a finite number map to +Inf so
// they sort last ascending and first descending.
func ParsePrice(price string) float64 {
	if price == "" {
		return math.Inf(1)
	}
	var b strings.Builder
	for _, r := range price {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}
