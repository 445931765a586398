package util

import (
	"fmt"
	"strconv"
)

// ShortHex abbreviates a 0x-prefixed hex string for log output, keeping the first and last
// four digits.
func ShortHex(s string) string {
	if len(s) <= 2+8+2 {
		return s
	}
	return s[:6] + ".." + s[len(s)-4:]
}

// FormatAmount renders an amount with thousands separators
func FormatAmount(amount uint64) string {
	digits := strconv.FormatUint(amount, 10)
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return string(out)
}

// FormatSize renders a byte count as B, KiB or MiB
func FormatSize(n int) string {
	switch {
	case n < 1<<10:
		return fmt.Sprintf("%d B", n)
	case n < 1<<20:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	}
}
