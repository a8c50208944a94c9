// Package formatting converts byte sizes to and from human-readable strings.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Units are base-1024. KB and KiB both mean 1024 bytes.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

var multipliers = func() map[string]float64 {
	m := make(map[string]float64, 2*len(units))
	for i, u := range units {
		scale := math.Pow(1024, float64(i))
		m[u] = scale
		if i > 0 {
			m[u[:1]+"IB"] = scale
		}
	}
	return m
}()

// FormatBytes renders n with the largest unit that keeps the value at or above one.
// Negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)

	sign := ""
	f := float64(n)
	if f < 0 {
		sign = "-"
		f = -f
	}

	i := 0
	for f >= 1024 && i < len(units)-1 {
		f /= 1024
		i++
	}

	if i == 0 {
		return sign + strconv.FormatFloat(f, 'f', 0, 64) + " B"
	}
	return sign + strconv.FormatFloat(f, 'f', precision, 64) + " " + units[i]
}

// ParseBytes parses sizes such as "50MB", "1.5 KiB" or "4096".
// A bare number is bytes. Units are case-insensitive.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	end := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if end == -1 {
		end = len(s)
	}
	if end == 0 {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	unit := strings.ToUpper(strings.TrimSpace(s[end:]))
	if unit == "" {
		unit = "B"
	}

	scale, ok := multipliers[unit]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}

	size := value * scale
	if size >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size overflows int64: %q", s)
	}
	return int64(size), nil
}
