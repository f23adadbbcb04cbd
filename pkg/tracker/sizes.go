package tracker

import (
	"math"
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// LetToNum converts php.ini size shorthand ("2M", "1G", "512K") to bytes.
// Each unit letter multiplies by 1024 once for itself and once for every
// smaller unit. Without a unit letter the number is returned as is; text
// that is not a number yields 0. Values beyond the int64 range saturate.
func LetToNum(size string) int64 {
	size = strings.TrimSpace(size)
	if size == "" {
		return 0
	}

	num := size
	unit := size[len(size)-1]
	switch unit {
	case 'P', 'p', 'T', 't', 'G', 'g', 'M', 'm', 'K', 'k':
		num = size[:len(size)-1]
	}

	n := leadingNumber(num)
	switch unit {
	case 'P', 'p':
		n *= 1024
		fallthrough
	case 'T', 't':
		n *= 1024
		fallthrough
	case 'G', 'g':
		n *= 1024
		fallthrough
	case 'M', 'm':
		n *= 1024
		fallthrough
	case 'K', 'k':
		n *= 1024
	}

	switch {
	case n >= math.MaxInt64:
		return math.MaxInt64
	case n <= math.MinInt64:
		return math.MinInt64
	}
	return int64(n)
}

// leadingNumber parses the numeric prefix of s, ignoring anything after it.
func leadingNumber(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return n
}

// SizeFormat renders a byte count in 1024-based units, e.g. "2 MB".
func SizeFormat(bytes int64) string {
	return units.CustomSize("%.4g %s", float64(bytes), 1024.0, sizeUnits)
}

// humanSize formats php.ini shorthand for the report. Unset and unlimited
// (negative) values report nothing.
func humanSize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	n := LetToNum(raw)
	if n < 0 {
		return ""
	}
	return SizeFormat(n)
}
