package subtitles

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errInvalidTimestamp = errors.New("invalid timestamp")

// ParseTime converts "HH:MM:SS.mmm" or "MM:SS.mmm" into seconds. Any other
// component count yields 0. A component that is not a clean number
// contributes its leading numeric prefix, or 0 when it has none.
func ParseTime(field string) float64 {
	parts := strings.Split(strings.TrimSpace(field), ":")
	switch len(parts) {
	case 3:
		return leadingNumber(parts[0])*3600 + leadingNumber(parts[1])*60 + leadingNumber(parts[2])
	case 2:
		return leadingNumber(parts[0])*60 + leadingNumber(parts[1])
	default:
		return 0
	}
}

// ParseTimeStrict is the validating form of ParseTime. It rejects fields with
// the wrong component count, components that are not plain non-negative
// numbers, and fractional hours or minutes.
func ParseTimeStrict(field string) (float64, error) {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty field", errInvalidTimestamp)
	}
	parts := strings.Split(trimmed, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w %q: expected 2 or 3 components, got %d", errInvalidTimestamp, trimmed, len(parts))
	}
	var total float64
	for i, part := range parts {
		last := i == len(parts)-1
		value, err := parseComponent(part, last)
		if err != nil {
			return 0, fmt.Errorf("%w %q: %v", errInvalidTimestamp, trimmed, err)
		}
		total = total*60 + value
	}
	return total, nil
}

func parseComponent(part string, allowFraction bool) (float64, error) {
	if part == "" {
		return 0, errors.New("empty component")
	}
	for _, r := range part {
		if r == '.' && allowFraction {
			continue
		}
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("unexpected character %q", r)
		}
	}
	value, err := strconv.ParseFloat(part, 64)
	if err != nil {
		return 0, err
	}
	return value, nil
}

// leadingNumber parses the longest numeric prefix of s ("12abc" -> 12).
func leadingNumber(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c == '-' || c == '+' {
			if end != 0 {
				break
			}
		} else if c == '.' {
			if seenDot {
				break
			}
			seenDot = true
		} else if c < '0' || c > '9' {
			break
		}
		end++
	}
	for end > 0 {
		if value, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return value
		}
		end--
	}
	return 0
}

// FormatTime renders seconds as zero-padded HH:MM:SS.mmm. Milliseconds are
// truncated, not rounded; negative input clamps to zero.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	// Guards against 1.001 landing on 1000.9999.
	totalMillis := int64(math.Floor(seconds*1000 + 1e-6))
	millis := totalMillis % 1000
	totalSeconds := totalMillis / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", totalSeconds/3600, (totalSeconds/60)%60, totalSeconds%60, millis)
}
