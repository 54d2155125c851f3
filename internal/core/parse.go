package core

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the normalized, lexicographically ordered date form.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	DateLayout,
	"2006-1-2",
	"2006/01/02",
	"1/2/2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"Mon Jan 2 2006",
	"Mon Jan 2 2006 15:04:05 GMT-0700",
	time.RFC1123Z,
	time.RFC1123,
}

// NormalizeDate parses a date or timestamp string and renders it as the UTC
// calendar date YYYY-MM-DD. Strings carrying an offset are converted to UTC
// first; strings without one are read as UTC.
//
// Examples:
//
//	NormalizeDate("2024-01-05")                -> "2024-01-05"
//	NormalizeDate("01/05/2024")                -> "2024-01-05"
//	NormalizeDate("2024-01-05T23:30:00-02:00") -> "2024-01-06"
//	NormalizeDate("not a date")                -> "", ErrInvalidDate
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	// Browser Date strings end in a zone name: "GMT+0000 (Coordinated Universal Time)".
	if i := strings.LastIndex(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		if norm, err := NormalizeDate(s[:i]); err == nil {
			return norm, nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseAmount reads the leading integer of s: optional whitespace, an optional
// sign, then digits. A 0x or 0X prefix switches to hexadecimal. Anything after
// the digits is ignored, so "12.9" is 12. A string without leading digits
// yields NaN.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	var v float64
	n := 0
	for ; n < len(s); n++ {
		d := digitValue(s[n])
		if d >= base {
			break
		}
		v = v*float64(base) + float64(d)
	}
	if n == 0 {
		return math.NaN()
	}
	if neg {
		v = -v
	}
	return v
}

// digitValue returns the value of a hex digit, or 16 for anything else.
func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return 16
	}
}
