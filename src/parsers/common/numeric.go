package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// noDataSentinels are cell values exchanges and the price adapter write in
// place of a number. A row carrying one in a required field is dropped.
var noDataSentinels = map[string]bool{
	"no data available.": true,
	"no data available":  true,
	"nan":                true,
	"spot":               true,
}

// IsSentinel reports whether s is a known "no data" marker.
func IsSentinel(s string) bool {
	return noDataSentinels[strings.ToLower(strings.TrimSpace(s))]
}

// ParseNumber strictly coerces a cell to float64. Empty cells, sentinels
// and anything that is not a plain decimal literal are rejected.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty numeric field")
	}
	if IsSentinel(s) {
		return 0, fmt.Errorf("sentinel value %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}

// ParseOptional coerces an optional field. Absent or non-numeric values
// default to zero.
func ParseOptional(s string) float64 {
	f, err := ParseNumber(s)
	if err != nil {
		return 0
	}
	return f
}

// ParsePriceString parses a formatted amount such as "1,234.56 INR" by
// stripping the currency code (any case) and thousands separators first.
func ParsePriceString(s, currency string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	if currency != "" {
		cleaned = removeFold(cleaned, currency)
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	return ParseNumber(cleaned)
}

// removeFold deletes every case-insensitive occurrence of code from s.
func removeFold(s, code string) string {
	upper := strings.ToUpper(code)
	var b strings.Builder
	for {
		i := strings.Index(strings.ToUpper(s), upper)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+len(code):]
	}
}

// StripSuffix removes suffix from pair when pair ends with it, e.g.
// ("BTCINR", "INR") -> "BTC". Empty inputs return pair unchanged.
func StripSuffix(pair, suffix string) string {
	pair = strings.TrimSpace(pair)
	suffix = strings.TrimSpace(suffix)
	if pair == "" || suffix == "" {
		return pair
	}
	if strings.HasSuffix(strings.ToUpper(pair), strings.ToUpper(suffix)) && len(pair) > len(suffix) {
		return pair[:len(pair)-len(suffix)]
	}
	return pair
}
