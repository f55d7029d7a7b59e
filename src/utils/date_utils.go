package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const DefaultDateFormat = "2006-01-02"

// timestampLayouts are the shapes seen across exchange exports. Times
// without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02-01-2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"01/02/06 15:04",
	"02 Jan 2006 15:04:05",
	"02 Jan 2006, 03:04 PM",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006 3:04 PM",
}

// ParseTimestamp parses an export timestamp. Besides textual layouts it
// accepts epoch milliseconds and Excel serial date numbers.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		switch {
		case n > 1e11:
			return time.UnixMilli(int64(n)).UTC(), nil
		case n > 0 && n < 2958466:
			t, err := excelize.ExcelDateToTime(n, false)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid excel date '%s': %w", s, err)
			}
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp format '%s'", s)
}

// FormatDate renders an epoch-millisecond timestamp as YYYY-MM-DD, or ""
// for 0.
func FormatDate(epochMillis int64) string {
	if epochMillis == 0 {
		return ""
	}
	return time.UnixMilli(epochMillis).UTC().Format(DefaultDateFormat)
}
