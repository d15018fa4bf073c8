package ingest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Timestamp formats accepted by the feed, tried in order.
var timeFormats = []string{
	"2006-01-02T15:04:05.999999Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// now is swapped out in tests.
var now = time.Now

// CentsToDecimal converts an integer cent amount from the feed into an exact
// two-digit decimal value, e.g. 5890 -> 58.90.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ParseFlexibleTime parses the small set of timestamp formats seen in the
// feed. When the input is empty or matches none of them it returns the
// current wall-clock time and false; the caller decides how loudly to
// complain, the run itself never fails on a bad date.
func ParseFlexibleTime(s string) (time.Time, bool) {
	if s == "" {
		return now(), false
	}
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return now(), false
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
