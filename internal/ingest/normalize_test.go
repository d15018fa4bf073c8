package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentsToDecimal(t *testing.T) {
	assert.Equal(t, "58.90", CentsToDecimal(5890).StringFixed(2))
	assert.Equal(t, "0.00", CentsToDecimal(0).StringFixed(2))
	assert.Equal(t, "0.01", CentsToDecimal(1).StringFixed(2))
	assert.Equal(t, "-12.34", CentsToDecimal(-1234).StringFixed(2))

	// Exact fixed-point, no binary rounding error.
	assert.True(t, CentsToDecimal(10).Add(CentsToDecimal(20)).Equal(CentsToDecimal(30)))
}

func TestParseFlexibleTimeFormats(t *testing.T) {
	inputs := []string{
		"2024-01-15T10:30:00.123456Z",
		"2024-01-15T10:30:00Z",
		"2024-01-15T10:30:00",
		"2024-01-15 10:30:00",
		"2024-01-15",
	}

	for _, input := range inputs {
		parsed, ok := ParseFlexibleTime(input)
		require.True(t, ok, "expected %q to parse", input)
		assert.Equal(t, "2024-01-15", DateOf(parsed).Format("2006-01-02"), "input %q", input)
	}
}

func TestParseFlexibleTimeFraction(t *testing.T) {
	parsed, ok := ParseFlexibleTime("2024-01-15T10:30:00.123456Z")
	require.True(t, ok)
	assert.Equal(t, 123456000, parsed.Nanosecond())
}

func TestParseFlexibleTimeFallback(t *testing.T) {
	fixed := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	defer func() { now = orig }()

	for _, input := range []string{"", "not-a-date", "15/01/2024"} {
		parsed, ok := ParseFlexibleTime(input)
		assert.False(t, ok, "input %q", input)
		assert.Equal(t, fixed, parsed, "input %q", input)
	}
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2024, 1, 15, 23, 59, 59, 999999000, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), DateOf(ts))
}
