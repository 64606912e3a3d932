package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatYen(t *testing.T) {
	assert.Equal(t, "65,000", FormatYen(65000))
	assert.Equal(t, "1,250,000", FormatYen(1250000))
	assert.Equal(t, "0", FormatYen(0))
	assert.Equal(t, "999", FormatYen(999))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 6, 10, 15, 4, 5, 0, time.Local)
	assert.Equal(t, "2025/06/10", FormatDate(d))
}

func TestDateOnly(t *testing.T) {
	d := time.Date(2025, 6, 10, 15, 4, 5, 123, time.Local)
	got := DateOnly(d)

	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.June, got.Month())
	assert.Equal(t, 10, got.Day())
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, 0, got.Minute())
	assert.Equal(t, 0, got.Second())
	assert.Equal(t, d.Location(), got.Location())
}
