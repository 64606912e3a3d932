package utils

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var yenPrinter = message.NewPrinter(language.Japanese)

// FormatYen renders an amount with comma grouping, e.g. 65000 -> "65,000".
func FormatYen(amount int64) string {
	return yenPrinter.Sprintf("%d", amount)
}

// FormatDate renders a calendar date as yyyy/mm/dd.
func FormatDate(t time.Time) string {
	return t.Format("2006/01/02")
}

// DateOnly truncates a timestamp to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
