package helpers

import "time"

const (
	// DateTimeLayout is the day-first timestamp format used in bot messages.
	DateTimeLayout = "02.01.2006 15:04"
	// DateLayout is the short day-first date format used in history listings.
	DateLayout = "02.01.2006"
)

// FormatDateTime renders t in the bot-wide timestamp format.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// FormatDate renders t in the bot-wide short date format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
