package formatting

import (
	"strings"
	"time"
)

// RepeatString repeats s count times; a non-positive count yields "".
func RepeatString(s string, count int) string {
	if count <= 0 {
		return ""
	}
	return strings.Repeat(s, count)
}

// Separator returns a terminal rule of the given width.
func Separator(width int) string {
	return RepeatString("=", width)
}

var dateLayouts = []string{
	"2006-01-02", // YYYY-MM-DD
	"02/01/2006", // DD/MM/YYYY, as NSE holiday circulars print it
	"02.01.2006",
	"02-Jan-2006",
	"2 Jan 2006",
}

// ParseDate accepts the holiday date spellings used in exchange calendars.
// Unparseable input yields the zero time.
func ParseDate(dateStr string) time.Time {
	dateStr = strings.TrimSpace(dateStr)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DayStamp formats t the way chat notices print dates, e.g. "Monday, March 04, 2024".
func DayStamp(t time.Time) string {
	return t.Format("Monday, January 02, 2006")
}
