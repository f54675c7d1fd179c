package openinghours

import (
	"fmt"
	"strings"
	"time"
)

var (
	dayNames   = [...]string{"söndag", "måndag", "tisdag", "onsdag", "torsdag", "fredag", "lördag"}
	monthNames = [...]string{"januari", "februari", "mars", "april", "maj", "juni", "juli", "augusti", "september", "oktober", "november", "december"}
)

// FormatDay names a weekday, 0 being Sunday.
func FormatDay(day int) string {
	if day < 0 || day >= len(dayNames) {
		return ""
	}
	return dayNames[day]
}

// FormatDate writes t as a full Swedish date, e.g. "Onsdag 24 december 2025".
func FormatDate(t time.Time) string {
	s := fmt.Sprintf("%s %d %s %d", dayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1], t.Year())
	return capitalize(s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// FormatShortDate writes t without year, e.g. "onsdag 24 december".
func FormatShortDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s", dayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1])
}
