// Package dates holds the calendar-day helpers used for pickup scheduling.
// Dates travel through the shop as ISO calendar strings (YYYY-MM-DD).
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Layout is the ISO calendar date layout.
const Layout = "2006-01-02"

var (
	ErrInvalidDate   = errors.New("invalid date format (expected YYYY-MM-DD)")
	ErrRangeReversed = errors.New("start date must come before end date")
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Parse validates s as an ISO calendar date and returns midnight of that day in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	if !isoDate.MatchString(s) {
		return time.Time{}, fmt.Errorf("%q: %w", s, ErrInvalidDate)
	}
	t, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, ErrInvalidDate)
	}
	return t, nil
}

// String formats the calendar day of t in t's own location.
func String(t time.Time) string {
	return t.Format(Layout)
}

// AddDays moves t by offset calendar days, keeping the wall clock time.
func AddDays(t time.Time, offset int) time.Time {
	return t.AddDate(0, 0, offset)
}

// InRange returns every calendar day from start to end, both inclusive.
func InRange(start, end string) ([]string, error) {
	// UTC has no DST, so stepping 24h never lands on the wrong day.
	startDate, err := Parse(start, time.UTC)
	if err != nil {
		return nil, err
	}
	endDate, err := Parse(end, time.UTC)
	if err != nil {
		return nil, err
	}
	if startDate.After(endDate) {
		return nil, ErrRangeReversed
	}

	days := int(endDate.Sub(startDate).Hours()/24) + 1
	result := make([]string, 0, days)
	for current := startDate; !current.After(endDate); current = current.AddDate(0, 0, 1) {
		result = append(result, String(current))
	}
	return result, nil
}

// IsInFuture reports whether midnight of the given date, in now's location, is after now.
func IsInFuture(date string, now time.Time) (bool, error) {
	t, err := Parse(date, now.Location())
	if err != nil {
		return false, err
	}
	return t.After(now), nil
}

// Today returns midnight of the current day of now.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
