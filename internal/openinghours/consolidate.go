package openinghours

import "github.com/bagerileve/storefront/internal/domain"

// weekOrder lists weekdays Monday first.
var weekOrder = [...]int{1, 2, 3, 4, 5, 6, 0}

// DayRange is a run of consecutive weekdays with the same hours.
type DayRange struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Time   string `json:"time,omitempty"`
	Closed bool   `json:"closed,omitempty"`
	Label  string `json:"label"`
}

// Consolidate groups the week, Monday to Sunday, into runs of days that share
// the same hours or are all closed.
func Consolidate(week domain.Week) []DayRange {
	byDay := make(map[int]domain.WeekdayHours, 7)
	for _, d := range week.Days() {
		byDay[d.Day] = d
	}

	var ranges []DayRange
	for _, day := range weekOrder {
		curr, ok := byDay[day]
		if !ok {
			continue
		}
		if n := len(ranges); n > 0 && sameHours(ranges[n-1], curr) {
			ranges[n-1].To = curr.Day
			continue
		}
		r := DayRange{From: curr.Day, To: curr.Day}
		if curr.Closed {
			r.Closed = true
		} else {
			r.Time = curr.Time
		}
		ranges = append(ranges, r)
	}

	for i := range ranges {
		ranges[i].Label = rangeLabel(ranges[i])
	}
	return ranges
}

func sameHours(last DayRange, curr domain.WeekdayHours) bool {
	if last.Closed || curr.Closed {
		return last.Closed && curr.Closed
	}
	return last.Time == curr.Time
}

func rangeLabel(r DayRange) string {
	if r.From == r.To {
		return FormatDay(r.From)
	}
	return FormatDay(r.From) + "-" + FormatDay(r.To)
}
