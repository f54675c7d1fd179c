package openinghours

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/bagerileve/storefront/internal/dates"
	"github.com/bagerileve/storefront/internal/domain"
)

type Service struct {
	store Store
	setID string
	loc   *time.Location
	now   func() time.Time
}

func NewService(store Store, setID string, loc *time.Location) *Service {
	if setID == "" {
		setID = DefaultSetID
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, setID: setID, loc: loc, now: time.Now}
}

// Current returns the schedule with past irregular days removed and the
// rest sorted by date, each carrying a formatted date.
func (s *Service) Current(ctx context.Context) (*domain.OpeningHours, error) {
	hours, err := s.store.Get(ctx, s.setID)
	if err != nil {
		return nil, err
	}

	today := dates.String(dates.Today(s.now().In(s.loc)))
	upcoming := make([]domain.IrregularDay, 0, len(hours.Irregular))
	for _, day := range hours.Irregular {
		if day.Date < today {
			continue
		}
		if day.FormattedDate == "" {
			if t, err := dates.Parse(day.Date, time.UTC); err == nil {
				day.FormattedDate = FormatDate(t)
			}
		}
		upcoming = append(upcoming, day)
	}
	slices.SortStableFunc(upcoming, func(a, b domain.IrregularDay) int {
		return strings.Compare(a.Date, b.Date)
	})
	hours.Irregular = upcoming
	return hours, nil
}

// OpenDaysInRange lists the days from start to end (inclusive) the shop is
// open. A day is closed when an irregular entry closes it or its weekday is
// closed in the regular schedule.
func (s *Service) OpenDaysInRange(ctx context.Context, start, end string) ([]string, error) {
	days, err := dates.InRange(start, end)
	if err != nil {
		return nil, err
	}
	hours, err := s.store.Get(ctx, s.setID)
	if err != nil {
		return nil, err
	}

	closedWeekdays := make(map[time.Weekday]bool, 7)
	for _, d := range hours.Days.Days() {
		if d.Closed {
			closedWeekdays[time.Weekday(d.Day)] = true
		}
	}
	closedDates := make(map[string]bool, len(hours.Irregular))
	for _, d := range hours.Irregular {
		if d.Closed {
			closedDates[d.Date] = true
		}
	}

	open := make([]string, 0, len(days))
	for _, day := range days {
		if closedDates[day] {
			continue
		}
		t, err := dates.Parse(day, time.UTC)
		if err != nil {
			return nil, err
		}
		if closedWeekdays[t.Weekday()] {
			continue
		}
		open = append(open, day)
	}
	return open, nil
}

// Summary is the schedule as shown on the site.
type Summary struct {
	Title     string                `json:"title"`
	Week      []DayRange            `json:"week"`
	Irregular []domain.IrregularDay `json:"irregular"`
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	hours, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Title:     hours.Title,
		Week:      Consolidate(hours.Days),
		Irregular: hours.Irregular,
	}, nil
}
