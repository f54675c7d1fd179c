// Package pickup works out which dates an order can be collected on.
package pickup

import (
	"context"
	"fmt"
	"time"

	"github.com/bagerileve/storefront/internal/dates"
	"github.com/bagerileve/storefront/internal/domain"
)

// DayLookup returns the dates the shop is open between start and end (inclusive).
type DayLookup interface {
	OpenDaysInRange(ctx context.Context, start, end string) ([]string, error)
}

type Resolver struct {
	lookup    DayLookup
	minOffset int
	maxOffset int
	loc       *time.Location
	now       func() time.Time
}

func NewResolver(lookup DayLookup, minOffset, maxOffset int, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{
		lookup:    lookup,
		minOffset: minOffset,
		maxOffset: maxOffset,
		loc:       loc,
		now:       time.Now,
	}
}

// Window returns the default pickup window, counted in calendar days from today.
func (r *Resolver) Window() (start, end string) {
	today := dates.Today(r.now().In(r.loc))
	return dates.String(dates.AddDays(today, r.minOffset)), dates.String(dates.AddDays(today, r.maxOffset))
}

// AvailableDates returns the pickup dates for an order holding products.
//
// The first product with its own pickup dates decides: only those of its dates
// that are still ahead are offered, and the open-days lookup is skipped.
// Without such a product every open day in the window is offered.
func (r *Resolver) AvailableDates(ctx context.Context, products []domain.Product) ([]string, error) {
	for _, p := range products {
		if !p.HasPickupDates() {
			continue
		}
		return r.upcoming(p.PickupDates)
	}

	start, end := r.Window()
	open, err := r.lookup.OpenDaysInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("open days %s..%s: %w", start, end, err)
	}
	return open, nil
}

func (r *Resolver) upcoming(candidates []string) ([]string, error) {
	now := r.now().In(r.loc)
	result := make([]string, 0, len(candidates))
	for _, d := range candidates {
		ahead, err := dates.IsInFuture(d, now)
		if err != nil {
			return nil, fmt.Errorf("product pickup date: %w", err)
		}
		if ahead {
			result = append(result, d)
		}
	}
	return result, nil
}
