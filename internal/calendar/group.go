package calendar

import (
	"time"

	"github.com/username/shift-calendar/pkg/dateutil"
)

// GapTolerance is the largest day distance between neighbours of one group.
// Four days bridge a weekend plus a holiday inside one leave block.
const GapTolerance = 4

// Interval is a run of dates sharing one attribute
type Interval[A comparable] struct {
	Dates []time.Time
	Attr  A
}

// Start returns the first date of the run
func (iv Interval[A]) Start() time.Time {
	return iv.Dates[0]
}

// End returns the last date of the run
func (iv Interval[A]) End() time.Time {
	return iv.Dates[len(iv.Dates)-1]
}

// Group collapses sorted dates into maximal runs where consecutive dates are
// at most GapTolerance days apart and attributeOf returns the same value.
// Input order is preserved.
func Group[A comparable](dates []time.Time, attributeOf func(time.Time) A) []Interval[A] {
	var groups []Interval[A]

	for i, d := range dates {
		attr := attributeOf(d)
		if i > 0 {
			last := &groups[len(groups)-1]
			gap := dateutil.DaysBetween(last.End(), d)
			if gap <= GapTolerance && attr == last.Attr {
				last.Dates = append(last.Dates, d)
				continue
			}
		}
		groups = append(groups, Interval[A]{Dates: []time.Time{d}, Attr: attr})
	}

	return groups
}
