package calendar

import (
	"time"

	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/pkg/dateutil"
)

// Week is one ISO week row of a month view
type Week struct {
	Number int                 `json:"number"`
	Start  string              `json:"start"` // Monday, may lie in the previous month
	Days   []DayClassification `json:"days"`
}

// MonthView is one month of classified days grouped by ISO week
type MonthView struct {
	Year      int             `json:"year"`
	Month     time.Month      `json:"month"`
	Weeks     []Week          `json:"weeks"`
	Vacations int             `json:"vacations"`
	Holidays  int             `json:"holidays"`
	Counts    map[DayKind]int `json:"counts"`
}

// Days flattens the weeks back into date order
func (m MonthView) Days() []DayClassification {
	var days []DayClassification
	for _, w := range m.Weeks {
		days = append(days, w.Days...)
	}
	return days
}

// Month classifies every day of the month
func (c *Classifier) Month(year int, month time.Month, snap *annotation.Snapshot, today time.Time) MonthView {
	view := MonthView{
		Year:   year,
		Month:  month,
		Counts: make(map[DayKind]int),
	}

	for d := 1; d <= dateutil.DaysInMonth(year, month); d++ {
		day := c.Classify(dateutil.Date(year, month, d), snap, today)

		start := dateutil.FormatDate(dateutil.StartOfWeek(day.Date))
		if len(view.Weeks) == 0 || view.Weeks[len(view.Weeks)-1].Start != start {
			_, week := dateutil.GetWeekNumber(day.Date)
			view.Weeks = append(view.Weeks, Week{Number: week, Start: start})
		}
		last := &view.Weeks[len(view.Weeks)-1]
		last.Days = append(last.Days, day)

		view.Counts[day.Kind]++
		switch day.Kind {
		case KindVacation:
			view.Vacations++
		case KindHoliday:
			view.Holidays++
		}
	}

	return view
}

// Year classifies all twelve months
func (c *Classifier) Year(year int, snap *annotation.Snapshot, today time.Time) []MonthView {
	months := make([]MonthView, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, c.Month(year, m, snap, today))
	}
	return months
}
