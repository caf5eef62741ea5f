package leave

import (
	"sort"
	"time"

	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/calendar"
	"github.com/username/shift-calendar/pkg/dateutil"
)

// Period is one contiguous vacation block
type Period struct {
	Start time.Time    `json:"-"`
	End   time.Time    `json:"-"`
	From  string       `json:"from"`
	To    string       `json:"to"`
	Days  float64      `json:"days"`
	Note  string       `json:"note"`
	Type  VacationType `json:"type"`
}

// YearOverview collects the vacation periods starting in one year
type YearOverview struct {
	Year    int                      `json:"year"`
	Total   float64                  `json:"total"`
	ByType  map[VacationType]float64 `json:"byType"`
	Periods []Period                 `json:"periods"`
}

type periodAttr struct {
	vacation bool
	note     string
}

// Overview groups every noted or flagged date into periods and keeps the
// vacation ones, bucketed by the year each period starts in
func Overview(snap *annotation.Snapshot) []YearOverview {
	seen := make(map[string]bool)
	var dates []time.Time
	for _, list := range [][]time.Time{snap.NoteDates(), snap.VacationDates()} {
		for _, d := range list {
			key := dateutil.FormatDate(d)
			if !seen[key] {
				seen[key] = true
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	groups := calendar.Group(dates, func(d time.Time) periodAttr {
		return periodAttr{vacation: snap.IsVacation(d), note: overviewText(snap, d)}
	})

	years := make(map[int]*YearOverview)
	for _, g := range groups {
		if !g.Attr.vacation {
			continue
		}

		var days float64
		for _, d := range g.Dates {
			days += calendar.DayWeight(d)
		}

		p := Period{
			Start: g.Start(),
			End:   g.End(),
			From:  dateutil.FormatDate(g.Start()),
			To:    dateutil.FormatDate(g.End()),
			Days:  days,
			Note:  g.Attr.note,
			Type:  periodType(snap, g.Start(), g.Attr.note),
		}

		year := p.Start.Year()
		yo, ok := years[year]
		if !ok {
			yo = &YearOverview{Year: year, ByType: make(map[VacationType]float64)}
			years[year] = yo
		}
		yo.Periods = append(yo.Periods, p)
		yo.Total += days
		yo.ByType[p.Type] += days
	}

	out := make([]YearOverview, 0, len(years))
	for _, yo := range years {
		out = append(out, *yo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// overviewText is the note of d, or the name of its vacation entry when the
// day has no note
func overviewText(snap *annotation.Snapshot, d time.Time) string {
	if n, ok := snap.Note(d); ok && n.Text != "" {
		return n.Text
	}
	if !snap.IsVacation(d) {
		return ""
	}
	if e, ok := vacationEntry(snap, d); ok {
		return e.Name
	}
	return ""
}

func vacationEntry(snap *annotation.Snapshot, d time.Time) (annotation.ImportantDate, bool) {
	key := dateutil.FormatDate(d)
	for _, e := range snap.ImportantDates {
		if e.Date == key && e.Category == annotation.CategoryVacation {
			return e, true
		}
	}
	return annotation.ImportantDate{}, false
}

// periodType takes the type of the first day's vacation entry, else matches
// the note against the type names, else assumes tariff leave
func periodType(snap *annotation.Snapshot, start time.Time, note string) VacationType {
	if e, ok := vacationEntry(snap, start); ok {
		if t := VacationType(e.VacationType); t.Valid() {
			return t
		}
	}
	if note != "" {
		if t, ok := typeFromLabel(note); ok {
			return t
		}
	}
	return TariffLeave
}
