package calendar

import (
	"encoding/json"
	"time"

	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/holiday"
	"github.com/username/shift-calendar/internal/shift"
	"github.com/username/shift-calendar/pkg/dateutil"
)

// DayKind is the resolved kind of a day: HOLIDAY, VACATION or a shift kind
type DayKind string

const (
	KindVacation DayKind = "VACATION"
	KindHoliday  DayKind = "HOLIDAY"
)

// FromShift lifts a shift kind into a DayKind
func FromShift(k shift.Kind) DayKind {
	return DayKind(k)
}

// DayClassification is the authoritative view of one date. It is recomputed
// on every call and never cached across mutations.
type DayClassification struct {
	Date time.Time
	Kind DayKind
	// Shift is what the rotation says regardless of vacation or holiday
	Shift         shift.Kind
	Holiday       *holiday.Record
	VacationEntry *annotation.ImportantDate
	Note          *annotation.Note
	Entries       []annotation.ImportantDate
	IsToday       bool
	IsWeekend     bool
}

// HolidayNames returns the locale map of the holiday, nil when the day is none
func (d DayClassification) HolidayNames() map[string]string {
	if d.Holiday == nil {
		return nil
	}
	return d.Holiday.Names
}

// NoteText returns the attached note text or ""
func (d DayClassification) NoteText() string {
	if d.Note == nil {
		return ""
	}
	return d.Note.Text
}

type dayJSON struct {
	Date          string                     `json:"date"`
	Kind          DayKind                    `json:"kind"`
	Shift         shift.Kind                 `json:"shift"`
	HolidayKey    string                     `json:"holidayKey,omitempty"`
	HolidayNames  map[string]string          `json:"holidayNames,omitempty"`
	VacationEntry *annotation.ImportantDate  `json:"vacationEntry,omitempty"`
	Note          *annotation.Note           `json:"note,omitempty"`
	Entries       []annotation.ImportantDate `json:"entries,omitempty"`
	IsToday       bool                       `json:"isToday"`
	IsWeekend     bool                       `json:"isWeekend"`
}

// MarshalJSON writes the date as YYYY-MM-DD and flattens the holiday
func (d DayClassification) MarshalJSON() ([]byte, error) {
	wire := dayJSON{
		Date:          dateutil.FormatDate(d.Date),
		Kind:          d.Kind,
		Shift:         d.Shift,
		HolidayNames:  d.HolidayNames(),
		VacationEntry: d.VacationEntry,
		Note:          d.Note,
		Entries:       d.Entries,
		IsToday:       d.IsToday,
		IsWeekend:     d.IsWeekend,
	}
	if d.Holiday != nil {
		wire.HolidayKey = d.Holiday.Key
	}
	return json.Marshal(wire)
}

// Classify merges overrides, holidays and the rotation for date.
// Precedence: vacation flag, then holiday, then rotation. Notes and
// important dates attach independently of the kind.
func Classify(date time.Time, rotation *shift.Rotation, holidays holiday.Table, snap *annotation.Snapshot, today time.Time) DayClassification {
	date = dateutil.Civil(date)

	day := DayClassification{
		Date:      date,
		Shift:     rotation.Resolve(date),
		IsToday:   dateutil.IsSameDay(date, today),
		IsWeekend: dateutil.IsWeekend(date),
	}

	rec, isHoliday := holidays.Lookup(date)
	if isHoliday {
		day.Holiday = &rec
	}

	if snap != nil {
		day.Entries = snap.EntriesFor(date)
		if n, ok := snap.Note(date); ok {
			day.Note = &n
		}
	}

	switch {
	case snap != nil && snap.IsVacation(date):
		day.Kind = KindVacation
		for i := range day.Entries {
			if day.Entries[i].Category == annotation.CategoryVacation {
				entry := day.Entries[i]
				day.VacationEntry = &entry
				break
			}
		}
	case isHoliday:
		day.Kind = KindHoliday
	default:
		day.Kind = FromShift(day.Shift)
	}

	return day
}

// Classifier binds a rotation and a holiday table so callers only pass dates
// and the override snapshot
type Classifier struct {
	rotation *shift.Rotation
	holidays holiday.Table
}

// NewClassifier creates a Classifier
func NewClassifier(rotation *shift.Rotation, holidays holiday.Table) *Classifier {
	return &Classifier{
		rotation: rotation,
		holidays: holidays,
	}
}

// Rotation returns the bound rotation
func (c *Classifier) Rotation() *shift.Rotation {
	return c.rotation
}

// Holidays returns the bound holiday table
func (c *Classifier) Holidays() holiday.Table {
	return c.holidays
}

// Classify classifies one date
func (c *Classifier) Classify(date time.Time, snap *annotation.Snapshot, today time.Time) DayClassification {
	return Classify(date, c.rotation, c.holidays, snap, today)
}

// Range classifies every date from start to end inclusive
func (c *Classifier) Range(start, end time.Time, snap *annotation.Snapshot, today time.Time) ([]DayClassification, error) {
	n := dateutil.DaysBetween(start, end)
	if n < 0 {
		return nil, newRangeError(start, end)
	}
	days := make([]DayClassification, 0, n+1)
	for i := int64(0); i <= n; i++ {
		days = append(days, c.Classify(dateutil.AddDays(start, int(i)), snap, today))
	}
	return days, nil
}
