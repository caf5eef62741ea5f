package calendar

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/holiday"
	"github.com/username/shift-calendar/internal/shift"
	"github.com/username/shift-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

func presetRotation(t *testing.T, name string) *shift.Rotation {
	t.Helper()
	p, err := shift.LookupPreset(name)
	if err != nil {
		t.Fatalf("LookupPreset(%s) error = %v", name, err)
	}
	r, err := shift.NewRotation(p.Definition)
	if err != nil {
		t.Fatalf("NewRotation(%s) error = %v", name, err)
	}
	return r
}

func builtinHolidays() *holiday.Calendar {
	return holiday.NewCalendar(holiday.Builtin{}, zap.NewNop())
}

func TestClassify_Precedence(t *testing.T) {
	c := NewClassifier(presetRotation(t, "standard"), builtinHolidays())
	snap := annotation.NewSnapshot()
	today := dateutil.Date(2029, time.June, 1)

	night := dateutil.Date(2030, time.January, 7)
	if got := c.Classify(night, snap, today); got.Kind != FromShift(shift.Night) {
		t.Fatalf("Classify(2030-01-07) = %s, want NIGHT", got.Kind)
	}

	snap.SetVacation(night, true)
	got := c.Classify(night, snap, today)
	if got.Kind != KindVacation {
		t.Errorf("Classify(vacation on night) = %s, want VACATION", got.Kind)
	}
	if got.Shift != shift.Night {
		t.Errorf("underlying shift = %s, want NIGHT", got.Shift)
	}

	newYear := dateutil.Date(2030, time.January, 1)
	got = c.Classify(newYear, snap, today)
	if got.Kind != KindHoliday {
		t.Errorf("Classify(2030-01-01) = %s, want HOLIDAY", got.Kind)
	}
	if got.HolidayNames()["de"] != "Neujahr" {
		t.Errorf("holiday names = %v", got.HolidayNames())
	}

	// vacation beats holiday
	snap.SetVacation(newYear, true)
	if got := c.Classify(newYear, snap, today); got.Kind != KindVacation {
		t.Errorf("Classify(vacation on holiday) = %s, want VACATION", got.Kind)
	}
}

func TestClassify_AnnotationsAreOrthogonal(t *testing.T) {
	c := NewClassifier(presetRotation(t, "standard"), builtinHolidays())
	snap := annotation.NewSnapshot()
	today := dateutil.Date(2029, time.June, 1)

	snap.AddImportantDate(annotation.ImportantDate{Date: "1980-01-01", Name: "Geburtstag", Emoji: "🎂", Recurring: true})
	snap.AddImportantDate(annotation.ImportantDate{Date: "2030-01-01", Name: "Brunch"})
	snap.SetNote(dateutil.Date(2030, time.January, 1), "Familie")

	got := c.Classify(dateutil.Date(2030, time.January, 1), snap, today)
	if got.Kind != KindHoliday {
		t.Fatalf("Kind = %s, want HOLIDAY", got.Kind)
	}
	if len(got.Entries) != 2 {
		t.Errorf("Entries = %d, want recurring and one-off", len(got.Entries))
	}
	if got.NoteText() != "Familie" {
		t.Errorf("NoteText() = %q, want Familie", got.NoteText())
	}

	snap.AddImportantDate(annotation.ImportantDate{Date: "2030-01-08", Name: "Tarifurlaub", Category: annotation.CategoryVacation, VacationType: 1})
	snap.SetVacation(dateutil.Date(2030, time.January, 8), true)
	got = c.Classify(dateutil.Date(2030, time.January, 8), snap, today)
	if got.VacationEntry == nil || got.VacationEntry.Name != "Tarifurlaub" {
		t.Errorf("VacationEntry = %+v", got.VacationEntry)
	}
}

func TestClassify_IsTodayAndPurity(t *testing.T) {
	c := NewClassifier(presetRotation(t, "standard"), builtinHolidays())
	snap := annotation.NewSnapshot()
	snap.SetNote(dateutil.Date(2030, time.March, 3), "x")

	today := time.Date(2030, time.March, 3, 18, 30, 0, 0, time.UTC)
	first := c.Classify(dateutil.Date(2030, time.March, 3), snap, today)
	second := c.Classify(dateutil.Date(2030, time.March, 3), snap, today)

	if !first.IsToday {
		t.Error("IsToday = false, want true")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Classify not idempotent:\n%+v\n%+v", first, second)
	}
	if c.Classify(dateutil.Date(2030, time.March, 4), snap, today).IsToday {
		t.Error("next day flagged as today")
	}
}

func TestClassify_NilSnapshot(t *testing.T) {
	got := Classify(dateutil.Date(2030, time.January, 7), presetRotation(t, "standard"), holiday.NewSet(nil), nil, time.Time{})
	if got.Kind != FromShift(shift.Night) || got.Entries != nil || got.Note != nil {
		t.Errorf("Classify(nil snapshot) = %+v", got)
	}
}

func TestDayClassification_MarshalJSON(t *testing.T) {
	c := NewClassifier(presetRotation(t, "standard"), builtinHolidays())
	got := c.Classify(dateutil.Date(2030, time.December, 25), nil, time.Time{})

	b, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(b)
	for _, want := range []string{`"date":"2030-12-25"`, `"kind":"HOLIDAY"`, `"holidayKey":"christmasDay1"`} {
		if !strings.Contains(s, want) {
			t.Errorf("json %s missing %s", s, want)
		}
	}
}

func TestClassifier_Range(t *testing.T) {
	c := NewClassifier(presetRotation(t, "standard"), builtinHolidays())

	days, err := c.Range(dateutil.Date(2030, time.January, 7), dateutil.Date(2030, time.January, 13), nil, time.Time{})
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if len(days) != 7 {
		t.Errorf("Range() = %d days, want 7", len(days))
	}

	if _, err := c.Range(dateutil.Date(2030, time.January, 13), dateutil.Date(2030, time.January, 7), nil, time.Time{}); err == nil {
		t.Error("Range(reversed) should fail")
	}
}

func TestClassifier_Month(t *testing.T) {
	c := NewClassifier(presetRotation(t, "standard"), builtinHolidays())

	jan := c.Month(2030, time.January, nil, time.Time{})
	if len(jan.Days()) != 31 {
		t.Errorf("January days = %d, want 31", len(jan.Days()))
	}
	if len(jan.Weeks) != 5 || jan.Weeks[0].Number != 1 {
		t.Errorf("January weeks = %d starting at %d", len(jan.Weeks), jan.Weeks[0].Number)
	}
	if jan.Holidays != 2 {
		t.Errorf("January holidays = %d, want 2", jan.Holidays)
	}
	if jan.Weeks[0].Start != "2029-12-31" || jan.Weeks[1].Start != "2030-01-07" {
		t.Errorf("January week starts = %s, %s, want 2029-12-31, 2030-01-07", jan.Weeks[0].Start, jan.Weeks[1].Start)
	}

	dec := c.Month(2030, time.December, nil, time.Time{})
	if len(dec.Weeks) != 6 {
		t.Errorf("December weeks = %d, want 6", len(dec.Weeks))
	}
	if last := dec.Weeks[len(dec.Weeks)-1]; last.Number != 1 || len(last.Days) != 2 {
		t.Errorf("last December week = %d with %d days, want week 1 with 2 days", last.Number, len(last.Days))
	}

	// 2021-01-01 is a Friday in ISO week 53 of 2020
	jan21 := c.Month(2021, time.January, nil, time.Time{})
	if first := jan21.Weeks[0]; first.Number != 53 || first.Start != "2020-12-28" || len(first.Days) != 3 {
		t.Errorf("first week of 2021 = %d starting %s with %d days, want 53 starting 2020-12-28 with 3 days",
			first.Number, first.Start, len(first.Days))
	}

	if months := c.Year(2030, nil, time.Time{}); len(months) != 12 {
		t.Errorf("Year() = %d months", len(months))
	}
}

func TestYearStatistics(t *testing.T) {
	c := NewClassifier(presetRotation(t, "standard"), builtinHolidays())

	stats := c.YearStatistics(2030, annotation.NewSnapshot())
	if stats.Early != 89 || stats.Late != 85 || stats.Night != 87 {
		t.Errorf("stats = %+v, want early 89 late 85 night 87", stats)
	}
	if stats.WorkDays != 261 || stats.TotalDays != 365 {
		t.Errorf("WorkDays = %d TotalDays = %d", stats.WorkDays, stats.TotalDays)
	}

	snap := annotation.NewSnapshot()
	snap.SetVacation(dateutil.Date(2030, time.January, 7), true)
	snap.AddImportantDate(annotation.ImportantDate{Date: "2030-01-08", Name: "Krank", VacationType: SickType, Category: annotation.CategoryNote})

	stats = c.YearStatistics(2030, snap)
	if stats.Vacation != 1 || stats.Sick != 1 || stats.Night != 85 {
		t.Errorf("stats with overrides = %+v", stats)
	}
}
