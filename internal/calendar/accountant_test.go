package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/username/shift-calendar/internal/holiday"
	"github.com/username/shift-calendar/internal/shift"
	"github.com/username/shift-calendar/pkg/dateutil"
)

func singleKind(t *testing.T, k shift.Kind) *shift.Rotation {
	t.Helper()
	r, err := shift.NewRotation(shift.Definition{
		Sequence:       []shift.Kind{k},
		ReferenceDate:  dateutil.Date(2030, time.January, 1),
		ReferenceShift: k,
	})
	if err != nil {
		t.Fatalf("NewRotation() error = %v", err)
	}
	return r
}

func TestCountChargeableDays(t *testing.T) {
	noHolidays := holiday.NewSet(nil)
	builtin := builtinHolidays()

	tests := []struct {
		name     string
		rotation *shift.Rotation
		holidays holiday.Table
		start    time.Time
		end      time.Time
		policy   WeekendPolicy
		want     float64
	}{
		{
			name:     "single free day",
			rotation: singleKind(t, shift.Free),
			holidays: noHolidays,
			start:    dateutil.Date(2030, time.January, 8),
			end:      dateutil.Date(2030, time.January, 8),
			want:     0,
		},
		{
			name:     "single early weekday",
			rotation: singleKind(t, shift.Early),
			holidays: noHolidays,
			start:    dateutil.Date(2030, time.January, 8),
			end:      dateutil.Date(2030, time.January, 8),
			want:     1,
		},
		{
			name:     "christmas eve on early day",
			rotation: singleKind(t, shift.Early),
			holidays: noHolidays,
			start:    dateutil.Date(2030, time.December, 24),
			end:      dateutil.Date(2030, time.December, 24),
			want:     0.5,
		},
		{
			name:     "new years eve on early day",
			rotation: singleKind(t, shift.Early),
			holidays: noHolidays,
			start:    dateutil.Date(2030, time.December, 31),
			end:      dateutil.Date(2030, time.December, 31),
			want:     0.5,
		},
		{
			name:     "christmas eve as built-in holiday",
			rotation: singleKind(t, shift.Early),
			holidays: builtin,
			start:    dateutil.Date(2030, time.December, 24),
			end:      dateutil.Date(2030, time.December, 24),
			want:     0,
		},
		{
			name:     "week without weekends",
			rotation: singleKind(t, shift.Early),
			holidays: noHolidays,
			start:    dateutil.Date(2030, time.January, 7),
			end:      dateutil.Date(2030, time.January, 13),
			want:     5,
		},
		{
			name:     "week with weekends",
			rotation: singleKind(t, shift.Early),
			holidays: noHolidays,
			start:    dateutil.Date(2030, time.January, 7),
			end:      dateutil.Date(2030, time.January, 13),
			policy:   WeekendPolicy{CountWeekends: true},
			want:     7,
		},
		{
			name:     "holidays excluded across year end",
			rotation: singleKind(t, shift.Night),
			holidays: builtin,
			start:    dateutil.Date(2029, time.December, 28),
			end:      dateutil.Date(2030, time.January, 2),
			want:     2,
		},
		{
			name:     "saturday kind on weekday still counts",
			rotation: singleKind(t, shift.Saturday),
			holidays: noHolidays,
			start:    dateutil.Date(2030, time.January, 8),
			end:      dateutil.Date(2030, time.January, 8),
			want:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountChargeableDays(tt.start, tt.end, tt.rotation, tt.holidays, tt.policy)
			if err != nil {
				t.Fatalf("CountChargeableDays() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CountChargeableDays() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCountChargeableDays_InvalidRange(t *testing.T) {
	a := NewAccountant(singleKind(t, shift.Early), holiday.NewSet(nil))

	_, err := a.CountChargeableDays(dateutil.Date(2030, time.January, 2), dateutil.Date(2030, time.January, 1), WeekendPolicy{})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("CountChargeableDays(reversed) error = %v, want ErrInvalidRange", err)
	}
}

func TestAudit(t *testing.T) {
	a := NewAccountant(presetRotation(t, "standard"), builtinHolidays())

	// Fri 2030-01-04 .. Tue 2030-01-08
	audit, err := a.Audit(dateutil.Date(2030, time.January, 4), dateutil.Date(2030, time.January, 8), WeekendPolicy{})
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	if len(audit.Lines) != 5 {
		t.Fatalf("Audit() = %d lines, want 5", len(audit.Lines))
	}

	var sum float64
	for _, l := range audit.Lines {
		sum += l.Amount
		if l.Chargeable != (l.Amount > 0) {
			t.Errorf("%s: chargeable %v with amount %v", l.Day, l.Chargeable, l.Amount)
		}
	}
	if sum != audit.Total {
		t.Errorf("line sum %v != total %v", sum, audit.Total)
	}

	sat := audit.Lines[1]
	if !sat.IsWeekend || sat.Chargeable {
		t.Errorf("Saturday line = %+v", sat)
	}
	mon := audit.Lines[3]
	if mon.Shift != shift.Night || !mon.Chargeable || mon.Amount != 1 {
		t.Errorf("Monday line = %+v", mon)
	}

	holidayLine := a.Line(dateutil.Date(2030, time.January, 6), WeekendPolicy{CountWeekends: true})
	if !holidayLine.IsHoliday || holidayLine.HolidayKey != "epiphany" || holidayLine.Chargeable {
		t.Errorf("Epiphany line = %+v", holidayLine)
	}
}

func TestAccountant_AgreesWithClassifierRotation(t *testing.T) {
	rot := presetRotation(t, "standard")
	a := NewAccountant(rot, builtinHolidays())
	c := NewClassifier(rot, builtinHolidays())

	start := dateutil.Date(2030, time.March, 1)
	for i := 0; i < 60; i++ {
		d := dateutil.AddDays(start, i)
		if a.Line(d, WeekendPolicy{}).Shift != c.Classify(d, nil, time.Time{}).Shift {
			t.Fatalf("accountant and classifier disagree on %s", dateutil.FormatDate(d))
		}
	}
}
