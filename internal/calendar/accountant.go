package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/username/shift-calendar/internal/holiday"
	"github.com/username/shift-calendar/internal/shift"
	"github.com/username/shift-calendar/pkg/dateutil"
)

// ErrInvalidRange is returned when a range starts after it ends
var ErrInvalidRange = errors.New("invalid range")

func newRangeError(start, end time.Time) error {
	return fmt.Errorf("%w: %s is after %s", ErrInvalidRange,
		dateutil.FormatDate(start), dateutil.FormatDate(end))
}

// WeekendPolicy controls whether Saturdays and Sundays can be charged
type WeekendPolicy struct {
	CountWeekends bool `json:"countWeekends"`
}

// AuditLine is the per-date breakdown of a chargeable-day count
type AuditLine struct {
	Date       time.Time  `json:"-"`
	Day        string     `json:"date"`
	Shift      shift.Kind `json:"shift"`
	IsWeekend  bool       `json:"isWeekend"`
	IsHoliday  bool       `json:"isHoliday"`
	HolidayKey string     `json:"holidayKey,omitempty"`
	Chargeable bool       `json:"chargeable"`
	Amount     float64    `json:"amount"`
}

// Audit is the result of an audited count
type Audit struct {
	Lines []AuditLine `json:"lines"`
	Total float64     `json:"total"`
}

// DayWeight returns the leave weight of a chargeable date: 0.5 on
// December 24 and December 31, 1 otherwise
func DayWeight(date time.Time) float64 {
	if date.Month() == time.December && (date.Day() == 24 || date.Day() == 31) {
		return 0.5
	}
	return 1
}

// Accountant counts chargeable leave days against a rotation and holiday table
type Accountant struct {
	rotation *shift.Rotation
	holidays holiday.Table
}

// NewAccountant creates an Accountant
func NewAccountant(rotation *shift.Rotation, holidays holiday.Table) *Accountant {
	return &Accountant{
		rotation: rotation,
		holidays: holidays,
	}
}

// Line evaluates a single date
func (a *Accountant) Line(date time.Time, policy WeekendPolicy) AuditLine {
	date = dateutil.Civil(date)
	line := AuditLine{
		Date:      date,
		Day:       dateutil.FormatDate(date),
		Shift:     a.rotation.Resolve(date),
		IsWeekend: !dateutil.IsWeekday(date),
	}
	if rec, ok := a.holidays.Lookup(date); ok {
		line.IsHoliday = true
		line.HolidayKey = rec.Key
	}

	line.Chargeable = line.Shift.IsWorking() &&
		(!line.IsWeekend || policy.CountWeekends) &&
		!line.IsHoliday
	if line.Chargeable {
		line.Amount = DayWeight(date)
	}
	return line
}

// IsChargeable reports whether date counts against a leave balance
func (a *Accountant) IsChargeable(date time.Time, policy WeekendPolicy) bool {
	return a.Line(date, policy).Chargeable
}

// CountChargeableDays sums the weights of chargeable dates from start to end inclusive
func (a *Accountant) CountChargeableDays(start, end time.Time, policy WeekendPolicy) (float64, error) {
	audit, err := a.Audit(start, end, policy)
	if err != nil {
		return 0, err
	}
	return audit.Total, nil
}

// Audit is CountChargeableDays with the per-date breakdown
func (a *Accountant) Audit(start, end time.Time, policy WeekendPolicy) (*Audit, error) {
	n := dateutil.DaysBetween(start, end)
	if n < 0 {
		return nil, newRangeError(start, end)
	}

	audit := &Audit{Lines: make([]AuditLine, 0, n+1)}
	for i := int64(0); i <= n; i++ {
		line := a.Line(dateutil.AddDays(start, int(i)), policy)
		audit.Lines = append(audit.Lines, line)
		audit.Total += line.Amount
	}
	return audit, nil
}

// CountChargeableDays is the one-shot form of Accountant.CountChargeableDays
func CountChargeableDays(start, end time.Time, rotation *shift.Rotation, holidays holiday.Table, policy WeekendPolicy) (float64, error) {
	return NewAccountant(rotation, holidays).CountChargeableDays(start, end, policy)
}
