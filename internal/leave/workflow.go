package leave

import (
	"fmt"
	"time"

	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/calendar"
	"github.com/username/shift-calendar/internal/locale"
	"github.com/username/shift-calendar/pkg/dateutil"
)

// Booking describes a vacation range to book
type Booking struct {
	Start  time.Time
	End    time.Time
	Type   VacationType
	Label  string // type name written into entries; localized default when empty
	Remark string
	Policy calendar.WeekendPolicy
}

// EntryName is the important-date name for the booking: "label[: remark]"
func (b Booking) EntryName() string {
	label := b.Label
	if label == "" {
		label = b.Type.Label(locale.Default)
	}
	if b.Remark == "" {
		return label
	}
	return label + ": " + b.Remark
}

// BookingResult summarises what AddRange changed
type BookingResult struct {
	Chargeable float64 `json:"chargeable"`
	Flagged    int     `json:"flagged"`
	Entries    int     `json:"entries"`
}

// AddRange books b into snap. Only chargeable days are touched: they get the
// vacation flag for true vacation types and one entry each, never two with
// the same name. Derived notes of the whole range are refreshed afterwards.
func AddRange(snap *annotation.Snapshot, acc *calendar.Accountant, b Booking) (*BookingResult, error) {
	if !b.Type.Valid() {
		return nil, ErrInvalidType
	}

	audit, err := acc.Audit(b.Start, b.End, b.Policy)
	if err != nil {
		return nil, err
	}

	name := b.EntryName()
	result := &BookingResult{Chargeable: audit.Total}

	for _, line := range audit.Lines {
		if !line.Chargeable {
			continue
		}
		if b.Type.SetsVacationFlag() {
			snap.SetVacation(line.Date, true)
			result.Flagged++
		}
		if snap.HasEntry(line.Date, name) {
			continue
		}
		snap.AddImportantDate(annotation.ImportantDate{
			Date:         line.Day,
			Name:         name,
			Category:     b.Type.Category(),
			VacationType: annotation.TypeCode(b.Type),
		})
		result.Entries++
	}

	for _, line := range audit.Lines {
		snap.RefreshAutoNote(line.Date)
	}
	return result, nil
}

// DeleteRange clears vacation flags and vacation entries from start to end
// inclusive and refreshes derived notes. Returns the number of cleared flags.
func DeleteRange(snap *annotation.Snapshot, start, end time.Time) (int, error) {
	n := dateutil.DaysBetween(start, end)
	if n < 0 {
		return 0, fmt.Errorf("%w: %s is after %s", calendar.ErrInvalidRange,
			dateutil.FormatDate(start), dateutil.FormatDate(end))
	}

	cleared := 0
	for i := int64(0); i <= n; i++ {
		d := dateutil.AddDays(start, int(i))
		if snap.IsVacation(d) {
			snap.SetVacation(d, false)
			cleared++
		}
		snap.RemoveEntries(d, func(e annotation.ImportantDate) bool {
			return e.Category == annotation.CategoryVacation
		})
		snap.RefreshAutoNote(d)
	}
	return cleared, nil
}
