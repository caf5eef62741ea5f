package calendar

import (
	"time"

	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/shift"
	"github.com/username/shift-calendar/pkg/dateutil"
)

// SickType is the vacation-type code for sick leave
const SickType = 7

// Statistics is the shift distribution of one year
type Statistics struct {
	Year      int `json:"year"`
	Early     int `json:"early"`
	Late      int `json:"late"`
	Night     int `json:"night"`
	Vacation  int `json:"vacation"`
	Sick      int `json:"sick"`
	WorkDays  int `json:"workDays"`
	TotalDays int `json:"totalDays"`
}

// YearStatistics counts the year's days. Vacation days and sick days are
// taken out before the rotation is consulted; holidays are not, the rotation
// still says which shift the day belongs to.
func (c *Classifier) YearStatistics(year int, snap *annotation.Snapshot) Statistics {
	stats := Statistics{Year: year}

	start := dateutil.Date(year, time.January, 1)
	end := dateutil.Date(year, time.December, 31)
	for d := start; !d.After(end); d = dateutil.AddDays(d, 1) {
		stats.TotalDays++

		if snap != nil && snap.IsVacation(d) {
			stats.Vacation++
			continue
		}
		if snap != nil && isSick(snap.EntriesFor(d)) {
			stats.Sick++
			continue
		}

		switch c.rotation.Resolve(d) {
		case shift.Early:
			stats.Early++
		case shift.Late:
			stats.Late++
		case shift.Night:
			stats.Night++
		}
	}

	stats.WorkDays = stats.Early + stats.Late + stats.Night
	return stats
}

func isSick(entries []annotation.ImportantDate) bool {
	for _, e := range entries {
		if e.VacationType == SickType {
			return true
		}
	}
	return false
}
