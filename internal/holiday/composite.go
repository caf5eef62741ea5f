package holiday

import (
	"github.com/username/shift-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

// Composite merges several sources. The primary source is consulted first,
// then each extra in order; a date already taken is never overwritten.
type Composite struct {
	primary Source
	extras  []Source
	logger  *zap.Logger
}

// NewComposite creates a Composite over primary and extras
func NewComposite(primary Source, logger *zap.Logger, extras ...Source) *Composite {
	return &Composite{
		primary: primary,
		extras:  extras,
		logger:  logger,
	}
}

// ForYear implements Source
func (cc *Composite) ForYear(year int) []Record {
	records := cc.primary.ForYear(year)

	taken := make(map[string]string, len(records))
	for _, r := range records {
		taken[dateutil.FormatDate(r.Date)] = r.Key
	}

	for _, extra := range cc.extras {
		for _, r := range extra.ForYear(year) {
			date := dateutil.FormatDate(r.Date)
			if key, ok := taken[date]; ok {
				cc.logger.Debug("Extra holiday shadowed by earlier rule",
					zap.String("date", date),
					zap.String("kept", key),
					zap.String("dropped", r.Key))
				continue
			}
			taken[date] = r.Key
			records = append(records, r)
		}
	}

	return dedupe(records)
}
