package holiday

import (
	"sync"
	"time"

	"github.com/username/shift-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

// Source produces the holidays of one year
type Source interface {
	ForYear(year int) []Record
}

// Table answers "is this date a holiday" for the classifier and the accountant
type Table interface {
	Lookup(date time.Time) (Record, bool)
}

// Builtin is the Source for the fixed-date and Easter-relative rules
type Builtin struct{}

// ForYear implements Source
func (Builtin) ForYear(year int) []Record {
	return ForYear(year)
}

// Set is the materialised holidays of one or more years, indexed by date
type Set struct {
	records []Record
	byDate  map[string]Record
}

// NewSet indexes records by date; the first record on a date wins
func NewSet(records []Record) *Set {
	s := &Set{byDate: make(map[string]Record, len(records))}
	for _, r := range records {
		key := dateutil.FormatDate(r.Date)
		if _, ok := s.byDate[key]; ok {
			continue
		}
		s.byDate[key] = r
		s.records = append(s.records, r)
	}
	return s
}

// Lookup implements Table
func (s *Set) Lookup(date time.Time) (Record, bool) {
	r, ok := s.byDate[dateutil.FormatDate(date)]
	return r, ok
}

// Records returns the indexed records in insertion order
func (s *Set) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of indexed dates
func (s *Set) Len() int {
	return len(s.records)
}

// Calendar memoises a Source per year. It is safe for concurrent use and
// implements Table for any date.
type Calendar struct {
	source  Source
	logger  *zap.Logger
	cache   map[int]*Set
	cacheMu sync.RWMutex
}

// NewCalendar creates a Calendar over source
func NewCalendar(source Source, logger *zap.Logger) *Calendar {
	return &Calendar{
		source: source,
		logger: logger,
		cache:  make(map[int]*Set),
	}
}

// Year returns the holiday set of year, generating it on first use
func (c *Calendar) Year(year int) *Set {
	c.cacheMu.RLock()
	if set, ok := c.cache[year]; ok {
		c.cacheMu.RUnlock()
		return set
	}
	c.cacheMu.RUnlock()

	set := NewSet(c.source.ForYear(year))

	c.cacheMu.Lock()
	if cached, ok := c.cache[year]; ok {
		set = cached
	} else {
		c.cache[year] = set
		c.logger.Debug("Holiday year generated",
			zap.Int("year", year),
			zap.Int("holidays", set.Len()))
	}
	c.cacheMu.Unlock()

	return set
}

// Lookup implements Table
func (c *Calendar) Lookup(date time.Time) (Record, bool) {
	return c.Year(date.Year()).Lookup(date)
}

// Reset drops every memoised year
func (c *Calendar) Reset() {
	c.cacheMu.Lock()
	c.cache = make(map[int]*Set)
	c.cacheMu.Unlock()
}
