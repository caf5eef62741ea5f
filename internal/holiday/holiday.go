// Package holiday derives public holidays for a year. Built-in rules cover the
// fixed-date and Easter-relative holidays; extra regional days can be layered
// on top from a file.
package holiday

import (
	"sort"
	"time"

	"github.com/username/shift-calendar/internal/locale"
	"github.com/username/shift-calendar/pkg/dateutil"
)

// Record is one holiday on a civil date
type Record struct {
	Date  time.Time         `json:"date"`
	Key   string            `json:"key"`
	Names map[string]string `json:"names"`
}

// Name returns the display name in the given locale, falling back to the
// default locale and finally to the key
func (r Record) Name(code string) string {
	if name, ok := r.Names[locale.Normalize(code)]; ok && name != "" {
		return name
	}
	if name, ok := r.Names[locale.Default]; ok && name != "" {
		return name
	}
	return r.Key
}

type fixedRule struct {
	key   string
	month time.Month
	day   int
}

type easterRule struct {
	key    string
	offset int
}

var fixedRules = []fixedRule{
	{"newYear", time.January, 1},
	{"epiphany", time.January, 6},
	{"labourDay", time.May, 1},
	{"assumption", time.August, 15},
	{"unityDay", time.October, 3},
	{"allSaints", time.November, 1},
	{"christmasEve", time.December, 24},
	{"christmasDay1", time.December, 25},
	{"christmasDay2", time.December, 26},
	{"newYearsEve", time.December, 31},
}

var easterRules = []easterRule{
	{"goodFriday", -2},
	{"easterSunday", 0},
	{"easterMonday", 1},
	{"ascension", 39},
	{"whitSunday", 49},
	{"whitMonday", 50},
	{"corpusChristi", 60},
}

// ForYear returns the built-in holidays of year ordered by date.
// Fixed-date rules are generated before Easter-relative ones; when two rules
// land on the same date the first generated one is kept.
func ForYear(year int) []Record {
	records := make([]Record, 0, len(fixedRules)+len(easterRules))
	for _, r := range fixedRules {
		records = append(records, Record{
			Date:  dateutil.Date(year, r.month, r.day),
			Key:   r.key,
			Names: locale.Names(r.key),
		})
	}

	easter := EasterSunday(year)
	for _, r := range easterRules {
		records = append(records, Record{
			Date:  dateutil.AddDays(easter, r.offset),
			Key:   r.key,
			Names: locale.Names(r.key),
		})
	}

	return dedupe(records)
}

// RepentanceDay returns the Wednesday on or before November 22 of year.
// It is not a holiday record; callers attach it as a permanent note.
func RepentanceDay(year int) time.Time {
	d := dateutil.Date(year, time.November, 22)
	for d.Weekday() != time.Wednesday {
		d = dateutil.AddDays(d, -1)
	}
	return d
}

// dedupe keeps the first record per date and sorts the survivors by date
func dedupe(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, r := range records {
		key := dateutil.FormatDate(r.Date)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
