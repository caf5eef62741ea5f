package holiday

import (
	"time"

	"github.com/username/shift-calendar/pkg/dateutil"
)

// Easter returns the month and day of Gregorian Easter Sunday for year
// using the anonymous Meeus/Jones/Butcher algorithm
func Easter(year int) (time.Month, int) {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Month(month), day
}

// EasterSunday returns Easter Sunday of year as a civil date
func EasterSunday(year int) time.Time {
	month, day := Easter(year)
	return dateutil.Date(year, month, day)
}
