package dateutil

import (
	"fmt"
	"time"
)

const (
	// ISODate is the key format used for every per-date collection
	ISODate = "2006-01-02"

	secondsPerDay = 24 * 60 * 60
	noonSeconds   = 12 * 60 * 60
)

// Date returns the civil date as midnight UTC
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// Civil strips time of day and location, keeping the calendar date as seen in date's location
func Civil(date time.Time) time.Time {
	return Date(date.Year(), date.Month(), date.Day())
}

// DayNumber returns the number of days between 1970-01-01 and the civil date.
// Both sides are pinned to noon UTC so daylight-saving shifts never leak into the count.
func DayNumber(date time.Time) int64 {
	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, time.UTC)
	return (noon.Unix() - noonSeconds) / secondsPerDay
}

// DaysBetween returns to - from in whole calendar days.
// Works for the full year 1..9999 range, unlike time.Time.Sub which overflows after ~292 years.
func DaysBetween(from, to time.Time) int64 {
	return DayNumber(to) - DayNumber(from)
}

// AddDays adds n calendar days to the civil date
func AddDays(date time.Time, n int) time.Time {
	return Civil(date).AddDate(0, 0, n)
}

// StartOfWeek returns the Monday of the week for the given date
func StartOfWeek(date time.Time) time.Time {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	daysFromMonday := weekday - 1
	return StartOfDay(date.AddDate(0, 0, -daysFromMonday))
}

// GetWeekNumber returns the ISO week number for the given date
func GetWeekNumber(date time.Time) (year int, week int) {
	year, week = date.ISOWeek()
	return
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date time.Time) bool {
	weekday := date.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatDate formats the civil date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	return date.Format(ISODate)
}

// MonthDay returns the MM-DD part used to match yearly recurring entries
func MonthDay(date time.Time) string {
	return date.Format("01-02")
}

// ParseDate parses date string in various formats
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		ISODate,
		"02.01.2006",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05-0700",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return Civil(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", dateStr)
}

// MustParseDate is ParseDate for literals known to be valid
func MustParseDate(dateStr string) time.Time {
	t, err := ParseDate(dateStr)
	if err != nil {
		panic(err)
	}
	return t
}
