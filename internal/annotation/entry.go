package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/username/shift-calendar/pkg/dateutil"
)

// Category tags an important date
type Category string

const (
	CategoryNone     Category = ""
	CategoryVacation Category = "vacation"
	CategoryNote     Category = "note"
)

// EntryID identifies an important date. Older backups stored ids as
// millisecond timestamps, sometimes as strings; all forms are accepted.
type EntryID int64

// UnmarshalJSON accepts a number, a float or a numeric string
func (id *EntryID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}

	if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
		*id = EntryID(n)
		return nil
	}

	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid entry id %s", b)
	}
	*id = EntryID(int64(f))
	return nil
}

// TypeCode is the vacation-type code of an entry, 0 when none. The browser
// version stored it as a string ("1"), newer files as a number.
type TypeCode int

// UnmarshalJSON accepts a number, a numeric string, "" or null
func (c *TypeCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = bytes.TrimSpace([]byte(s))
		if len(b) == 0 {
			*c = 0
			return nil
		}
	}

	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("invalid vacation type code %s", b)
	}
	*c = TypeCode(n)
	return nil
}

// ImportantDate is a user or workflow created marker on a date
type ImportantDate struct {
	ID           EntryID  `json:"id"`
	Date         string   `json:"date"`
	Name         string   `json:"name"`
	Emoji        string   `json:"emoji"`
	Recurring    bool     `json:"recurring"`
	Category     Category `json:"category,omitempty"`
	VacationType TypeCode `json:"vacationTypeId,omitempty"`
}

// Matches reports whether the entry applies on date. Recurring entries
// match every year on the same month and day.
func (e ImportantDate) Matches(date time.Time) bool {
	if e.Recurring {
		return len(e.Date) == len(dateutil.ISODate) && e.Date[5:] == dateutil.MonthDay(date)
	}
	return e.Date == dateutil.FormatDate(date)
}

// Label formats the entry as "emoji name"
func (e ImportantDate) Label() string {
	if e.Emoji == "" {
		return e.Name
	}
	return e.Emoji + " " + e.Name
}
