// Package leave implements the vacation booking workflow on top of the
// annotation snapshot: range booking and removal, leave-request export
// records, manager decisions and the yearly overview.
package leave

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/locale"
)

var (
	// ErrInvalidType is returned for a vacation-type code outside 1..7
	ErrInvalidType = errors.New("invalid vacation type")

	// ErrReasonRequired is returned when types 5 or 6 come without a reason
	ErrReasonRequired = errors.New("reason required for this vacation type")
)

// VacationType is the leave category code carried on requests and entries
type VacationType int

const (
	TariffLeave     VacationType = 1
	FlexTime        VacationType = 2
	BusinessTrip    VacationType = 3
	Training        VacationType = 4
	TariffExemption VacationType = 5
	UnpaidLeave     VacationType = 6
	Sick            VacationType = 7
)

// Types lists every code in order
var Types = []VacationType{TariffLeave, FlexTime, BusinessTrip, Training, TariffExemption, UnpaidLeave, Sick}

// ParseVacationType accepts "1".."7"
func ParseVacationType(s string) (VacationType, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	t := VacationType(n)
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidType, n)
	}
	return t, nil
}

// Valid reports whether t is one of the seven codes
func (t VacationType) Valid() bool {
	return t >= TariffLeave && t <= Sick
}

// SetsVacationFlag reports whether booking t marks days as vacation.
// Business trips, training and sick days only attach an entry.
func (t VacationType) SetsVacationFlag() bool {
	switch t {
	case TariffLeave, FlexTime, TariffExemption, UnpaidLeave:
		return true
	}
	return false
}

// RequiresReason reports whether a request of type t needs a reason
func (t VacationType) RequiresReason() bool {
	return t == TariffExemption || t == UnpaidLeave
}

// Category returns the important-date category used for entries of type t
func (t VacationType) Category() annotation.Category {
	if t.SetsVacationFlag() {
		return annotation.CategoryVacation
	}
	return annotation.CategoryNote
}

// Label returns the localized type name
func (t VacationType) Label(code string) string {
	return locale.Label(t.key(), code)
}

func (t VacationType) key() string {
	return "vacationType." + strconv.Itoa(int(t))
}

// MarshalJSON writes the code as a string, the format leave-request files use
func (t VacationType) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(t)))
}

// UnmarshalJSON accepts the code as a string or a number
func (t *VacationType) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	parsed, err := ParseVacationType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// typeFromLabel finds the type whose localized name prefixes text
func typeFromLabel(text string) (VacationType, bool) {
	for _, t := range Types {
		for _, code := range locale.Supported {
			if name := t.Label(code); name != "" && strings.HasPrefix(text, name) {
				return t, true
			}
		}
	}
	return 0, false
}
