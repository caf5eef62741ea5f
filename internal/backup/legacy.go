package backup

import (
	"encoding/json"
	"fmt"

	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/leave"
	"github.com/username/shift-calendar/internal/locale"
	"github.com/username/shift-calendar/internal/shift"
	"github.com/username/shift-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

// Keys of the browser dump. Display-only keys (dark mode, colours,
// animations) are ignored.
const (
	legacyNotes     = "calendarNotes"
	legacyVacations = "calendarVacations"
	legacyRotation  = "customShiftSystem"
	legacyProfile   = "userProfile"
	legacyEntries   = "importantDates"
	legacyLanguage  = "calendarLanguage"
)

var legacyKeys = []string{legacyNotes, legacyVacations, legacyRotation, legacyProfile, legacyEntries, legacyLanguage}

type legacyRotationWire struct {
	Sequence       []string `json:"sequence"`
	ReferenceDate  string   `json:"referenceStartDate"`
	ReferenceShift string   `json:"referenceShiftType"`
}

func importLegacy(fields map[string]json.RawMessage, logger *zap.Logger) (*Bundle, error) {
	b := &Bundle{
		Version:   0,
		Vacations: make(map[string]bool),
		Notes:     make(map[string]annotation.Note),
	}

	if raw, ok := fields[legacyLanguage]; ok {
		var code string
		if err := json.Unmarshal(raw, &code); err == nil && locale.IsSupported(code) {
			b.Locale = locale.Normalize(code)
		}
	}

	var notes map[string]string
	if err := legacyValue(fields, legacyNotes, &notes); err != nil {
		return nil, err
	}
	snap := annotation.NewSnapshot()
	snap.ImportLegacyNotes(notes)
	b.Notes = snap.Notes

	if err := legacyValue(fields, legacyVacations, &b.Vacations); err != nil {
		return nil, err
	}

	var list []legacyEntry
	if err := legacyValue(fields, legacyEntries, &list); err != nil {
		return nil, err
	}
	b.ImportantDates = entries(list)

	var profile leave.Profile
	if _, ok := fields[legacyProfile]; ok {
		if err := legacyValue(fields, legacyProfile, &profile); err != nil {
			return nil, err
		}
		b.Profile = &profile
	}

	var wire legacyRotationWire
	if err := legacyValue(fields, legacyRotation, &wire); err != nil {
		return nil, err
	}
	b.Rotation = legacyDefinition(wire, logger)
	b.normalizeIDs(logger)

	logger.Info("Legacy backup parsed",
		zap.Int("vacations", len(b.Vacations)),
		zap.Int("important_dates", len(b.ImportantDates)),
		zap.Int("notes", len(b.Notes)),
		zap.Bool("rotation", b.Rotation != nil))
	return b, nil
}

// legacyValue decodes fields[key] into v. The dump stores most values as a
// JSON document inside a string; plain JSON values are accepted as well.
// A missing key leaves v untouched.
func legacyValue(fields map[string]json.RawMessage, key string, v any) error {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return nil
	}

	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		if inner == "" || inner == "null" {
			return nil
		}
		raw = json.RawMessage(inner)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return nil
}

// legacyDefinition converts the stored custom rotation. Incomplete rotations
// are treated as absent so the default applies.
func legacyDefinition(wire legacyRotationWire, logger *zap.Logger) *shift.Definition {
	if len(wire.Sequence) == 0 || wire.ReferenceDate == "" || wire.ReferenceShift == "" {
		return nil
	}

	refDate, err := dateutil.ParseDate(wire.ReferenceDate)
	if err != nil {
		logger.Warn("Legacy rotation has an invalid reference date",
			zap.String("reference_date", wire.ReferenceDate))
		return nil
	}
	ref, err := shift.ParseKind(wire.ReferenceShift)
	if err != nil {
		logger.Warn("Legacy rotation has an unknown reference shift",
			zap.String("reference_shift", wire.ReferenceShift))
		return nil
	}

	var bad []string
	seq := make([]shift.Kind, 0, len(wire.Sequence))
	for _, token := range wire.Sequence {
		k, err := shift.ParseKind(token)
		if err != nil {
			bad = append(bad, token)
			continue
		}
		seq = append(seq, k)
	}
	if len(bad) > 0 {
		logger.Warn("Legacy rotation contains unknown shift tokens", zap.Strings("tokens", bad))
	}

	return &shift.Definition{Sequence: seq, ReferenceDate: refDate, ReferenceShift: ref}
}
