// Package annotation holds the user overrides that sit on top of the computed
// calendar: vacation flags, important dates and notes. A Snapshot is a plain
// value; persistence lives elsewhere and hands snapshots in and out.
package annotation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/username/shift-calendar/internal/holiday"
	"github.com/username/shift-calendar/pkg/dateutil"
)

var (
	// ErrPermanentNote is returned when deleting the fixed Repentance Day note
	ErrPermanentNote = errors.New("note is permanent")

	// ErrEntryNotFound is returned for an unknown important date id
	ErrEntryNotFound = errors.New("important date not found")
)

// Snapshot is a consistent view of every override. All maps are keyed by
// ISO date (YYYY-MM-DD).
type Snapshot struct {
	Vacations      map[string]bool `json:"vacations"`
	ImportantDates []ImportantDate `json:"importantDates"`
	Notes          map[string]Note `json:"notes"`
	NextID         EntryID         `json:"nextId"`
}

// NewSnapshot returns an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Vacations: make(map[string]bool),
		Notes:     make(map[string]Note),
		NextID:    1,
	}
}

// Normalize initialises nil maps, moves NextID past every stored id and
// gives duplicate or missing ids a fresh one. Returns the number of entries
// that got a new id.
func (s *Snapshot) Normalize() int {
	if s.Vacations == nil {
		s.Vacations = make(map[string]bool)
	}
	if s.Notes == nil {
		s.Notes = make(map[string]Note)
	}
	for _, e := range s.ImportantDates {
		if e.ID >= s.NextID {
			s.NextID = e.ID + 1
		}
	}
	if s.NextID < 1 {
		s.NextID = 1
	}

	// browser backups minted ids from the same millisecond within one booking
	rekeyed := 0
	seen := make(map[EntryID]bool, len(s.ImportantDates))
	for i := range s.ImportantDates {
		id := s.ImportantDates[i].ID
		if id < 1 || seen[id] {
			id = s.NextID
			s.NextID++
			s.ImportantDates[i].ID = id
			rekeyed++
		}
		seen[id] = true
	}
	return rekeyed
}

// Clone returns a deep copy
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Vacations:      make(map[string]bool, len(s.Vacations)),
		ImportantDates: make([]ImportantDate, len(s.ImportantDates)),
		Notes:          make(map[string]Note, len(s.Notes)),
		NextID:         s.NextID,
	}
	for k, v := range s.Vacations {
		c.Vacations[k] = v
	}
	copy(c.ImportantDates, s.ImportantDates)
	for k, v := range s.Notes {
		c.Notes[k] = v
	}
	return c
}

// IsVacation reports whether date is booked as leave
func (s *Snapshot) IsVacation(date time.Time) bool {
	return s.Vacations[dateutil.FormatDate(date)]
}

// SetVacation sets or clears the vacation flag of date
func (s *Snapshot) SetVacation(date time.Time, on bool) {
	key := dateutil.FormatDate(date)
	if on {
		s.Vacations[key] = true
		return
	}
	delete(s.Vacations, key)
}

// VacationDates returns every flagged date in ascending order
func (s *Snapshot) VacationDates() []time.Time {
	return sortedDates(s.Vacations)
}

// EntriesFor returns every important date matching date, recurring ones
// included, in list order
func (s *Snapshot) EntriesFor(date time.Time) []ImportantDate {
	var out []ImportantDate
	for _, e := range s.ImportantDates {
		if e.Matches(date) {
			out = append(out, e)
		}
	}
	return out
}

// Note returns the note on date
func (s *Snapshot) Note(date time.Time) (Note, bool) {
	n, ok := s.Notes[dateutil.FormatDate(date)]
	return n, ok
}

// NoteDates returns every date with a note in ascending order
func (s *Snapshot) NoteDates() []time.Time {
	return sortedDates(s.Notes)
}

// AddImportantDate stores e under a fresh id and returns the stored entry
func (s *Snapshot) AddImportantDate(e ImportantDate) ImportantDate {
	e.ID = s.NextID
	s.NextID++
	s.ImportantDates = append(s.ImportantDates, e)
	return e
}

// HasEntry reports whether a non-recurring entry with name exists on date
func (s *Snapshot) HasEntry(date time.Time, name string) bool {
	key := dateutil.FormatDate(date)
	for _, e := range s.ImportantDates {
		if e.Date == key && e.Name == name {
			return true
		}
	}
	return false
}

// DeleteImportantDate removes the entry with id and refreshes the derived
// note of its date
func (s *Snapshot) DeleteImportantDate(id EntryID) (ImportantDate, error) {
	for i, e := range s.ImportantDates {
		if e.ID != id {
			continue
		}
		s.ImportantDates = append(s.ImportantDates[:i], s.ImportantDates[i+1:]...)
		if date, err := time.Parse(dateutil.ISODate, e.Date); err == nil {
			s.RefreshAutoNote(date)
		}
		return e, nil
	}
	return ImportantDate{}, fmt.Errorf("%w: id %d", ErrEntryNotFound, id)
}

// RemoveEntries deletes every entry stored on date that remove selects and
// reports how many were removed
func (s *Snapshot) RemoveEntries(date time.Time, remove func(ImportantDate) bool) int {
	key := dateutil.FormatDate(date)
	kept := s.ImportantDates[:0]
	removed := 0
	for _, e := range s.ImportantDates {
		if e.Date == key && remove(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.ImportantDates = kept
	return removed
}

// RefreshAutoNote rebuilds the derived note of date from the non-vacation
// entries stored on exactly that date. User and fixed notes are left alone.
func (s *Snapshot) RefreshAutoNote(date time.Time) {
	key := dateutil.FormatDate(date)

	var labels []string
	for _, e := range s.ImportantDates {
		if e.Date == key && e.Category != CategoryVacation {
			labels = append(labels, e.Label())
		}
	}

	current, exists := s.Notes[key]
	if exists && current.Kind != NoteAuto {
		return
	}

	if len(labels) == 0 {
		if exists {
			delete(s.Notes, key)
		}
		return
	}
	s.Notes[key] = Note{Kind: NoteAuto, Text: strings.Join(labels, ", ")}
}

// SetNote stores text as a user note. Empty text deletes the note unless it
// is the fixed one, which is kept as is.
func (s *Snapshot) SetNote(date time.Time, text string) {
	key := dateutil.FormatDate(date)
	text = strings.TrimSpace(text)

	if text == "" {
		if current, ok := s.Notes[key]; ok && current.Kind == NoteFixed {
			return
		}
		delete(s.Notes, key)
		return
	}
	s.Notes[key] = Note{Kind: NoteUser, Text: text}
}

// DeleteNote removes the note on date. The fixed note cannot be deleted.
func (s *Snapshot) DeleteNote(date time.Time) error {
	key := dateutil.FormatDate(date)
	if current, ok := s.Notes[key]; ok && current.Kind == NoteFixed {
		return fmt.Errorf("%w: %s", ErrPermanentNote, key)
	}
	delete(s.Notes, key)
	return nil
}

// EnsureRepentanceNote puts the fixed Repentance Day note on its date in year
// when that date has no note or an empty one. Reports whether it wrote.
func (s *Snapshot) EnsureRepentanceNote(year int) bool {
	key := dateutil.FormatDate(holiday.RepentanceDay(year))
	if current, ok := s.Notes[key]; ok && strings.TrimSpace(current.Text) != "" {
		return false
	}
	s.Notes[key] = Note{Kind: NoteFixed, Text: RepentanceNoteText()}
	return true
}

// ImportLegacyNotes merges plain string notes into the snapshot
func (s *Snapshot) ImportLegacyNotes(notes map[string]string) {
	for key, text := range notes {
		s.Notes[key] = ParseLegacyNote(text)
	}
}

func sortedDates[V any](m map[string]V) []time.Time {
	dates := make([]time.Time, 0, len(m))
	for key := range m {
		d, err := time.Parse(dateutil.ISODate, key)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
