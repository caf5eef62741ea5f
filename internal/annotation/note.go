package annotation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/username/shift-calendar/internal/locale"
)

// NoteKind tells who wrote a note
type NoteKind string

const (
	// NoteUser is typed by the user and always wins over derived text
	NoteUser NoteKind = "user"
	// NoteAuto is rebuilt from the important dates of its day
	NoteAuto NoteKind = "auto"
	// NoteFixed is injected by the calendar itself and never removed implicitly
	NoteFixed NoteKind = "fixed"
)

// legacyAutoPrefix marked derived notes when notes were plain strings
const legacyAutoPrefix = "[auto] "

// Note is the text attached to a date
type Note struct {
	Kind NoteKind `json:"kind"`
	Text string   `json:"text"`
}

// UnmarshalJSON accepts both the tagged form and a legacy plain string
func (n *Note) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = ParseLegacyNote(s)
		return nil
	}

	type plain Note
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	switch p.Kind {
	case NoteUser, NoteAuto, NoteFixed:
	case "":
		p.Kind = NoteUser
	default:
		return fmt.Errorf("unknown note kind %q", p.Kind)
	}
	*n = Note(p)
	return nil
}

// ParseLegacyNote converts a plain string note to its tagged form
func ParseLegacyNote(text string) Note {
	if rest, ok := strings.CutPrefix(text, legacyAutoPrefix); ok {
		return Note{Kind: NoteAuto, Text: rest}
	}
	if text == RepentanceNoteText() {
		return Note{Kind: NoteFixed, Text: text}
	}
	return Note{Kind: NoteUser, Text: text}
}

// LegacyString is the inverse of ParseLegacyNote
func (n Note) LegacyString() string {
	if n.Kind == NoteAuto {
		return legacyAutoPrefix + n.Text
	}
	return n.Text
}

// RepentanceNoteText is the stored text of the fixed Repentance Day note
func RepentanceNoteText() string {
	return locale.Label(locale.KeyRepentanceDay, locale.Default)
}
