package store

import (
	"time"

	"github.com/username/shift-calendar/internal/annotation"
)

// VacationDay is one flagged date
type VacationDay struct {
	Date      string    `gorm:"primaryKey;size:10" json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

func (VacationDay) TableName() string { return "vacations" }

// ImportantDate mirrors annotation.ImportantDate
type ImportantDate struct {
	ID           int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Date         string `gorm:"index;size:10" json:"date"`
	Name         string `json:"name"`
	Emoji        string `json:"emoji"`
	Recurring    bool   `json:"recurring"`
	Category     string `gorm:"index;size:16" json:"category"`
	VacationType int    `json:"vacation_type"`
}

func (ImportantDate) TableName() string { return "important_dates" }

func fromEntry(e annotation.ImportantDate) ImportantDate {
	return ImportantDate{
		ID:           int64(e.ID),
		Date:         e.Date,
		Name:         e.Name,
		Emoji:        e.Emoji,
		Recurring:    e.Recurring,
		Category:     string(e.Category),
		VacationType: int(e.VacationType),
	}
}

func (m ImportantDate) entry() annotation.ImportantDate {
	return annotation.ImportantDate{
		ID:           annotation.EntryID(m.ID),
		Date:         m.Date,
		Name:         m.Name,
		Emoji:        m.Emoji,
		Recurring:    m.Recurring,
		Category:     annotation.Category(m.Category),
		VacationType: annotation.TypeCode(m.VacationType),
	}
}

// Note is the note of one date
type Note struct {
	Date      string    `gorm:"primaryKey;size:10" json:"date"`
	Kind      string    `gorm:"size:8" json:"kind"`
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Note) TableName() string { return "notes" }

// Setting is a key/value row for rotation, profile and counters
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }
