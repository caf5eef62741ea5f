// Package backup writes and reads the JSON bundle that carries every user
// setting between installations.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/leave"
	"github.com/username/shift-calendar/internal/shift"
	"go.uber.org/zap"
)

// Version is the bundle format written by Export
const Version = 1

// ErrUnknownFormat is returned when a file is neither a bundle nor a legacy dump
var ErrUnknownFormat = errors.New("unrecognised backup format")

// Bundle is the complete exported state
type Bundle struct {
	Version        int                        `json:"version"`
	ExportedAt     time.Time                  `json:"exportedAt"`
	Locale         string                     `json:"locale,omitempty"`
	Rotation       *shift.Definition          `json:"rotation,omitempty"`
	Profile        *leave.Profile             `json:"profile,omitempty"`
	Vacations      map[string]bool            `json:"vacations"`
	ImportantDates []annotation.ImportantDate `json:"importantDates"`
	Notes          map[string]annotation.Note `json:"notes"`
	NextID         annotation.EntryID         `json:"nextId,omitempty"`
}

// New assembles a bundle from the current state
func New(snap *annotation.Snapshot, rotation *shift.Definition, profile *leave.Profile, localeCode string, now time.Time) *Bundle {
	c := snap.Clone()
	return &Bundle{
		Version:        Version,
		ExportedAt:     now.UTC(),
		Locale:         localeCode,
		Rotation:       rotation,
		Profile:        profile,
		Vacations:      c.Vacations,
		ImportantDates: c.ImportantDates,
		Notes:          c.Notes,
		NextID:         c.NextID,
	}
}

// Snapshot returns the annotation part of the bundle as a normalised snapshot
func (b *Bundle) Snapshot() *annotation.Snapshot {
	snap := &annotation.Snapshot{
		Vacations:      make(map[string]bool, len(b.Vacations)),
		ImportantDates: append([]annotation.ImportantDate(nil), b.ImportantDates...),
		Notes:          make(map[string]annotation.Note, len(b.Notes)),
		NextID:         b.NextID,
	}
	for k, v := range b.Vacations {
		if v {
			snap.Vacations[k] = true
		}
	}
	for k, v := range b.Notes {
		snap.Notes[k] = v
	}
	snap.Normalize()
	return snap
}

// Export encodes the bundle as indented JSON
func Export(b *Bundle) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}
	return data, nil
}

type bundleWire struct {
	Version        int                        `json:"version"`
	ExportedAt     time.Time                  `json:"exportedAt"`
	Locale         string                     `json:"locale"`
	Rotation       json.RawMessage            `json:"rotation"`
	Profile        *leave.Profile             `json:"profile"`
	Vacations      map[string]bool            `json:"vacations"`
	ImportantDates []legacyEntry              `json:"importantDates"`
	Notes          map[string]annotation.Note `json:"notes"`
	NextID         annotation.EntryID         `json:"nextId"`
}

// Import decodes a bundle. Comments and trailing commas are accepted, and so
// is the flat key/value dump written by the browser version of the calendar,
// whose values are JSON documents stored as strings.
func Import(data []byte, logger *zap.Logger) (*Bundle, error) {
	clean := jsonc.ToJSON(data)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(clean, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse backup: %w", err)
	}

	if _, ok := fields["version"]; ok {
		return importBundle(clean, logger)
	}
	for _, key := range legacyKeys {
		if _, ok := fields[key]; ok {
			return importLegacy(fields, logger)
		}
	}
	return nil, ErrUnknownFormat
}

func importBundle(clean []byte, logger *zap.Logger) (*Bundle, error) {
	var wire bundleWire
	if err := json.Unmarshal(clean, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse backup: %w", err)
	}
	if wire.Version > Version {
		return nil, fmt.Errorf("backup version %d is newer than supported version %d", wire.Version, Version)
	}

	b := &Bundle{
		Version:        wire.Version,
		ExportedAt:     wire.ExportedAt,
		Locale:         wire.Locale,
		Profile:        wire.Profile,
		Vacations:      wire.Vacations,
		ImportantDates: entries(wire.ImportantDates),
		Notes:          wire.Notes,
		NextID:         wire.NextID,
	}

	rotation, err := decodeRotation(wire.Rotation, logger)
	if err != nil {
		return nil, err
	}
	b.Rotation = rotation
	b.normalizeIDs(logger)

	logger.Info("Backup parsed",
		zap.Int("version", b.Version),
		zap.Int("vacations", len(b.Vacations)),
		zap.Int("important_dates", len(b.ImportantDates)),
		zap.Int("notes", len(b.Notes)))
	return b, nil
}

// decodeRotation keeps a rotation with unknown tokens; the bad tokens are
// only logged so an old backup still restores
func decodeRotation(raw json.RawMessage, logger *zap.Logger) (*shift.Definition, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var def shift.Definition
	err := json.Unmarshal(raw, &def)
	var tokenErr *shift.MalformedTokenError
	switch {
	case errors.As(err, &tokenErr):
		logger.Warn("Backup rotation contains unknown shift tokens",
			zap.Strings("tokens", tokenErr.Tokens))
	case err != nil:
		return nil, fmt.Errorf("failed to parse rotation: %w", err)
	}
	return &def, nil
}

// normalizeIDs gives every entry a unique id and moves NextID past them
func (b *Bundle) normalizeIDs(logger *zap.Logger) {
	snap := &annotation.Snapshot{ImportantDates: b.ImportantDates, NextID: b.NextID}
	if n := snap.Normalize(); n > 0 {
		logger.Warn("Backup contains duplicate important date ids, assigned new ids",
			zap.Int("entries", n))
	}
	b.ImportantDates = snap.ImportantDates
	b.NextID = snap.NextID
}

// legacyEntry accepts the "type" field old backups used for the category
type legacyEntry struct {
	annotation.ImportantDate
	Type string `json:"type"`
}

func entries(in []legacyEntry) []annotation.ImportantDate {
	out := make([]annotation.ImportantDate, 0, len(in))
	for _, e := range in {
		entry := e.ImportantDate
		if entry.Category == "" && e.Type != "" {
			entry.Category = annotation.Category(strings.ToLower(e.Type))
		}
		out = append(out, entry)
	}
	return out
}

// File stores bundles on disk
type File struct {
	path   string
	logger *zap.Logger
}

// NewFile creates a bundle file handle
func NewFile(path string, logger *zap.Logger) *File {
	return &File{path: path, logger: logger}
}

// Load reads and decodes the bundle file
func (f *File) Load() (*Bundle, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}
	return Import(data, f.logger)
}

// Save writes b to the bundle file
func (f *File) Save(b *Bundle) error {
	data, err := Export(b)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	f.logger.Info("Backup written",
		zap.String("path", f.path),
		zap.Int("vacations", len(b.Vacations)),
		zap.Int("important_dates", len(b.ImportantDates)),
		zap.Int("notes", len(b.Notes)))
	return nil
}
