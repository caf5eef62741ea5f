// Package store persists annotation snapshots and settings in SQLite.
// The engine never calls it; the planner loads a snapshot, works on it and
// saves it back at defined checkpoints.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/shift"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const (
	keyRotation = "rotation"
	keyNextID   = "next_id"
	batchSize   = 200
)

// ErrNotFound is returned for a missing setting
var ErrNotFound = errors.New("setting not found")

// Store is the SQLite-backed persistence adapter
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (and creates) the database at path
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return New(db, logger)
}

// New wraps an open connection and migrates the schema
func New(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(&VacationDay{}, &ImportantDate{}, &Note{}, &Setting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LoadSnapshot reads every override into a fresh snapshot
func (s *Store) LoadSnapshot(ctx context.Context) (*annotation.Snapshot, error) {
	db := s.db.WithContext(ctx)
	snap := annotation.NewSnapshot()

	var vacations []VacationDay
	if err := db.Find(&vacations).Error; err != nil {
		return nil, fmt.Errorf("failed to load vacations: %w", err)
	}
	for _, v := range vacations {
		snap.Vacations[v.Date] = true
	}

	var entries []ImportantDate
	if err := db.Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load important dates: %w", err)
	}
	for _, e := range entries {
		snap.ImportantDates = append(snap.ImportantDates, e.entry())
	}

	var notes []Note
	if err := db.Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	for _, n := range notes {
		snap.Notes[n.Date] = annotation.Note{Kind: annotation.NoteKind(n.Kind), Text: n.Text}
	}

	if v, err := s.GetSetting(ctx, keyNextID); err == nil {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			snap.NextID = annotation.EntryID(id)
		}
	}
	snap.Normalize()

	s.logger.Debug("Snapshot loaded",
		zap.Int("vacations", len(snap.Vacations)),
		zap.Int("important_dates", len(snap.ImportantDates)),
		zap.Int("notes", len(snap.Notes)))

	return snap, nil
}

// SaveSnapshot replaces the stored overrides with snap in one transaction
func (s *Store) SaveSnapshot(ctx context.Context, snap *annotation.Snapshot) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"vacations", "important_dates", "notes"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		vacations := make([]VacationDay, 0, len(snap.Vacations))
		for date, on := range snap.Vacations {
			if on {
				vacations = append(vacations, VacationDay{Date: date})
			}
		}
		if len(vacations) > 0 {
			if err := tx.CreateInBatches(&vacations, batchSize).Error; err != nil {
				return fmt.Errorf("failed to save vacations: %w", err)
			}
		}

		entries := make([]ImportantDate, 0, len(snap.ImportantDates))
		for _, e := range snap.ImportantDates {
			entries = append(entries, fromEntry(e))
		}
		if len(entries) > 0 {
			if err := tx.CreateInBatches(&entries, batchSize).Error; err != nil {
				return fmt.Errorf("failed to save important dates: %w", err)
			}
		}

		notes := make([]Note, 0, len(snap.Notes))
		for date, n := range snap.Notes {
			notes = append(notes, Note{Date: date, Kind: string(n.Kind), Text: n.Text})
		}
		if len(notes) > 0 {
			if err := tx.CreateInBatches(&notes, batchSize).Error; err != nil {
				return fmt.Errorf("failed to save notes: %w", err)
			}
		}

		return upsertSetting(tx, keyNextID, strconv.FormatInt(int64(snap.NextID), 10))
	})
	if err != nil {
		return err
	}

	s.logger.Debug("Snapshot saved",
		zap.Int("vacations", len(snap.Vacations)),
		zap.Int("important_dates", len(snap.ImportantDates)),
		zap.Int("notes", len(snap.Notes)))
	return nil
}

// GetSetting returns the value stored under key
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var row Setting
	err := s.db.WithContext(ctx).Where(&Setting{Key: key}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return row.Value, nil
}

// SetSetting stores value under key
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	return upsertSetting(s.db.WithContext(ctx), key, value)
}

func upsertSetting(db *gorm.DB, key, value string) error {
	row := Setting{Key: key, Value: value}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// LoadRotation returns the stored rotation definition, nil when none was saved.
// Tokens that no longer parse are dropped with a warning; validation is left
// to shift.Active.
func (s *Store) LoadRotation(ctx context.Context) (*shift.Definition, error) {
	raw, err := s.GetSetting(ctx, keyRotation)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var def shift.Definition
	err = json.Unmarshal([]byte(raw), &def)
	var tokenErr *shift.MalformedTokenError
	switch {
	case errors.As(err, &tokenErr):
		s.logger.Warn("Stored rotation contains unknown shift tokens",
			zap.Strings("tokens", tokenErr.Tokens))
	case err != nil:
		return nil, fmt.Errorf("failed to decode stored rotation: %w", err)
	}
	return &def, nil
}

// SaveRotation replaces the stored rotation definition
func (s *Store) SaveRotation(ctx context.Context, def shift.Definition) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode rotation: %w", err)
	}
	return s.SetSetting(ctx, keyRotation, string(raw))
}

// LoadJSON decodes the setting under key into v. Returns ErrNotFound when unset.
func (s *Store) LoadJSON(ctx context.Context, key string, v any) error {
	raw, err := s.GetSetting(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return nil
}

// SaveJSON encodes v under key
func (s *Store) SaveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}
	return s.SetSetting(ctx, key, string(raw))
}
