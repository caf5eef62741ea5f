// Package planner is the single entry point used by the CLI and the HTTP
// server. Every operation loads a snapshot from the store, runs the engine on
// it and, for mutations, saves the snapshot back.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/calendar"
	"github.com/username/shift-calendar/internal/config"
	"github.com/username/shift-calendar/internal/holiday"
	"github.com/username/shift-calendar/internal/shift"
	"github.com/username/shift-calendar/internal/store"
	"github.com/username/shift-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	keyProfile = "profile"
	keyLocale  = "locale"
)

// Manager wires configuration, storage and the calendar engine
type Manager struct {
	config   *config.Config
	store    *store.Store
	holidays *holiday.Calendar
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	rotation *shift.Rotation
}

// NewManager creates a new calendar manager
func NewManager(
	cfg *config.Config,
	st *store.Store,
	holidays *holiday.Calendar,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		config:   cfg,
		store:    st,
		holidays: holidays,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Today returns the current civil date
func (m *Manager) Today() time.Time {
	return dateutil.Civil(m.now())
}

// GetHolidays returns the holiday calendar (for the holidays command)
func (m *Manager) GetHolidays() *holiday.Calendar {
	return m.holidays
}

// activeRotation resolves the rotation once: a stored definition wins over
// the configured one, and an invalid or missing one falls back to the default.
// Callers hold m.mu.
func (m *Manager) activeRotation(ctx context.Context) (*shift.Rotation, error) {
	if m.rotation != nil {
		return m.rotation, nil
	}

	def, err := m.store.LoadRotation(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rotation: %w", err)
	}
	if def == nil {
		def, err = m.config.Rotation.Definition()
		var tokenErr *shift.MalformedTokenError
		if errors.As(err, &tokenErr) {
			m.logger.Warn("Configured rotation contains unknown shift tokens",
				zap.Strings("tokens", tokenErr.Tokens))
		} else if err != nil {
			return nil, fmt.Errorf("failed to read configured rotation: %w", err)
		}
	}

	m.rotation = shift.Active(def, m.logger)
	m.logger.Debug("Rotation resolved",
		zap.String("sequence", shift.FormatSequence(m.rotation.Definition().Sequence)),
		zap.Int("length", m.rotation.Len()))
	return m.rotation, nil
}

// engine is the state every read needs: rotation, classifier, accountant and
// the current snapshot
type engine struct {
	rotation   *shift.Rotation
	classifier *calendar.Classifier
	accountant *calendar.Accountant
	snap       *annotation.Snapshot
	today      time.Time
}

// load builds the engine under m.mu
func (m *Manager) load(ctx context.Context) (*engine, error) {
	r, err := m.activeRotation(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := m.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &engine{
		rotation:   r,
		classifier: calendar.NewClassifier(r, m.holidays),
		accountant: calendar.NewAccountant(r, m.holidays),
		snap:       snap,
		today:      m.Today(),
	}, nil
}

// view runs fn on a freshly loaded engine without saving
func (m *Manager) view(ctx context.Context, fn func(e *engine) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.load(ctx)
	if err != nil {
		return err
	}
	return fn(e)
}

// update runs fn and saves the snapshot when fn succeeds
func (m *Manager) update(ctx context.Context, fn func(e *engine) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(e); err != nil {
		return err
	}
	if err := m.store.SaveSnapshot(ctx, e.snap); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Rotation returns the active rotation
func (m *Manager) Rotation(ctx context.Context) (*shift.Rotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeRotation(ctx)
}

// SetRotation validates and stores a new rotation definition
func (m *Manager) SetRotation(ctx context.Context, def shift.Definition) (*shift.Rotation, error) {
	r, err := shift.NewRotation(def)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SaveRotation(ctx, r.Definition()); err != nil {
		return nil, err
	}
	m.rotation = r

	m.logger.Info("Rotation updated",
		zap.String("sequence", shift.FormatSequence(def.Sequence)),
		zap.String("reference_date", dateutil.FormatDate(def.ReferenceDate)),
		zap.String("reference_shift", string(def.ReferenceShift)))
	return r, nil
}

// ApplyPreset stores the named preset as the rotation
func (m *Manager) ApplyPreset(ctx context.Context, name string) (*shift.Rotation, error) {
	p, err := shift.LookupPreset(name)
	if err != nil {
		return nil, err
	}
	return m.SetRotation(ctx, p.Definition)
}

// Shift resolves the shift kind of date
func (m *Manager) Shift(ctx context.Context, date time.Time) (shift.Kind, error) {
	r, err := m.Rotation(ctx)
	if err != nil {
		return "", err
	}
	return r.Resolve(date), nil
}

// Day classifies a single date
func (m *Manager) Day(ctx context.Context, date time.Time) (calendar.DayClassification, error) {
	var day calendar.DayClassification
	err := m.view(ctx, func(e *engine) error {
		day = e.classifier.Classify(date, e.snap, e.today)
		return nil
	})
	return day, err
}

// Month builds the month view. The Repentance Day note of the year is
// created on first use and saved.
func (m *Manager) Month(ctx context.Context, year int, month time.Month) (calendar.MonthView, error) {
	if month < time.January || month > time.December {
		return calendar.MonthView{}, fmt.Errorf("invalid month %d", month)
	}

	var view calendar.MonthView
	err := m.withRepentanceNote(ctx, year, func(e *engine) {
		view = e.classifier.Month(year, month, e.snap, e.today)
	})
	return view, err
}

// Year builds all twelve month views
func (m *Manager) Year(ctx context.Context, year int) ([]calendar.MonthView, error) {
	var views []calendar.MonthView
	err := m.withRepentanceNote(ctx, year, func(e *engine) {
		views = e.classifier.Year(year, e.snap, e.today)
	})
	return views, err
}

func (m *Manager) withRepentanceNote(ctx context.Context, year int, fn func(e *engine)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.load(ctx)
	if err != nil {
		return err
	}
	if e.snap.EnsureRepentanceNote(year) {
		if err := m.store.SaveSnapshot(ctx, e.snap); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		m.logger.Info("Repentance Day note added", zap.Int("year", year))
	}
	fn(e)
	return nil
}

// Holidays returns the holidays of year in date order
func (m *Manager) Holidays(year int) []holiday.Record {
	return m.holidays.Year(year).Records()
}

// Audit counts chargeable days in [from, to] with the per-day breakdown
func (m *Manager) Audit(ctx context.Context, from, to time.Time) (*calendar.Audit, error) {
	profile, err := m.Profile(ctx)
	if err != nil {
		return nil, err
	}

	var audit *calendar.Audit
	err = m.view(ctx, func(e *engine) error {
		a, err := e.accountant.Audit(from, to, profile.Policy())
		audit = a
		return err
	})
	return audit, err
}

// ChargeableDays counts chargeable days in [from, to]
func (m *Manager) ChargeableDays(ctx context.Context, from, to time.Time) (float64, error) {
	audit, err := m.Audit(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return audit.Total, nil
}

// Statistics returns the shift and absence counts of year
func (m *Manager) Statistics(ctx context.Context, year int) (calendar.Statistics, error) {
	var stats calendar.Statistics
	err := m.view(ctx, func(e *engine) error {
		stats = e.classifier.YearStatistics(year, e.snap)
		return nil
	})
	return stats, err
}
