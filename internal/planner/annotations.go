package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/backup"
	"github.com/username/shift-calendar/internal/leave"
	"github.com/username/shift-calendar/internal/locale"
	"github.com/username/shift-calendar/internal/store"
	"github.com/username/shift-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

// Profile returns the employee profile. A profile in the config file wins
// over one restored from a backup.
func (m *Manager) Profile(ctx context.Context) (leave.Profile, error) {
	if m.config.Profile.Name != "" {
		return m.config.Profile.LeaveProfile(), nil
	}

	var p leave.Profile
	err := m.store.LoadJSON(ctx, keyProfile, &p)
	if errors.Is(err, store.ErrNotFound) {
		return m.config.Profile.LeaveProfile(), nil
	}
	if err != nil {
		return leave.Profile{}, err
	}
	return p, nil
}

// Locale returns the display locale: the stored choice, else the configured one
func (m *Manager) Locale(ctx context.Context) string {
	code, err := m.store.GetSetting(ctx, keyLocale)
	if err == nil && locale.IsSupported(code) {
		return locale.Normalize(code)
	}
	return m.config.Calendar.LocaleCode()
}

// SetLocale stores the display locale
func (m *Manager) SetLocale(ctx context.Context, code string) error {
	if !locale.IsSupported(code) {
		return fmt.Errorf("unsupported locale %q", code)
	}
	return m.store.SetSetting(ctx, keyLocale, locale.Normalize(code))
}

// AddVacation books b on every chargeable day of its range. The weekend
// policy comes from the profile.
func (m *Manager) AddVacation(ctx context.Context, b leave.Booking) (*leave.BookingResult, error) {
	profile, err := m.Profile(ctx)
	if err != nil {
		return nil, err
	}
	b.Policy = profile.Policy()
	if b.Label == "" {
		b.Label = b.Type.Label(m.Locale(ctx))
	}

	var res *leave.BookingResult
	err = m.update(ctx, func(e *engine) error {
		r, err := leave.AddRange(e.snap, e.accountant, b)
		res = r
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Vacation range booked",
		zap.String("from", dateutil.FormatDate(b.Start)),
		zap.String("to", dateutil.FormatDate(b.End)),
		zap.Int("type", int(b.Type)),
		zap.Float64("chargeable", res.Chargeable),
		zap.Int("flagged", res.Flagged),
		zap.Int("entries", res.Entries))
	return res, nil
}

// DeleteVacation clears vacation flags and vacation entries in [from, to]
func (m *Manager) DeleteVacation(ctx context.Context, from, to time.Time) (int, error) {
	var cleared int
	err := m.update(ctx, func(e *engine) error {
		n, err := leave.DeleteRange(e.snap, from, to)
		cleared = n
		return err
	})
	if err != nil {
		return 0, err
	}

	m.logger.Info("Vacation range deleted",
		zap.String("from", dateutil.FormatDate(from)),
		zap.String("to", dateutil.FormatDate(to)),
		zap.Int("cleared", cleared))
	return cleared, nil
}

// SetNote stores a user note; empty text deletes it
func (m *Manager) SetNote(ctx context.Context, date time.Time, text string) error {
	return m.update(ctx, func(e *engine) error {
		e.snap.SetNote(date, text)
		return nil
	})
}

// DeleteNote removes the note of date
func (m *Manager) DeleteNote(ctx context.Context, date time.Time) error {
	return m.update(ctx, func(e *engine) error {
		return e.snap.DeleteNote(date)
	})
}

// ImportantDates lists every important date in id order
func (m *Manager) ImportantDates(ctx context.Context) ([]annotation.ImportantDate, error) {
	var out []annotation.ImportantDate
	err := m.view(ctx, func(e *engine) error {
		out = append(out, e.snap.ImportantDates...)
		return nil
	})
	return out, err
}

// AddImportantDate stores entry under a fresh id and refreshes the auto note
// of its date
func (m *Manager) AddImportantDate(ctx context.Context, entry annotation.ImportantDate) (annotation.ImportantDate, error) {
	date, err := dateutil.ParseDate(entry.Date)
	if err != nil {
		return annotation.ImportantDate{}, err
	}
	entry.Date = dateutil.FormatDate(date)

	var stored annotation.ImportantDate
	err = m.update(ctx, func(e *engine) error {
		stored = e.snap.AddImportantDate(entry)
		e.snap.RefreshAutoNote(date)
		return nil
	})
	return stored, err
}

// DeleteImportantDate removes the entry with id
func (m *Manager) DeleteImportantDate(ctx context.Context, id annotation.EntryID) (annotation.ImportantDate, error) {
	var removed annotation.ImportantDate
	err := m.update(ctx, func(e *engine) error {
		r, err := e.snap.DeleteImportantDate(id)
		removed = r
		return err
	})
	return removed, err
}

// Overview returns the vacation periods per year
func (m *Manager) Overview(ctx context.Context) ([]leave.YearOverview, error) {
	var out []leave.YearOverview
	err := m.view(ctx, func(e *engine) error {
		out = leave.Overview(e.snap)
		return nil
	})
	return out, err
}

// NewRequest builds a leave request for the profile
func (m *Manager) NewRequest(ctx context.Context, in leave.RequestInput) (*leave.Request, error) {
	profile, err := m.Profile(ctx)
	if err != nil {
		return nil, err
	}

	var req *leave.Request
	err = m.view(ctx, func(e *engine) error {
		r, err := leave.NewRequest(profile, e.accountant, in, m.now())
		req = r
		return err
	})
	return req, err
}

// ApplyDecision books or removes the range of a decided request
func (m *Manager) ApplyDecision(ctx context.Context, d *leave.Decision) error {
	profile, err := m.Profile(ctx)
	if err != nil {
		return err
	}

	err = m.update(ctx, func(e *engine) error {
		return leave.ApplyDecision(e.snap, e.accountant, d, profile.Policy())
	})
	if err != nil {
		return err
	}

	m.logger.Info("Leave decision applied",
		zap.String("request_id", d.RequestID),
		zap.String("status", string(d.Status)))
	return nil
}

// Backup assembles the full state as a bundle
func (m *Manager) Backup(ctx context.Context) (*backup.Bundle, error) {
	profile, err := m.Profile(ctx)
	if err != nil {
		return nil, err
	}
	code := m.Locale(ctx)

	var b *backup.Bundle
	err = m.view(ctx, func(e *engine) error {
		def := e.rotation.Definition()
		b = backup.New(e.snap, &def, &profile, code, m.now())
		return nil
	})
	return b, err
}

// Restore replaces the stored state with the bundle. Parts the bundle does
// not carry are left unchanged. The snapshot is saved first, so a bundle the
// store rejects changes nothing.
func (m *Manager) Restore(ctx context.Context, b *backup.Bundle) error {
	snap := b.Snapshot()
	if err := m.saveRestored(ctx, snap); err != nil {
		return err
	}

	if b.Rotation != nil {
		if _, err := m.SetRotation(ctx, *b.Rotation); err != nil {
			m.logger.Warn("Backup rotation rejected, keeping current rotation", zap.Error(err))
		}
	}
	if b.Profile != nil {
		if err := m.store.SaveJSON(ctx, keyProfile, b.Profile); err != nil {
			return err
		}
	}
	if b.Locale != "" {
		if err := m.SetLocale(ctx, b.Locale); err != nil {
			m.logger.Warn("Backup locale rejected", zap.String("locale", b.Locale))
		}
	}

	m.logger.Info("Backup restored",
		zap.Int("vacations", len(snap.Vacations)),
		zap.Int("important_dates", len(snap.ImportantDates)),
		zap.Int("notes", len(snap.Notes)))
	return nil
}

func (m *Manager) saveRestored(ctx context.Context, snap *annotation.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to save restored snapshot: %w", err)
	}
	return nil
}
