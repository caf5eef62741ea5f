package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/username/shift-calendar/internal/leave"
	"github.com/username/shift-calendar/internal/locale"
	"github.com/username/shift-calendar/internal/shift"
	"github.com/username/shift-calendar/pkg/dateutil"
)

// Config represents application configuration
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar"`
	Rotation RotationConfig `mapstructure:"rotation"`
	Profile  ProfileConfig  `mapstructure:"profile"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// CalendarConfig represents calendar configuration
type CalendarConfig struct {
	Locale      string `mapstructure:"locale"`
	HolidayFile string `mapstructure:"holiday_file"` // Optional regional holidays (text or YAML)
}

// RotationConfig selects the shift rotation. Either a preset or an explicit
// sequence with its reference anchor.
type RotationConfig struct {
	Preset         string `mapstructure:"preset"`
	Sequence       string `mapstructure:"sequence"`        // e.g. "F,F,S,S,N,N,Frei,Frei"
	ReferenceDate  string `mapstructure:"reference_date"`  // YYYY-MM-DD
	ReferenceShift string `mapstructure:"reference_shift"` // kind or alias
}

// ProfileConfig represents the employee data printed on leave requests
type ProfileConfig struct {
	Name          string `mapstructure:"name"`
	PersonnelID   string `mapstructure:"personnel_id"`
	Department    string `mapstructure:"department"`
	SignatureFile string `mapstructure:"signature_file"`
	CountWeekends bool   `mapstructure:"count_weekends"`
}

// StorageConfig represents state storage configuration
type StorageConfig struct {
	Database string `mapstructure:"database"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Addr            string `mapstructure:"addr"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file. A .env file in the working directory
// is applied to the environment first; a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.shift-calendar")
		v.AddConfigPath("/etc/shift-calendar")
	}

	// Read environment variables (SHIFT_CALENDAR_STORAGE_DATABASE, ...)
	v.SetEnvPrefix("shift_calendar")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configPath != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("calendar.locale", locale.Default)
	v.SetDefault("storage.database", "shift-calendar.db")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate Calendar config
	if c.Calendar.Locale != "" && !locale.IsSupported(c.Calendar.Locale) {
		return fmt.Errorf("calendar.locale must be one of %v, got '%s'", locale.Supported, c.Calendar.Locale)
	}

	// Validate Rotation config
	r := c.Rotation
	if r.Preset != "" {
		if r.Sequence != "" {
			return fmt.Errorf("rotation.preset and rotation.sequence are mutually exclusive")
		}
		if _, err := shift.LookupPreset(r.Preset); err != nil {
			return fmt.Errorf("rotation.preset: %w", err)
		}
	}
	if r.Sequence != "" {
		if r.ReferenceDate == "" {
			return fmt.Errorf("rotation.reference_date is required with rotation.sequence")
		}
		if r.ReferenceShift == "" {
			return fmt.Errorf("rotation.reference_shift is required with rotation.sequence")
		}
	}
	if r.ReferenceDate != "" {
		if _, err := dateutil.ParseDate(r.ReferenceDate); err != nil {
			return fmt.Errorf("rotation.reference_date: %w", err)
		}
	}

	// Validate Storage config
	if c.Storage.Database == "" {
		return fmt.Errorf("storage.database is required")
	}

	return nil
}

// LocaleCode returns the normalised display locale
func (c *CalendarConfig) LocaleCode() string {
	if c.Locale == "" {
		return locale.Default
	}
	return locale.Normalize(c.Locale)
}

// Definition returns the configured rotation, nil when none is configured.
// Unknown sequence tokens come back as a *shift.MalformedTokenError alongside
// the cleaned definition.
func (c *RotationConfig) Definition() (*shift.Definition, error) {
	if c.Preset != "" {
		p, err := shift.LookupPreset(c.Preset)
		if err != nil {
			return nil, err
		}
		def := p.Definition
		return &def, nil
	}
	if c.Sequence == "" {
		return nil, nil
	}

	refDate, err := dateutil.ParseDate(c.ReferenceDate)
	if err != nil {
		return nil, fmt.Errorf("rotation.reference_date: %w", err)
	}
	ref, err := shift.ParseKind(c.ReferenceShift)
	if err != nil {
		return nil, fmt.Errorf("rotation.reference_shift: %w", err)
	}

	seq, err := shift.ParseSequence(c.Sequence)
	return &shift.Definition{Sequence: seq, ReferenceDate: refDate, ReferenceShift: ref}, err
}

// LeaveProfile converts the profile section
func (c *ProfileConfig) LeaveProfile() leave.Profile {
	return leave.Profile{
		Name:          c.Name,
		PersonnelID:   c.PersonnelID,
		Department:    c.Department,
		SignatureFile: c.SignatureFile,
		CountWeekends: c.CountWeekends,
	}
}

// GetShutdownTimeout returns the graceful shutdown timeout
func (c *ServerConfig) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == "" {
		return 10 * time.Second
	}
	duration, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return duration
}

// GetAddr returns the listen address
func (c *ServerConfig) GetAddr() string {
	if c.Addr == "" {
		return ":8080"
	}
	return c.Addr
}
