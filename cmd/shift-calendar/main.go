package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/username/shift-calendar/internal/config"
	"github.com/username/shift-calendar/internal/holiday"
	"github.com/username/shift-calendar/internal/planner"
	"github.com/username/shift-calendar/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     *zap.Logger
	out        io.Writer = os.Stdout
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shift-calendar",
		Short: "Shift-work calendar",
		Long:  "Resolve shift rotations, holidays and vacation bookings for a shift-work calendar",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger("info") // Fallback to console
				}
			} else if err == nil {
				initLogger(cfg.Log.Level)
			} else {
				initLogger("info")
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	rootCmd.AddCommand(
		shiftCmd(),
		dayCmd(),
		monthCmd(),
		holidaysCmd(),
		daysCmd(),
		statsCmd(),
		overviewCmd(),
		vacationCmd(),
		noteCmd(),
		importantCmd(),
		requestCmd(),
		decideCmd(),
		applyDecisionCmd(),
		rotationCmd(),
		localeCmd(),
		backupCmd(),
		restoreCmd(),
		serveCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is what every command needs once the config is loaded
type app struct {
	cfg     *config.Config
	manager *planner.Manager
}

// withApp loads the config, opens the store and runs fn. The store is
// closed when fn returns.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	manager, st, err := initializeManager(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}()

	return fn(cmd.Context(), &app{cfg: cfg, manager: manager})
}

func initializeManager(cfg *config.Config) (*planner.Manager, *store.Store, error) {
	// Built-in holidays, optionally extended by a regional file
	var source holiday.Source = holiday.Builtin{}
	if cfg.Calendar.HolidayFile != "" {
		fileSource := holiday.NewFileSource(cfg.Calendar.HolidayFile, logger)
		if err := fileSource.Load(); err != nil {
			logger.Warn("Failed to load holiday file, continuing with built-in holidays",
				zap.String("file", cfg.Calendar.HolidayFile),
				zap.Error(err))
		} else {
			source = holiday.NewComposite(holiday.Builtin{}, logger, fileSource)
		}
	}
	holidays := holiday.NewCalendar(source, logger)

	st, err := store.Open(cfg.Storage.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	manager := planner.NewManager(cfg, st, holidays, logger)
	return manager, st, nil
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	// Create core with lumberjack writer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}

func cliPrintf(format string, a ...interface{}) {
	fmt.Fprintf(out, format, a...)
}

func cliPrintln(a ...interface{}) {
	fmt.Fprintln(out, a...)
}

// printJSON writes v indented, used by every --json flag
func printJSON(v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONFile writes v to path, or to stdout when path is empty or "-"
func writeJSONFile(path string, v interface{}) error {
	if path == "" || path == "-" {
		return printJSON(v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cliPrintf("✅ Written to %s\n", path)
	return nil
}
