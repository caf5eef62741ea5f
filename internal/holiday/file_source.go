package holiday

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/username/shift-calendar/internal/locale"
	"github.com/username/shift-calendar/pkg/dateutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileSource reads extra regional holidays from a local file.
//
// Text format, one holiday per line:
//
//	# comment
//	2030-08-08 peaceFestival Augsburger Friedensfest
//	*-11-11 stMartin Sankt Martin
//
// A "*" year repeats the day every year. Files ending in .yaml or .yml use
//
//	holidays:
//	  - date: "*-11-11"
//	    key: stMartin
//	    names: {de: Sankt Martin, en: St. Martin's Day}
type FileSource struct {
	filePath  string
	logger    *zap.Logger
	mu        sync.RWMutex
	dated     map[int][]Record // year -> records
	recurring []recurringRecord
}

type recurringRecord struct {
	month time.Month
	day   int
	key   string
	names map[string]string
}

type yamlFile struct {
	Holidays []yamlHoliday `yaml:"holidays"`
}

type yamlHoliday struct {
	Date  string            `yaml:"date"`
	Key   string            `yaml:"key"`
	Name  string            `yaml:"name"`
	Names map[string]string `yaml:"names"`
}

// NewFileSource creates a new FileSource instance. Call Load before use.
func NewFileSource(filePath string, logger *zap.Logger) *FileSource {
	return &FileSource{
		filePath: filePath,
		logger:   logger,
		dated:    make(map[int][]Record),
	}
}

// Load loads holiday data from file, replacing anything loaded before
func (fs *FileSource) Load() error {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		return fmt.Errorf("failed to open holiday file: %w", err)
	}

	var entries []yamlHoliday
	switch strings.ToLower(filepath.Ext(fs.filePath)) {
	case ".yaml", ".yml":
		var doc yamlFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse holiday file: %w", err)
		}
		entries = doc.Holidays
	default:
		entries, err = fs.parseText(string(data))
		if err != nil {
			return err
		}
	}

	dated := make(map[int][]Record)
	var recurring []recurringRecord
	for _, e := range entries {
		if e.Key == "" {
			fs.logger.Warn("Holiday without key skipped", zap.String("date", e.Date))
			continue
		}
		names := e.Names
		if len(names) == 0 {
			names = map[string]string{locale.Default: e.Name}
		}

		if rest, ok := strings.CutPrefix(e.Date, "*-"); ok {
			md, err := time.Parse("01-02", rest)
			if err != nil {
				fs.logger.Warn("Failed to parse recurring date", zap.String("date", e.Date), zap.Error(err))
				continue
			}
			recurring = append(recurring, recurringRecord{month: md.Month(), day: md.Day(), key: e.Key, names: names})
			continue
		}

		date, err := time.Parse(dateutil.ISODate, e.Date)
		if err != nil {
			fs.logger.Warn("Failed to parse date", zap.String("date", e.Date), zap.Error(err))
			continue
		}
		dated[date.Year()] = append(dated[date.Year()], Record{Date: date, Key: e.Key, Names: names})
	}

	fs.mu.Lock()
	fs.dated = dated
	fs.recurring = recurring
	fs.mu.Unlock()

	fs.logger.Info("Holiday file loaded",
		zap.String("file", fs.filePath),
		zap.Int("years", len(dated)),
		zap.Int("recurring", len(recurring)))

	return nil
}

func (fs *FileSource) parseText(content string) ([]yamlHoliday, error) {
	var entries []yamlHoliday

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: DATE key [display name]
		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 2 {
			fs.logger.Warn("Invalid line format", zap.String("line", line))
			continue
		}

		e := yamlHoliday{Date: parts[0], Key: parts[1], Name: parts[1]}
		if len(parts) == 3 {
			e.Name = strings.TrimSpace(parts[2])
		}
		entries = append(entries, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading holiday file: %w", err)
	}
	return entries, nil
}

// ForYear implements Source
func (fs *FileSource) ForYear(year int) []Record {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	records := make([]Record, 0, len(fs.dated[year])+len(fs.recurring))
	records = append(records, fs.dated[year]...)
	for _, r := range fs.recurring {
		// Feb 29 only exists in leap years
		if r.day > dateutil.DaysInMonth(year, r.month) {
			continue
		}
		records = append(records, Record{
			Date:  dateutil.Date(year, r.month, r.day),
			Key:   r.key,
			Names: r.names,
		})
	}
	return dedupe(records)
}
