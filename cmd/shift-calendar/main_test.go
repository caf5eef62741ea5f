package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// setupCLI points the commands at a fresh database and captures their output
func setupCLI(t *testing.T) *bytes.Buffer {
	t.Helper()

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("storage:\n  database: %s\ncalendar:\n  locale: de\n", filepath.Join(dir, "calendar.db"))
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	buf := &bytes.Buffer{}
	configPath = cfgFile
	logger = zap.NewNop()
	out = buf
	t.Cleanup(func() {
		configPath = ""
		out = os.Stdout
	})
	return buf
}

func run(t *testing.T, buf *bytes.Buffer, cmd *cobra.Command, args ...string) string {
	t.Helper()
	buf.Reset()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%s %v: %v", cmd.Name(), args, err)
	}
	return buf.String()
}

func TestShiftCommand(t *testing.T) {
	buf := setupCLI(t)

	got := run(t, buf, shiftCmd(), "2030-01-07")
	if want := "2030-01-07 NIGHT (Nacht)"; !strings.Contains(got, want) {
		t.Errorf("shift output = %q, want %q", got, want)
	}

	got = run(t, buf, shiftCmd(), "14.01.2030")
	if want := "2030-01-14 LATE (Spät)"; !strings.Contains(got, want) {
		t.Errorf("shift output = %q, want %q", got, want)
	}
}

func TestVacationCommands(t *testing.T) {
	buf := setupCLI(t)

	got := run(t, buf, vacationCmd(), "add", "2030-01-07", "2030-01-13", "--type", "1")
	if !strings.Contains(got, "5 chargeable day(s)") {
		t.Errorf("vacation add output = %q", got)
	}

	got = run(t, buf, dayCmd(), "2030-01-08", "--json")
	if !strings.Contains(got, `"kind": "VACATION"`) {
		t.Errorf("day output = %q, want VACATION kind", got)
	}

	got = run(t, buf, overviewCmd(), "--json")
	if !strings.Contains(got, `"from": "2030-01-07"`) || !strings.Contains(got, `"to": "2030-01-11"`) {
		t.Errorf("overview output = %q", got)
	}

	got = run(t, buf, vacationCmd(), "delete", "2030-01-07", "2030-01-13")
	if !strings.Contains(got, "Cleared 5 day(s)") {
		t.Errorf("vacation delete output = %q", got)
	}
}

func TestDaysCommand(t *testing.T) {
	buf := setupCLI(t)

	got := run(t, buf, daysCmd(), "2030-12-22", "2030-12-31")
	if !strings.Contains(got, "Chargeable days 2030-12-22 .. 2030-12-31:") {
		t.Errorf("days output = %q", got)
	}

	got = run(t, buf, daysCmd(), "2030-01-07", "2030-01-13", "--audit")
	if !strings.Contains(got, "2030-01-12 | SATURDAY") {
		t.Errorf("audit output = %q, want Saturday line", got)
	}
	if !strings.Contains(got, ": 5\n") {
		t.Errorf("audit output = %q, want total 5", got)
	}
}

func TestRotationCommands(t *testing.T) {
	buf := setupCLI(t)

	run(t, buf, rotationCmd(), "preset", "vollkonti_8")
	got := run(t, buf, rotationCmd(), "show")
	if !strings.Contains(got, "EARLY,EARLY,LATE,LATE,NIGHT,NIGHT,FREE,FREE") {
		t.Errorf("rotation show = %q", got)
	}

	run(t, buf, rotationCmd(), "set", "F,S,N,Frei", "--reference-date", "2030-01-01", "--reference-shift", "Früh")
	got = run(t, buf, shiftCmd(), "2030-01-04")
	if !strings.Contains(got, "FREE") {
		t.Errorf("shift after set = %q, want FREE", got)
	}

	got = run(t, buf, rotationCmd(), "presets")
	if strings.Count(got, "\n") != 6 {
		t.Errorf("presets output has %d lines, want 6", strings.Count(got, "\n"))
	}
}

func TestImportantCommands(t *testing.T) {
	buf := setupCLI(t)

	got := run(t, buf, importantCmd(), "add", "2030-03-01", "Zahnarzt", "--emoji", "🦷")
	if !strings.Contains(got, "Added #1 on 2030-03-01") {
		t.Errorf("important add = %q", got)
	}

	got = run(t, buf, importantCmd(), "list")
	if !strings.Contains(got, "#1  2030-03-01  🦷 Zahnarzt") {
		t.Errorf("important list = %q", got)
	}

	run(t, buf, importantCmd(), "delete", "1")
	got = run(t, buf, importantCmd(), "list")
	if got != "" {
		t.Errorf("important list after delete = %q, want empty", got)
	}
}

func TestDecideRequiresOneFlag(t *testing.T) {
	setupCLI(t)

	cmd := decideCmd()
	cmd.SetArgs([]string{"request.json"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Error("decide without --approve or --reject should fail")
	}
}

func TestBackupRestoreCommands(t *testing.T) {
	buf := setupCLI(t)
	file := filepath.Join(t.TempDir(), "backup.json")

	run(t, buf, noteCmd(), "set", "2030-05-05", "Geburtstag", "Oma")
	run(t, buf, backupCmd(), file)

	// second database
	buf = setupCLI(t)
	got := run(t, buf, restoreCmd(), file)
	if !strings.Contains(got, "1 note(s)") {
		t.Errorf("restore output = %q", got)
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"2030", 2030, false},
		{"0", 0, true},
		{"abc", 0, true},
		{"10000", 0, true},
	}

	for _, tt := range tests {
		got, err := parseYear(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseYear(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseYear(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
