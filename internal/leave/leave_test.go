package leave

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/calendar"
	"github.com/username/shift-calendar/internal/holiday"
	"github.com/username/shift-calendar/internal/shift"
	"github.com/username/shift-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

func standardAccountant(t *testing.T) *calendar.Accountant {
	t.Helper()
	p, err := shift.LookupPreset("standard")
	if err != nil {
		t.Fatalf("LookupPreset() error = %v", err)
	}
	r, err := shift.NewRotation(p.Definition)
	if err != nil {
		t.Fatalf("NewRotation() error = %v", err)
	}
	return calendar.NewAccountant(r, holiday.NewCalendar(holiday.Builtin{}, zap.NewNop()))
}

func day(s string) time.Time {
	return dateutil.MustParseDate(s)
}

func TestVacationType(t *testing.T) {
	tests := []struct {
		typ        VacationType
		flag       bool
		reason     bool
		category   annotation.Category
		germanName string
	}{
		{TariffLeave, true, false, annotation.CategoryVacation, "Tarifurlaub"},
		{FlexTime, true, false, annotation.CategoryVacation, "Gleitzeit"},
		{BusinessTrip, false, false, annotation.CategoryNote, "Dienstreise"},
		{Training, false, false, annotation.CategoryNote, "Schulung"},
		{TariffExemption, true, true, annotation.CategoryVacation, "Tarifliche Freistellung"},
		{UnpaidLeave, true, true, annotation.CategoryVacation, "Unbezahlter Urlaub"},
		{Sick, false, false, annotation.CategoryNote, "Krank"},
	}

	for _, tt := range tests {
		if got := tt.typ.SetsVacationFlag(); got != tt.flag {
			t.Errorf("%d.SetsVacationFlag() = %v, want %v", tt.typ, got, tt.flag)
		}
		if got := tt.typ.RequiresReason(); got != tt.reason {
			t.Errorf("%d.RequiresReason() = %v, want %v", tt.typ, got, tt.reason)
		}
		if got := tt.typ.Category(); got != tt.category {
			t.Errorf("%d.Category() = %q, want %q", tt.typ, got, tt.category)
		}
		if got := tt.typ.Label("de"); got != tt.germanName {
			t.Errorf("%d.Label(de) = %q, want %q", tt.typ, got, tt.germanName)
		}
	}

	if _, err := ParseVacationType("8"); !errors.Is(err, ErrInvalidType) {
		t.Errorf("ParseVacationType(8) error = %v, want ErrInvalidType", err)
	}

	var fromNumber, fromString VacationType
	if err := json.Unmarshal([]byte(`5`), &fromNumber); err != nil || fromNumber != TariffExemption {
		t.Errorf("Unmarshal(5) = %d, %v", fromNumber, err)
	}
	if err := json.Unmarshal([]byte(`"6"`), &fromString); err != nil || fromString != UnpaidLeave {
		t.Errorf(`Unmarshal("6") = %d, %v`, fromString, err)
	}
}

func TestAddRange_Vacation(t *testing.T) {
	acc := standardAccountant(t)
	snap := annotation.NewSnapshot()

	// Mon 2030-01-07 .. Sun 2030-01-13: five night shifts, then a weekend
	b := Booking{Start: day("2030-01-07"), End: day("2030-01-13"), Type: TariffLeave}
	res, err := AddRange(snap, acc, b)
	if err != nil {
		t.Fatalf("AddRange() error = %v", err)
	}
	if res.Chargeable != 5 || res.Flagged != 5 || res.Entries != 5 {
		t.Errorf("AddRange() = %+v, want 5/5/5", res)
	}
	if snap.IsVacation(day("2030-01-12")) {
		t.Error("weekend day flagged")
	}
	if _, ok := snap.Note(day("2030-01-07")); ok {
		t.Error("vacation entries produced an auto note")
	}

	again, err := AddRange(snap, acc, b)
	if err != nil {
		t.Fatalf("AddRange() again error = %v", err)
	}
	if again.Entries != 0 || len(snap.ImportantDates) != 5 {
		t.Errorf("duplicate entries: %+v, total %d", again, len(snap.ImportantDates))
	}

	cleared, err := DeleteRange(snap, day("2030-01-07"), day("2030-01-13"))
	if err != nil {
		t.Fatalf("DeleteRange() error = %v", err)
	}
	if cleared != 5 || len(snap.VacationDates()) != 0 || len(snap.ImportantDates) != 0 {
		t.Errorf("DeleteRange() cleared %d, left %d flags and %d entries",
			cleared, len(snap.VacationDates()), len(snap.ImportantDates))
	}
}

func TestAddRange_NoteTypeKeepsFlagsOff(t *testing.T) {
	acc := standardAccountant(t)
	snap := annotation.NewSnapshot()

	res, err := AddRange(snap, acc, Booking{
		Start:  day("2030-02-04"),
		End:    day("2030-02-08"),
		Type:   BusinessTrip,
		Remark: "Hamburg",
	})
	if err != nil {
		t.Fatalf("AddRange() error = %v", err)
	}
	if res.Flagged != 0 || res.Entries != 5 {
		t.Errorf("AddRange() = %+v", res)
	}

	n, ok := snap.Note(day("2030-02-05"))
	if !ok || n.Kind != annotation.NoteAuto || n.Text != "Dienstreise: Hamburg" {
		t.Errorf("note = %+v, %v", n, ok)
	}

	// deleting a vacation range keeps note-category entries
	if _, err := DeleteRange(snap, day("2030-02-04"), day("2030-02-08")); err != nil {
		t.Fatalf("DeleteRange() error = %v", err)
	}
	if len(snap.ImportantDates) != 5 {
		t.Errorf("DeleteRange removed note entries: %d left", len(snap.ImportantDates))
	}
}

func TestAddRange_Errors(t *testing.T) {
	acc := standardAccountant(t)
	snap := annotation.NewSnapshot()

	if _, err := AddRange(snap, acc, Booking{Start: day("2030-01-02"), End: day("2030-01-01"), Type: TariffLeave}); !errors.Is(err, calendar.ErrInvalidRange) {
		t.Errorf("AddRange(reversed) error = %v, want ErrInvalidRange", err)
	}
	if _, err := AddRange(snap, acc, Booking{Start: day("2030-01-01"), End: day("2030-01-02"), Type: 9}); !errors.Is(err, ErrInvalidType) {
		t.Errorf("AddRange(type 9) error = %v, want ErrInvalidType", err)
	}
	if _, err := DeleteRange(snap, day("2030-01-02"), day("2030-01-01")); !errors.Is(err, calendar.ErrInvalidRange) {
		t.Errorf("DeleteRange(reversed) error = %v, want ErrInvalidRange", err)
	}
}

func TestNewRequest(t *testing.T) {
	acc := standardAccountant(t)
	profile := Profile{Name: "Erika Muster", PersonnelID: "4711", Department: "Montage", SignatureFile: "sig.png"}
	now := time.Date(2029, time.December, 1, 9, 0, 0, 0, time.UTC)

	req, err := NewRequest(profile, acc, RequestInput{Start: day("2030-01-07"), End: day("2030-01-13"), Type: TariffLeave}, now)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if req.WorkingDays != 5 {
		t.Errorf("WorkingDays = %v, want 5", req.WorkingDays)
	}
	if _, err := uuid.Parse(req.RequestID); err != nil {
		t.Errorf("RequestID %q is not a uuid", req.RequestID)
	}

	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{`"personalNummer":"4711"`, `"type":"1"`, `"dateFrom":"2030-01-07"`, `"workingDays":5`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("request json %s missing %s", b, want)
		}
	}

	_, err = NewRequest(profile, acc, RequestInput{Start: day("2030-01-07"), End: day("2030-01-08"), Type: UnpaidLeave}, now)
	if !errors.Is(err, ErrReasonRequired) {
		t.Errorf("NewRequest(type 6 without reason) error = %v, want ErrReasonRequired", err)
	}

	_, err = NewRequest(Profile{}, acc, RequestInput{Start: day("2030-01-07"), End: day("2030-01-08"), Type: TariffLeave}, now)
	if err == nil {
		t.Error("NewRequest() without name should fail")
	}
}

func TestDecideAndApply(t *testing.T) {
	acc := standardAccountant(t)
	snap := annotation.NewSnapshot()
	profile := Profile{Name: "Erika Muster"}
	now := time.Date(2029, time.December, 1, 9, 0, 0, 0, time.UTC)

	req, err := NewRequest(profile, acc, RequestInput{Start: day("2030-01-07"), End: day("2030-01-11"), Type: UnpaidLeave, Reason: "Umzug"}, now)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	approved, err := Decide(req, StatusApproved, "ignored", "", now)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if approved.RejectionReason != "" || approved.RequestID != req.RequestID {
		t.Errorf("approved decision = %+v", approved)
	}
	if err := ApplyDecision(snap, acc, approved, profile.Policy()); err != nil {
		t.Fatalf("ApplyDecision(approved) error = %v", err)
	}
	if len(snap.VacationDates()) != 5 {
		t.Errorf("approved request booked %d days, want 5", len(snap.VacationDates()))
	}
	if e := snap.EntriesFor(day("2030-01-07")); len(e) != 1 || e[0].Name != "Unbezahlter Urlaub: Umzug" {
		t.Errorf("entries = %+v", e)
	}

	rejected, err := Decide(req, StatusRejected, "Betriebliche Gründe", "", now)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if err := ApplyDecision(snap, acc, rejected, profile.Policy()); err != nil {
		t.Fatalf("ApplyDecision(rejected) error = %v", err)
	}
	if len(snap.VacationDates()) != 0 {
		t.Errorf("rejected request left %d days", len(snap.VacationDates()))
	}

	if _, err := Decide(req, "maybe", "", "", now); err == nil {
		t.Error("Decide(maybe) should fail")
	}
}

func TestOverview(t *testing.T) {
	acc := standardAccountant(t)
	snap := annotation.NewSnapshot()

	for _, b := range []Booking{
		{Start: day("2030-01-07"), End: day("2030-01-11"), Type: TariffLeave},
		{Start: day("2030-01-21"), End: day("2030-01-25"), Type: FlexTime},
	} {
		if _, err := AddRange(snap, acc, b); err != nil {
			t.Fatalf("AddRange() error = %v", err)
		}
	}
	snap.SetVacation(day("2031-12-23"), true)
	snap.SetVacation(day("2031-12-24"), true)
	snap.SetNote(day("2030-03-01"), "only a note")

	years := Overview(snap)
	if len(years) != 2 {
		t.Fatalf("Overview() = %d years, want 2", len(years))
	}

	y2030 := years[0]
	if y2030.Year != 2030 || len(y2030.Periods) != 2 || y2030.Total != 10 {
		t.Errorf("2030 overview = %+v", y2030)
	}
	if y2030.ByType[TariffLeave] != 5 || y2030.ByType[FlexTime] != 5 {
		t.Errorf("2030 by type = %v", y2030.ByType)
	}
	if y2030.Periods[0].From != "2030-01-07" || y2030.Periods[0].To != "2030-01-11" {
		t.Errorf("first period = %+v", y2030.Periods[0])
	}

	y2031 := years[1]
	if y2031.Total != 1.5 || y2031.ByType[TariffLeave] != 1.5 {
		t.Errorf("2031 overview = %+v", y2031)
	}
}
