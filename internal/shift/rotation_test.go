package shift

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/username/shift-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

func standardRotation(t *testing.T) *Rotation {
	t.Helper()
	p, err := LookupPreset("standard")
	if err != nil {
		t.Fatalf("LookupPreset(standard) error = %v", err)
	}
	r, err := NewRotation(p.Definition)
	if err != nil {
		t.Fatalf("NewRotation(standard) error = %v", err)
	}
	return r
}

func TestRotation_Resolve_Standard(t *testing.T) {
	r := standardRotation(t)

	tests := []struct {
		name string
		date string
		want Kind
	}{
		{"reference date", "2030-01-07", Night},
		{"last night of block", "2030-01-11", Night},
		{"first weekend slot", "2030-01-12", Saturday},
		{"second weekend slot", "2030-01-13", Sunday},
		{"one week later", "2030-01-14", Late},
		{"two weeks later", "2030-01-21", Early},
		{"one full cycle", "2030-01-28", Night},
		{"day before reference", "2030-01-06", Sunday},
		{"one week before reference", "2029-12-31", Early},
		// 364 days back is 17 cycles plus 7 days
		{"many cycles before", "2029-01-08", Early},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date := dateutil.MustParseDate(tt.date)
			if got := r.Resolve(date); got != tt.want {
				t.Errorf("Resolve(%s) = %s, want %s", tt.date, got, tt.want)
			}
		})
	}
}

func TestRotation_Resolve_IgnoresTimeOfDay(t *testing.T) {
	r := standardRotation(t)
	loc := time.FixedZone("UTC+14", 14*60*60)

	morning := time.Date(2030, 1, 7, 0, 1, 0, 0, loc)
	evening := time.Date(2030, 1, 7, 23, 59, 0, 0, loc)

	if r.Resolve(morning) != Night || r.Resolve(evening) != Night {
		t.Errorf("Resolve depends on time of day: %s / %s", r.Resolve(morning), r.Resolve(evening))
	}
}

func TestRotation_Resolve_ReferenceDateYieldsReferenceKind(t *testing.T) {
	for _, name := range PresetNames() {
		p, err := LookupPreset(name)
		if err != nil {
			t.Fatalf("LookupPreset(%s) error = %v", name, err)
		}
		r, err := NewRotation(p.Definition)
		if err != nil {
			t.Fatalf("NewRotation(%s) error = %v", name, err)
		}
		if got := r.Resolve(p.Definition.ReferenceDate); got != p.Definition.ReferenceShift {
			t.Errorf("%s: Resolve(reference date) = %s, want %s", name, got, p.Definition.ReferenceShift)
		}
	}
}

func TestRotation_Resolve_ReferenceNotAtIndexZero(t *testing.T) {
	r := Default()

	// default sequence starts with five EARLY days; NIGHT first appears at index 7
	if got := r.Resolve(dateutil.Date(2030, 1, 7)); got != Night {
		t.Errorf("Resolve(reference) = %s, want NIGHT", got)
	}
	if got := r.Resolve(dateutil.Date(2030, 1, 14)); got != Late {
		t.Errorf("Resolve(reference+7) = %s, want LATE", got)
	}
	if got := r.Resolve(dateutil.Date(2029, 12, 31)); got != Early {
		t.Errorf("Resolve(reference-7) = %s, want EARLY", got)
	}
}

func TestRotation_Resolve_SingleElement(t *testing.T) {
	r, err := NewRotation(Definition{
		Sequence:       []Kind{Free},
		ReferenceDate:  dateutil.Date(2000, 1, 1),
		ReferenceShift: Free,
	})
	if err != nil {
		t.Fatalf("NewRotation() error = %v", err)
	}

	dates := []time.Time{
		dateutil.Date(1, 1, 1),
		dateutil.Date(1999, 12, 31),
		dateutil.Date(2000, 1, 1),
		dateutil.Date(2030, 6, 15),
		dateutil.Date(9999, 12, 31),
	}
	for _, d := range dates {
		if got := r.Resolve(d); got != Free {
			t.Errorf("Resolve(%s) = %s, want FREE", dateutil.FormatDate(d), got)
		}
	}
}

func TestRotation_Resolve_FullYearRange(t *testing.T) {
	r := standardRotation(t)

	for year := 1; year <= 9999; year += 97 {
		for _, d := range []time.Time{dateutil.Date(year, 1, 1), dateutil.Date(year, 12, 31)} {
			first := r.Resolve(d)
			if !first.Valid() {
				t.Fatalf("Resolve(%s) = %q, not a valid kind", dateutil.FormatDate(d), first)
			}
			if second := r.Resolve(d); second != first {
				t.Fatalf("Resolve(%s) not idempotent: %s then %s", dateutil.FormatDate(d), first, second)
			}
		}
	}
}

func TestRotation_Resolve_CycleProperty(t *testing.T) {
	r := standardRotation(t)
	start := dateutil.Date(2025, 3, 1)

	for i := 0; i < 200; i++ {
		d := dateutil.AddDays(start, i)
		next := dateutil.AddDays(d, r.Len())
		if r.Resolve(d) != r.Resolve(next) {
			t.Fatalf("Resolve(%s) != Resolve(%s) one cycle later",
				dateutil.FormatDate(d), dateutil.FormatDate(next))
		}
	}
}

func TestNewRotation_Invalid(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{"empty sequence", Definition{ReferenceDate: dateutil.Date(2030, 1, 1), ReferenceShift: Early}},
		{"reference missing", Definition{Sequence: []Kind{Early, Late}, ReferenceDate: dateutil.Date(2030, 1, 1), ReferenceShift: Night}},
		{"bad element", Definition{Sequence: []Kind{Early, "LUNCH"}, ReferenceDate: dateutil.Date(2030, 1, 1), ReferenceShift: Early}},
		{"bad reference", Definition{Sequence: []Kind{Early}, ReferenceDate: dateutil.Date(2030, 1, 1), ReferenceShift: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRotation(tt.def)
			if !errors.Is(err, ErrInvalidRotation) {
				t.Errorf("NewRotation() error = %v, want ErrInvalidRotation", err)
			}
			if _, err := Resolve(tt.def, dateutil.Date(2030, 1, 1)); !errors.Is(err, ErrInvalidRotation) {
				t.Errorf("Resolve() error = %v, want ErrInvalidRotation", err)
			}
		})
	}
}

func TestNewRotation_CopiesSequence(t *testing.T) {
	seq := []Kind{Early, Late}
	r, err := NewRotation(Definition{Sequence: seq, ReferenceDate: dateutil.Date(2030, 1, 1), ReferenceShift: Early})
	if err != nil {
		t.Fatalf("NewRotation() error = %v", err)
	}

	seq[0] = Night

	if got := r.Resolve(dateutil.Date(2030, 1, 1)); got != Early {
		t.Errorf("rotation changed after caller mutated its slice: got %s", got)
	}
}

func TestActive_FallsBackToDefault(t *testing.T) {
	logger := zap.NewNop()
	bad := &Definition{Sequence: []Kind{Early}, ReferenceDate: dateutil.Date(2030, 1, 1), ReferenceShift: Night}

	r := Active(bad, logger)
	want := Default()

	for i := 0; i < 42; i++ {
		d := dateutil.AddDays(dateutil.Date(2030, 1, 1), i)
		if r.Resolve(d) != want.Resolve(d) {
			t.Fatalf("Active(invalid) did not fall back to default at %s", dateutil.FormatDate(d))
		}
	}

	if got := Active(nil, logger); got.Len() != 21 {
		t.Errorf("Active(nil).Len() = %d, want 21", got.Len())
	}
}

func TestDefinition_JSONRoundTrip(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			p, _ := LookupPreset(name)
			original, err := NewRotation(p.Definition)
			if err != nil {
				t.Fatalf("NewRotation() error = %v", err)
			}

			data, err := json.Marshal(original.Definition())
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			var parsed Definition
			if err := json.Unmarshal(data, &parsed); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", data, err)
			}
			restored, err := NewRotation(parsed)
			if err != nil {
				t.Fatalf("NewRotation(parsed) error = %v", err)
			}

			start := dateutil.Date(2029, 11, 1)
			for i := 0; i < 120; i++ {
				d := dateutil.AddDays(start, i*3)
				if original.Resolve(d) != restored.Resolve(d) {
					t.Fatalf("round trip differs at %s: %s vs %s",
						dateutil.FormatDate(d), original.Resolve(d), restored.Resolve(d))
				}
			}
		})
	}
}

func TestDefinition_UnmarshalJSON_Aliases(t *testing.T) {
	input := `{"sequence":["F","Spät","nachtschicht","Frei","sa","So"],"referenceDate":"2030-01-07","referenceShiftKind":"Nacht"}`

	var def Definition
	if err := json.Unmarshal([]byte(input), &def); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := []Kind{Early, Late, Night, Free, Saturday, Sunday}
	if len(def.Sequence) != len(want) {
		t.Fatalf("Sequence = %v, want %v", def.Sequence, want)
	}
	for i := range want {
		if def.Sequence[i] != want[i] {
			t.Errorf("Sequence[%d] = %s, want %s", i, def.Sequence[i], want[i])
		}
	}
	if def.ReferenceShift != Night {
		t.Errorf("ReferenceShift = %s, want NIGHT", def.ReferenceShift)
	}
}

func TestDefinition_UnmarshalJSON_MalformedTokenDropped(t *testing.T) {
	input := `{"sequence":["F","Mittag","S"],"referenceDate":"2030-01-07","referenceShiftKind":"F"}`

	var def Definition
	err := json.Unmarshal([]byte(input), &def)

	var tokenErr *MalformedTokenError
	if !errors.As(err, &tokenErr) {
		t.Fatalf("Unmarshal() error = %v, want *MalformedTokenError", err)
	}
	if len(tokenErr.Tokens) != 1 || tokenErr.Tokens[0] != "Mittag" {
		t.Errorf("Tokens = %v, want [Mittag]", tokenErr.Tokens)
	}
	if len(def.Sequence) != 2 {
		t.Errorf("Sequence = %v, want the two valid tokens", def.Sequence)
	}
}
