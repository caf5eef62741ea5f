package shift

import (
	"fmt"
	"sort"

	"github.com/username/shift-calendar/pkg/dateutil"
)

// Preset is a named rotation template
type Preset struct {
	Name        string
	Description string
	Definition  Definition
}

const motherson = "N,N,N,N,N,Sa,So,S,S,S,S,S,S,So,F,F,F,F,F,Sa,So,N,N,N,N,N,Sa,So,S,S,S,S,S,Sa,So,F,F,F,F,F,F,N"

var presets = map[string]Preset{
	"standard": {
		Name:        "standard",
		Description: "3-shift weekly: N, S, F",
		Definition:  mustDefinition("N,N,N,N,N,Sa,So,S,S,S,S,S,Sa,So,F,F,F,F,F,Sa,So", "2030-01-07", Night),
	},
	"2schicht": {
		Name:        "2schicht",
		Description: "2-shift weekly: F, S",
		Definition:  mustDefinition("F,F,F,F,F,Sa,So,S,S,S,S,S,Sa,So", "2030-01-07", Early),
	},
	"vollkonti_10": {
		Name:        "vollkonti_10",
		Description: "continuous: 2F 2S 2N 4 free",
		Definition:  mustDefinition("F,F,S,S,N,N,Frei,Frei,Frei,Frei", "2030-01-01", Early),
	},
	"vollkonti_8": {
		Name:        "vollkonti_8",
		Description: "continuous: 2F 2S 2N 2 free",
		Definition:  mustDefinition("F,F,S,S,N,N,Frei,Frei", "2030-01-01", Early),
	},
	"groupA": {
		Name:        "groupA",
		Description: "42-day group A",
		Definition:  mustDefinition(motherson, "2030-01-07", Night),
	},
	"groupB": {
		Name:        "groupB",
		Description: "42-day group B",
		Definition:  mustDefinition(motherson, "2030-01-28", Night),
	},
}

// defaultDefinition is the 21-day three-shift pattern used whenever no valid
// user rotation exists
var defaultDefinition = mustDefinition(
	"F,F,F,F,F,Sa,So,N,N,N,N,N,Sa,So,S,S,S,S,S,Sa,So", "2030-01-07", Night)

// Default returns the built-in fallback rotation
func Default() *Rotation {
	r, err := NewRotation(defaultDefinition)
	if err != nil {
		panic(err) // static data
	}
	return r
}

// LookupPreset returns the named preset
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown rotation preset %q", name)
	}
	// hand out a copy so callers cannot mutate the table
	p.Definition.Sequence = append([]Kind(nil), p.Definition.Sequence...)
	return p, nil
}

// PresetNames returns all preset names sorted
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustDefinition(sequence, refDate string, ref Kind) Definition {
	seq, err := ParseSequence(sequence)
	if err != nil {
		panic(err)
	}
	return Definition{
		Sequence:       seq,
		ReferenceDate:  dateutil.MustParseDate(refDate),
		ReferenceShift: ref,
	}
}
