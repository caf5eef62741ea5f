package shift

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/username/shift-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

// Definition is the user-editable description of a rotation.
// Its JSON form is the exchange format:
//
//	{"sequence": ["NIGHT", ...], "referenceDate": "2030-01-07", "referenceShiftKind": "NIGHT"}
type Definition struct {
	Sequence       []Kind
	ReferenceDate  time.Time
	ReferenceShift Kind
}

type definitionJSON struct {
	Sequence       []string `json:"sequence"`
	ReferenceDate  string   `json:"referenceDate"`
	ReferenceShift string   `json:"referenceShiftKind"`
}

// MarshalJSON writes canonical tokens and an ISO date
func (d Definition) MarshalJSON() ([]byte, error) {
	wire := definitionJSON{
		Sequence:       make([]string, len(d.Sequence)),
		ReferenceDate:  dateutil.FormatDate(d.ReferenceDate),
		ReferenceShift: string(d.ReferenceShift),
	}
	for i, k := range d.Sequence {
		wire.Sequence[i] = string(k)
	}
	return json.Marshal(wire)
}

// UnmarshalJSON accepts aliases for every token. Unknown sequence tokens are
// dropped and reported as a *MalformedTokenError after the rest is stored.
func (d *Definition) UnmarshalJSON(b []byte) error {
	var wire definitionJSON
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}

	refDate, err := dateutil.ParseDate(wire.ReferenceDate)
	if err != nil {
		return fmt.Errorf("referenceDate: %w", err)
	}

	var bad []string
	seq := make([]Kind, 0, len(wire.Sequence))
	for _, token := range wire.Sequence {
		k, err := ParseKind(token)
		if err != nil {
			bad = append(bad, token)
			continue
		}
		seq = append(seq, k)
	}

	ref, err := ParseKind(wire.ReferenceShift)
	if err != nil {
		bad = append(bad, wire.ReferenceShift)
	}

	d.Sequence = seq
	d.ReferenceDate = refDate
	d.ReferenceShift = ref

	if len(bad) > 0 {
		return &MalformedTokenError{Tokens: bad}
	}
	return nil
}

// Rotation is a validated, immutable rotation. The zero value is not usable;
// build one with NewRotation, Default or a preset.
type Rotation struct {
	sequence []Kind
	refDate  time.Time
	refShift Kind
	refIndex int
	refDay   int64
}

// NewRotation validates def and anchors it at the first occurrence of the reference kind
func NewRotation(def Definition) (*Rotation, error) {
	if len(def.Sequence) == 0 {
		return nil, fmt.Errorf("%w: empty sequence", ErrInvalidRotation)
	}
	for i, k := range def.Sequence {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: element %d %q is not a shift kind", ErrInvalidRotation, i, string(k))
		}
	}
	if !def.ReferenceShift.Valid() {
		return nil, fmt.Errorf("%w: reference %q is not a shift kind", ErrInvalidRotation, string(def.ReferenceShift))
	}

	refIndex := -1
	for i, k := range def.Sequence {
		if k == def.ReferenceShift {
			refIndex = i
			break
		}
	}
	if refIndex < 0 {
		return nil, fmt.Errorf("%w: reference %s does not occur in sequence", ErrInvalidRotation, def.ReferenceShift)
	}

	seq := make([]Kind, len(def.Sequence))
	copy(seq, def.Sequence)
	refDate := dateutil.Civil(def.ReferenceDate)

	return &Rotation{
		sequence: seq,
		refDate:  refDate,
		refShift: def.ReferenceShift,
		refIndex: refIndex,
		refDay:   dateutil.DayNumber(refDate),
	}, nil
}

// Resolve returns the shift kind that applies on date. Time of day and location are ignored.
func (r *Rotation) Resolve(date time.Time) Kind {
	n := int64(len(r.sequence))
	diff := dateutil.DayNumber(date) - r.refDay
	idx := ((int64(r.refIndex)+diff)%n + n) % n
	return r.sequence[idx]
}

// Len returns the cycle length in days
func (r *Rotation) Len() int {
	return len(r.sequence)
}

// Definition returns a copy of the definition the rotation was built from
func (r *Rotation) Definition() Definition {
	seq := make([]Kind, len(r.sequence))
	copy(seq, r.sequence)
	return Definition{
		Sequence:       seq,
		ReferenceDate:  r.refDate,
		ReferenceShift: r.refShift,
	}
}

// Resolve validates def and resolves date against it in one step
func Resolve(def Definition, date time.Time) (Kind, error) {
	r, err := NewRotation(def)
	if err != nil {
		return "", err
	}
	return r.Resolve(date), nil
}

// Active returns the rotation for def, or the built-in default when def is
// missing or invalid. The fallback is logged as a warning, never silent.
func Active(def *Definition, logger *zap.Logger) *Rotation {
	if def == nil {
		return Default()
	}

	r, err := NewRotation(*def)
	if err != nil {
		logger.Warn("Rotation definition rejected, using default rotation",
			zap.Error(err),
			zap.String("sequence", FormatSequence(def.Sequence)),
			zap.String("reference_shift", string(def.ReferenceShift)))
		return Default()
	}
	return r
}
