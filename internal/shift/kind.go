package shift

import (
	"fmt"
	"strings"
)

// Kind is the atomic label in a rotation sequence
type Kind string

const (
	Early    Kind = "EARLY"
	Late     Kind = "LATE"
	Night    Kind = "NIGHT"
	Free     Kind = "FREE"
	Saturday Kind = "SATURDAY"
	Sunday   Kind = "SUNDAY"
)

// Kinds lists every valid kind in display order
var Kinds = []Kind{Early, Late, Night, Free, Saturday, Sunday}

// aliases maps lower-cased input tokens to canonical kinds.
// Covers the short codes used in sequence strings, German and English names
// and the legacy CSS class names found in old backups.
var aliases = map[string]Kind{
	"f":            Early,
	"früh":         Early,
	"frueh":        Early,
	"early":        Early,
	"fruehschicht": Early,
	"frühschicht":  Early,

	"s":            Late,
	"spät":         Late,
	"spaet":        Late,
	"late":         Late,
	"spaetschicht": Late,
	"spätschicht":  Late,

	"n":            Night,
	"nacht":        Night,
	"night":        Night,
	"nachtschicht": Night,

	"frei":        Free,
	"free":        Free,
	"off":         Free,
	"freischicht": Free,

	"sa":       Saturday,
	"samstag":  Saturday,
	"saturday": Saturday,

	"so":      Sunday,
	"sonntag": Sunday,
	"sunday":  Sunday,
}

// Valid reports whether k is one of the enum values
func (k Kind) Valid() bool {
	switch k {
	case Early, Late, Night, Free, Saturday, Sunday:
		return true
	}
	return false
}

// IsWorking reports whether the kind counts as a working shift for leave accounting
func (k Kind) IsWorking() bool {
	return k.Valid() && k != Free
}

// String returns the canonical token
func (k Kind) String() string {
	return string(k)
}

// ParseKind normalises a case-insensitive token or alias to a canonical kind
func ParseKind(token string) (Kind, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if k, ok := aliases[t]; ok {
		return k, nil
	}
	if k := Kind(strings.ToUpper(t)); k.Valid() {
		return k, nil
	}
	return "", &MalformedTokenError{Tokens: []string{token}}
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrMalformedShiftToken, string(k))
	}
	return []byte(k), nil
}

// UnmarshalText accepts any alias and stores the canonical kind
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseSequence parses a comma separated list of tokens such as "N,N,Sa,So,F".
// Unknown tokens are dropped from the returned sequence and reported together
// in a *MalformedTokenError; callers decide whether a partial sequence is usable.
func ParseSequence(input string) ([]Kind, error) {
	var kinds []Kind
	var bad []string

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := ParseKind(part)
		if err != nil {
			bad = append(bad, part)
			continue
		}
		kinds = append(kinds, k)
	}

	if len(bad) > 0 {
		return kinds, &MalformedTokenError{Tokens: bad}
	}
	return kinds, nil
}

// FormatSequence is the inverse of ParseSequence using canonical tokens
func FormatSequence(kinds []Kind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}
