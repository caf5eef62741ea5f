package shift

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRotation is returned for an empty sequence, a reference kind
	// missing from the sequence or an element outside the enum
	ErrInvalidRotation = errors.New("invalid rotation")

	// ErrMalformedShiftToken is returned for input tokens outside the alias table
	ErrMalformedShiftToken = errors.New("malformed shift token")
)

// MalformedTokenError lists every token that could not be parsed
type MalformedTokenError struct {
	Tokens []string
}

func (e *MalformedTokenError) Error() string {
	quoted := make([]string, len(e.Tokens))
	for i, t := range e.Tokens {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedShiftToken, strings.Join(quoted, ", "))
}

func (e *MalformedTokenError) Unwrap() error {
	return ErrMalformedShiftToken
}
