package conformance

import (
	"fmt"
	"strings"
)

// Mismatch is a single value on which the contract disagrees with the
// reference schedule.
type Mismatch struct {
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: want %s, got %s", m.Field, m.Want, m.Got)
}

// MismatchError collects every mismatch found during one verification.
type MismatchError struct {
	Mismatches []Mismatch
}

func (e *MismatchError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = m.String()
	}
	return fmt.Sprintf("contract disagrees with schedule in %d value(s): %s",
		len(e.Mismatches), strings.Join(parts, "; "))
}

// Has reports whether a mismatch was recorded for field.
func (e *MismatchError) Has(field string) bool {
	for _, m := range e.Mismatches {
		if m.Field == field {
			return true
		}
	}
	return false
}
