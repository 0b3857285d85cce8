// Package mode implements the per-question mode state machine: the
// single lifecycle label a question carries relative to a user's
// interaction history.
package mode

import "strings"

// Mode is a question's derived lifecycle label.
type Mode string

// The five valid modes.
const (
	Unused    Mode = "unused"
	Incorrect Mode = "incorrect"
	Correct   Mode = "correct"
	Omitted   Mode = "omitted"
	Marked    Mode = "marked"
)

var valid = map[Mode]struct{}{
	Unused:    {},
	Incorrect: {},
	Correct:   {},
	Omitted:   {},
	Marked:    {},
}

// Valid reports whether m is one of the five modes.
func Valid(m Mode) bool {
	_, ok := valid[m]
	return ok
}

// Canonicalize trims and lower-cases a raw stored value. Legacy values
// that don't match a valid mode are treated as absent, not as errors.
func Canonicalize(raw string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(raw)))
	if Valid(m) {
		return m, true
	}
	return "", false
}

// FromResponse derives the mode implied by a single response event.
// A nil isCorrect means no correctness was recorded (a skip).
func FromResponse(choiceMade bool, isCorrect *bool) Mode {
	switch {
	case !choiceMade:
		return Omitted
	case isCorrect != nil && *isCorrect:
		return Correct
	case isCorrect != nil:
		return Incorrect
	default:
		return Unused
	}
}
