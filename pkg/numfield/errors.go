package numfield

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for errors.Is matching
var (
	ErrFormat      = errors.New("malformed number")
	ErrRange       = errors.New("number out of range")
	ErrConstraints = errors.New("invalid constraints")
)

// FormatError is returned when a value does not match the number grammar.
// The committed state of the field is left untouched.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %q (expected forms like '+.12', '-123', '12%%')", ErrFormat, e.Input)
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// RangeError is returned when a well-formed value falls outside [Min, Max].
// The committed state of the field is left untouched.
type RangeError struct {
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: %s is outside [%s, %s]", ErrRange,
		strconv.FormatFloat(e.Value, 'f', -1, 64),
		strconv.FormatFloat(e.Min, 'f', -1, 64),
		strconv.FormatFloat(e.Max, 'f', -1, 64))
}

// Is reports whether target is ErrRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}
