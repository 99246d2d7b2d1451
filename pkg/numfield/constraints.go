package numfield

import (
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	// MaxSafeInteger is the largest integer a float64 represents exactly
	MaxSafeInteger = 9007199254740991
	// MinSafeInteger is the negated MaxSafeInteger
	MinSafeInteger = -9007199254740991
)

// Constraints is the immutable per-field configuration. Build one with
// DefaultConstraints and override fields before handing it to New; the
// field keeps its own copy.
type Constraints struct {
	Min                float64 // inclusive lower bound of the committed number
	Max                float64 // inclusive upper bound of the committed number
	Decimals           int     // fraction digits allowed and displayed
	Step               float64 // arrow-key increment applied to the magnitude
	DecimalSeparator   string  // display decimal separator, a single rune
	ThousandsSeparator string  // display grouping separator, may be empty
	ReadOnly           bool    // rejects every editing key
	Percent            bool    // buffer is always read as a percentage
}

// DefaultConstraints returns the defaults: the safe-integer range, no
// decimals, a step of one, "." as decimal separator and no grouping.
func DefaultConstraints() Constraints {
	return Constraints{
		Min:                MinSafeInteger,
		Max:                MaxSafeInteger,
		Decimals:           0,
		Step:               1,
		DecimalSeparator:   ".",
		ThousandsSeparator: "",
	}
}

// Validate checks the constraints for internal consistency
func (c Constraints) Validate() error {
	for _, b := range []struct {
		name string
		v    float64
	}{{"min", c.Min}, {"max", c.Max}, {"step", c.Step}} {
		if math.IsNaN(b.v) || math.IsInf(b.v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrConstraints, b.name, b.v)
		}
	}
	if c.Min > c.Max {
		return fmt.Errorf("%w: min %v is greater than max %v", ErrConstraints, c.Min, c.Max)
	}
	if c.Min < MinSafeInteger || c.Max > MaxSafeInteger {
		return fmt.Errorf("%w: bounds [%v, %v] exceed the safe integer range", ErrConstraints, c.Min, c.Max)
	}
	if c.Decimals < 0 {
		return fmt.Errorf("%w: decimals must not be negative, got %d", ErrConstraints, c.Decimals)
	}
	if c.Step <= 0 {
		return fmt.Errorf("%w: step must be positive, got %v", ErrConstraints, c.Step)
	}
	if utf8.RuneCountInString(c.DecimalSeparator) != 1 {
		return fmt.Errorf("%w: decimal separator must be a single character, got %q", ErrConstraints, c.DecimalSeparator)
	}
	if err := checkSeparator("decimal", c.DecimalSeparator); err != nil {
		return err
	}
	if err := checkSeparator("thousands", c.ThousandsSeparator); err != nil {
		return err
	}
	if c.DecimalSeparator == c.ThousandsSeparator {
		return fmt.Errorf("%w: decimal and thousands separators are both %q", ErrConstraints, c.DecimalSeparator)
	}
	return nil
}

// contains reports whether n lies in [Min, Max]
func (c Constraints) contains(n float64) bool {
	return n >= c.Min && n <= c.Max
}

// clamp pulls n into [Min, Max]
func (c Constraints) clamp(n float64) float64 {
	if n < c.Min {
		return c.Min
	}
	if n > c.Max {
		return c.Max
	}
	return n
}

func checkSeparator(name, sep string) error {
	for _, r := range sep {
		if isDigit(r) || r == '+' || r == '-' || r == '%' {
			return fmt.Errorf("%w: %s separator %q collides with number syntax", ErrConstraints, name, sep)
		}
	}
	return nil
}
