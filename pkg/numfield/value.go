package numfield

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// grammar is the single definition of a well-formed, possibly partial,
// number: optional sign, digits, at most one point, optional trailing
// percent. SetValue, ExitEditMode and every inserting keystroke check
// against it.
var grammar = regexp.MustCompile(`^[-+]?\d*\.?\d*%?$`)

// WellFormed reports whether s matches the number grammar. Partial input
// such as "-", "12." and "%" is well-formed.
func WellFormed(s string) bool {
	return grammar.MatchString(s)
}

// Value is a committed number tagged with its presentation. Magnitude is
// the quantity shown to the user; when Percent is set the number it stands
// for is Magnitude/100.
type Value struct {
	Magnitude float64
	Percent   bool
}

// Number returns the numeric quantity the value represents
func (v Value) Number() float64 {
	if v.Percent {
		return v.Magnitude / 100
	}
	return v.Magnitude
}

// Raw returns the unformatted edit-buffer representation, e.g. "-12.5" or "50%"
func (v Value) Raw() string {
	s := strconv.FormatFloat(v.Magnitude, 'f', -1, 64)
	if v.Percent {
		s += "%"
	}
	return s
}

// NumberString returns Number() without formatting, e.g. "0.5" for 50%
func (v Value) NumberString() string {
	return strconv.FormatFloat(v.Number(), 'f', -1, 64)
}

// Equal reports whether both values stand for the same number
func (v Value) Equal(o Value) bool {
	return v.Number() == o.Number()
}

// AsPercent returns the same number presented as a percentage
func (v Value) AsPercent() Value {
	if v.Percent {
		return v
	}
	return Value{Magnitude: roundTo(v.Magnitude*100, 10), Percent: true}
}

// String implements fmt.Stringer
func (v Value) String() string {
	return v.Raw()
}

// ParseValue converts a string or Go number into a Value. Strings must
// match the number grammar; a digitless string ("", "-", ".") reads as
// zero. Numbers must be finite.
func ParseValue(raw any) (Value, error) {
	switch x := raw.(type) {
	case Value:
		return x, nil
	case string:
		return parseText(x)
	case float64:
		return parseFloat(x)
	case float32:
		return parseFloat(float64(x))
	case int:
		return Value{Magnitude: float64(x)}, nil
	case int8:
		return Value{Magnitude: float64(x)}, nil
	case int16:
		return Value{Magnitude: float64(x)}, nil
	case int32:
		return Value{Magnitude: float64(x)}, nil
	case int64:
		return Value{Magnitude: float64(x)}, nil
	case uint:
		return Value{Magnitude: float64(x)}, nil
	case uint8:
		return Value{Magnitude: float64(x)}, nil
	case uint16:
		return Value{Magnitude: float64(x)}, nil
	case uint32:
		return Value{Magnitude: float64(x)}, nil
	case uint64:
		return Value{Magnitude: float64(x)}, nil
	case nil:
		return Value{}, nil
	default:
		return Value{}, &FormatError{Input: fmt.Sprint(raw)}
	}
}

func parseFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, &FormatError{Input: strconv.FormatFloat(f, 'g', -1, 64)}
	}
	return Value{Magnitude: f}, nil
}

func parseText(s string) (Value, error) {
	if !WellFormed(s) {
		return Value{}, &FormatError{Input: s}
	}
	body, percent := strings.CutSuffix(s, "%")
	m, err := parseMagnitude(body)
	if err != nil {
		return Value{}, &FormatError{Input: s}
	}
	return Value{Magnitude: m, Percent: percent}, nil
}

// parseMagnitude reads a grammar-checked body without its percent suffix.
func parseMagnitude(body string) (float64, error) {
	if !strings.ContainsAny(body, "0123456789") {
		return 0, nil
	}
	m, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return 0, err
	}
	if m == 0 {
		m = 0 // drops the sign of "-0"
	}
	return m, nil
}

// roundTo rounds x to the given number of fraction digits
func roundTo(x float64, digits int) float64 {
	if digits > 15 {
		digits = 15
	}
	p := math.Pow10(digits)
	if math.Abs(x*p) >= 1<<53 {
		// no fraction digits left to round at this magnitude
		return x
	}
	r := math.Round(x*p) / p
	if r == 0 {
		return 0
	}
	return r
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
