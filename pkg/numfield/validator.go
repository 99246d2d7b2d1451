package numfield

import (
	"strings"
)

// Outcome is the result class of a keystroke evaluation
type Outcome int

const (
	// Reject means the host must suppress the key's default action
	Reject Outcome = iota
	// Admit means the host performs the key's default action
	Admit
	// Step means the key drives continuous stepping; its default action is
	// suppressed as well
	Step
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case Admit:
		return "admit"
	case Step:
		return "step"
	default:
		return "reject"
	}
}

// Decision is the verdict for one key press.
type Decision struct {
	Outcome   Outcome
	Cursor    int // cursor offset after the host applies an admitted key
	Direction int // +1 or -1 when Outcome is Step
}

// Admitted reports whether the host should let the key through
func (d Decision) Admitted() bool {
	return d.Outcome == Admit
}

// Suppress reports whether the host must cancel the key's default action
func (d Decision) Suppress() bool {
	return d.Outcome != Admit
}

func reject() Decision {
	return Decision{Outcome: Reject}
}

func admit(cursor int) Decision {
	return Decision{Outcome: Admit, Cursor: cursor}
}

// Evaluate decides whether pressing key with the cursor at offset cursor in
// buffer keeps the buffer a well-formed number within c. It never modifies
// the buffer; the host applies admitted keys itself. Offsets count runes and
// are clamped into [0, len(buffer)].
//
// Rules in precedence order: sign, percent, decimal point, arrows, digits,
// then everything else on the allow-list is admitted.
func Evaluate(buffer string, cursor int, key Key, c Constraints) Decision {
	if !key.Allowed() {
		return reject()
	}

	text := []rune(buffer)
	cursor = clampOffset(cursor, len(text))

	if c.ReadOnly && !key.IsNavigation() {
		return reject()
	}

	switch {
	case key == KeyPlus || key == KeyMinus:
		return evaluateSign(text, cursor, key, c)
	case key == KeyPercent:
		return evaluatePercent(text, cursor)
	case key == KeyDecimalPoint:
		return evaluatePoint(text, cursor, c)
	case key == KeyUp:
		return Decision{Outcome: Step, Cursor: cursor, Direction: 1}
	case key == KeyDown:
		return Decision{Outcome: Step, Cursor: cursor, Direction: -1}
	case key.IsDigit():
		return evaluateDigit(text, cursor, key, c)
	}

	return admit(navigate(text, cursor, key))
}

// evaluateSign admits a sign only as the first character, and a minus only
// when negative numbers are reachable.
func evaluateSign(text []rune, cursor int, key Key, c Constraints) Decision {
	if cursor != 0 {
		return reject()
	}
	if key == KeyMinus && c.Min >= 0 {
		return reject()
	}
	if !WellFormed(splice(text, cursor, key.Char())) {
		return reject()
	}
	return admit(cursor + 1)
}

// evaluatePercent admits a percent sign only at the end of the buffer
func evaluatePercent(text []rune, cursor int) Decision {
	if cursor != len(text) {
		return reject()
	}
	if !WellFormed(splice(text, cursor, '%')) {
		return reject()
	}
	return admit(cursor + 1)
}

// evaluatePoint admits a single decimal point that leaves room for fraction
// digits within the configured precision.
func evaluatePoint(text []rune, cursor int, c Constraints) Decision {
	if c.Decimals == 0 {
		return reject()
	}
	if cursor == 0 && len(text) > 0 && (text[0] == '+' || text[0] == '-') {
		return reject()
	}
	if pct := indexRune(text, '%'); pct >= 0 && cursor > pct {
		return reject()
	}
	if indexRune(text, '.') >= 0 {
		return reject()
	}
	if digitRun(text, cursor) >= c.Decimals {
		return reject()
	}
	if !WellFormed(splice(text, cursor, '.')) {
		return reject()
	}
	return admit(cursor + 1)
}

// evaluateDigit admits a digit when the precision and the bounds still hold
// for the buffer it would produce.
func evaluateDigit(text []rune, cursor int, key Key, c Constraints) Decision {
	if pct := indexRune(text, '%'); pct >= 0 && cursor > pct {
		return reject()
	}
	if dot := indexRune(text, '.'); dot >= 0 && cursor > dot {
		if digitRun(text, dot+1) >= c.Decimals {
			return reject()
		}
	}

	candidate := splice(text, cursor, key.Char())
	if !WellFormed(candidate) {
		return reject()
	}
	n, err := interpret(candidate, c.Percent)
	if err != nil || !c.contains(n) {
		return reject()
	}
	return admit(cursor + 1)
}

// interpret reads a candidate buffer as the number it would commit to. A
// trailing percent sign, or a percent field, divides by 100.
func interpret(candidate string, percentField bool) (float64, error) {
	body, percent := strings.CutSuffix(candidate, "%")
	m, err := parseMagnitude(body)
	if err != nil {
		return 0, err
	}
	if percent || percentField {
		return m / 100, nil
	}
	return m, nil
}

// navigate returns where the cursor lands after a non-inserting key
func navigate(text []rune, cursor int, key Key) int {
	switch key {
	case KeyLeft, KeyBackspace:
		if cursor > 0 {
			return cursor - 1
		}
	case KeyRight:
		if cursor < len(text) {
			return cursor + 1
		}
	case KeyHome:
		return 0
	case KeyEnd:
		return len(text)
	}
	return cursor
}

// splice returns text with r inserted at offset
func splice(text []rune, offset int, r rune) string {
	var b strings.Builder
	b.Grow(len(text) + 1)
	b.WriteString(string(text[:offset]))
	b.WriteRune(r)
	b.WriteString(string(text[offset:]))
	return b.String()
}

// digitRun counts consecutive digits starting at offset
func digitRun(text []rune, offset int) int {
	n := 0
	for i := offset; i < len(text) && isDigit(text[i]); i++ {
		n++
	}
	return n
}

func indexRune(text []rune, r rune) int {
	for i, c := range text {
		if c == r {
			return i
		}
	}
	return -1
}

func clampOffset(offset, length int) int {
	if offset < 0 {
		return 0
	}
	if offset > length {
		return length
	}
	return offset
}
