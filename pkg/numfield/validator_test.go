package numfield

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constraints(min, max float64, decimals int) Constraints {
	c := DefaultConstraints()
	c.Min = min
	c.Max = max
	c.Decimals = decimals
	return c
}

// typeKeys feeds keys through Evaluate and applies admitted ones the way a
// host text control would, returning the buffer and every outcome.
func typeKeys(t *testing.T, c Constraints, buffer string, keys ...Key) (string, []Outcome) {
	t.Helper()
	cursor := len([]rune(buffer))
	outcomes := make([]Outcome, 0, len(keys))
	for _, k := range keys {
		d := Evaluate(buffer, cursor, k, c)
		outcomes = append(outcomes, d.Outcome)
		if d.Admitted() && k.Char() != 0 {
			r := []rune(buffer)
			buffer = string(r[:cursor]) + string(k.Char()) + string(r[cursor:])
			cursor = d.Cursor
		}
	}
	return buffer, outcomes
}

func TestEvaluate_RejectsKeysOutsideAllowList(t *testing.T) {
	c := DefaultConstraints()
	assert.Equal(t, Reject, Evaluate("12", 1, KeyNone, c).Outcome)
	assert.Equal(t, Reject, Evaluate("12", 1, Key(200), c).Outcome)
}

func TestEvaluate_Sign(t *testing.T) {
	tests := []struct {
		name   string
		buffer string
		cursor int
		key    Key
		min    float64
		want   Outcome
	}{
		{"minus at start with negative floor", "5", 0, KeyMinus, -10, Admit},
		{"plus at start", "5", 0, KeyPlus, 0, Admit},
		{"minus with non-negative floor", "5", 0, KeyMinus, 0, Reject},
		{"minus mid buffer", "55", 1, KeyMinus, -10, Reject},
		{"plus at end", "5", 1, KeyPlus, -10, Reject},
		{"second sign", "-5", 0, KeyMinus, -10, Reject},
		{"sign on empty buffer", "", 0, KeyMinus, -10, Admit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := constraints(tt.min, 100, 0)
			d := Evaluate(tt.buffer, tt.cursor, tt.key, c)
			assert.Equal(t, tt.want, d.Outcome)
			if tt.want == Admit {
				assert.Equal(t, tt.cursor+1, d.Cursor)
			}
		})
	}
}

func TestEvaluate_MinusRejectedForNonNegativeFloor(t *testing.T) {
	buffers := []string{"", "1", "12.5", "-3", "50%", "+"}
	for _, min := range []float64{0, 0.5, 10} {
		c := constraints(min, 100, 2)
		for _, b := range buffers {
			for cursor := 0; cursor <= len(b); cursor++ {
				assert.Equal(t, Reject, Evaluate(b, cursor, KeyMinus, c).Outcome,
					"min=%v buffer=%q cursor=%d", min, b, cursor)
			}
		}
	}
}

func TestEvaluate_Percent(t *testing.T) {
	c := constraints(0, 100, 0)

	assert.Equal(t, Admit, Evaluate("50", 2, KeyPercent, c).Outcome)
	assert.Equal(t, Reject, Evaluate("50", 1, KeyPercent, c).Outcome)
	assert.Equal(t, Reject, Evaluate("50", 0, KeyPercent, c).Outcome)
	assert.Equal(t, Reject, Evaluate("50%", 3, KeyPercent, c).Outcome, "only one percent sign")
}

func TestEvaluate_DecimalPoint(t *testing.T) {
	tests := []struct {
		name     string
		buffer   string
		cursor   int
		decimals int
		want     Outcome
	}{
		{"no decimals configured", "12", 2, 0, Reject},
		{"at end", "12", 2, 2, Admit},
		{"on empty buffer", "", 0, 2, Admit},
		{"before leading minus", "-12", 0, 2, Reject},
		{"before leading plus", "+12", 0, 2, Reject},
		{"after sign", "-12", 2, 2, Admit},
		{"after percent", "12%", 3, 2, Reject},
		{"before percent", "12%", 2, 2, Admit},
		{"second point", "1.2", 3, 2, Reject},
		{"second point before first", "1.2", 0, 2, Reject},
		{"room for one fraction digit", "123", 2, 2, Admit},
		{"trailing digits fill precision", "1234", 2, 2, Reject},
		{"trailing digits exceed precision", "12345", 1, 2, Reject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := constraints(-1000, 100000, tt.decimals)
			assert.Equal(t, tt.want, Evaluate(tt.buffer, tt.cursor, KeyDecimalPoint, c).Outcome)
		})
	}
}

func TestEvaluate_PointRejectedWhenBufferHasPoint(t *testing.T) {
	c := constraints(-1000, 1000, 3)
	for _, b := range []string{".", "1.", ".5", "-1.25", "1.5%"} {
		for cursor := 0; cursor <= len(b); cursor++ {
			assert.Equal(t, Reject, Evaluate(b, cursor, KeyDecimalPoint, c).Outcome,
				"buffer=%q cursor=%d", b, cursor)
		}
	}

	// the second point in a typed sequence is rejected
	buf, outcomes := typeKeys(t, c, "", Key1, KeyDecimalPoint, Key2, KeyDecimalPoint)
	assert.Equal(t, "1.2", buf)
	assert.Equal(t, []Outcome{Admit, Admit, Admit, Reject}, outcomes)
}

func TestEvaluate_Digit(t *testing.T) {
	tests := []struct {
		name   string
		buffer string
		cursor int
		key    Key
		c      Constraints
		want   Outcome
	}{
		{"first digit", "", 0, Key5, constraints(0, 100, 0), Admit},
		{"after percent", "5%", 2, Key0, constraints(0, 100, 0), Reject},
		{"before percent", "5%", 1, Key0, constraints(0, 100, 0), Admit},
		{"fraction full", "1.25", 4, Key5, constraints(0, 100, 2), Reject},
		{"fraction has room", "1.2", 3, Key5, constraints(0, 100, 2), Admit},
		{"integer part with full fraction", "1.25", 1, Key0, constraints(0, 100, 2), Admit},
		{"above max", "10", 2, Key1, constraints(0, 100, 0), Reject},
		{"at max", "10", 2, Key0, constraints(0, 100, 0), Admit},
		{"below min", "-5", 2, Key1, constraints(-50, 50, 0), Reject},
		{"percent suffix divides", "5%", 1, Key0, constraints(0, 1, 0), Admit},
		{"percent suffix above max", "50%", 2, Key0, constraints(0, 1, 0), Reject},
		{"before sign", "-5", 0, Key3, constraints(-50, 50, 0), Reject},
		{"leading point", ".", 1, Key5, constraints(0, 1, 2), Admit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.buffer, tt.cursor, tt.key, tt.c)
			assert.Equal(t, tt.want, d.Outcome)
			if tt.want == Admit {
				assert.Equal(t, tt.cursor+1, d.Cursor)
			}
		})
	}
}

func TestEvaluate_PercentFieldReadsDigitsAsHundredths(t *testing.T) {
	c := constraints(0, 1, 0)
	c.Percent = true

	assert.Equal(t, Admit, Evaluate("5", 1, Key0, c).Outcome)
	assert.Equal(t, Admit, Evaluate("10", 2, Key0, c).Outcome)
	assert.Equal(t, Reject, Evaluate("100", 3, Key0, c).Outcome)
}

func TestEvaluate_PlainFieldReadsDigitsAsWholeNumbers(t *testing.T) {
	// without the Percent flag a [0, 1] field cannot take "50%" by typing:
	// the digits are range checked before any suffix exists
	c := constraints(0, 1, 0)

	assert.Equal(t, Reject, Evaluate("", 0, Key5, c).Outcome)
	assert.Equal(t, Admit, Evaluate("", 0, Key0, c).Outcome)
	assert.Equal(t, Reject, Evaluate("0", 1, Key5, c).Outcome)
	assert.Equal(t, Admit, Evaluate("", 0, Key1, c).Outcome)

	f, err := New(c, 0)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.SetValue("50%"))
	assert.Equal(t, "0.5", f.Value().NumberString())
}

func TestEvaluate_NeverExceedsDecimals(t *testing.T) {
	allKeys := []Key{Key0, Key1, Key5, Key9, KeyDecimalPoint, KeyLeft, KeyRight, KeyHome, KeyEnd}
	for d := 0; d <= 3; d++ {
		c := constraints(-1e6, 1e6, d)
		buffer, cursor := "", 0
		// deterministic pseudo-random walk over the key set
		seed := uint32(7 + d)
		for i := 0; i < 400; i++ {
			seed = seed*1664525 + 1013904223
			k := allKeys[int(seed>>24)%len(allKeys)]
			dec := Evaluate(buffer, cursor, k, c)
			if !dec.Admitted() {
				continue
			}
			if ch := k.Char(); ch != 0 {
				r := []rune(buffer)
				buffer = string(r[:cursor]) + string(ch) + string(r[cursor:])
			}
			cursor = dec.Cursor

			_, frac, found := strings.Cut(buffer, ".")
			if found {
				require.LessOrEqual(t, len(strings.TrimRight(frac, "%")), d, "buffer %q", buffer)
			}
			if len(buffer) > 8 {
				buffer, cursor = "", 0
			}
		}
	}
}

func TestEvaluate_Arrows(t *testing.T) {
	c := constraints(0, 10, 0)

	up := Evaluate("5", 1, KeyUp, c)
	assert.Equal(t, Step, up.Outcome)
	assert.Equal(t, 1, up.Direction)
	assert.True(t, up.Suppress())

	down := Evaluate("5", 0, KeyDown, c)
	assert.Equal(t, Step, down.Outcome)
	assert.Equal(t, -1, down.Direction)
}

func TestEvaluate_NavigationAndEditing(t *testing.T) {
	c := constraints(0, 100, 0)

	tests := []struct {
		key    Key
		cursor int
		want   int
	}{
		{KeyLeft, 2, 1},
		{KeyLeft, 0, 0},
		{KeyRight, 1, 2},
		{KeyRight, 3, 3},
		{KeyHome, 2, 0},
		{KeyEnd, 0, 3},
		{KeyBackspace, 2, 1},
		{KeyDelete, 1, 1},
		{KeyTab, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			d := Evaluate("123", tt.cursor, tt.key, c)
			assert.Equal(t, Admit, d.Outcome)
			assert.Equal(t, tt.want, d.Cursor)
		})
	}
}

func TestEvaluate_ReadOnly(t *testing.T) {
	c := constraints(-10, 10, 1)
	c.ReadOnly = true

	for _, k := range []Key{Key1, KeyMinus, KeyDecimalPoint, KeyPercent, KeyUp, KeyBackspace, KeyDelete} {
		assert.Equal(t, Reject, Evaluate("1", 1, k, c).Outcome, "key %s", k)
	}
	for _, k := range []Key{KeyLeft, KeyRight, KeyHome, KeyEnd, KeyTab} {
		assert.Equal(t, Admit, Evaluate("1", 1, k, c).Outcome, "key %s", k)
	}
}

func TestEvaluate_ClampsCursor(t *testing.T) {
	c := constraints(0, 1000, 0)
	d := Evaluate("12", 99, Key0, c)
	assert.Equal(t, Admit, d.Outcome)
	assert.Equal(t, 3, d.Cursor)

	d = Evaluate("12", -4, KeyHome, c)
	assert.Equal(t, 0, d.Cursor)
}

func TestEvaluate_TypingScenarios(t *testing.T) {
	t.Run("two decimals under one hundred", func(t *testing.T) {
		c := constraints(0, 100, 2)
		buf, outcomes := typeKeys(t, c, "", Key1, Key2, KeyDecimalPoint, Key5, Key5, Key5)
		assert.Equal(t, "12.55", buf)
		assert.Equal(t, []Outcome{Admit, Admit, Admit, Admit, Admit, Reject}, outcomes)
	})

	t.Run("negative integer", func(t *testing.T) {
		c := constraints(-50, 50, 0)
		buf, outcomes := typeKeys(t, c, "", KeyMinus, Key3, Key0)
		assert.Equal(t, "-30", buf)
		assert.Equal(t, []Outcome{Admit, Admit, Admit}, outcomes)
	})

	t.Run("percent entry", func(t *testing.T) {
		c := constraints(0, 1, 0)
		c.Percent = true
		buf, outcomes := typeKeys(t, c, "", Key5, Key0, KeyPercent)
		assert.Equal(t, "50%", buf)
		assert.Equal(t, []Outcome{Admit, Admit, Admit}, outcomes)
	})
}
