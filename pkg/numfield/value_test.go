package numfield

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWellFormed(t *testing.T) {
	good := []string{"", "-", "+", ".", "12", "-12", "+.12", "12.", "12.5", "12%", "-.5%", "%"}
	for _, s := range good {
		assert.True(t, WellFormed(s), "%q should be well-formed", s)
	}

	bad := []string{"1.2.3", "--1", "1-", "12%%", "%1", "1e5", "abc", " 1", "1,000", "1%2"}
	for _, s := range bad {
		assert.False(t, WellFormed(s), "%q should be malformed", s)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Value
	}{
		{"integer string", "42", Value{Magnitude: 42}},
		{"signed fraction", "+.12", Value{Magnitude: 0.12}},
		{"negative", "-123", Value{Magnitude: -123}},
		{"percent", "12%", Value{Magnitude: 12, Percent: true}},
		{"trailing point", "12.", Value{Magnitude: 12}},
		{"empty", "", Value{}},
		{"lone sign", "-", Value{}},
		{"negative zero", "-0", Value{}},
		{"float64", 2.5, Value{Magnitude: 2.5}},
		{"int", -7, Value{Magnitude: -7}},
		{"uint8", uint8(9), Value{Magnitude: 9}},
		{"nil", nil, Value{}},
		{"value passthrough", Value{Magnitude: 3, Percent: true}, Value{Magnitude: 3, Percent: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValue_FormatErrors(t *testing.T) {
	for _, raw := range []any{"12a", "1.2.3", math.NaN(), math.Inf(1), []int{1}, true} {
		_, err := ParseValue(raw)
		require.Error(t, err, "raw %v", raw)

		var fe *FormatError
		assert.True(t, errors.As(err, &fe))
		assert.ErrorIs(t, err, ErrFormat)
	}
}

func TestValue_NumberAndRaw(t *testing.T) {
	v := Value{Magnitude: 50, Percent: true}
	assert.Equal(t, 0.5, v.Number())
	assert.Equal(t, "50%", v.Raw())
	assert.Equal(t, "0.5", v.NumberString())
	assert.True(t, v.Equal(Value{Magnitude: 0.5}))

	p := Value{Magnitude: 0.57}.AsPercent()
	assert.Equal(t, Value{Magnitude: 57, Percent: true}, p)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.3, roundTo(0.1+0.2, 2))
	assert.Equal(t, 12.35, roundTo(12.345000001, 2))
	assert.Equal(t, float64(-30), roundTo(-30, 0))
	assert.Equal(t, float64(0), roundTo(-0.0001, 2))
	assert.Equal(t, float64(MaxSafeInteger), roundTo(MaxSafeInteger, 2))
}

func TestErrorMessages(t *testing.T) {
	fe := &FormatError{Input: "1x"}
	assert.Contains(t, fe.Error(), `"1x"`)

	re := &RangeError{Value: 101, Min: 0, Max: 100}
	assert.Equal(t, "number out of range: 101 is outside [0, 100]", re.Error())
	assert.ErrorIs(t, re, ErrRange)
}
