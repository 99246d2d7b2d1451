package cli

import (
	"bytes"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/dshills/numentry/pkg/numfield"
)

var quietLogger = log.New(io.Discard, "", 0)

func outcomes(res *ReplayResult) string {
	parts := make([]string, 0, len(res.Steps))
	for _, s := range res.Steps {
		parts = append(parts, s.Key+":"+s.Outcome.String())
	}
	return strings.Join(parts, " ")
}

func TestReplay(t *testing.T) {
	withDecimals := numfield.DefaultConstraints()
	withDecimals.Decimals = 2

	nonNegative := numfield.DefaultConstraints()
	nonNegative.Min = 0

	upToThree := numfield.DefaultConstraints()
	upToThree.Max = 3

	percent := numfield.DefaultConstraints()
	percent.Percent = true
	percent.Max = 1

	tests := []struct {
		name     string
		c        numfield.Constraints
		initial  any
		script   string
		outcomes string
		text     string
		raw      string
	}{
		{
			name:     "third decimal rejected",
			c:        withDecimals,
			script:   "Backspace 12.555",
			outcomes: "Backspace:admit 1:admit 2:admit .:admit 5:admit 5:admit 5:reject",
			text:     "12.55",
			raw:      "12.55",
		},
		{
			name:     "negative number",
			c:        numfield.DefaultConstraints(),
			script:   "Backspace -30",
			outcomes: "Backspace:admit -:admit 3:admit 0:admit",
			text:     "-30",
			raw:      "-30",
		},
		{
			name:     "minus refused when min is not negative",
			c:        nonNegative,
			script:   "Backspace -3",
			outcomes: "Backspace:admit -:reject 3:admit",
			text:     "3",
			raw:      "3",
		},
		{
			name:     "arrows stop at max",
			c:        upToThree,
			initial:  "2",
			script:   "Up Up Up",
			outcomes: "Up:step Up:step Up:step",
			text:     "3",
			raw:      "3",
		},
		{
			name:     "percent field",
			c:        percent,
			script:   "Backspace 50",
			outcomes: "Backspace:admit 5:admit 0:admit",
			text:     "50%",
			raw:      "0.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Replay(tt.c, tt.initial, tt.script, quietLogger)
			if err != nil {
				t.Fatalf("Replay: %v", err)
			}
			if got := outcomes(res); got != tt.outcomes {
				t.Errorf("outcomes = %s\nwant       %s", got, tt.outcomes)
			}
			if res.Err != nil {
				t.Fatalf("commit error: %v", res.Err)
			}
			if res.Committed.Text != tt.text || res.Committed.Raw != tt.raw {
				t.Errorf("committed %q (%s), want %q (%s)", res.Committed.Text, res.Committed.Raw, tt.text, tt.raw)
			}
		})
	}
}

func TestReplay_Errors(t *testing.T) {
	if _, err := Replay(numfield.DefaultConstraints(), nil, "Ctrl-xy", quietLogger); err == nil {
		t.Error("expected error for a bad key script")
	}
	if _, err := Replay(numfield.DefaultConstraints(), "abc", "1", quietLogger); !errors.Is(err, numfield.ErrFormat) {
		t.Errorf("error = %v, want format error for the initial value", err)
	}
}

func TestWriteReplay(t *testing.T) {
	c := numfield.DefaultConstraints()
	c.Max = 100

	res, err := Replay(c, "5", "End 0 0", quietLogger)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	var out bytes.Buffer
	writeReplay(&out, res)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if !strings.HasPrefix(lines[0], "KEY") {
		t.Errorf("missing header: %q", lines[0])
	}
	rejected := false
	for _, line := range lines {
		if strings.Join(strings.Fields(line), " ") == `0 reject "50" 2` {
			rejected = true
		}
	}
	if !rejected {
		t.Errorf("second 0 should be rejected at 50:\n%s", out.String())
	}
	if last := lines[len(lines)-1]; last != "✓ committed 50 (50)" {
		t.Errorf("last line = %q", last)
	}
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()

	out, _, err := runCommand(t, dir, "replay", "Up", "--value", "9", "--max", "10")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !strings.Contains(out, "✓ committed 10 (10)") {
		t.Errorf("output = %q", out)
	}
}
