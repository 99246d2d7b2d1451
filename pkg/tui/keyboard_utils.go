package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var specialKeys = []string{"Escape", "Enter", "Tab", "Backspace", "Delete",
	"Up", "Down", "Left", "Right", "Home", "End", "PageUp", "PageDown"}

// KeyEventFromString parses a string representation of a key into a KeyEvent
// Examples: "5", "Ctrl-c", "Shift-Tab", "Escape", "Up"
func KeyEventFromString(s string) (KeyEvent, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return KeyEvent{}, fmt.Errorf("empty key string")
	}
	// a lone or trailing '-' is the minus key, not a separator
	if s == "-" {
		return KeyEvent{Key: '-'}, nil
	}

	event := KeyEvent{}
	var parts []string
	if strings.HasSuffix(s, "--") {
		parts = append(strings.Split(strings.TrimSuffix(s, "--"), "-"), "-")
	} else {
		parts = strings.Split(s, "-")
	}

	// Parse modifiers
	for i := 0; i < len(parts)-1; i++ {
		switch strings.ToLower(parts[i]) {
		case "ctrl", "control":
			event.Ctrl = true
		case "shift":
			event.Shift = true
		case "alt":
			event.Alt = true
		default:
			return KeyEvent{}, fmt.Errorf("unknown modifier: %s", parts[i])
		}
	}

	keyPart := parts[len(parts)-1]
	for _, special := range specialKeys {
		if strings.EqualFold(keyPart, special) {
			event.IsSpecial = true
			event.Special = special
			return event, nil
		}
	}

	if utf8.RuneCountInString(keyPart) != 1 {
		return KeyEvent{}, fmt.Errorf("invalid key: %s", keyPart)
	}
	event.Key, _ = utf8.DecodeRuneInString(keyPart)
	return event, nil
}

// ParseKeyScript parses whitespace-separated keys. A token that is not a
// key name is typed character by character, so "-12.5 Left Backspace" is
// six key presses.
func ParseKeyScript(script string) ([]KeyEvent, error) {
	var events []KeyEvent
	for _, tok := range strings.Fields(script) {
		if ev, err := KeyEventFromString(tok); err == nil {
			events = append(events, ev)
			continue
		}
		if isModified(tok) {
			return nil, fmt.Errorf("invalid key: %s", tok)
		}
		for _, r := range tok {
			events = append(events, KeyEvent{Key: r})
		}
	}
	return events, nil
}

// isModified reports whether tok looks like "Mod-key" with a known
// modifier, which should have parsed as a key
func isModified(tok string) bool {
	head, _, _ := strings.Cut(tok, "-")
	switch strings.ToLower(head) {
	case "ctrl", "control", "shift", "alt":
		return true
	}
	return false
}

// FormatKeyEvent returns a human-readable string representation of a KeyEvent
func FormatKeyEvent(event KeyEvent) string {
	parts := make([]string, 0, 3)

	if event.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if event.Alt {
		parts = append(parts, "Alt")
	}
	if event.Shift && event.IsSpecial {
		parts = append(parts, "Shift")
	}

	if event.IsSpecial {
		parts = append(parts, event.Special)
	} else {
		key := string(event.Key)
		if event.Shift && event.Key >= 'a' && event.Key <= 'z' {
			key = strings.ToUpper(key)
		}
		parts = append(parts, key)
	}

	return strings.Join(parts, "-")
}

// ParseKeyInput converts raw terminal bytes into key events. One read can
// carry several keys when the terminal batches auto-repeat or paste input.
func ParseKeyInput(buf []byte) []KeyEvent {
	var events []KeyEvent
	for len(buf) > 0 {
		ev, n := parseOneKey(buf)
		events = append(events, ev)
		buf = buf[n:]
	}
	return events
}

// escapeSequences maps CSI and SS3 sequences (without the leading ESC) to
// special keys
var escapeSequences = map[string]KeyEvent{
	"[A":  {IsSpecial: true, Special: "Up"},
	"[B":  {IsSpecial: true, Special: "Down"},
	"[C":  {IsSpecial: true, Special: "Right"},
	"[D":  {IsSpecial: true, Special: "Left"},
	"[H":  {IsSpecial: true, Special: "Home"},
	"[F":  {IsSpecial: true, Special: "End"},
	"[Z":  {IsSpecial: true, Special: "Tab", Shift: true},
	"[1~": {IsSpecial: true, Special: "Home"},
	"[3~": {IsSpecial: true, Special: "Delete"},
	"[4~": {IsSpecial: true, Special: "End"},
	"[5~": {IsSpecial: true, Special: "PageUp"},
	"[6~": {IsSpecial: true, Special: "PageDown"},
	"[7~": {IsSpecial: true, Special: "Home"},
	"[8~": {IsSpecial: true, Special: "End"},
	"OA":  {IsSpecial: true, Special: "Up"},
	"OB":  {IsSpecial: true, Special: "Down"},
	"OC":  {IsSpecial: true, Special: "Right"},
	"OD":  {IsSpecial: true, Special: "Left"},
	"OH":  {IsSpecial: true, Special: "Home"},
	"OF":  {IsSpecial: true, Special: "End"},
}

// parseOneKey decodes the first key in buf and returns it with the number
// of bytes consumed
func parseOneKey(buf []byte) (KeyEvent, int) {
	if buf[0] == 27 {
		if len(buf) == 1 {
			return KeyEvent{IsSpecial: true, Special: "Escape"}, 1
		}
		if buf[1] == '[' || buf[1] == 'O' {
			// sequences end at the first byte in 0x40..0x7e after the introducer
			for i := 2; i < len(buf); i++ {
				if buf[i] >= 0x40 && buf[i] <= 0x7e {
					if ev, ok := escapeSequences[string(buf[1:i+1])]; ok {
						return ev, i + 1
					}
					return KeyEvent{}, i + 1
				}
			}
			return KeyEvent{}, len(buf)
		}
		// ESC followed by a character is Alt+character
		r, size := utf8.DecodeRune(buf[1:])
		return KeyEvent{Key: r, Alt: true}, 1 + size
	}

	switch buf[0] {
	case 9:
		return KeyEvent{IsSpecial: true, Special: "Tab"}, 1
	case 13, 10:
		return KeyEvent{IsSpecial: true, Special: "Enter"}, 1
	case 127, 8:
		return KeyEvent{IsSpecial: true, Special: "Backspace"}, 1
	}

	// Ctrl combinations
	if buf[0] < 32 {
		return KeyEvent{Key: rune(buf[0] + 'a' - 1), Ctrl: true}, 1
	}

	r, size := utf8.DecodeRune(buf)
	return KeyEvent{Key: r, Shift: r >= 'A' && r <= 'Z'}, size
}

// HelpFormatter formats keybindings for display in the status line or help
// output
type HelpFormatter struct {
	maxKeyWidth int
}

// NewHelpFormatter creates a new help formatter
func NewHelpFormatter() *HelpFormatter {
	return &HelpFormatter{
		maxKeyWidth: 15,
	}
}

// FormatBindings formats a list of keybindings, one per line
func (hf *HelpFormatter) FormatBindings(bindings []*KeyBinding) string {
	if len(bindings) == 0 {
		return "No keybindings registered"
	}

	maxWidth := 0
	for _, binding := range bindings {
		keyStr := FormatKeyEvent(binding.Key)
		if len(keyStr) > maxWidth && len(keyStr) < hf.maxKeyWidth {
			maxWidth = len(keyStr)
		}
	}

	var sb strings.Builder
	for _, binding := range bindings {
		keyStr := FormatKeyEvent(binding.Key)
		padding := strings.Repeat(" ", max(maxWidth-len(keyStr), 0)+2)
		fmt.Fprintf(&sb, "%s%s%s\n", keyStr, padding, binding.Label)
	}
	return sb.String()
}

// Summary formats bindings on a single line, e.g. "Tab next  Ctrl-c quit"
func (hf *HelpFormatter) Summary(bindings []*KeyBinding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, FormatKeyEvent(b.Key)+" "+b.Label)
	}
	return strings.Join(parts, "  ")
}
