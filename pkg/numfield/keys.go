package numfield

import "strings"

// Key identifies a key the field knows about. Anything that maps to KeyNone
// is outside the allow-list and is always rejected.
type Key uint8

const (
	KeyNone Key = iota

	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9

	KeyPlus
	KeyMinus
	KeyDecimalPoint
	KeyPercent

	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyBackspace
	KeyDelete
	KeyTab
	KeyEnter
	KeyEscape

	keyCount
)

var keyNames = [keyCount]string{
	KeyNone:         "None",
	Key0:            "0",
	Key1:            "1",
	Key2:            "2",
	Key3:            "3",
	Key4:            "4",
	Key5:            "5",
	Key6:            "6",
	Key7:            "7",
	Key8:            "8",
	Key9:            "9",
	KeyPlus:         "+",
	KeyMinus:        "-",
	KeyDecimalPoint: ".",
	KeyPercent:      "%",
	KeyUp:           "Up",
	KeyDown:         "Down",
	KeyLeft:         "Left",
	KeyRight:        "Right",
	KeyHome:         "Home",
	KeyEnd:          "End",
	KeyBackspace:    "Backspace",
	KeyDelete:       "Delete",
	KeyTab:          "Tab",
	KeyEnter:        "Enter",
	KeyEscape:       "Escape",
}

// String returns the key's character or name
func (k Key) String() string {
	if k >= keyCount {
		return keyNames[KeyNone]
	}
	return keyNames[k]
}

// Allowed reports whether the key is on the allow-list
func (k Key) Allowed() bool {
	return k > KeyNone && k < keyCount
}

// IsDigit reports whether the key is one of 0-9
func (k Key) IsDigit() bool {
	return k >= Key0 && k <= Key9
}

// IsNavigation reports whether the key moves focus or the cursor without
// touching the buffer
func (k Key) IsNavigation() bool {
	switch k {
	case KeyLeft, KeyRight, KeyHome, KeyEnd, KeyTab, KeyEnter, KeyEscape:
		return true
	}
	return false
}

// Char returns the character the key inserts into a raw buffer, or 0 for
// keys that do not insert text.
func (k Key) Char() rune {
	switch {
	case k.IsDigit():
		return '0' + rune(k-Key0)
	case k == KeyPlus:
		return '+'
	case k == KeyMinus:
		return '-'
	case k == KeyDecimalPoint:
		return '.'
	case k == KeyPercent:
		return '%'
	}
	return 0
}

// KeyFromRune maps a typed character to a key. Both '.' and the configured
// decimal separator map to KeyDecimalPoint; the raw buffer always stores '.'.
func KeyFromRune(r rune, decimalSep string) Key {
	switch {
	case isDigit(r):
		return Key0 + Key(r-'0')
	case r == '+':
		return KeyPlus
	case r == '-':
		return KeyMinus
	case r == '.':
		return KeyDecimalPoint
	case r == '%':
		return KeyPercent
	case decimalSep != "" && string(r) == decimalSep:
		return KeyDecimalPoint
	}
	return KeyNone
}

// KeyFromName maps a key name such as "Up" or "backspace" to a key.
// Single characters are resolved with KeyFromRune.
func KeyFromName(name string) Key {
	if r := []rune(name); len(r) == 1 {
		return KeyFromRune(r[0], ".")
	}
	for k := KeyUp; k < keyCount; k++ {
		if strings.EqualFold(keyNames[k], name) {
			return k
		}
	}
	switch strings.ToLower(name) {
	case "arrowup":
		return KeyUp
	case "arrowdown":
		return KeyDown
	case "arrowleft":
		return KeyLeft
	case "arrowright":
		return KeyRight
	case "del":
		return KeyDelete
	case "bs":
		return KeyBackspace
	case "esc":
		return KeyEscape
	}
	return KeyNone
}
