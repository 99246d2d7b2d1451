package tui

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/numentry/pkg/numfield"
)

// KeyEvent represents a keyboard input event
type KeyEvent struct {
	Key       rune   // The character pressed
	Ctrl      bool   // Ctrl modifier
	Shift     bool   // Shift modifier
	Alt       bool   // Alt modifier
	IsSpecial bool   // Whether this is a special key
	Special   string // Special key name (Enter, Escape, Tab, etc.)
}

// FieldKey maps the event to a numeric field key. Modified characters and
// unknown special keys map to numfield.KeyNone, which every field rejects.
func (e KeyEvent) FieldKey(decimalSep string) numfield.Key {
	if e.IsSpecial {
		if e.Ctrl || e.Alt || e.Shift {
			return numfield.KeyNone
		}
		return numfield.KeyFromName(e.Special)
	}
	if e.Ctrl || e.Alt {
		return numfield.KeyNone
	}
	return numfield.KeyFromRune(e.Key, decimalSep)
}

// IsArrow reports whether the event is the up or down arrow
func (e KeyEvent) IsArrow() bool {
	return e.IsSpecial && (e.Special == "Up" || e.Special == "Down")
}

// KeyHandler is a function that handles a key event
type KeyHandler func(event KeyEvent) error

// KeyBinding represents a registered keybinding
type KeyBinding struct {
	Key     KeyEvent
	Handler KeyHandler
	Label   string // Description for help text
}

// KeyboardHandler maps application-level keys (quit, focus movement) to
// handlers. Keys without a binding fall through to the focused field.
type KeyboardHandler struct {
	mu       sync.RWMutex
	bindings map[string]*KeyBinding
}

// NewKeyboardHandler creates an empty keyboard handler
func NewKeyboardHandler() *KeyboardHandler {
	return &KeyboardHandler{
		bindings: make(map[string]*KeyBinding),
	}
}

// RegisterBinding registers a keybinding. Registering the same key twice is
// an error.
func (kh *KeyboardHandler) RegisterBinding(key KeyEvent, handler KeyHandler, label string) error {
	kh.mu.Lock()
	defer kh.mu.Unlock()

	keyStr := keyEventToString(key)
	if _, exists := kh.bindings[keyStr]; exists {
		return fmt.Errorf("keybinding conflict: %s already registered", keyStr)
	}

	kh.bindings[keyStr] = &KeyBinding{
		Key:     key,
		Handler: handler,
		Label:   label,
	}
	return nil
}

// UnregisterBinding removes a keybinding
func (kh *KeyboardHandler) UnregisterBinding(key KeyEvent) {
	kh.mu.Lock()
	defer kh.mu.Unlock()

	delete(kh.bindings, keyEventToString(key))
}

// HandleKey runs the binding for event, if any, and reports whether one
// was found. The handler runs without the lock held so it may register
// further bindings.
func (kh *KeyboardHandler) HandleKey(event KeyEvent) (bool, error) {
	kh.mu.RLock()
	binding, exists := kh.bindings[keyEventToString(event)]
	kh.mu.RUnlock()

	if !exists {
		return false, nil
	}
	return true, binding.Handler(event)
}

// Bindings returns all bindings ordered by key
func (kh *KeyboardHandler) Bindings() []*KeyBinding {
	kh.mu.RLock()
	defer kh.mu.RUnlock()

	bindings := make([]*KeyBinding, 0, len(kh.bindings))
	for _, binding := range kh.bindings {
		bindings = append(bindings, binding)
	}
	sort.Slice(bindings, func(i, j int) bool {
		return FormatKeyEvent(bindings[i].Key) < FormatKeyEvent(bindings[j].Key)
	})
	return bindings
}

// keyEventToString converts a KeyEvent to a string for lookup
func keyEventToString(event KeyEvent) string {
	if event.IsSpecial {
		base := event.Special
		if event.Ctrl {
			base = "Ctrl-" + base
		}
		if event.Alt {
			base = "Alt-" + base
		}
		if event.Shift {
			base = "Shift-" + base
		}
		return base
	}

	key := string(event.Key)
	if event.Ctrl {
		key = fmt.Sprintf("Ctrl-%c", event.Key)
	}
	if event.Alt {
		key = fmt.Sprintf("Alt-%c", event.Key)
	}
	if event.Shift && event.Key >= 'a' && event.Key <= 'z' {
		// Shift+letter is represented as uppercase
		key = string(event.Key - 32)
	}

	return key
}
