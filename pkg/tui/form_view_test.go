package tui

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/dshills/goterm"

	"github.com/dshills/numentry/pkg/form"
	"github.com/dshills/numentry/pkg/tui/components"
)

const orderYAML = `
name: Order
description: Quick order
fields:
  - id: qty
    label: Quantity
    value: 3
    min: 0
    max: 100
  - id: price
    value: "12.50"
    decimal: 2
computed:
  - id: total
    label: Total
    formula: qty * price
    decimal: 2
`

func newOrderView(t *testing.T) (*FormView, *KeyboardHandler) {
	t.Helper()
	def, err := form.Parse([]byte(orderYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	v, err := NewFormView(def, func(fn func()) { fn() }, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewFormView: %v", err)
	}
	t.Cleanup(v.Close)

	kh := NewKeyboardHandler()
	if err := v.RegisterBindings(kh); err != nil {
		t.Fatalf("RegisterBindings: %v", err)
	}
	return v, kh
}

func press(t *testing.T, kh *KeyboardHandler, v *FormView, keys string) {
	t.Helper()
	events, err := ParseKeyScript(keys)
	if err != nil {
		t.Fatalf("ParseKeyScript(%q): %v", keys, err)
	}
	for _, ev := range events {
		handled, err := kh.HandleKey(ev)
		if err != nil {
			t.Fatalf("HandleKey(%s): %v", FormatKeyEvent(ev), err)
		}
		if !handled {
			if err := v.HandleKey(ev); err != nil {
				t.Fatalf("view HandleKey(%s): %v", FormatKeyEvent(ev), err)
			}
		}
	}
}

func TestFormView_InitialState(t *testing.T) {
	v, _ := newOrderView(t)

	inputs := v.Inputs()
	if len(inputs) != 2 {
		t.Fatalf("got %d inputs, want 2", len(inputs))
	}
	if inputs[0].Text() != "3" || inputs[1].Text() != "12.50" {
		t.Errorf("texts = %q, %q", inputs[0].Text(), inputs[1].Text())
	}
	if v.Status().GetMode() != "view" {
		t.Errorf("mode = %q, want view", v.Status().GetMode())
	}
	if !strings.Contains(v.Status().GetText(components.StatusBarRight), "Tab next") {
		t.Errorf("help = %q", v.Status().GetText(components.StatusBarRight))
	}
}

func TestFormView_EditAndCommit(t *testing.T) {
	v, kh := newOrderView(t)

	press(t, kh, v, "Tab")
	if v.Form().FocusIndex() != 0 || !v.Inputs()[0].IsFocused() {
		t.Fatal("Tab did not focus the first field")
	}
	if got := v.Status().GetText(components.StatusBarLeft); got != "qty [0, 100] step 1" {
		t.Errorf("status = %q", got)
	}

	press(t, kh, v, "5")
	if got := v.Inputs()[0].Text(); got != "35" {
		t.Errorf("buffer = %q, want 35", got)
	}

	press(t, kh, v, "Enter")
	if v.Form().FocusIndex() != 1 || v.Inputs()[0].IsFocused() {
		t.Fatal("Enter did not move focus on")
	}
	if got := v.Form().Values()["qty"]; got != 35 {
		t.Errorf("qty = %v, want 35", got)
	}

	press(t, kh, v, "Escape")
	if v.Form().FocusIndex() != -1 || v.Status().GetMode() != "view" {
		t.Error("Escape did not leave the form")
	}
	if err := v.Commit(); err != nil {
		t.Errorf("Commit with nothing focused: %v", err)
	}
}

func TestFormView_RejectedKey(t *testing.T) {
	v, kh := newOrderView(t)

	press(t, kh, v, "Tab x")
	if got := v.Status().GetMessage(); got != "qty: key x rejected" {
		t.Errorf("message = %q", got)
	}
	if got := v.Inputs()[0].Text(); got != "3" {
		t.Errorf("rejected key changed the buffer to %q", got)
	}
}

func TestFormView_ShiftTabWraps(t *testing.T) {
	v, kh := newOrderView(t)

	press(t, kh, v, "Shift-Tab")
	if v.Form().FocusIndex() != 1 {
		t.Errorf("focus = %d, want last field", v.Form().FocusIndex())
	}
	press(t, kh, v, "Tab")
	if v.Form().FocusIndex() != 0 {
		t.Errorf("focus = %d, want wrap to first", v.Form().FocusIndex())
	}
}

func TestFormView_UnfocusedKeysIgnored(t *testing.T) {
	v, _ := newOrderView(t)
	if err := v.HandleKey(KeyEvent{Key: '7'}); err != nil {
		t.Fatalf("HandleKey: %v", err)
	}
	if v.Inputs()[0].Text() != "3" {
		t.Error("key reached a field without focus")
	}
}

func TestFormView_Render(t *testing.T) {
	v, kh := newOrderView(t)
	press(t, kh, v, "Tab 0 Enter")

	screen := goterm.NewScreen(60, 12)
	if err := v.Render(screen); err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, want := range []string{"Order", "Quick order", "Quantity", "Total", "375.00", "EDIT"} {
		if !screenContainsText(screen, want) {
			t.Errorf("screen is missing %q", want)
		}
	}

	if err := v.Render(nil); err == nil {
		t.Error("Render(nil) should fail")
	}
}
