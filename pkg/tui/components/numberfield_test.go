package components

import (
	"io"
	"log"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dshills/goterm"

	"github.com/dshills/numentry/pkg/numfield"
)

type stillTicker struct {
	ch chan time.Time
}

func (t *stillTicker) C() <-chan time.Time { return t.ch }
func (t *stillTicker) Stop()               {}

// boundField creates a component bound to a field whose repeat ticker
// never fires, so stepping only happens when a test asks for it
func boundField(t *testing.T, c numfield.Constraints, initial any, width int) *NumberField {
	t.Helper()
	f, err := numfield.New(c, initial,
		numfield.WithLogger(log.New(io.Discard, "", 0)),
		numfield.WithTicker(func(time.Duration) numfield.Ticker {
			return &stillTicker{ch: make(chan time.Time)}
		}),
	)
	if err != nil {
		t.Fatalf("numfield.New: %v", err)
	}
	t.Cleanup(f.Close)

	n := NewNumberField("Qty", 0, 0, width)
	n.Bind(f)
	return n
}

func rowText(screen *goterm.Screen, y, from, to int) string {
	var b strings.Builder
	for x := from; x < to; x++ {
		b.WriteRune(screen.GetCell(x, y).Ch)
	}
	return b.String()
}

func TestNumberField_BindShowsDisplayText(t *testing.T) {
	c := numfield.DefaultConstraints()
	c.Decimals = 2
	c.ThousandsSeparator = ","
	n := boundField(t, c, 1234.5, 12)

	if got := n.Text(); got != "1,234.50" {
		t.Errorf("Text() = %q, want %q", got, "1,234.50")
	}
	if n.Field() == nil {
		t.Error("Field() returned nil after Bind")
	}
}

func TestNumberField_Typing(t *testing.T) {
	c := numfield.DefaultConstraints()
	c.Decimals = 2
	c.ThousandsSeparator = ","
	n := boundField(t, c, 1234.5, 12)
	f := n.Field()
	now := time.Now()

	f.EnterEditMode()
	if n.Text() != "1234.5" || n.SelectionStart() != 6 {
		t.Fatalf("edit buffer = %q at %d", n.Text(), n.SelectionStart())
	}

	if d := n.HandleKey(numfield.Key7, now); d.Outcome != numfield.Admit {
		t.Fatalf("7 = %s, want admit", d.Outcome)
	}
	if n.Text() != "1234.57" || f.Text() != "1234.57" {
		t.Errorf("after 7: host %q field %q", n.Text(), f.Text())
	}

	// a third decimal is refused
	if d := n.HandleKey(numfield.Key1, now); d.Outcome != numfield.Reject {
		t.Errorf("third decimal = %s, want reject", d.Outcome)
	}
	if n.rejected == 0 {
		t.Error("rejected key not flagged")
	}

	n.HandleKey(numfield.KeyBackspace, now)
	n.HandleKey(numfield.KeyHome, now)
	n.HandleKey(numfield.KeyDelete, now)
	if n.Text() != "234.5" || n.SelectionStart() != 0 {
		t.Errorf("after edits: %q at %d", n.Text(), n.SelectionStart())
	}

	if _, err := f.ExitEditMode(n.Text()); err != nil {
		t.Fatalf("ExitEditMode: %v", err)
	}
	if n.Text() != "234.50" {
		t.Errorf("committed text = %q, want %q", n.Text(), "234.50")
	}
}

func TestNumberField_Unbound(t *testing.T) {
	n := NewNumberField("x", 0, 0, 5)
	if d := n.HandleKey(numfield.Key1, time.Now()); d.Outcome != numfield.Reject {
		t.Errorf("unbound HandleKey = %s, want reject", d.Outcome)
	}
	n.Tick(time.Now())
}

func TestNumberField_HeldArrowRelease(t *testing.T) {
	n := boundField(t, numfield.DefaultConstraints(), 5, 8)
	f := n.Field()
	t0 := time.Now()

	if d := n.HandleKey(numfield.KeyUp, t0); d.Outcome != numfield.Step {
		t.Fatalf("Up = %s, want step", d.Outcome)
	}
	if !f.Repeating() {
		t.Fatal("Up did not start repeating")
	}

	// auto-repeated presses keep the hold alive
	n.HandleKey(numfield.KeyUp, t0.Add(40*time.Millisecond))
	n.Tick(t0.Add(100 * time.Millisecond))
	if !f.Repeating() {
		t.Fatal("released before ReleaseDelay elapsed")
	}

	n.Tick(t0.Add(40*time.Millisecond + ReleaseDelay + time.Millisecond))
	if f.Repeating() {
		t.Error("hold not released after ReleaseDelay")
	}

	n.HandleKey(numfield.KeyDown, t0)
	n.HandleKey(numfield.KeyLeft, t0)
	if f.Repeating() {
		t.Error("non-arrow key did not release the hold")
	}
}

func TestNumberField_Render(t *testing.T) {
	tests := []struct {
		name  string
		align Align
		value any
		width int
		want  string
	}{
		{"right", AlignRight, 42, 6, "   42 "},
		{"left", AlignLeft, 42, 6, "42    "},
		{"center", AlignCenter, 42, 7, "  42   "},
		{"overflow keeps the tail", AlignRight, 123456, 4, "456 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := boundField(t, numfield.DefaultConstraints(), tt.value, tt.width)
			n.SetAlign(tt.align)

			screen := goterm.NewScreen(30, 2)
			n.Render(screen)

			if got := rowText(screen, 0, 0, 3); got != "Qty" {
				t.Errorf("label = %q", got)
			}
			// label width 3, one column gap
			if got := rowText(screen, 0, 4, 4+tt.width); got != tt.want {
				t.Errorf("box = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumberField_RenderCaret(t *testing.T) {
	n := boundField(t, numfield.DefaultConstraints(), 42, 6)
	n.SetFocused(true)
	n.SetSelectionRange(2, 2)

	screen := goterm.NewScreen(30, 2)
	n.Render(screen)

	// text "42" ends at column 4 of the box; the caret sits after it
	cell := screen.GetCell(4+5, 0)
	if cell.Ch != ' ' || cell.Style != goterm.StyleReverse {
		t.Errorf("caret cell = %q style %v", cell.Ch, cell.Style)
	}

	n.SetPosition(0, 1)
	n.SetLabelWidth(5)
	n.Render(screen)
	if got := rowText(screen, 1, 6, 12); got != "   42 " {
		t.Errorf("moved box = %q", got)
	}
}

func TestStyleForClass(t *testing.T) {
	def := DefaultNumberFieldStyle()
	if got := StyleForClass("unknown"); !reflect.DeepEqual(got, def) {
		t.Error("unknown class changed the style")
	}

	money := StyleForClass("money")
	if reflect.DeepEqual(money.Fg, def.Fg) {
		t.Error("money class kept the default foreground")
	}

	// later names win
	muted := StyleForClass("muted")
	if got := StyleForClass("money muted"); !reflect.DeepEqual(got.Fg, muted.Fg) {
		t.Error("later class did not override the earlier one")
	}
}
