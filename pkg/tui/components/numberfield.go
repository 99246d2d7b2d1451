package components

import (
	"strings"
	"sync"
	"time"

	"github.com/dshills/goterm"
	"github.com/rivo/uniseg"

	"github.com/dshills/numentry/pkg/numfield"
)

// ReleaseDelay is how long after the last arrow event a held arrow key is
// considered released. Terminals report key presses only, so a held key is
// seen as a stream of auto-repeated presses.
const ReleaseDelay = 80 * time.Millisecond

// Align is the horizontal placement of text inside the input box
type Align int

const (
	AlignRight Align = iota
	AlignLeft
	AlignCenter
)

// NumberFieldStyle defines visual appearance of a number field
type NumberFieldStyle struct {
	LabelFg   goterm.Color
	Fg        goterm.Color
	Bg        goterm.Color
	FocusedFg goterm.Color
	FocusedBg goterm.Color
	ReadOnly  goterm.Color
	Rejected  goterm.Color
}

// DefaultNumberFieldStyle returns the default number field style
func DefaultNumberFieldStyle() NumberFieldStyle {
	return NumberFieldStyle{
		LabelFg:   goterm.ColorRGB(180, 180, 180),
		Fg:        goterm.ColorRGB(230, 230, 230),
		Bg:        goterm.ColorRGB(50, 50, 50),
		FocusedFg: goterm.ColorRGB(255, 255, 255),
		FocusedBg: goterm.ColorRGB(30, 60, 110),
		ReadOnly:  goterm.ColorRGB(128, 128, 128),
		Rejected:  goterm.ColorRGB(255, 90, 90),
	}
}

// classStyles adjusts the default style for a field's class name
var classStyles = map[string]func(*NumberFieldStyle){
	"money": func(s *NumberFieldStyle) {
		s.Fg = goterm.ColorRGB(140, 220, 140)
		s.FocusedFg = goterm.ColorRGB(180, 255, 180)
	},
	"warning": func(s *NumberFieldStyle) {
		s.Fg = goterm.ColorRGB(255, 210, 90)
		s.FocusedFg = goterm.ColorRGB(255, 230, 140)
	},
	"danger": func(s *NumberFieldStyle) {
		s.Fg = goterm.ColorRGB(255, 120, 120)
		s.FocusedFg = goterm.ColorRGB(255, 160, 160)
	},
	"muted": func(s *NumberFieldStyle) {
		s.Fg = goterm.ColorRGB(150, 150, 150)
		s.LabelFg = goterm.ColorRGB(120, 120, 120)
	},
}

// StyleForClass returns the style for a space-separated list of class
// names. Unknown names are ignored; later names win.
func StyleForClass(className string) NumberFieldStyle {
	style := DefaultNumberFieldStyle()
	for _, name := range strings.Fields(className) {
		if apply, ok := classStyles[name]; ok {
			apply(&style)
		}
	}
	return style
}

// NumberField is the terminal text control for a numfield.Field. It owns
// the visible text and caret; the field decides which keys are admitted
// and replaces the text on focus changes and steps.
//
// NumberField implements numfield.TextHost and numfield.SelectionControl.
type NumberField struct {
	mu sync.Mutex

	field      *numfield.Field
	label      string
	x, y       int
	labelWidth int
	width      int
	align      Align
	style      NumberFieldStyle
	focused    bool

	text      []rune
	cursor    int
	lastArrow time.Time
	rejected  int // frames left to flag a rejected key
}

// NewNumberField creates an input box of width columns at x, y with the
// label drawn to its left
func NewNumberField(label string, x, y, width int) *NumberField {
	return &NumberField{
		label:      label,
		x:          x,
		y:          y,
		labelWidth: uniseg.StringWidth(label),
		width:      max(width, 2),
		style:      DefaultNumberFieldStyle(),
	}
}

// Bind attaches the component to f and shows f's current text
func (n *NumberField) Bind(f *numfield.Field) {
	n.mu.Lock()
	n.field = f
	n.mu.Unlock()
	f.Attach(n)
}

// Field returns the bound field
func (n *NumberField) Field() *numfield.Field {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.field
}

// SetText implements numfield.TextHost
func (n *NumberField) SetText(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.text = []rune(text)
	n.cursor = min(n.cursor, len(n.text))
}

// Text returns the visible text
func (n *NumberField) Text() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return string(n.text)
}

// SelectionStart implements numfield.SelectionControl
func (n *NumberField) SelectionStart() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cursor
}

// SetSelectionRange implements numfield.SelectionControl. The terminal
// control has no selection, so only start is kept.
func (n *NumberField) SetSelectionRange(start, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cursor = max(0, min(start, len(n.text)))
}

// SetFocused sets the focused state
func (n *NumberField) SetFocused(focused bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.focused = focused
}

// IsFocused returns whether the field is focused
func (n *NumberField) IsFocused() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.focused
}

// SetAlign sets the text alignment
func (n *NumberField) SetAlign(a Align) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.align = a
}

// SetStyle sets the style
func (n *NumberField) SetStyle(style NumberFieldStyle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.style = style
}

// SetPosition sets the position
func (n *NumberField) SetPosition(x, y int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.x, n.y = x, y
}

// SetLabelWidth reserves w columns for the label so inputs line up
func (n *NumberField) SetLabelWidth(w int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.labelWidth = w
}

// HandleKey runs key through the field and applies it when admitted. It
// returns the field's decision. Any key other than an arrow releases a
// held arrow first.
func (n *NumberField) HandleKey(key numfield.Key, now time.Time) numfield.Decision {
	n.mu.Lock()
	f := n.field
	text := string(n.text)
	cursor := n.cursor
	n.mu.Unlock()

	if f == nil {
		return numfield.Decision{}
	}
	if key != numfield.KeyUp && key != numfield.KeyDown {
		f.KeyUp()
	}

	d := f.KeyDown(key, text, cursor)
	switch d.Outcome {
	case numfield.Reject:
		n.mu.Lock()
		n.rejected = 20
		n.mu.Unlock()
		return d
	case numfield.Step:
		n.mu.Lock()
		n.lastArrow = now
		n.mu.Unlock()
		return d
	}

	n.mu.Lock()
	edited := true
	switch {
	case key.Char() != 0:
		r := n.text
		n.text = append(r[:cursor:cursor], append([]rune{key.Char()}, r[cursor:]...)...)
	case key == numfield.KeyBackspace && cursor > 0:
		n.text = append(n.text[:cursor-1:cursor-1], n.text[cursor:]...)
	case key == numfield.KeyDelete && cursor < len(n.text):
		n.text = append(n.text[:cursor:cursor], n.text[cursor+1:]...)
	default:
		edited = false
	}
	n.cursor = max(0, min(d.Cursor, len(n.text)))
	text = string(n.text)
	n.mu.Unlock()

	if edited {
		f.Edited(text)
	}
	return d
}

// Tick releases a held arrow once no repeat press arrived for ReleaseDelay
func (n *NumberField) Tick(now time.Time) {
	n.mu.Lock()
	f := n.field
	last := n.lastArrow
	if n.rejected > 0 {
		n.rejected--
	}
	n.mu.Unlock()

	if f != nil && f.Repeating() && now.Sub(last) > ReleaseDelay {
		f.KeyUp()
	}
}

// Render draws the label and the input box
func (n *NumberField) Render(screen *goterm.Screen) {
	if screen == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	readOnly := n.field != nil && n.field.Constraints().ReadOnly

	labelFg := n.style.LabelFg
	labelStyle := goterm.StyleNone
	if n.focused {
		labelStyle = goterm.StyleBold
	}
	drawClusters(screen, n.x, n.y, n.labelWidth, n.label, labelFg, goterm.ColorDefault(), labelStyle)

	fg, bg := n.style.Fg, n.style.Bg
	if n.focused {
		fg, bg = n.style.FocusedFg, n.style.FocusedBg
	}
	if readOnly {
		fg = n.style.ReadOnly
	}
	if n.rejected > 0 {
		fg = n.style.Rejected
	}

	boxX := n.x + n.labelWidth + 1
	for i := 0; i < n.width; i++ {
		screen.SetCell(boxX+i, n.y, goterm.NewCell(' ', fg, bg, goterm.StyleNone))
	}

	text := string(n.text)
	textWidth := uniseg.StringWidth(text)
	cursorCol := uniseg.StringWidth(string(n.text[:n.cursor]))

	// keep one column free for a caret at the end of the text
	room := n.width - 1
	offset := 0
	switch n.align {
	case AlignRight:
		offset = room - textWidth
	case AlignCenter:
		offset = (room - textWidth) / 2
	}
	if offset < 0 {
		// text overflows; scroll so the caret stays visible
		offset = min(0, room-cursorCol)
		if !n.focused {
			offset = room - textWidth
		}
	}

	drawClippedText(screen, boxX, n.y, offset, n.width, text, fg, bg)

	if n.focused && !readOnly {
		col := offset + cursorCol
		if col >= 0 && col < n.width {
			ch := ' '
			if n.cursor < len(n.text) {
				ch = n.text[n.cursor]
			}
			screen.SetCell(boxX+col, n.y, goterm.NewCell(ch, fg, bg, goterm.StyleReverse))
		}
	}
}

// drawClusters draws text from x, stopping before maxWidth columns
func drawClusters(screen *goterm.Screen, x, y, maxWidth int, text string, fg, bg goterm.Color, style goterm.Style) {
	drawClippedText(screen, x, y, 0, maxWidth, text, fg, bg, style)
}

// drawClippedText draws text starting offset columns into a box of width
// columns at x. Grapheme clusters that fall outside the box are skipped.
func drawClippedText(screen *goterm.Screen, x, y, offset, width int, text string, fg, bg goterm.Color, style ...goterm.Style) {
	st := goterm.StyleNone
	if len(style) > 0 {
		st = style[0]
	}

	col := offset
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if col >= 0 && col+w <= width {
			screen.SetCell(x+col, y, goterm.NewCell([]rune(cluster)[0], fg, bg, st))
		}
		col += w
	}
}
