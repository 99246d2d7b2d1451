package tui

import (
	"fmt"
	"log"
	"time"

	"github.com/dshills/goterm"
	"github.com/rivo/uniseg"

	"github.com/dshills/numentry/pkg/form"
	"github.com/dshills/numentry/pkg/numfield"
	"github.com/dshills/numentry/pkg/tui/components"
)

const (
	fieldsTop  = 3
	inputWidth = 18
)

// FormView renders a form as labelled input boxes followed by its computed
// read-outs, with a status bar on the last line.
type FormView struct {
	form       *form.Form
	inputs     []*components.NumberField
	status     *components.StatusBar
	help       string
	labelWidth int
	now        func() time.Time
}

// NewFormView creates the fields of def. Repeat ticks of every field are
// routed through dispatch, normally App.Dispatch.
func NewFormView(def *form.Definition, dispatch numfield.Dispatcher, logger *log.Logger) (*FormView, error) {
	if logger == nil {
		logger = log.Default()
	}

	f, err := form.New(def,
		form.WithLogger(logger),
		form.WithFieldOptions(func(form.FieldSpec) []numfield.Option {
			return []numfield.Option{numfield.WithDispatcher(dispatch)}
		}),
	)
	if err != nil {
		return nil, err
	}

	v := &FormView{
		form:   f,
		status: components.NewStatusBar(0, 80),
		now:    time.Now,
	}

	for _, spec := range def.Fields {
		v.labelWidth = max(v.labelWidth, uniseg.StringWidth(fieldLabel(spec)))
	}
	for _, spec := range def.Computed {
		v.labelWidth = max(v.labelWidth, uniseg.StringWidth(computedLabel(spec)))
	}

	for i, spec := range def.Fields {
		input := components.NewNumberField(fieldLabel(spec), 2, fieldsTop+i, inputWidth)
		input.SetLabelWidth(v.labelWidth)
		input.SetAlign(alignOf(spec.Align()))
		input.SetStyle(components.StyleForClass(spec.ClassName))
		input.Bind(f.Fields()[i])
		v.inputs = append(v.inputs, input)
	}
	v.updateStatus()
	return v, nil
}

// Form returns the running form
func (v *FormView) Form() *form.Form {
	return v.form
}

// Inputs returns the input components in field order
func (v *FormView) Inputs() []*components.NumberField {
	return v.inputs
}

// Status returns the status bar
func (v *FormView) Status() *components.StatusBar {
	return v.status
}

// RegisterBindings installs focus movement keys
func (v *FormView) RegisterBindings(kh *KeyboardHandler) error {
	bindings := []struct {
		key   KeyEvent
		move  func() error
		label string
	}{
		{KeyEvent{IsSpecial: true, Special: "Tab"}, v.form.Next, "next"},
		{KeyEvent{IsSpecial: true, Special: "Tab", Shift: true}, v.form.Prev, "prev"},
		{KeyEvent{IsSpecial: true, Special: "Enter"}, v.form.Next, "commit"},
		{KeyEvent{IsSpecial: true, Special: "Escape"}, v.form.Blur, "leave"},
	}
	for _, b := range bindings {
		move := b.move
		if err := kh.RegisterBinding(b.key, func(KeyEvent) error {
			v.moveFocus(move)
			return nil
		}, b.label); err != nil {
			return err
		}
	}
	v.help = NewHelpFormatter().Summary(kh.Bindings())
	v.updateStatus()
	return nil
}

// HandleKey passes an unbound key to the focused input
func (v *FormView) HandleKey(event KeyEvent) error {
	i := v.form.FocusIndex()
	if i < 0 {
		return nil
	}
	spec := v.form.Spec(i)
	sep := spec.Constraints().DecimalSeparator

	d := v.inputs[i].HandleKey(event.FieldKey(sep), v.now())
	if d.Outcome == numfield.Reject {
		v.status.SetMessage(fmt.Sprintf("%s: key %s rejected", spec.ID, FormatKeyEvent(event)), 45)
	}
	return nil
}

// Tick advances per-frame state: held arrow release and status messages
func (v *FormView) Tick(now time.Time) {
	for _, input := range v.inputs {
		input.Tick(now)
	}
	v.status.Update()
}

// Commit leaves edit mode so the focused field commits its buffer
func (v *FormView) Commit() error {
	err := v.form.Blur()
	v.syncFocus()
	return err
}

// Close stops every field
func (v *FormView) Close() {
	v.form.Close()
}

// Render draws the form
func (v *FormView) Render(screen *goterm.Screen) error {
	if screen == nil {
		return fmt.Errorf("nil screen")
	}
	width, height := screen.Size()

	def := v.form.Definition()
	fg := goterm.ColorRGB(230, 230, 230)
	screen.DrawText(0, 0, def.Name, fg, goterm.ColorDefault(), goterm.StyleBold)
	if def.Description != "" {
		screen.DrawText(0, 1, def.Description, fg, goterm.ColorDefault(), goterm.StyleDim)
	}

	for _, input := range v.inputs {
		input.Render(screen)
	}

	y := fieldsTop + len(v.inputs) + 1
	for _, c := range v.form.Evaluate() {
		label := computedLabel(c.Spec)
		screen.DrawText(2, y, label, goterm.ColorRGB(180, 180, 180), goterm.ColorDefault(), goterm.StyleNone)

		x := 2 + v.labelWidth + 1
		if c.Err != nil {
			screen.DrawText(x, y, "error: "+c.Err.Error(), goterm.ColorRGB(255, 90, 90), goterm.ColorDefault(), goterm.StyleNone)
		} else {
			pad := max(inputWidth-1-uniseg.StringWidth(c.Text), 0)
			screen.DrawText(x+pad, y, c.Text, fg, goterm.ColorDefault(), goterm.StyleBold)
		}
		y++
	}

	v.status.SetPosition(height-1, width)
	v.status.Render(screen)
	return nil
}

// moveFocus runs a focus change and reports a rejected commit
func (v *FormView) moveFocus(move func() error) {
	if err := move(); err != nil {
		v.status.SetMessage(err.Error(), 90)
	}
	v.syncFocus()
}

func (v *FormView) syncFocus() {
	focus := v.form.FocusIndex()
	for i, input := range v.inputs {
		input.SetFocused(i == focus)
	}
	v.updateStatus()
}

func (v *FormView) updateStatus() {
	v.status.SetText(components.StatusBarRight, v.help)

	i := v.form.FocusIndex()
	if i < 0 {
		v.status.SetMode("view")
		v.status.SetText(components.StatusBarLeft, fmt.Sprintf("%d fields", len(v.inputs)))
		return
	}

	spec := v.form.Spec(i)
	c := spec.Constraints()
	v.status.SetMode("edit")
	left := fmt.Sprintf("%s [%g, %g] step %g", spec.ID, c.Min, c.Max, c.Step)
	if c.ReadOnly {
		left += " read-only"
	}
	v.status.SetText(components.StatusBarLeft, left)
}

func fieldLabel(spec form.FieldSpec) string {
	if spec.Label != "" {
		return spec.Label
	}
	return spec.ID
}

func computedLabel(spec form.ComputedSpec) string {
	if spec.Label != "" {
		return spec.Label
	}
	return spec.ID
}

func alignOf(a form.TextAlign) components.Align {
	switch a {
	case form.AlignLeft:
		return components.AlignLeft
	case form.AlignCenter:
		return components.AlignCenter
	}
	return components.AlignRight
}
