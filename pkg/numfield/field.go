// Package numfield implements a controlled numeric entry field: a keystroke
// validator that keeps an edit buffer a well-formed number within
// Constraints, and a state machine that reconciles the committed value with
// its formatted display text across focus changes.
//
// The package renders nothing. A host text control reports key presses,
// focus changes and edits; the field answers with admit/reject decisions
// and pushes display text back through TextHost.
package numfield

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/numentry/pkg/numfmt"
)

// Mode is the presentation mode of a field
type Mode string

const (
	// ModeInactive shows the formatted display text
	ModeInactive Mode = "inactive"
	// ModeActive shows the raw edit buffer
	ModeActive Mode = "active"
)

// TextHost is the text control a field is attached to. The field replaces
// its text on focus changes and while stepping; cursor moves go through
// SetCursorOffset, so a host should also implement SelectionControl or
// ColumnControl.
type TextHost interface {
	SetText(text string)
}

// Change describes a value notification sent to OnChange
type Change struct {
	Raw       string // unformatted number, "0.5" for 50%
	Value     Value
	Text      string // display text at the time of the change
	Committed bool   // false for in-progress edits reported through Edited
}

// Option configures a Field
type Option func(*Field)

// WithFormatter replaces the default numfmt formatter
func WithFormatter(f numfmt.Formatter) Option {
	return func(fd *Field) {
		if f != nil {
			fd.format = f
		}
	}
}

// WithTicker replaces the ticker used for continuous stepping
func WithTicker(factory TickerFactory) Option {
	return func(fd *Field) {
		if factory != nil {
			fd.newTicker = factory
		}
	}
}

// WithDispatcher routes repeat ticks through d, e.g. onto a UI event loop
func WithDispatcher(d Dispatcher) Option {
	return func(fd *Field) {
		if d != nil {
			fd.dispatch = d
		}
	}
}

// WithLogger sets the logger for commits, clamps and repeat transitions.
// The standard logger is used otherwise.
func WithLogger(l *log.Logger) Option {
	return func(fd *Field) {
		fd.logger = l
	}
}

// WithHost attaches the text control at construction
func WithHost(h TextHost) Option {
	return func(fd *Field) {
		fd.host = h
	}
}

// WithID overrides the generated field ID
func WithID(id string) Option {
	return func(fd *Field) {
		if id != "" {
			fd.id = id
		}
	}
}

// OnFocus registers the callback fired when the field enters edit mode
func OnFocus(fn func(Value)) Option {
	return func(fd *Field) { fd.onFocus = fn }
}

// OnBlur registers the callback fired with the display text when the field
// leaves edit mode
func OnBlur(fn func(text string)) Option {
	return func(fd *Field) { fd.onBlur = fn }
}

// OnChange registers the callback fired on edits, steps and commits
func OnChange(fn func(Change)) Option {
	return func(fd *Field) { fd.onChange = fn }
}

// Field is the entry state machine. It owns the committed value, its
// display text and the edit mode. All methods are safe for concurrent use;
// callbacks and host updates run after the internal lock is released.
type Field struct {
	mu sync.Mutex

	id        string
	cons      Constraints
	format    numfmt.Formatter
	newTicker TickerFactory
	dispatch  Dispatcher
	logger    *log.Logger
	host      TextHost

	onFocus  func(Value)
	onBlur   func(string)
	onChange func(Change)

	value  Value
	text   string
	mode   Mode
	buffer string
	cursor int
	repeat *repeater
	closed bool
}

// New creates a field with the given constraints and initial value. The
// initial value follows SetValue rules; nil means zero.
func New(c Constraints, initial any, opts ...Option) (*Field, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	f := &Field{
		id:        uuid.NewString(),
		cons:      c,
		format:    numfmt.Default(),
		newTicker: NewTicker,
		dispatch:  dispatchInline,
		mode:      ModeInactive,
	}
	for _, opt := range opts {
		opt(f)
	}

	v, err := f.checkValue(initial)
	if err != nil {
		return nil, fmt.Errorf("initial value: %w", err)
	}
	f.value = v
	f.text = f.display(v)
	return f, nil
}

// ID returns the field's identifier
func (f *Field) ID() string {
	return f.id
}

// Constraints returns a copy of the field's constraints
func (f *Field) Constraints() Constraints {
	return f.cons
}

// Attach connects a text control, replacing any previous one, and pushes
// the current text into it.
func (f *Field) Attach(h TextHost) {
	f.mu.Lock()
	f.host = h
	text := f.currentText()
	f.mu.Unlock()

	if h != nil {
		h.SetText(text)
	}
}

// Value returns the committed value
func (f *Field) Value() Value {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Mode returns the current mode
func (f *Field) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Text returns what the host should show: the edit buffer while active,
// the display text otherwise.
func (f *Field) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentText()
}

// Cursor returns the last cursor offset recorded by KeyDown or a step
func (f *Field) Cursor() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

// Repeating reports whether continuous stepping is running
func (f *Field) Repeating() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repeat != nil
}

// GetValue returns the committed magnitude through the formatter. A
// percent value is returned as its displayed magnitude without the '%'
// suffix ("50" for 50%), unlike the display text.
func (f *Field) GetValue() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.format.Format(f.value.Magnitude, f.cons.Decimals, f.cons.DecimalSeparator, f.cons.ThousandsSeparator)
}

// SetValue commits raw, a string matching the number grammar or a Go
// number. It returns a *FormatError or *RangeError and leaves the field
// unchanged when raw is not acceptable. Setting the same value twice is a
// no-op the second time.
func (f *Field) SetValue(raw any) error {
	f.mu.Lock()
	post, err := f.setValueLocked(raw)
	f.mu.Unlock()

	post.run()
	return err
}

// OnExternalValueChange applies a value supplied by the owner of the field.
// A value equal to the committed one is ignored, so echoing the field's own
// OnChange back into it does nothing.
func (f *Field) OnExternalValueChange(next any) error {
	f.mu.Lock()
	v, err := ParseValue(next)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	if f.normalize(v).Equal(f.value) {
		f.mu.Unlock()
		return nil
	}
	post, err := f.setValueLocked(v)
	f.mu.Unlock()

	post.run()
	return err
}

// EnterEditMode switches to active mode and returns the raw edit buffer.
// Calling it while active returns the current buffer.
func (f *Field) EnterEditMode() string {
	f.mu.Lock()
	if f.mode == ModeActive {
		buf := f.buffer
		f.mu.Unlock()
		return buf
	}

	f.mode = ModeActive
	f.buffer = f.rawBuffer(f.value)
	f.cursor = utf8.RuneCountInString(f.buffer)

	var post actions
	f.pushHost(&post, f.buffer, f.cursor)
	if f.onFocus != nil {
		fn, v := f.onFocus, f.value
		post.add(func() { fn(v) })
	}
	buf := f.buffer
	f.mu.Unlock()

	post.run()
	return buf
}

// Edited records the host's buffer after it applied an admitted key and
// reports it through OnChange when it reads as a number.
func (f *Field) Edited(text string) {
	f.mu.Lock()
	if f.mode != ModeActive {
		f.mu.Unlock()
		return
	}
	f.buffer = text

	var post actions
	if v, err := f.parseBuffer(text); err == nil && f.onChange != nil {
		fn := f.onChange
		ch := Change{Raw: v.NumberString(), Value: v, Text: text}
		post.add(func() { fn(ch) })
	}
	f.mu.Unlock()

	post.run()
}

// ExitEditMode leaves active mode and commits raw, the host's buffer. An
// empty or digitless buffer reads as zero, the magnitude is rounded to the
// configured decimals and clamped into [Min, Max]. A malformed buffer
// returns a *FormatError and keeps the previous value.
func (f *Field) ExitEditMode(raw string) (Change, error) {
	f.mu.Lock()
	f.stopRepeatLocked()
	f.mode = ModeInactive
	f.buffer = ""
	f.cursor = 0

	var post actions
	v, err := f.parseBuffer(raw)
	if err != nil {
		f.pushHost(&post, f.text, -1)
		f.mu.Unlock()
		post.run()
		return Change{}, err
	}

	v.Magnitude = roundTo(v.Magnitude, f.cons.Decimals)
	v = f.normalize(v)
	if n := v.Number(); !f.cons.contains(n) {
		clamped := f.fromNumber(f.cons.clamp(n), v.Percent)
		f.logf("field %s: %s clamped to %s", f.id, v.NumberString(), clamped.NumberString())
		v = clamped
	}
	f.commitLocked(v)

	ch := Change{Raw: v.NumberString(), Value: v, Text: f.text, Committed: true}
	f.pushHost(&post, f.text, -1)
	if f.onBlur != nil {
		fn, text := f.onBlur, f.text
		post.add(func() { fn(text) })
	}
	if f.onChange != nil {
		fn := f.onChange
		post.add(func() { fn(ch) })
	}
	f.mu.Unlock()

	post.run()
	return ch, nil
}

// KeyDown evaluates a key press against text with the caret at cursor. An
// admitted key records the resulting cursor; an arrow key starts continuous
// stepping unless it is already running.
func (f *Field) KeyDown(key Key, text string, cursor int) Decision {
	f.mu.Lock()
	defer f.mu.Unlock()

	d := Evaluate(text, cursor, key, f.cons)
	switch d.Outcome {
	case Admit:
		f.cursor = d.Cursor
	case Step:
		f.startRepeatLocked(d.Direction)
	}
	return d
}

// KeyUp stops continuous stepping
func (f *Field) KeyUp() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopRepeatLocked()
}

// StepBy adds direction*Step to the value and commits it when it stays
// within bounds. It returns true once the value is at or beyond a bound,
// which tells a repeating caller to stop.
func (f *Field) StepBy(direction int) bool {
	f.mu.Lock()
	stop, post := f.stepLocked(direction)
	f.mu.Unlock()

	post.run()
	return stop
}

// Close stops continuous stepping and detaches the host. The field keeps
// answering queries but never starts another repeat.
func (f *Field) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopRepeatLocked()
	f.closed = true
	f.host = nil
}

func (f *Field) setValueLocked(raw any) (actions, error) {
	v, err := f.checkValue(raw)
	if err != nil {
		return nil, err
	}
	if v == f.value {
		return nil, nil
	}
	f.commitLocked(v)

	var post actions
	if f.mode == ModeActive {
		f.buffer = f.rawBuffer(v)
		f.cursor = utf8.RuneCountInString(f.buffer)
		f.pushHost(&post, f.buffer, f.cursor)
	} else {
		f.pushHost(&post, f.text, -1)
	}
	return post, nil
}

// checkValue parses raw and verifies the bounds without touching state
func (f *Field) checkValue(raw any) (Value, error) {
	v, err := ParseValue(raw)
	if err != nil {
		return Value{}, err
	}
	v = f.normalize(v)
	if n := v.Number(); !f.cons.contains(n) {
		return Value{}, &RangeError{Value: n, Min: f.cons.Min, Max: f.cons.Max}
	}
	return v, nil
}

func (f *Field) stepLocked(direction int) (bool, actions) {
	base := f.value
	if f.mode == ModeActive {
		if v, err := f.parseBuffer(f.buffer); err == nil {
			base = f.normalize(v)
		}
	}

	prec := max(f.cons.Decimals, fractionDigits(f.cons.Step))
	next := Value{
		Magnitude: roundTo(base.Magnitude+float64(direction)*f.cons.Step, prec),
		Percent:   base.Percent,
	}
	n := next.Number()

	var post actions
	if f.cons.contains(n) {
		f.commitLocked(next)
		if f.mode == ModeActive {
			f.buffer = f.rawBuffer(next)
			f.cursor = utf8.RuneCountInString(f.buffer)
			f.pushHost(&post, f.buffer, f.cursor)
		} else {
			f.pushHost(&post, f.text, -1)
		}
		if f.onChange != nil {
			fn := f.onChange
			ch := Change{Raw: next.NumberString(), Value: next, Text: f.text, Committed: true}
			post.add(func() { fn(ch) })
		}
	}
	return n <= f.cons.Min || n >= f.cons.Max, post
}

func (f *Field) startRepeatLocked(direction int) {
	if f.repeat != nil || f.closed {
		return
	}
	r := &repeater{direction: direction, done: make(chan struct{})}
	f.repeat = r
	f.logf("field %s: repeat started (direction %+d)", f.id, direction)
	go r.run(f.newTicker(RepeatInterval), f.dispatch, f.repeatTick)
}

func (f *Field) stopRepeatLocked() {
	if f.repeat == nil {
		return
	}
	f.repeat.cancel()
	f.repeat = nil
	f.logf("field %s: repeat stopped", f.id)
}

// repeatTick applies one step for r unless r has been cancelled
func (f *Field) repeatTick(r *repeater) {
	f.mu.Lock()
	if f.repeat != r {
		f.mu.Unlock()
		return
	}
	stop, post := f.stepLocked(r.direction)
	if stop {
		f.stopRepeatLocked()
	}
	f.mu.Unlock()

	post.run()
}

func (f *Field) commitLocked(v Value) {
	f.value = v
	f.text = f.display(v)
	f.logf("field %s: committed %s", f.id, v.NumberString())
}

// parseBuffer reads an edit buffer. In a percent field the digits are a
// percentage whether or not the '%' suffix was typed.
func (f *Field) parseBuffer(text string) (Value, error) {
	v, err := parseText(strings.TrimSpace(text))
	if err != nil {
		return Value{}, err
	}
	if f.cons.Percent {
		v.Percent = true
	}
	return v, nil
}

// normalize presents v the way this field displays values
func (f *Field) normalize(v Value) Value {
	if f.cons.Percent {
		return v.AsPercent()
	}
	return v
}

// fromNumber builds a value for n with the requested presentation
func (f *Field) fromNumber(n float64, percent bool) Value {
	if percent {
		return Value{Magnitude: roundTo(n*100, 10), Percent: true}
	}
	return Value{Magnitude: n}
}

// display is the inactive text for v. Percent values go through a percent
// code when the formatter renders codes.
func (f *Field) display(v Value) string {
	c := f.cons
	if v.Percent {
		if r, ok := f.format.(numfmt.CodeRenderer); ok {
			code := numfmt.PercentCode(c.Decimals, c.ThousandsSeparator != "")
			return r.FormatWithCode(v.Magnitude/100, code, c.DecimalSeparator, c.ThousandsSeparator)
		}
		return f.format.Format(v.Magnitude, c.Decimals, c.DecimalSeparator, c.ThousandsSeparator) + "%"
	}
	return f.format.Format(v.Magnitude, c.Decimals, c.DecimalSeparator, c.ThousandsSeparator)
}

// rawBuffer is the edit text for v. Percent fields imply the suffix.
func (f *Field) rawBuffer(v Value) string {
	if f.cons.Percent {
		return strconv.FormatFloat(v.Magnitude, 'f', -1, 64)
	}
	return v.Raw()
}

func (f *Field) currentText() string {
	if f.mode == ModeActive {
		return f.buffer
	}
	return f.text
}

// pushHost queues a host text update and, for cursor >= 0, a cursor move
func (f *Field) pushHost(post *actions, text string, cursor int) {
	h := f.host
	if h == nil {
		return
	}
	post.add(func() {
		h.SetText(text)
		if cursor >= 0 {
			SetCursorOffset(h, cursor)
		}
	})
}

func (f *Field) logf(format string, args ...any) {
	if f.logger != nil {
		f.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// fractionDigits counts the fraction digits of x's shortest representation
func fractionDigits(x float64) int {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// actions collects work that must run after the field lock is released
type actions []func()

func (a *actions) add(fn func()) {
	*a = append(*a, fn)
}

func (a actions) run() {
	for _, fn := range a {
		fn()
	}
}
