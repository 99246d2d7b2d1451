package form

import (
	"fmt"
	"log"

	"github.com/dshills/numentry/pkg/numfield"
	"github.com/dshills/numentry/pkg/numfmt"
)

// Computed is the current result of a computed read-out
type Computed struct {
	Spec  ComputedSpec
	Value float64
	Text  string
	Err   error
}

// Option configures a Form
type Option func(*Form)

// WithFieldOptions adds options to every field the form creates, e.g. a
// dispatcher or a host. fn is called once per field spec.
func WithFieldOptions(fn func(FieldSpec) []numfield.Option) Option {
	return func(f *Form) {
		f.fieldOpts = fn
	}
}

// WithLogger sets the logger passed to fields and used for focus changes
func WithLogger(l *log.Logger) Option {
	return func(f *Form) {
		f.logger = l
	}
}

// Form is a running definition: one numfield.Field per spec, at most one of
// them in edit mode. Form is not safe for concurrent use; drive it from a
// single event loop. The fields themselves may still be read elsewhere.
type Form struct {
	def       *Definition
	fields    []*numfield.Field
	byID      map[string]*numfield.Field
	focus     int
	eval      *Evaluator
	format    numfmt.Formatter
	logger    *log.Logger
	fieldOpts func(FieldSpec) []numfield.Option
}

// New creates the fields of def and compiles its formulas. No field has
// focus initially.
func New(def *Definition, opts ...Option) (*Form, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	f := &Form{
		def:    def,
		byID:   make(map[string]*numfield.Field, len(def.Fields)),
		focus:  -1,
		format: numfmt.Default(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	ids := make([]string, 0, len(def.Fields))
	for _, spec := range def.Fields {
		fopts := []numfield.Option{numfield.WithID(spec.ID), numfield.WithLogger(f.logger)}
		if f.fieldOpts != nil {
			fopts = append(fopts, f.fieldOpts(spec)...)
		}
		fd, err := numfield.New(spec.Constraints(), spec.Value, fopts...)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("form %s: field %s: %w", def.Name, spec.ID, err)
		}
		f.fields = append(f.fields, fd)
		f.byID[spec.ID] = fd
		ids = append(ids, spec.ID)
	}

	f.eval = NewEvaluator(ids)
	for _, c := range def.Computed {
		if err := f.eval.Compile(c.Formula); err != nil {
			f.Close()
			return nil, fmt.Errorf("form %s: computed %s: %w", def.Name, c.ID, err)
		}
	}
	return f, nil
}

// Definition returns the definition the form was created from
func (f *Form) Definition() *Definition {
	return f.def
}

// Fields returns the fields in definition order
func (f *Form) Fields() []*numfield.Field {
	return f.fields
}

// Field returns the field with the given ID
func (f *Form) Field(id string) (*numfield.Field, bool) {
	fd, ok := f.byID[id]
	return fd, ok
}

// Spec returns the spec of the i-th field
func (f *Form) Spec(i int) FieldSpec {
	return f.def.Fields[i]
}

// FocusIndex returns the index of the focused field, or -1
func (f *Form) FocusIndex() int {
	return f.focus
}

// Focused returns the field in edit mode, if any
func (f *Form) Focused() *numfield.Field {
	if f.focus < 0 {
		return nil
	}
	return f.fields[f.focus]
}

// Focus moves edit mode to the i-th field. The previously focused field
// commits its buffer first; a malformed buffer is reported but focus still
// moves, and that field keeps its previous value.
func (f *Form) Focus(i int) error {
	if i < 0 || i >= len(f.fields) {
		return fmt.Errorf("focus index %d out of range [0, %d)", i, len(f.fields))
	}
	if i == f.focus {
		return nil
	}
	err := f.Blur()
	f.focus = i
	f.fields[i].EnterEditMode()
	f.logger.Printf("form %s: focus %s", f.def.Name, f.def.Fields[i].ID)
	return err
}

// Next moves focus to the following field, wrapping around
func (f *Form) Next() error {
	return f.Focus((f.focus + 1) % len(f.fields))
}

// Prev moves focus to the preceding field, wrapping around
func (f *Form) Prev() error {
	i := f.focus - 1
	if i < 0 {
		i = len(f.fields) - 1
	}
	return f.Focus(i)
}

// Blur commits the focused field's buffer and leaves no field focused
func (f *Form) Blur() error {
	if f.focus < 0 {
		return nil
	}
	fd := f.fields[f.focus]
	id := f.def.Fields[f.focus].ID
	f.focus = -1
	if _, err := fd.ExitEditMode(fd.Text()); err != nil {
		return fmt.Errorf("field %s: %w", id, err)
	}
	return nil
}

// Values returns the committed number of every field keyed by ID. Percent
// values are fractions: 50% is 0.5.
func (f *Form) Values() map[string]float64 {
	out := make(map[string]float64, len(f.fields))
	for i, fd := range f.fields {
		out[f.def.Fields[i].ID] = fd.Value().Number()
	}
	return out
}

// Evaluate computes every read-out over the committed values
func (f *Form) Evaluate() []Computed {
	values := f.Values()
	out := make([]Computed, 0, len(f.def.Computed))
	for _, c := range f.def.Computed {
		res := Computed{Spec: c}
		n, err := f.eval.Eval(c.Formula, values)
		if err != nil {
			res.Err = err
		} else {
			cons := c.Constraints()
			res.Value = n
			res.Text = f.format.Format(n, cons.Decimals, cons.DecimalSeparator, cons.ThousandsSeparator)
		}
		out = append(out, res)
	}
	return out
}

// Close stops every field
func (f *Form) Close() {
	for _, fd := range f.fields {
		fd.Close()
	}
}
