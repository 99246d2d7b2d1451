// Package form describes groups of numeric entry fields in YAML and runs
// them: it parses and validates definitions, seeds initial values from JSON
// documents, evaluates computed read-outs and tracks which field has focus.
package form

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/dshills/numentry/pkg/numfield"
)

// TextAlign is the horizontal alignment of a field's text inside its box
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Definition is a named group of fields and computed read-outs
type Definition struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Fields      []FieldSpec    `yaml:"fields" json:"fields"`
	Computed    []ComputedSpec `yaml:"computed,omitempty" json:"computed,omitempty"`
}

// FieldSpec configures one numeric entry field. Nil bounds and step fall
// back to numfield.DefaultConstraints.
type FieldSpec struct {
	ID           string    `yaml:"id" json:"id"`
	Label        string    `yaml:"label,omitempty" json:"label,omitempty"`
	Value        any       `yaml:"value,omitempty" json:"value,omitempty"`
	Decimal      int       `yaml:"decimal,omitempty" json:"decimal,omitempty"`
	DecimalPoint string    `yaml:"decimal_point,omitempty" json:"decimal_point,omitempty"`
	ThousandSep  string    `yaml:"thousand_sep,omitempty" json:"thousand_sep,omitempty"`
	Step         *float64  `yaml:"step,omitempty" json:"step,omitempty"`
	Min          *float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max          *float64  `yaml:"max,omitempty" json:"max,omitempty"`
	ReadOnly     bool      `yaml:"read_only,omitempty" json:"read_only,omitempty"`
	Percent      bool      `yaml:"percent,omitempty" json:"percent,omitempty"`
	TextAlign    TextAlign `yaml:"text_align,omitempty" json:"text_align,omitempty"`
	ClassName    string    `yaml:"class_name,omitempty" json:"class_name,omitempty"`
	Source       string    `yaml:"source,omitempty" json:"source,omitempty"`
}

// ComputedSpec is a read-only value derived from the committed field values
type ComputedSpec struct {
	ID           string `yaml:"id" json:"id"`
	Label        string `yaml:"label,omitempty" json:"label,omitempty"`
	Formula      string `yaml:"formula" json:"formula"`
	Decimal      int    `yaml:"decimal,omitempty" json:"decimal,omitempty"`
	DecimalPoint string `yaml:"decimal_point,omitempty" json:"decimal_point,omitempty"`
	ThousandSep  string `yaml:"thousand_sep,omitempty" json:"thousand_sep,omitempty"`
}

var (
	// ErrInvalidDefinition is wrapped by every Definition.Validate failure
	ErrInvalidDefinition = errors.New("invalid form definition")

	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Constraints converts the spec into field constraints
func (s FieldSpec) Constraints() numfield.Constraints {
	c := numfield.DefaultConstraints()
	if s.Min != nil {
		c.Min = *s.Min
	}
	if s.Max != nil {
		c.Max = *s.Max
	}
	if s.Step != nil {
		c.Step = *s.Step
	}
	if s.DecimalPoint != "" {
		c.DecimalSeparator = s.DecimalPoint
	}
	c.Decimals = s.Decimal
	c.ThousandsSeparator = s.ThousandSep
	c.ReadOnly = s.ReadOnly
	c.Percent = s.Percent
	return c
}

// Align returns the alignment, right by default
func (s FieldSpec) Align() TextAlign {
	if s.TextAlign == "" {
		return AlignRight
	}
	return s.TextAlign
}

// Constraints returns the formatting constraints of a computed value. Only
// the separators and precision matter; the bounds are the defaults.
func (c ComputedSpec) Constraints() numfield.Constraints {
	cons := numfield.DefaultConstraints()
	cons.Decimals = c.Decimal
	if c.DecimalPoint != "" {
		cons.DecimalSeparator = c.DecimalPoint
	}
	cons.ThousandsSeparator = c.ThousandSep
	return cons
}

// Field returns the spec with the given ID
func (d *Definition) Field(id string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Clone returns a copy whose slices can be modified independently
func (d *Definition) Clone() *Definition {
	c := *d
	c.Fields = append([]FieldSpec(nil), d.Fields...)
	c.Computed = append([]ComputedSpec(nil), d.Computed...)
	return &c
}

// Validate checks the structural rules that the schema cannot express:
// unique identifier IDs, consistent constraints and in-range initial values.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing required field: name", ErrInvalidDefinition)
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("%w: form %q has no fields", ErrInvalidDefinition, d.Name)
	}

	seen := make(map[string]bool, len(d.Fields)+len(d.Computed))
	checkID := func(kind, id string) error {
		if !identifier.MatchString(id) {
			return fmt.Errorf("%w: %s ID %q is not an identifier", ErrInvalidDefinition, kind, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate ID %q", ErrInvalidDefinition, id)
		}
		seen[id] = true
		return nil
	}

	for _, f := range d.Fields {
		if err := checkID("field", f.ID); err != nil {
			return err
		}
		switch f.TextAlign {
		case "", AlignLeft, AlignCenter, AlignRight:
		default:
			return fmt.Errorf("%w: field %q: unknown text_align %q", ErrInvalidDefinition, f.ID, f.TextAlign)
		}
		c := f.Constraints()
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: field %q: %w", ErrInvalidDefinition, f.ID, err)
		}
		if f.Value != nil && f.Source == "" {
			if err := checkInitial(f.Value, c); err != nil {
				return fmt.Errorf("%w: field %q: %w", ErrInvalidDefinition, f.ID, err)
			}
		}
	}

	for _, c := range d.Computed {
		if err := checkID("computed", c.ID); err != nil {
			return err
		}
		if c.Formula == "" {
			return fmt.Errorf("%w: computed %q: empty formula", ErrInvalidDefinition, c.ID)
		}
		if err := c.Constraints().Validate(); err != nil {
			return fmt.Errorf("%w: computed %q: %w", ErrInvalidDefinition, c.ID, err)
		}
	}
	return nil
}

// checkInitial reports whether a field with constraints c accepts v
func checkInitial(v any, c numfield.Constraints) error {
	parsed, err := numfield.ParseValue(v)
	if err != nil {
		return err
	}
	if c.Percent {
		parsed = parsed.AsPercent()
	}
	if n := parsed.Number(); n < c.Min || n > c.Max {
		return &numfield.RangeError{Value: n, Min: c.Min, Max: c.Max}
	}
	return nil
}
