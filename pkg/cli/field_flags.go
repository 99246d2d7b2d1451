package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/numentry/pkg/numfield"
)

// fieldFlags are the constraint flags shared by the single-field commands
type fieldFlags struct {
	decimal      int
	min          float64
	max          float64
	step         float64
	decimalPoint string
	thousandSep  string
	percent      bool
	readOnly     bool
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	def := numfield.DefaultConstraints()
	flags := cmd.Flags()
	flags.IntVar(&f.decimal, "decimal", def.Decimals, "Fraction digits allowed and displayed")
	flags.Float64Var(&f.min, "min", def.Min, "Lower bound")
	flags.Float64Var(&f.max, "max", def.Max, "Upper bound")
	flags.Float64Var(&f.step, "step", def.Step, "Arrow key increment")
	flags.StringVar(&f.decimalPoint, "decimal-point", def.DecimalSeparator, "Displayed decimal separator")
	flags.StringVar(&f.thousandSep, "thousand-sep", def.ThousandsSeparator, "Displayed thousands separator")
	flags.BoolVar(&f.percent, "percent", false, "Read the buffer as a percentage")
	flags.BoolVar(&f.readOnly, "read-only", false, "Reject every editing key")
}

// constraints returns the validated constraints the flags describe
func (f *fieldFlags) constraints() (numfield.Constraints, error) {
	c := numfield.Constraints{
		Min:                f.min,
		Max:                f.max,
		Decimals:           f.decimal,
		Step:               f.step,
		DecimalSeparator:   f.decimalPoint,
		ThousandsSeparator: f.thousandSep,
		ReadOnly:           f.readOnly,
		Percent:            f.percent,
	}
	if err := c.Validate(); err != nil {
		return numfield.Constraints{}, err
	}
	return c, nil
}
