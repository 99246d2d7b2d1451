package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/numentry/pkg/numfmt"
)

// NewFormatCommand creates the format command
func NewFormatCommand() *cobra.Command {
	var (
		decimal      int
		decimalPoint string
		thousandSep  string
		showCode     bool
		parse        bool
		pattern      string
	)

	cmd := &cobra.Command{
		Use:   "format <number>...",
		Short: "Format numbers the way fields display them",
		Long: `Format each number with a fixed count of fraction digits and the given
separators. With --parse the arguments are display strings read back into
numbers instead.

Examples:
  numentry format 1234.5 --decimal 2 --thousand-sep ,
  numentry format 1234.5 --decimal 2 --decimal-point , --thousand-sep .
  numentry format 0.125 --pattern "0.0%"
  numentry format --parse "1.234,50" --decimal-point , --thousand-sep .`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			code := pattern
			if code == "" {
				code = numfmt.FormatCode(decimal, thousandSep != "")
			}
			if showCode {
				_, _ = fmt.Fprintf(out, "code: %s\n", code)
			}
			formatter := numfmt.NewCodeFormatter()

			for _, arg := range args {
				if parse {
					n, percent, err := numfmt.Parse(arg, decimalPoint, thousandSep)
					if err != nil {
						return err
					}
					text := strconv.FormatFloat(n, 'f', -1, 64)
					if percent {
						text += "%"
					}
					_, _ = fmt.Fprintln(out, text)
					continue
				}

				n, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid number %q: %w", arg, err)
				}
				_, _ = fmt.Fprintln(out, formatter.FormatWithCode(n, code, decimalPoint, thousandSep))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&decimal, "decimal", 0, "Fraction digits")
	cmd.Flags().StringVar(&decimalPoint, "decimal-point", ".", "Decimal separator")
	cmd.Flags().StringVar(&thousandSep, "thousand-sep", "", "Thousands separator")
	cmd.Flags().BoolVar(&showCode, "code", false, "Print the format code used")
	cmd.Flags().BoolVar(&parse, "parse", false, "Parse display strings instead")
	cmd.Flags().StringVar(&pattern, "pattern", "", "Format code such as #,##0.000 or 0.0% (overrides --decimal)")
	return cmd
}
