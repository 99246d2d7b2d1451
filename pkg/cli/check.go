package cli

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/dshills/numentry/pkg/numfield"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	var flags fieldFlags

	cmd := &cobra.Command{
		Use:   "check <value>",
		Short: "Set a value on a field and show how it reads back",
		Long: `Commit a value to a field built from the given constraints and print its
display text, the value returned by GetValue, and the committed number.

A value outside [min, max] or not matching the number grammar is rejected and
the command fails.

Examples:
  numentry check 1234.5 --decimal 2 --thousand-sep ,
  numentry check 50% --decimal 2
  numentry check 0.25 --percent --max 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.constraints()
			if err != nil {
				return err
			}

			f, err := numfield.New(c, nil, numfield.WithID("check"), numfield.WithLogger(log.Default()))
			if err != nil {
				return err
			}
			defer f.Close()

			if err := f.SetValue(args[0]); err != nil {
				var rangeErr *numfield.RangeError
				if errors.As(err, &rangeErr) {
					_, _ = fmt.Fprintf(cmd.OutOrStderr(), "✗ %s is outside [%g, %g]\n", args[0], rangeErr.Min, rangeErr.Max)
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStderr(), "✗ %q is not a number\n", args[0])
				}
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "text:   %s\n", f.Text())
			_, _ = fmt.Fprintf(out, "value:  %s\n", f.GetValue())
			_, _ = fmt.Fprintf(out, "number: %s\n", f.Value().NumberString())
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
