package cli

import (
	"fmt"
	"io"
	"log"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/numentry/pkg/numfield"
	"github.com/dshills/numentry/pkg/tui"
	"github.com/dshills/numentry/pkg/tui/components"
)

// idleTicker never fires; replay applies one step per scripted arrow press
type idleTicker struct {
	ch chan time.Time
}

func (t idleTicker) C() <-chan time.Time { return t.ch }
func (t idleTicker) Stop()               {}

func newIdleTicker(time.Duration) numfield.Ticker {
	return idleTicker{ch: make(chan time.Time)}
}

// ReplayStep is the outcome of one scripted key
type ReplayStep struct {
	Key     string
	Outcome numfield.Outcome
	Text    string
	Cursor  int
}

// ReplayResult is a whole replay: every key and the commit on blur
type ReplayResult struct {
	Steps     []ReplayStep
	Committed numfield.Change
	Err       error
}

// Replay focuses a field holding initial, types script into it and blurs
// it. An arrow key counts as a single repeat step.
func Replay(c numfield.Constraints, initial any, script string, logger *log.Logger) (*ReplayResult, error) {
	events, err := tui.ParseKeyScript(script)
	if err != nil {
		return nil, err
	}

	f, err := numfield.New(c, initial,
		numfield.WithID("replay"),
		numfield.WithLogger(logger),
		numfield.WithTicker(newIdleTicker),
	)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	host := components.NewNumberField("", 0, 0, 20)
	host.Bind(f)
	f.EnterEditMode()

	res := &ReplayResult{}
	now := time.Now()
	for _, ev := range events {
		d := host.HandleKey(ev.FieldKey(c.DecimalSeparator), now)
		if d.Outcome == numfield.Step {
			f.StepBy(d.Direction)
			f.KeyUp()
		}
		res.Steps = append(res.Steps, ReplayStep{
			Key:     tui.FormatKeyEvent(ev),
			Outcome: d.Outcome,
			Text:    host.Text(),
			Cursor:  host.SelectionStart(),
		})
	}

	res.Committed, res.Err = f.ExitEditMode(host.Text())
	return res, nil
}

// NewReplayCommand creates the replay command
func NewReplayCommand() *cobra.Command {
	var (
		flags   fieldFlags
		initial string
	)

	cmd := &cobra.Command{
		Use:   "replay <keys>",
		Short: "Type a key script into a field",
		Long: `Focus a field, feed it a key script and blur it, printing whether each key
was admitted or rejected and what the field committed.

The script is a space separated list of key names (Up, Down, Left, Right,
Home, End, Backspace, Delete) and literal text, which is typed one character
at a time.

Examples:
  numentry replay "12.555" --decimal 2
  numentry replay "Home -30" --min -100
  numentry replay "Up Up Up" --value 2 --max 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.constraints()
			if err != nil {
				return err
			}

			var start any
			if initial != "" {
				start = initial
			}
			res, err := Replay(c, start, args[0], log.Default())
			if err != nil {
				return err
			}

			writeReplay(cmd.OutOrStdout(), res)
			return res.Err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&initial, "value", "", "Initial committed value")
	return cmd
}

func writeReplay(out io.Writer, res *ReplayResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tOUTCOME\tTEXT\tCURSOR")
	for _, s := range res.Steps {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%q\t%d\n", s.Key, s.Outcome, s.Text, s.Cursor)
	}
	_ = w.Flush()

	if res.Err != nil {
		_, _ = fmt.Fprintf(out, "\n✗ commit failed: %v\n", res.Err)
		return
	}
	_, _ = fmt.Fprintf(out, "\n✓ committed %s (%s)\n", res.Committed.Text, res.Committed.Raw)
}
