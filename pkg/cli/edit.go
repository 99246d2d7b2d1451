package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dshills/goterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/numentry/pkg/form"
	"github.com/dshills/numentry/pkg/tui"
)

// NewEditCommand creates the edit command
func NewEditCommand() *cobra.Command {
	var (
		source string
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "edit <form-name|file>",
		Short: "Fill in a form in the terminal",
		Long: `Open a form in the terminal editor.

Keys:
  Tab / Shift-Tab   move to the next / previous field, committing the current one
  Enter             commit and move on
  Escape            commit and leave the field
  Up / Down         step the value; hold to keep stepping
  Ctrl-c            quit

Committed values are printed when the editor exits. With --save they are
written back into the saved form as initial values.

Examples:
  numentry edit order
  numentry edit order --source order.json   # seed fields from a JSON document
  numentry edit ./order.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadForm(args[0])
			if err != nil {
				return fmt.Errorf("failed to load form: %w\n\nTip: Run 'numentry forms validate %s' for detailed error information",
					err, args[0])
			}

			if source != "" {
				doc, err := os.ReadFile(source)
				if err != nil {
					return fmt.Errorf("failed to read source document: %w", err)
				}
				if def, err = form.ApplySource(def, doc); err != nil {
					return err
				}
			}

			values, err := runEditor(cmd, def)
			if err != nil {
				return err
			}

			if save {
				return saveValues(cmd.OutOrStdout(), def, values)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "JSON document supplying values for fields with a source path")
	cmd.Flags().BoolVar(&save, "save", false, "Store the committed values as the form's initial values")
	return cmd
}

// runEditor runs the terminal form until the user quits, then prints the
// committed field texts and computed values. It returns the committed
// numbers keyed by field ID.
func runEditor(cmd *cobra.Command, def *form.Definition) (map[string]string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("edit requires an interactive terminal")
	}

	screen, err := goterm.Init()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}

	app, err := tui.NewApp(screen)
	if err != nil {
		_ = screen.Close()
		return nil, fmt.Errorf("failed to initialize TUI: %w", err)
	}

	view, err := tui.NewFormView(def, app.Dispatch, log.Default())
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	defer view.Close()

	if err := app.SetView(view); err != nil {
		_ = app.Close()
		return nil, err
	}

	runErr := app.Run()
	commitErr := view.Commit()
	if err := app.Close(); err != nil {
		log.Printf("closing terminal: %v", err)
	}
	if runErr != nil {
		return nil, fmt.Errorf("TUI error: %w", runErr)
	}
	if commitErr != nil {
		_, _ = fmt.Fprintf(cmd.OutOrStderr(), "✗ %v (previous value kept)\n", commitErr)
	}

	f := view.Form()
	values := make(map[string]string, len(def.Fields))
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Form '%s':\n", def.Name)
	for i, spec := range def.Fields {
		fd := f.Fields()[i]
		values[spec.ID] = fd.Value().NumberString()
		_, _ = fmt.Fprintf(out, "  %s = %s\n", spec.ID, fd.Text())
	}
	for _, c := range f.Evaluate() {
		if c.Err != nil {
			_, _ = fmt.Fprintf(out, "  %s: %v\n", c.Spec.ID, c.Err)
			continue
		}
		_, _ = fmt.Fprintf(out, "  %s = %s\n", c.Spec.ID, c.Text)
	}
	return values, nil
}

// saveValues stores values as the initial values of def's fields that have
// no source path and saves def to the repository
func saveValues(out io.Writer, def *form.Definition, values map[string]string) error {
	updated := def.Clone()
	for i := range updated.Fields {
		spec := &updated.Fields[i]
		if v, ok := values[spec.ID]; ok && spec.Source == "" {
			spec.Value = v
		}
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	if err := repo.Save(updated); err != nil {
		return fmt.Errorf("failed to save form: %w", err)
	}
	_, _ = fmt.Fprintf(out, "\n✓ Saved values to %s\n", formPath(updated.Name))
	return nil
}
