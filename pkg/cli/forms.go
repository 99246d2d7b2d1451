package cli

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	ferrors "github.com/dshills/numentry/pkg/errors"
	"github.com/dshills/numentry/pkg/form"
)

// NewFormsCommand creates the forms command group
func NewFormsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Manage saved form definitions",
		Long: `List, validate, show, import and delete form definitions.

Forms are stored in ~/.numentry/forms/<form-name>.yaml`,
	}

	cmd.AddCommand(newFormsListCommand())
	cmd.AddCommand(newFormsValidateCommand())
	cmd.AddCommand(newFormsShowCommand())
	cmd.AddCommand(newFormsImportCommand())
	cmd.AddCommand(newFormsDeleteCommand())
	return cmd
}

// formPath returns where a named form is stored
func formPath(name string) string {
	return filepath.Join(GetFormsDir(), name+".yaml")
}

func openRepository() (*form.FilesystemRepository, error) {
	return form.NewFilesystemRepository(GetFormsDir(), log.Default())
}

// loadForm loads a form by file path or, if no such file exists, by name
// from the repository
func loadForm(ref string) (*form.Definition, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		def, err := form.LoadFile(ref)
		if err != nil {
			return nil, ferrors.NewOperationalErrorWithAttrs("loading form", "", "", err,
				map[string]any{"path": ref})
		}
		return def, nil
	}
	repo, err := openRepository()
	if err != nil {
		return nil, err
	}
	def, err := repo.Load(ref)
	if errors.Is(err, form.ErrNotFound) {
		return nil, fmt.Errorf("form not found: %s\n\nLooked in: %s", ref, formPath(ref))
	}
	if err != nil {
		return nil, ferrors.NewOperationalErrorWithAttrs("loading form", ref, "", err,
			map[string]any{"path": formPath(ref)})
	}
	return def, nil
}

func newFormsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			defs, err := repo.List()
			if err != nil {
				return fmt.Errorf("failed to list forms: %w", err)
			}

			if len(defs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No forms found.")
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nCreate one with: numentry init <form-name>")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tFIELDS\tCOMPUTED\tDESCRIPTION")
			for _, def := range defs {
				_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", def.Name, len(def.Fields), len(def.Computed), def.Description)
			}
			return w.Flush()
		},
	}
}

func newFormsValidateCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate <form-name|file>",
		Short: "Validate a form definition",
		Long: `Validate a form definition for correctness.

This checks:
- YAML structure against the form schema
- Unique identifier IDs across fields and computed values
- Constraints (bounds, step, separators)
- Initial values against their bounds
- Computed formulas compile over the field IDs

Examples:
  numentry forms validate order
  numentry forms validate ./order.yaml --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadForm(args[0])
			if err != nil {
				_, _ = fmt.Fprintln(cmd.OutOrStderr(), "✗ Failed to load form")
				if verbose {
					_, _ = fmt.Fprintf(cmd.OutOrStderr(), "  Error: %v\n", err)
				}
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Form YAML matches the schema")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Form structure valid")

			f, err := form.New(def, form.WithLogger(log.Default()))
			if err != nil {
				_, _ = fmt.Fprintln(cmd.OutOrStderr(), "✗ Form fields or formulas invalid")
				if verbose {
					_, _ = fmt.Fprintf(cmd.OutOrStderr(), "  Error: %v\n", err)
				}
				return err
			}
			defer f.Close()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %d fields created\n", len(f.Fields()))

			failed := 0
			for _, c := range f.Evaluate() {
				if c.Err != nil {
					failed++
					_, _ = fmt.Fprintf(cmd.OutOrStderr(), "✗ %s: %v\n", c.Spec.ID, c.Err)
					continue
				}
				if verbose {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", c.Spec.ID, c.Text)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d computed values failed to evaluate", failed)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %d computed values evaluated\n", len(def.Computed))

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nForm '%s' is valid\n", def.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed validation information")
	return cmd
}

func newFormsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <form-name|file>",
		Short: "Print a form definition in canonical YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadForm(args[0])
			if err != nil {
				return err
			}
			data, err := form.Marshal(def)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newFormsImportCommand() *cobra.Command {
	var (
		name  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a form definition from a file",
		Long: `Validate a form definition file and save it to the forms directory.

Examples:
  numentry forms import ./order.yaml
  numentry forms import shared.yaml --name my-order
  numentry forms import order.yaml --force  # Overwrite an existing form`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); os.IsNotExist(err) {
				return fmt.Errorf("form file not found: %s", args[0])
			}

			def, err := form.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to load form: %w", err)
			}
			if name != "" {
				def.Name = name
			}
			if !isValidFormName(def.Name) {
				return fmt.Errorf("invalid form name: %s (use --name to rename)", def.Name)
			}

			repo, err := openRepository()
			if err != nil {
				return err
			}
			if !force {
				if _, err := repo.Load(def.Name); err == nil {
					return fmt.Errorf("form already exists: %s (use --force to overwrite)", def.Name)
				}
			}
			if err := repo.Save(def); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported form: %s\n", def.Name)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Location: %s\n", formPath(def.Name))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Save under a different name")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing form")
	return cmd
}

func newFormsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <form-name>",
		Short: "Delete a saved form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			if err := repo.Delete(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted form: %s\n", args[0])
			return nil
		},
	}
}
