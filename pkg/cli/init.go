package cli

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/dshills/numentry/pkg/form"
)

// FormTemplate names a starter form
type FormTemplate string

const (
	TemplateBasic    FormTemplate = "basic"
	TemplateInvoice  FormTemplate = "invoice"
	TemplateSurvey   FormTemplate = "survey"
	TemplateCurrency FormTemplate = "currency"
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	var (
		description string
		template    string
		edit        bool
	)

	cmd := &cobra.Command{
		Use:   "init <form-name>",
		Short: "Initialize a new form",
		Long: `Create a new form definition from a template.

The form is created in ~/.numentry/forms/<form-name>.yaml

Examples:
  numentry init prices
  numentry init order --template invoice --description "Order entry"
  numentry init ratings --template survey --edit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if !isValidFormName(name) {
				return fmt.Errorf("invalid form name: %s\n\nForm names must:\n  - Start with a letter\n  - Contain only letters, numbers, hyphens, and underscores\n  - Be between 1 and 64 characters", name)
			}

			repo, err := openRepository()
			if err != nil {
				return err
			}
			if _, err := repo.Load(name); err == nil {
				return fmt.Errorf("form already exists: %s\n\nLocation: %s", name, formPath(name))
			} else if !errors.Is(err, form.ErrNotFound) {
				return fmt.Errorf("form %s exists but cannot be read: %w", name, err)
			}

			if template == "" {
				template = string(TemplateBasic)
			}
			def, err := createFormFromTemplate(name, description, FormTemplate(template))
			if err != nil {
				return fmt.Errorf("failed to create form from template: %w", err)
			}
			if err := repo.Save(def); err != nil {
				return fmt.Errorf("failed to write form file: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Created form: %s\n", name)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Location: %s\n", formPath(name))

			if edit {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nLaunching editor...")
				_, err := runEditor(cmd, def)
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  1. Validate: numentry forms validate %s\n", name)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  2. Fill it in: numentry edit %s\n", name)

			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Form description")
	cmd.Flags().StringVarP(&template, "template", "t", "", "Template to use (basic, invoice, survey, currency)")
	cmd.Flags().BoolVar(&edit, "edit", false, "Open the form in the terminal editor after creation")

	return cmd
}

var formNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,63}$`)

// isValidFormName validates form name format
func isValidFormName(name string) bool {
	return formNamePattern.MatchString(name)
}

func ptr(f float64) *float64 {
	return &f
}

// createFormFromTemplate builds a starter definition
func createFormFromTemplate(name, description string, tmpl FormTemplate) (*form.Definition, error) {
	def := &form.Definition{Name: name, Description: description}

	switch tmpl {
	case TemplateBasic:
		def.Fields = []form.FieldSpec{
			{ID: "value", Label: "Value", Value: 0},
		}

	case TemplateInvoice:
		def.Fields = []form.FieldSpec{
			{ID: "qty", Label: "Quantity", Value: 1, Min: ptr(0), Max: ptr(10000)},
			{ID: "price", Label: "Unit price", Value: "0.00", Decimal: 2, ThousandSep: ",", Min: ptr(0), ClassName: "money"},
			{ID: "discount", Label: "Discount", Value: 0, Percent: true, Min: ptr(0), Max: ptr(1), Step: ptr(0.01)},
		}
		def.Computed = []form.ComputedSpec{
			{ID: "total", Label: "Total", Formula: "qty * price * (1 - discount)", Decimal: 2, ThousandSep: ","},
		}

	case TemplateSurvey:
		def.Fields = []form.FieldSpec{
			{ID: "quality", Label: "Quality", Value: 5, Min: ptr(0), Max: ptr(10), TextAlign: form.AlignCenter},
			{ID: "value_for_money", Label: "Value for money", Value: 5, Min: ptr(0), Max: ptr(10), TextAlign: form.AlignCenter},
			{ID: "support", Label: "Support", Value: 5, Min: ptr(0), Max: ptr(10), TextAlign: form.AlignCenter},
		}
		def.Computed = []form.ComputedSpec{
			{ID: "average", Label: "Average", Formula: "(quality + value_for_money + support) / 3", Decimal: 1},
		}

	case TemplateCurrency:
		def.Fields = []form.FieldSpec{
			{ID: "amount", Label: "Betrag", Value: "0", Decimal: 2, DecimalPoint: ",", ThousandSep: ".", Min: ptr(0), ClassName: "money"},
			{ID: "rate", Label: "Kurs", Value: "1", Decimal: 4, DecimalPoint: ",", Min: ptr(0), Step: ptr(0.0001)},
		}
		def.Computed = []form.ComputedSpec{
			{ID: "converted", Label: "Umgerechnet", Formula: "amount * rate", Decimal: 2, DecimalPoint: ",", ThousandSep: "."},
		}

	default:
		return nil, fmt.Errorf("unknown template: %s (valid: basic, invoice, survey, currency)", tmpl)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}
