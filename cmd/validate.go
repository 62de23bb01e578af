package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcanaland/pokedon/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a card project without writing any output",
	Long: `Validate renders every card in memory and reports configs that do not
produce a JSON object, cards without a picture, duplicate ids and
placeholders the values leave unresolved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, opts, err := openProject(cmd)
		if err != nil {
			return err
		}

		v := validator.NewValidator(p, opts)
		results, err := v.Validate(contextOf(cmd))
		if err != nil {
			return toExitError(fmt.Errorf("validation error: %w", err))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Validation Results:")
		fmt.Fprintln(out, "-------------------")

		if len(results.Errors) == 0 {
			fmt.Fprintf(out, "✅ Project '%s' is valid.\n", p.ConfigsDir)
		} else {
			fmt.Fprintf(out, "❌ Project '%s' has %d validation errors:\n", p.ConfigsDir, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Fprintf(out, "%d. %s\n", i+1, err)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, "\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Fprintf(out, "%d. %s\n", i+1, warn)
			}
		}

		if len(results.Errors) > 0 {
			return &ExitError{Code: ExitFailure, Message: "validation failed"}
		}
		return nil
	},
}

func init() {
	addInputFlags(validateCmd)
}
