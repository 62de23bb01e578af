package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/pokedon/internal/generator"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render one JSON document per card config",
	Long: `Generate merges every config in the configs directory over the defaults,
renders the template with the merged values and writes the result to the
output directory with the card picture embedded as a data URI.

With --watch the cards are regenerated whenever an input changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, opts, err := openProject(cmd)
		if err != nil {
			return err
		}
		gen := generator.New(p, opts, logger)
		out := cmd.OutOrStdout()

		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("Watching for changes", zap.String("configs", p.ConfigsDir))
			return gen.Watch(ctx, func(report *generator.Report, err error) {
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), toExitError(err))
					return
				}
				printReport(out, report)
			})
		}

		report, err := gen.Run(contextOf(cmd))
		if err != nil {
			return toExitError(err)
		}
		printReport(out, report)
		return nil
	},
}

func init() {
	addInputFlags(generateCmd)
	generateCmd.Flags().Bool("watch", false, "regenerate when the template, defaults, configs or pictures change")
}

func printReport(w io.Writer, report *generator.Report) {
	green := color.New(color.FgGreen).SprintFunc()
	for _, r := range report.Results {
		fmt.Fprintf(w, "%s %s (image: %s)\n", green("Generated:"), r.Output, filepath.Base(r.Card.Picture))
	}
	if report.Bundle != "" {
		fmt.Fprintf(w, "%s %s (%d cards)\n", green("Bundle:"), report.Bundle, len(report.Results))
	}
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
