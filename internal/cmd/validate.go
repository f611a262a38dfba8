package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/foundry/internal/config"
	"github.com/harrison/foundry/internal/level"
	"github.com/harrison/foundry/internal/parser"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <blueprint-file>...",
		Short: "Run the static checks on one or more blueprints",
		Long: `Parse blueprints and run the framework and component-logic checks
without probing dependencies, without healing, and without contacting
the semantic collaborator.

Exit code: 0 if all blueprints pass, 1 otherwise`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateBlueprints(cmd.Context(), args, cmd.OutOrStdout())
		},
	}

	return cmd
}

// validateBlueprints runs the static levels over each file and reports
// per-file outcomes.
func validateBlueprints(ctx context.Context, paths []string, out io.Writer) error {
	checkers := []level.Checker{
		level.NewFramework(),
		level.NewComponentLogic(config.DefaultConfig().LogicWorkers),
	}

	failed := 0
	for _, path := range paths {
		bp, err := parser.LoadFile(path)
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", path, err)
			failed++
			continue
		}

		var findings []string
		for _, checker := range checkers {
			verdict := checker.Check(ctx, bp)
			for _, d := range verdict.Diagnostics {
				findings = append(findings, fmt.Sprintf("%s: %s", verdict.Level, d.String()))
			}
		}

		if len(findings) == 0 {
			fmt.Fprintf(out, "✓ %s\n", path)
			continue
		}

		fmt.Fprintf(out, "✗ %s\n", path)
		for _, f := range findings {
			fmt.Fprintf(out, "  %s\n", f)
		}
		failed++
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d blueprint(s) failed validation", failed, len(paths))
	}
	return nil
}
