// Package cmd defines the foundry CLI: blueprint validation runs, static
// checks, and run-history inspection.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for foundry
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "foundry",
		Short: "Validation-gated blueprint generation pipeline",
		Long: `Foundry takes a blueprint (YAML or a markdown design document),
probes its declared external dependencies, and drives it through four
ordered validation levels with bounded self-healing before finalizing
runnable artifacts.

Configuration is loaded from .foundry/config.yaml if present.
CLI flags override configuration file settings.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
