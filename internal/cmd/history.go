package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/foundry/internal/config"
	"github.com/harrison/foundry/internal/history"
	"github.com/harrison/foundry/internal/report"
)

// NewHistoryCommand creates the history command group
func NewHistoryCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "history",
		Short:        "Inspect past validation runs",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config",
		filepath.Join(".foundry", "config.yaml"), "Path to configuration file")

	openStore := func() (*history.Store, error) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		return history.NewStore(cfg.HistoryPath)
	}

	list := &cobra.Command{
		Use:          "list",
		Short:        "List recorded runs, newest first",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}

			for _, r := range runs {
				line := fmt.Sprintf("%s  %-12s %-20s %s",
					r.StartedAt.Local().Format(time.DateTime), r.Status, r.Blueprint, r.RunID)
				if r.FailedLevel > 0 {
					line += fmt.Sprintf("  (failed at %s)", r.FailedLevel)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	list.Flags().Int("limit", 20, "Maximum number of runs to list (0 = all)")

	show := &cobra.Command{
		Use:          "show [run-id]",
		Short:        "Show one run as JSON (latest when no id given)",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				r, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return report.WriteJSON(cmd.OutOrStdout(), r)
			}

			r, err := store.Latest(cmd.Context())
			if err != nil {
				return err
			}
			return report.WriteJSON(cmd.OutOrStdout(), r)
		},
	}

	clear := &cobra.Command{
		Use:          "clear",
		Short:        "Delete all recorded runs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "run history cleared")
			return nil
		},
	}

	cmd.AddCommand(list, show, clear)
	return cmd
}
