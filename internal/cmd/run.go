package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harrison/foundry/internal/config"
	"github.com/harrison/foundry/internal/filelock"
	"github.com/harrison/foundry/internal/healing"
	"github.com/harrison/foundry/internal/history"
	"github.com/harrison/foundry/internal/level"
	"github.com/harrison/foundry/internal/logger"
	"github.com/harrison/foundry/internal/models"
	"github.com/harrison/foundry/internal/orchestrator"
	"github.com/harrison/foundry/internal/parser"
	"github.com/harrison/foundry/internal/probe"
	"github.com/harrison/foundry/internal/reasoner"
	"github.com/harrison/foundry/internal/report"
)

// artifactFinalizer materializes the validated blueprint into the output
// directory as a normalized YAML artifact.
type artifactFinalizer struct {
	dir string
}

func (f *artifactFinalizer) Finalize(ctx context.Context, bp *models.BlueprintModel) error {
	data, err := yaml.Marshal(bp)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	path := filepath.Join(f.dir, bp.Name+".yaml")
	if err := filelock.ReplaceFile(path, data); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var (
		configPath string
		outputDir  string
		jsonOut    bool
		htmlOut    string
		deadline   time.Duration
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run <blueprint-file>",
		Short: "Validate a blueprint and finalize artifacts on success",
		Long: `Run a blueprint through the full validation gate: dependency probe,
four ordered validation levels with bounded healing, then artifact
finalization on success.

The blueprint may be a YAML file or a markdown design document with an
embedded yaml block.

Examples:
  foundry run blueprint.yaml
  foundry run design.md --json
  foundry run blueprint.yaml --deadline 2m --html report.html`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			bp, err := parser.LoadFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if deadline > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, deadline)
				defer cancel()
			}

			o, err := buildOrchestrator(cfg, outputDir, cmd.ErrOrStderr(), jsonOut)
			if err != nil {
				return err
			}

			result, runErr := o.Run(ctx, bp)
			if result == nil {
				return runErr
			}

			if err := persistRun(ctx, cfg, result); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			if jsonOut {
				if err := report.WriteJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				console := report.NewConsole(cmd.OutOrStdout(), stdoutIsTTY())
				console.Render(result)
				if verbose {
					console.RenderTransitions(result)
				}
			}

			if htmlOut != "" {
				html, err := report.HTML(result)
				if err != nil {
					return err
				}
				if err := filelock.ReplaceFile(htmlOut, []byte(html)); err != nil {
					return err
				}
			}

			if runErr != nil {
				return runErr
			}
			if !result.Succeeded() {
				return fmt.Errorf("validation failed: %s", result.Summary())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", filepath.Join(".foundry", "config.yaml"), "Path to configuration file")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "artifacts", "Directory for finalized artifacts")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the result as JSON instead of the console report")
	cmd.Flags().StringVar(&htmlOut, "html", "", "Also write an HTML report to this path")
	cmd.Flags().DurationVar(&deadline, "deadline", 0, "Wall-clock deadline for the whole run (0 = none)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the state transition trace")

	return cmd
}

// buildOrchestrator wires the production pipeline from configuration.
func buildOrchestrator(cfg *config.Config, outputDir string, logWriter io.Writer, quiet bool) (*orchestrator.Orchestrator, error) {
	client := reasoner.NewHTTPClient(cfg.Reasoner.Endpoint, cfg.Reasoner.Timeout)

	checkers := []level.Checker{
		level.NewFramework(),
		level.NewComponentLogic(cfg.LogicWorkers),
		level.NewIntegration(),
		level.NewSemantic(client, cfg.Reasoner.Timeout),
	}

	bindings := map[models.Level]healing.Strategy{}
	if cfg.Healing.Enabled {
		if cfg.Healing.Structural {
			bindings[models.LevelComponentLogic] = healing.NewStructuralRepair()
		}
		if cfg.Healing.ConfigRegen {
			bindings[models.LevelIntegration] = healing.NewConfigRegeneration()
		}
		if cfg.Healing.Semantic {
			bindings[models.LevelSemantic] = healing.NewSemanticRepair(client)
		}
	}

	var log orchestrator.Logger = logger.NewNoOpLogger()
	if !quiet {
		log = logger.NewConsoleLogger(logWriter, cfg.LogLevel)
	}

	return orchestrator.New(
		probe.New(cfg.ProbeWorkers, cfg.ProbeTimeout),
		checkers,
		healing.NewCoordinator(bindings, cfg.Healing.Budget),
		&artifactFinalizer{dir: outputDir},
		log,
	)
}

// persistRun records the result in the history store.
func persistRun(ctx context.Context, cfg *config.Config, result *models.OrchestrationResult) error {
	store, err := history.NewStore(cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("history unavailable: %w", err)
	}
	defer store.Close()
	if err := store.Save(ctx, result); err != nil {
		return fmt.Errorf("history save failed: %w", err)
	}
	return nil
}

func stdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
