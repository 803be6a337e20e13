package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/prop-evaluator/internal/config"
	"github.com/yourusername/prop-evaluator/internal/logger"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	log        *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "prop-evaluator",
	Short: "Evaluate sportsbook propositions",
	Long: `Scores player props and moneylines from recent game logs, season
averages and market prices, and returns a confidence, decision and stake.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(newEvaluateCmd(), newServeCmd(), newCacheCmd(), newVersionCmd())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) error {
	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.LoadSecretsFromAWS(ctx, loaded); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}

	cfg = loaded
	log = logger.New(cfg.App.LogLevel, cfg.App.Environment, os.Stderr)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "prop-evaluator %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
