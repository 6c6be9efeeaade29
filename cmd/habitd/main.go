// Package main implements the habitd CLI: analyze Claude Code session
// logs, mine recurring habits, and suggest skills, slash commands,
// agents, and CLAUDE.md rules.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/habitd/internal/config"
	"github.com/fyrsmithlabs/habitd/internal/logging"
)

var (
	cfgPath  string
	logLevel string
	version  = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "habitd",
	Short: "Mine Claude Code session logs for recurring habits",
	Long: `habitd compresses recent Claude Code work sessions into bounded
digests, mines them for recurring tool sequences, prompt templates and
behavioral patterns, and turns those into prioritized suggestions:
skills, slash commands, agents, and CLAUDE.md rules.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.config/habitd/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override configured log level")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(watchCmd)
}

// setup loads config and builds the logger shared by all commands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
