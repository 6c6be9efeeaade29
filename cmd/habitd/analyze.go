package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/habitd/internal/classify"
	"github.com/fyrsmithlabs/habitd/internal/config"
	"github.com/fyrsmithlabs/habitd/internal/pipeline"
	"github.com/fyrsmithlabs/habitd/internal/report"
	"github.com/fyrsmithlabs/habitd/internal/session"
)

var (
	analyzeDays int
	analyzeOut  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full analysis over recent sessions",
	Long: `Load recent session logs, compress them within the configured
budgets, mine patterns, and print prioritized suggestions.

Examples:
  # Analyze the configured window (default 30 days)
  habitd analyze

  # Analyze the last week and write a markdown report
  habitd analyze --days 7 --out report.md`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 0, "override session window in days")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "write a markdown report to this file")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	result, err := analyzeOnce(cmd, cfg, logger)
	if err != nil {
		return err
	}

	printSuggestions(cmd, result)

	if analyzeOut != "" {
		md := report.Markdown(result, time.Now())
		if err := os.WriteFile(analyzeOut, []byte(md), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		cmd.Println(dimStyle.Render("report written to " + analyzeOut))
	}
	return nil
}

// analyzeOnce runs the load+pipeline stages shared by analyze, patterns
// and watch.
func analyzeOnce(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) (*pipeline.Result, error) {
	maxAge := cfg.Sessions.MaxAge
	if analyzeDays > 0 {
		maxAge = time.Duration(analyzeDays) * 24 * time.Hour
	}

	loaded, err := session.NewLoader(logger).Load(session.LoadOptions{
		Root:            cfg.Sessions.Root,
		MaxAge:          maxAge,
		ExcludePrefixes: cfg.Sessions.ExcludePrefixes,
	})
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	if loaded.ErrorCount > 0 {
		logger.Warn("some transcript lines could not be parsed",
			zap.Int("errors", loaded.ErrorCount))
	}

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return p.Run(cmd.Context(), loaded.Sessions, pipeline.Budgets{
		PerSessionBytes: cfg.Budgets.PerSessionBytes,
		TotalBytes:      cfg.Budgets.TotalBytes,
	})
}

func printSuggestions(cmd *cobra.Command, result *pipeline.Result) {
	cmd.Println(headerStyle.Render(fmt.Sprintf("Analyzed %d sessions, %d patterns",
		len(result.Digests), len(result.Patterns))))
	if result.BudgetExceeded {
		cmd.Println(dimStyle.Render("collection budget reached, older sessions excluded"))
	}
	if len(result.Malformed) > 0 {
		cmd.Println(dimStyle.Render(fmt.Sprintf("skipped %d malformed sessions", len(result.Malformed))))
	}
	if len(result.Suggestions) == 0 {
		cmd.Println("\nNo recurring habits found in this batch.")
		return
	}

	tiers := []struct {
		priority classify.Priority
		style    func(...string) string
	}{
		{classify.PriorityP1, p1Style.Render},
		{classify.PriorityP2, p2Style.Render},
		{classify.PriorityP3, p3Style.Render},
	}
	for _, tier := range tiers {
		suggestions := result.ByPriority(tier.priority)
		if len(suggestions) == 0 {
			continue
		}
		cmd.Println("\n" + tier.style(string(tier.priority)))
		for _, s := range suggestions {
			cmd.Printf("  %s %s\n", nameStyle.Render(s.Name), kindStyle.Render("["+string(s.Kind)+"]"))
			cmd.Println("    " + dimStyle.Render(s.Rationale))
		}
	}
}
