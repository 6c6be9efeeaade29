package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/habitd/internal/report"
)

var patternsOut string

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Mine recent sessions and dump raw patterns as JSON",
	Long: `Run mining over recent sessions and print the raw patterns,
grouped by family, without classification noise.

Examples:
  habitd patterns
  habitd patterns --days 7 --out patterns.json`,
	RunE: runPatterns,
}

func init() {
	patternsCmd.Flags().IntVar(&analyzeDays, "days", 0, "override session window in days")
	patternsCmd.Flags().StringVar(&patternsOut, "out", "", "write JSON to this file instead of stdout")
}

func runPatterns(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	result, err := analyzeOnce(cmd, cfg, logger)
	if err != nil {
		return err
	}

	data, err := report.PatternsJSON(result.Patterns, time.Now())
	if err != nil {
		return fmt.Errorf("encoding patterns: %w", err)
	}

	if patternsOut != "" {
		if err := os.WriteFile(patternsOut, data, 0o644); err != nil {
			return fmt.Errorf("writing patterns: %w", err)
		}
		cmd.Println(dimStyle.Render("patterns written to " + patternsOut))
		return nil
	}
	cmd.Println(string(data))
	return nil
}
