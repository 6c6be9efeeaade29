package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/habitd/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the session root and re-analyze as sessions finish",
	Long: `Watch the session root for transcript changes. When a session log
settles, a fresh analysis runs and updated suggestions are printed.

Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 30*time.Second, "quiet period before a changed session triggers analysis")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watch.NewWatcher(cfg.Sessions.Root, watchDebounce, logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	cmd.Println(headerStyle.Render("watching " + cfg.Sessions.Root))

	for {
		select {
		case <-ctx.Done():
			cmd.Println(dimStyle.Render("stopping"))
			return nil
		case ev := <-w.Events():
			logger.Info("session settled", zap.String("path", ev.Path))
			result, err := analyzeOnce(cmd, cfg, logger)
			if err != nil {
				logger.Error("analysis failed", zap.Error(err))
				continue
			}
			printSuggestions(cmd, result)
		}
	}
}
