// Command tidesync computes daily tide summaries and keeps one calendar record
// per location and date in sync with them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tidesync",
	Short: "Sync daily tide summaries into a calendar",
	Long: `tidesync predicts each day's highs and lows for configured locations,
classifies the tide regime, and writes one record per day into a calendar
store without overwriting the user's notes.`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
