package main

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	"github.com/spf13/cobra"
)

var (
	syncLocationID string
	syncStartDate  string
	syncDays       int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync a range of days for one location",
	Long: `Compute the tide summary for each day starting at --start-date (today in
the configured timezone when omitted) and create or update its record.
Existing NOTES and other user sections are kept.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncLocationID, "location-id", "", "Location to sync (required)")
	syncCmd.Flags().StringVar(&syncStartDate, "start-date", "", "First date to sync, YYYY-MM-DD (default: today)")
	syncCmd.Flags().IntVar(&syncDays, "days", 0, "Number of days to sync (default: settings.register_days)")
}

func runSync(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.shutdown()

	if err := a.requireLocation(syncLocationID); err != nil {
		return err
	}

	start := domain.Today(a.file.TimeZone())
	if syncStartDate != "" {
		if start, err = parseDateFlag("start-date", syncStartDate); err != nil {
			return err
		}
	}
	days := syncDays
	if days <= 0 {
		days = a.file.Settings.RegisterDays
	}

	report, err := a.syncer().SyncRange(cmd.Context(), syncLocationID, start, days)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d created, %d updated, %d skipped, %d failed\n",
		syncLocationID, report.Created, report.Updated, report.Skipped, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d days failed", report.Failed, report.Total())
	}
	return nil
}

func parseDateFlag(name, value string) (civil.Date, error) {
	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("--%s %q: %w", name, value, domain.ErrInvalidDate)
	}
	return d, nil
}
