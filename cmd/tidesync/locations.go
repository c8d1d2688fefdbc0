package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List configured locations",
	RunE:  runLocations,
}

func init() {
	rootCmd.AddCommand(locationsCmd)
}

func runLocations(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.shutdown()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIMEZONE\tCOORDINATES")
	for _, loc := range a.file.Locations {
		coords := "-"
		if loc.HasCoordinates() {
			coords = fmt.Sprintf("%.4f, %.4f", loc.Latitude, loc.Longitude)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", loc.ID, loc.Name, loc.Timezone, coords)
	}
	return w.Flush()
}
