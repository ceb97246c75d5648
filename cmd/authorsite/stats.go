package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/KylerLong-dev/author-site/analytics"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print page-view statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		store, err := analytics.NewStore(appConfig.Analytics.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		to := time.Now()
		from := to.AddDate(0, 0, -statsDays)
		stats, err := store.GetStats(cmd.Context(), from, to)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s to %s\n", stats.From.Format("2006-01-02"), stats.To.Format("2006-01-02"))
		fmt.Fprintf(out, "views: %d  visitors: %d  bots: %d\n\n", stats.TotalViews, stats.UniqueVisitors, stats.BotVisits)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PAGE\tVIEWS")
		for _, p := range stats.TopPages {
			fmt.Fprintf(w, "%s\t%d\n", p.Path, p.Views)
		}
		for _, section := range []struct {
			title string
			rows  []analytics.DimensionStat
		}{
			{"REFERRER", stats.Referrers},
			{"BROWSER", stats.Browsers},
			{"DEVICE", stats.Devices},
		} {
			fmt.Fprintf(w, "\n%s\tCOUNT\n", section.title)
			for _, d := range section.rows {
				fmt.Fprintf(w, "%s\t%d\n", d.Name, d.Count)
			}
		}
		return w.Flush()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "authorsite %s\n", version)
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 30, "number of days to include")
}
