package main

import (
	"fmt"
	"sort"

	"records-portal-api/services"

	"github.com/spf13/cobra"
)

func newStatsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print document counts by status, priority and handler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.database()
			if err != nil {
				return err
			}
			stats, err := services.NewRMSService(db).Documents.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if app.Format == "json" {
				return writeJSON(out, stats)
			}
			fmt.Fprintf(out, "total %d, open %d, closed %d\n", stats.Total, stats.Open, stats.Closed)
			printBuckets(cmd, "status", stats.ByStatus)
			printBuckets(cmd, "priority", stats.ByPriority)
			printBuckets(cmd, "handler", stats.ByHandler)
			return nil
		},
	}
}

func printBuckets(cmd *cobra.Command, title string, buckets map[string]int64) {
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "by %s:\n", title)
	for _, key := range keys {
		fmt.Fprintf(out, "  %-24s %d\n", key, buckets[key])
	}
}
