package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"outreach-engine/internal/store"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show lead counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			counts, err := store.CountByStatus(cmd.Context(), a.db.Pool)
			if err != nil {
				return err
			}

			statuses := make([]string, 0, len(counts))
			total := 0
			for s, n := range counts {
				statuses = append(statuses, s)
				total += n
			}
			sort.Strings(statuses)
			for _, s := range statuses {
				fmt.Printf("%-18s %d\n", s, counts[s])
			}
			fmt.Printf("%-18s %d\n", "total", total)
			return nil
		},
	}
}
