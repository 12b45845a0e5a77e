package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"outreach-engine/internal/frontier"
	"outreach-engine/internal/harvest"
	"outreach-engine/internal/source"
)

func newHarvestCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "harvest [keyword...]",
		Short: "Harvest leads for the given keywords, or draw from the pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			fr := frontier.New(a.db.Pool, nil, a.policy)

			keywords := args
			if len(keywords) == 0 {
				keywords, err = fr.TakeBatch(ctx, count)
				if err != nil {
					return err
				}
				if len(keywords) == 0 {
					return fmt.Errorf("keyword pool is empty; run 'engine keywords generate' or pass keywords")
				}
			}

			limiter := source.NewHostLimiter(a.cfg.Harvest.SourceReqPerSec, a.cfg.Harvest.SourceBurst)
			h := harvest.New(a.db.Pool, source.NewYouTubeSearch(limiter), source.NewAboutEnricher(limiter), fr, a.cfg, a.policy)

			c, err := h.Run(ctx, keywords)
			if err != nil {
				return err
			}
			fmt.Printf("scanned=%d new=%d seen=%d filtered=%d too_small=%d\n",
				c.Scanned, c.New, c.SkippedSeen, c.SkippedFiltered, c.SkippedTooSmall)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 3, "keywords to draw from the pool when none given")
	return cmd
}
