package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"outreach-engine/internal/qualify"
	"outreach-engine/internal/source"
)

func newQualifyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "qualify",
		Short: "Score a batch of harvested leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			eval, err := a.buildLLM(ctx)
			if err != nil {
				return err
			}

			limiter := source.NewHostLimiter(a.cfg.Harvest.SourceReqPerSec, a.cfg.Harvest.SourceBurst)
			q := qualify.New(a.db.Pool, eval, source.NewAboutEnricher(limiter), a.cfg, a.policy)
			q.AttachTranscripts(source.NewWatchExcerpt(limiter))

			c, err := q.RunBatch(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Printf("processed=%d qualified=%d disqualified=%d low_score=%d screened=%d failed=%d\n",
				c.Processed, c.Qualified, c.Disqualified, c.LowScore, c.Screened, c.Failed)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max leads to process (0 = configured batch size)")
	return cmd
}
