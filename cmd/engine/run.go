package main

import (
	"github.com/spf13/cobra"

	"outreach-engine/internal/dispatch"
	"outreach-engine/internal/frontier"
	"outreach-engine/internal/harvest"
	"outreach-engine/internal/qualify"
	"outreach-engine/internal/source"
	"outreach-engine/internal/worker"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one full pipeline pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			gen, err := a.buildLLM(ctx)
			if err != nil {
				return err
			}

			limiter := source.NewHostLimiter(a.cfg.Harvest.SourceReqPerSec, a.cfg.Harvest.SourceBurst)
			fr := frontier.New(a.db.Pool, gen, a.policy)
			enricher := source.NewAboutEnricher(limiter)
			qualifier := qualify.New(a.db.Pool, gen, enricher, a.cfg, a.policy)
			qualifier.AttachTranscripts(source.NewWatchExcerpt(limiter))
			w := &worker.Worker{
				DB:        a.db.Pool,
				Frontier:  fr,
				Harvester: harvest.New(a.db.Pool, source.NewYouTubeSearch(limiter), enricher, fr, a.cfg, a.policy),
				Qualifier: qualifier,
				Cfg:       a.cfg,
				Policy:    a.policy,
			}
			if a.cfg.Dispatch.Enabled {
				m, err := dispatch.NewMailer(a.cfg)
				if err != nil {
					return err
				}
				w.Mailer = m
			}
			return w.RunPass(ctx)
		},
	}
}
