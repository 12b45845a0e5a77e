package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"outreach-engine/internal/dispatch"
	"outreach-engine/internal/events"
	"outreach-engine/internal/frontier"
	"outreach-engine/internal/harvest"
	"outreach-engine/internal/httpapi"
	"outreach-engine/internal/qualify"
	"outreach-engine/internal/source"
	"outreach-engine/internal/worker"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic pipeline worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gen, err := a.buildLLM(ctx)
			if err != nil {
				return err
			}

			hub := events.NewHub()
			limiter := source.NewHostLimiter(a.cfg.Harvest.SourceReqPerSec, a.cfg.Harvest.SourceBurst)
			fr := frontier.New(a.db.Pool, gen, a.policy)
			enricher := source.NewAboutEnricher(limiter)
			qualifier := qualify.New(a.db.Pool, gen, enricher, a.cfg, a.policy)
			qualifier.AttachHub(hub)
			qualifier.AttachTranscripts(source.NewWatchExcerpt(limiter))
			w := &worker.Worker{
				DB:        a.db.Pool,
				Frontier:  fr,
				Harvester: harvest.New(a.db.Pool, source.NewYouTubeSearch(limiter), enricher, fr, a.cfg, a.policy),
				Qualifier: qualifier,
				Hub:       hub,
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

			mux := httpapi.NewMux(httpapi.Deps{
				DB:  a.db.Pool,
				Hub: hub,
			})
			srv := &http.Server{
				Addr:              fmt.Sprintf("127.0.0.1:%d", a.cfg.App.Port),
				Handler:           httpapi.Chain(mux, httpapi.RequestID, httpapi.Recover, httpapi.AccessLog),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go worker.Every(ctx, time.Duration(a.cfg.Worker.IntervalSeconds)*time.Second, "worker", w.RunPass)

			go func() {
				<-ctx.Done()
				shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutCtx)
			}()

			log.Printf("[serve] listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
