package worker

import (
	"context"
	"database/sql"
	"log"
	"time"

	"outreach-engine/internal/config"
	"outreach-engine/internal/dispatch"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
	"outreach-engine/internal/followup"
	"outreach-engine/internal/frontier"
	"outreach-engine/internal/harvest"
	"outreach-engine/internal/qualify"
	"outreach-engine/internal/replies"
	"outreach-engine/internal/retry"
)

// Worker runs the periodic pipeline pass: top up the keyword pool,
// harvest, qualify, then the mail legs when dispatch and reply polling
// are enabled. Each pass is stateless; everything lives in the store.
type Worker struct {
	DB        *sql.DB
	Frontier  *frontier.Frontier
	Harvester *harvest.Harvester
	Qualifier *qualify.Qualifier
	Mailer    *dispatch.Mailer // nil when dispatch is disabled
	Hub       *events.Hub      // nil for headless runs
	Cfg       config.Config
	Policy    retry.Policy
}

func (w *Worker) publish(typ string, data any) {
	if w.Hub != nil {
		w.Hub.Publish(events.MakeEvent("", typ, 1, data))
	}
}

// RunPass executes one full pipeline pass.
func (w *Worker) RunPass(ctx context.Context) error {
	start := time.Now()

	if err := w.replenishIfEmpty(ctx); err != nil {
		log.Printf("[worker] replenish: %v", err)
	}

	keywords, err := w.Frontier.TakeBatch(ctx, w.Cfg.Worker.KeywordsPerRun)
	if err != nil {
		return err
	}
	if len(keywords) > 0 {
		counters, err := w.Harvester.Run(ctx, keywords)
		if err != nil {
			log.Printf("[worker] harvest: %v", err)
		} else {
			log.Printf("[worker] harvest: scanned=%d new=%d seen=%d filtered=%d too_small=%d",
				counters.Scanned, counters.New, counters.SkippedSeen,
				counters.SkippedFiltered, counters.SkippedTooSmall)
			w.publish(events.TypeHarvestDone, map[string]int{
				"scanned": counters.Scanned,
				"new":     counters.New,
			})
		}
	}

	if _, err := w.Qualifier.RunBatch(ctx, w.Cfg.Worker.QualifyBatch); err != nil {
		log.Printf("[worker] qualify: %v", err)
	}

	if w.Cfg.Replies.Enabled {
		if n, err := replies.RunOnce(ctx, w.DB, w.Cfg); err != nil {
			log.Printf("[worker] replies: %v", err)
		} else if n > 0 {
			log.Printf("[worker] replies: recorded=%d", n)
			w.publish(events.TypeReplyRecorded, map[string]int{"recorded": n})
		}
	}

	if w.Mailer != nil {
		w.dispatchFollowups(ctx)
	}

	log.Printf("[worker] pass done in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func (w *Worker) replenishIfEmpty(ctx context.Context) error {
	n, err := w.Frontier.CountAvailable(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	added, err := w.Frontier.Replenish(ctx)
	if err != nil {
		return err
	}
	log.Printf("[worker] keyword pool was empty, generated %d", added)
	w.publish(events.TypeKeywordsGenerated, map[string]int{"added": added})
	return nil
}

// dispatchFollowups sends every due follow-up. A lead that replied
// between selection and send loses its slot silently.
func (w *Worker) dispatchFollowups(ctx context.Context) {
	cadence := followup.Cadence(w.Cfg.Followup.CadenceDays)
	due, err := followup.Due(ctx, w.DB, time.Now().UTC())
	if err != nil {
		log.Printf("[worker] followups: %v", err)
		return
	}
	for i := range due {
		lead := &due[i]
		err := dispatch.SendFollowup(ctx, w.DB, w.Mailer, lead, cadence, w.Policy)
		switch {
		case err == nil:
			if w.Hub != nil {
				w.Hub.Publish(events.MakeLeadEvent("", events.TypeFollowupDispatch, lead.EntityID, nil))
			}
		case domain.IsConflict(err):
			log.Printf("[worker] followup %s: superseded, skipping", lead.EntityID)
		default:
			log.Printf("[worker] followup %s: %v", lead.EntityID, err)
		}
	}
}
