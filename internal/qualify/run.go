package qualify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
	"outreach-engine/internal/retry"
	"outreach-engine/internal/source"
	"outreach-engine/internal/store"
)

// Counters summarizes one qualification batch.
type Counters struct {
	Processed    int
	Qualified    int
	Disqualified int
	LowScore     int
	Screened     int // content farms rejected before evaluation
	Failed       int
}

type Qualifier struct {
	db          *sql.DB
	eval        Evaluator
	enricher    source.Enricher // optional, refreshes video counts
	cfg         config.Config
	policy      retry.Policy
	hub         *events.Hub             // optional, announces dispositions
	transcripts source.TranscriptSource // optional, feeds the evaluator an excerpt
}

func New(db *sql.DB, eval Evaluator, enricher source.Enricher, cfg config.Config, policy retry.Policy) *Qualifier {
	return &Qualifier{db: db, eval: eval, enricher: enricher, cfg: cfg, policy: policy}
}

// AttachHub makes the qualifier announce each disposition on the event
// stream. Without a hub dispositions are only logged.
func (q *Qualifier) AttachHub(h *events.Hub) {
	q.hub = h
}

// AttachTranscripts lets the evaluator see a transcript excerpt for the
// lead's sample video. Fetch failures never block a disposition.
func (q *Qualifier) AttachTranscripts(ts source.TranscriptSource) {
	q.transcripts = ts
}

// RunBatch pulls harvested leads and dispositions each one. A lead that
// fails evaluation stays harvested so a later batch can retry it; a lead
// another worker got to first is skipped without error.
func (q *Qualifier) RunBatch(ctx context.Context, limit int) (Counters, error) {
	if limit <= 0 {
		limit = q.cfg.Worker.QualifyBatch
	}
	leads, err := store.ListLeadsByStatus(ctx, q.db, domain.StatusHarvested, limit)
	if err != nil {
		return Counters{}, err
	}

	var c Counters
	for i := range leads {
		if ctx.Err() != nil {
			return c, ctx.Err()
		}
		lead := &leads[i]
		c.Processed++

		if err := q.qualifyOne(ctx, lead, &c); err != nil {
			switch {
			case domain.IsConflict(err):
				log.Printf("[qualify] %s: claimed elsewhere, skipping", lead.EntityID)
			case domain.IsValidation(err):
				c.Failed++
				log.Printf("[qualify] %s: evaluator output rejected: %v", lead.EntityID, err)
			default:
				c.Failed++
				log.Printf("[qualify] %s: %v", lead.EntityID, err)
			}
		}
	}

	log.Printf("[qualify] batch done: processed=%d qualified=%d disqualified=%d low=%d screened=%d failed=%d",
		c.Processed, c.Qualified, c.Disqualified, c.LowScore, c.Screened, c.Failed)
	return c, nil
}

func (q *Qualifier) qualifyOne(ctx context.Context, lead *domain.Lead, c *Counters) error {
	videoCount := q.refreshVideoCount(ctx, lead)

	// Channels uploading at content-farm volume are rejected outright;
	// no evaluator call is spent on them.
	if max := q.cfg.Qualify.MaxVideoCount; max > 0 && videoCount > max {
		c.Disqualified++
		c.Screened++
		return q.apply(ctx, lead, store.QualificationUpdate{
			Status:     domain.StatusDisqualified,
			Reason:     fmt.Sprintf("content farm: %d videos", videoCount),
			VideoCount: videoCount,
		})
	}

	ev, raw, err := q.evaluate(ctx, lead)
	if err != nil {
		return err
	}

	upd := store.QualificationUpdate{
		Evaluation:  raw,
		CreatorName: ev.CreatorFirstName,
		VideoCount:  videoCount,
	}

	if *ev.Disqualify.Should {
		upd.Status = domain.StatusDisqualified
		upd.Reason = ev.Disqualify.Reason
		if upd.Reason == "" {
			upd.Reason = "disqualified by evaluator"
		}
		c.Disqualified++
		return q.apply(ctx, lead, upd)
	}

	if !q.languageAllowed(ev) {
		upd.Status = domain.StatusDisqualified
		upd.Reason = fmt.Sprintf("language not supported: %s", ev.Language.Primary)
		c.Disqualified++
		return q.apply(ctx, lead, upd)
	}

	score, breakdown := Score(ev, lead.Email != "", q.cfg.Qualify.MaxScore)
	upd.Score = score
	upd.Breakdown = breakdown
	if score >= q.cfg.Qualify.MinScore {
		upd.Status = domain.StatusQualified
		c.Qualified++
	} else {
		upd.Status = domain.StatusLowScore
		upd.Reason = fmt.Sprintf("score %d below threshold %d", score, q.cfg.Qualify.MinScore)
		c.LowScore++
	}
	return q.apply(ctx, lead, upd)
}

func (q *Qualifier) evaluate(ctx context.Context, lead *domain.Lead) (*Evaluation, string, error) {
	ec := EvalContext{
		ChannelName:      lead.ChannelName,
		SubscriberText:   subscriberText(lead),
		Tier:             lead.SubscriberTier,
		ProfileText:      lead.ProfileText,
		VideoTitle:       lead.VideoTitle,
		VideoDescription: lead.VideoDescription,
		Transcript:       q.transcriptExcerpt(ctx, lead),
	}

	var (
		ev  *Evaluation
		raw string
	)
	err := q.policy.Do(ctx, "evaluate", func(ctx context.Context) error {
		var err error
		ev, raw, err = q.eval.Evaluate(ctx, ec)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	if err := ev.Validate(); err != nil {
		return nil, "", err
	}
	return ev, raw, nil
}

// transcriptExcerpt fetches the sample video's text excerpt when a
// transcript source is attached. A failed fetch just means the evaluator
// sees less context.
func (q *Qualifier) transcriptExcerpt(ctx context.Context, lead *domain.Lead) string {
	if q.transcripts == nil || lead.VideoID == "" {
		return ""
	}
	var excerpt string
	err := q.policy.Do(ctx, "transcript", func(ctx context.Context) error {
		var err error
		excerpt, err = q.transcripts.Excerpt(ctx, lead.VideoID, q.cfg.Qualify.TranscriptMaxChars)
		return err
	})
	if err != nil {
		log.Printf("[qualify] %s: transcript excerpt failed: %v", lead.EntityID, err)
		return ""
	}
	return excerpt
}

// refreshVideoCount re-reads the channel when the harvest snapshot did
// not capture an upload count. Lookup failures are tolerated; the
// screen simply does not fire.
func (q *Qualifier) refreshVideoCount(ctx context.Context, lead *domain.Lead) int {
	if lead.VideoCount > 0 || q.enricher == nil {
		return lead.VideoCount
	}
	var count int
	err := q.policy.Do(ctx, "video-count", func(ctx context.Context) error {
		enr, err := q.enricher.Lookup(ctx, lead.EntityID)
		if err != nil {
			return err
		}
		count = enr.VideoCount
		return nil
	})
	if err != nil {
		log.Printf("[qualify] %s: video count lookup failed: %v", lead.EntityID, err)
		return lead.VideoCount
	}
	return count
}

func (q *Qualifier) languageAllowed(ev *Evaluation) bool {
	if ev.Language.IsEnglish != nil && *ev.Language.IsEnglish {
		return true
	}
	primary := strings.TrimSpace(ev.Language.Primary)
	for _, lang := range q.cfg.Qualify.LanguagesAllow {
		if strings.EqualFold(lang, primary) {
			return true
		}
	}
	return false
}

func (q *Qualifier) apply(ctx context.Context, lead *domain.Lead, upd store.QualificationUpdate) error {
	err := store.ApplyQualification(ctx, q.db, lead.EntityID, domain.StatusHarvested, upd)
	if err != nil {
		if errors.Is(err, domain.ErrLeadNotFound) {
			return fmt.Errorf("apply qualification %s: %w", lead.EntityID, err)
		}
		return err
	}
	if q.hub != nil {
		typ := events.TypeLeadTransitioned
		switch upd.Status {
		case domain.StatusQualified:
			typ = events.TypeLeadQualified
		case domain.StatusDisqualified:
			typ = events.TypeLeadDisqualified
		}
		q.hub.PublishLead("", typ, lead.EntityID, string(upd.Status))
	}
	return nil
}

func subscriberText(lead *domain.Lead) string {
	if lead.SubscriberCount == nil {
		return "Unknown"
	}
	return fmt.Sprintf("%d", *lead.SubscriberCount)
}
