package harvest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/frontier"
	"outreach-engine/internal/retry"
	"outreach-engine/internal/source"
	"outreach-engine/internal/store"
)

// Counters summarizes one keyword's harvest.
type Counters struct {
	Scanned         int `json:"scanned"`
	SkippedSeen     int `json:"skipped_seen"`
	SkippedFiltered int `json:"skipped_filtered"`
	SkippedTooSmall int `json:"skipped_too_small"`
	New             int `json:"new"`
}

func (c Counters) add(o Counters) Counters {
	c.Scanned += o.Scanned
	c.SkippedSeen += o.SkippedSeen
	c.SkippedFiltered += o.SkippedFiltered
	c.SkippedTooSmall += o.SkippedTooSmall
	c.New += o.New
	return c
}

type Harvester struct {
	db       *sql.DB
	src      source.Source
	enricher source.Enricher
	frontier *frontier.Frontier
	cfg      config.Config
	policy   retry.Policy
}

func New(db *sql.DB, src source.Source, enricher source.Enricher, fr *frontier.Frontier, cfg config.Config, policy retry.Policy) *Harvester {
	return &Harvester{db: db, src: src, enricher: enricher, frontier: fr, cfg: cfg, policy: policy}
}

// Run harvests a batch of keywords. The seen-entity set is loaded once at
// batch start; a keyword whose source query hard-fails is left unclaimed
// so the next run retries it.
func (h *Harvester) Run(ctx context.Context, keywords []string) (Counters, error) {
	seen, err := store.KnownEntityIDs(ctx, h.db)
	if err != nil {
		return Counters{}, fmt.Errorf("harvest: load seen entities: %w", err)
	}

	var total Counters
	for _, kw := range keywords {
		c, err := h.runKeyword(ctx, kw, seen)
		total = total.add(c)
		if err != nil {
			log.Printf("[harvest] keyword %q failed (left unclaimed): %v", kw, err)
			continue
		}

		claimed, err := h.frontier.Claim(ctx, kw)
		if err != nil {
			return total, fmt.Errorf("harvest: claim %q: %w", kw, err)
		}
		if !claimed {
			log.Printf("[harvest] keyword %q already claimed by another run", kw)
		}
	}
	return total, nil
}

func (h *Harvester) runKeyword(ctx context.Context, keyword string, seen map[string]bool) (Counters, error) {
	var c Counters

	var items []source.Item
	err := h.policy.Do(ctx, "source-query", func(ctx context.Context) error {
		var qerr error
		items, qerr = h.src.Query(ctx, keyword, h.cfg.Harvest.MaxItemsPerKeyword)
		return qerr
	})
	if err != nil {
		return c, fmt.Errorf("query source: %w", err)
	}
	log.Printf("[harvest] %q: %d items", keyword, len(items))

	// Collapse items down to one representative candidate per unseen
	// entity; first item wins.
	candidates := map[string]source.Item{}
	var order []string

	for _, it := range items {
		c.Scanned++

		if it.EntityID == "" {
			continue
		}
		if seen[it.EntityID] {
			c.SkippedSeen++
			continue
		}
		if bad, term := Disallowed(it.Title, it.Description, h.cfg.Harvest.Disallow); bad {
			c.SkippedFiltered++
			log.Printf("[harvest] filtered %q (%s)", it.EntityName, term)
			continue
		}
		if _, dup := candidates[it.EntityID]; dup {
			continue
		}
		candidates[it.EntityID] = it
		order = append(order, it.EntityID)
	}

	if len(candidates) == 0 {
		return c, nil
	}

	enriched := enrichAll(ctx, h.enricher, order,
		h.cfg.Harvest.EnrichWorkers,
		time.Duration(h.cfg.Harvest.EnrichTimeoutSec)*time.Second,
		time.Duration(h.cfg.Harvest.EnrichBatchSec)*time.Second,
		h.policy)

	thresholds := domain.TierThresholds{
		TooSmallBelow:  h.cfg.Harvest.TooSmallBelow,
		SmallBelow:     h.cfg.Harvest.SmallBelow,
		SweetSpotBelow: h.cfg.Harvest.SweetSpotBelow,
	}

	for _, id := range order {
		it := candidates[id]
		enr, resolved := enriched[id]

		tier := domain.ClassifyTier(enr.SubscriberCount, thresholds)
		if tier == domain.TierTooSmall {
			c.SkippedTooSmall++
			continue
		}

		lead := domain.Lead{
			EntityID:         it.EntityID,
			ChannelName:      it.EntityName,
			ChannelURL:       it.EntityURL,
			Email:            ExtractEmail(enr.ProfileText),
			KeywordSource:    keyword,
			VideoID:          it.ItemID,
			VideoTitle:       it.Title,
			VideoDescription: it.Description,
			SubscriberCount:  enr.SubscriberCount,
			SubscriberTier:   tier,
			ProfileText:      enr.ProfileText,
			StatsAvailable:   resolved && enr.SubscriberCount != nil,
			VideoCount:       enr.VideoCount,
			Status:           domain.StatusHarvested,
		}

		if err := store.UpsertLead(ctx, h.db, lead); err != nil {
			log.Printf("[harvest] upsert %s failed: %v", it.EntityID, err)
			continue
		}

		seen[it.EntityID] = true
		c.New++
		log.Printf("[harvest] + %s | tier=%s email=%v", it.EntityName, tier, lead.Email != "")
	}

	return c, nil
}
