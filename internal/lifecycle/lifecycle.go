package lifecycle

import (
	"context"
	"database/sql"
	"fmt"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/store"
)

// legal is the automated edge set of the lead state machine. Inbound
// events (replied, unsubscribed) and operator conversion are handled
// separately because they cut across most states.
var legal = map[domain.Status][]domain.Status{
	domain.StatusHarvested: {
		domain.StatusQualified, domain.StatusDisqualified, domain.StatusLowScore,
	},
	domain.StatusQualified:       {domain.StatusAssetGenerating},
	domain.StatusAssetGenerating: {domain.StatusAssetGenerated, domain.StatusQualified},
	domain.StatusAssetGenerated:  {domain.StatusDrafted},
	domain.StatusDrafted:         {domain.StatusReadyToSend},
	domain.StatusReadyToSend:     {domain.StatusSent},
	domain.StatusSent:            {domain.StatusFollowup1},
	domain.StatusFollowup1:       {domain.StatusFollowup2},
	domain.StatusFollowup2:       {domain.StatusFollowup3},
	domain.StatusFollowup3:       {domain.StatusFollowup4},
	domain.StatusFollowup4:       {domain.StatusDead},
}

// CanTransition reports whether from→to is a legal edge.
func CanTransition(from, to domain.Status) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case domain.StatusReplied, domain.StatusUnsubscribed, domain.StatusConverted:
		return true
	}
	for _, next := range legal[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves a lead along a legal edge with a guarded write. An
// illegal edge or a lost race both come back as ConflictError; the
// caller re-reads instead of forcing.
func Transition(ctx context.Context, db *sql.DB, entityID string, from, to domain.Status) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("transition %s: unknown status %q -> %q", entityID, from, to)
	}
	if !CanTransition(from, to) {
		return &domain.ConflictError{EntityID: entityID, Expected: from, Actual: from,
			Reason: fmt.Sprintf("illegal transition %s -> %s", from, to)}
	}
	return store.UpdateStatus(ctx, db, entityID, from, to)
}

// BeginAssetGeneration claims a qualified lead for asset work.
func BeginAssetGeneration(ctx context.Context, db *sql.DB, entityID string) error {
	return Transition(ctx, db, entityID, domain.StatusQualified, domain.StatusAssetGenerating)
}

// CompleteAssetGeneration records the asset and finishes the in-progress
// state.
func CompleteAssetGeneration(ctx context.Context, db *sql.DB, entityID, assetURL string) error {
	return store.SetAssetURL(ctx, db, entityID, assetURL)
}

// FailAssetGeneration rolls an in-progress lead back to qualified so a
// later run can pick it up again. A lead is never left stuck in
// asset_generating.
func FailAssetGeneration(ctx context.Context, db *sql.DB, entityID string) error {
	return Transition(ctx, db, entityID, domain.StatusAssetGenerating, domain.StatusQualified)
}

// MarkReplied records an inbound reply. The lead's follow-up schedule is
// cleared as part of the same write.
func MarkReplied(ctx context.Context, db *sql.DB, entityID string) error {
	lead, err := store.GetLead(ctx, db, entityID)
	if err != nil {
		return err
	}
	if lead.Status.Terminal() {
		return &domain.ConflictError{EntityID: entityID, Expected: lead.Status, Actual: lead.Status,
			Reason: "lead already terminal"}
	}
	return store.RecordReplyStatus(ctx, db, entityID, lead.Status)
}

// MarkUnsubscribed retires a lead that asked to stop hearing from us.
func MarkUnsubscribed(ctx context.Context, db *sql.DB, entityID string) error {
	return eventTransition(ctx, db, entityID, domain.StatusUnsubscribed)
}

// MarkConverted records an operator-confirmed conversion. Conversion is
// allowed out of replied, the one terminal state with a natural next
// step.
func MarkConverted(ctx context.Context, db *sql.DB, entityID string) error {
	lead, err := store.GetLead(ctx, db, entityID)
	if err != nil {
		return err
	}
	if lead.Status.Terminal() && lead.Status != domain.StatusReplied {
		return &domain.ConflictError{EntityID: entityID, Expected: lead.Status, Actual: lead.Status,
			Reason: "lead already terminal"}
	}
	return store.UpdateStatus(ctx, db, entityID, lead.Status, domain.StatusConverted)
}

func eventTransition(ctx context.Context, db *sql.DB, entityID string, to domain.Status) error {
	lead, err := store.GetLead(ctx, db, entityID)
	if err != nil {
		return err
	}
	return Transition(ctx, db, entityID, lead.Status, to)
}
