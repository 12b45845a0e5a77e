package followup

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/store"
)

// Cadence is the ascending sequence of day-offsets from the initial
// send at which follow-ups go out.
type Cadence []int

func DefaultCadence() Cadence { return Cadence{3, 7, 10, 15} }

func (c Cadence) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("cadence is empty")
	}
	prev := 0
	for i, d := range c {
		if d <= prev {
			return fmt.Errorf("cadence must be strictly ascending and positive, got %v at index %d", d, i)
		}
		prev = d
	}
	return nil
}

// MarkSent records the initial outreach: status sent, first follow-up
// scheduled at sentAt plus the first cadence offset.
func MarkSent(ctx context.Context, db *sql.DB, entityID, subject string, sentAt time.Time, cadence Cadence) error {
	next := sentAt.AddDate(0, 0, cadence[0])
	if err := store.MarkSent(ctx, db, entityID, domain.StatusReadyToSend, subject, sentAt, next); err != nil {
		return err
	}
	if _, err := store.AppendEvent(ctx, db, entityID, "initial_outreach", subject); err != nil {
		log.Printf("[followup] %s: record initial outreach event: %v", entityID, err)
	}
	return nil
}

// Due returns every non-terminal lead whose next action time has passed.
func Due(ctx context.Context, db *sql.DB, now time.Time) ([]domain.Lead, error) {
	return store.ListLeadsDue(ctx, db, now)
}

// Dispatch advances one due lead to its k-th follow-up, where k is one
// past the lead's recorded action count. The last follow-up in the
// cadence retires the lead instead of rescheduling it. The write is
// conditioned on the status observed when the lead was selected; a
// reply that landed in between wins the race and this dispatch fails
// with ConflictError.
func Dispatch(ctx context.Context, db *sql.DB, lead *domain.Lead, body string, now time.Time, cadence Cadence) error {
	k := lead.ActionCount + 1
	if k > len(cadence) {
		return fmt.Errorf("dispatch %s: action count %d exceeds cadence", lead.EntityID, lead.ActionCount)
	}

	to := domain.FollowupStatus(k)
	var next *time.Time
	if k < len(cadence) {
		t := now.AddDate(0, 0, cadence[k]-cadence[k-1])
		next = &t
	} else {
		to = domain.StatusDead
	}

	if err := store.DispatchFollowup(ctx, db, lead.EntityID, lead.Status, to, k, next); err != nil {
		return err
	}
	if _, err := store.AppendEvent(ctx, db, lead.EntityID, fmt.Sprintf("followup_%d", k), body); err != nil {
		log.Printf("[followup] %s: record followup event: %v", lead.EntityID, err)
	}
	if to == domain.StatusDead {
		log.Printf("[followup] %s: cadence exhausted after %d follow-ups, lead retired", lead.EntityID, k)
	}
	return nil
}

// RecordReply clears the schedule and moves the lead to replied. A
// dispatch racing this write loses; a reply that finds the lead already
// terminal is a no-op.
func RecordReply(ctx context.Context, db *sql.DB, entityID, snippet string) error {
	for attempt := 0; attempt < 3; attempt++ {
		lead, err := store.GetLead(ctx, db, entityID)
		if err != nil {
			return err
		}
		if lead.Status.Terminal() {
			return nil
		}
		err = store.RecordReplyStatus(ctx, db, entityID, lead.Status)
		if err == nil {
			if _, err := store.AppendEvent(ctx, db, entityID, "reply", snippet); err != nil {
				log.Printf("[followup] %s: record reply event: %v", entityID, err)
			}
			return nil
		}
		if !domain.IsConflict(err) {
			return err
		}
	}
	return &domain.ConflictError{EntityID: entityID, Reason: "reply record kept losing races"}
}
