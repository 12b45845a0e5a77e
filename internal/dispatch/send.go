package dispatch

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/followup"
	"outreach-engine/internal/retry"
	"outreach-engine/internal/store"
)

// SendInitial delivers the approved draft for one lead. The lead is
// re-read immediately before sending so a reply or unsubscribe that
// landed after selection stops the send.
func SendInitial(ctx context.Context, db *sql.DB, m *Mailer, entityID string, cadence followup.Cadence, policy retry.Policy) error {
	lead, err := store.GetLead(ctx, db, entityID)
	if err != nil {
		return err
	}
	if lead.Status != domain.StatusReadyToSend {
		return &domain.ConflictError{EntityID: entityID,
			Expected: domain.StatusReadyToSend, Actual: lead.Status}
	}
	if lead.Email == "" || lead.DraftSubject == "" {
		return &domain.PermanentError{Op: "send",
			Err: fmt.Errorf("lead %s is not sendable (missing email or draft)", entityID)}
	}

	err = policy.Do(ctx, "smtp-send", func(ctx context.Context) error {
		sender, err := m.Send(ctx, lead.Email, lead.DraftSubject, lead.DraftBody)
		if err == nil {
			log.Printf("[dispatch] sent initial to %s via %s", lead.Email, sender.Email)
		}
		return err
	})
	if err != nil {
		return err
	}
	return followup.MarkSent(ctx, db, entityID, lead.DraftSubject, time.Now().UTC(), cadence)
}

// SendFollowup delivers the next follow-up for one due lead and
// advances its schedule. The guarded dispatch write runs after the mail
// goes out; losing that race to a reply is logged, not fatal.
func SendFollowup(ctx context.Context, db *sql.DB, m *Mailer, lead *domain.Lead, cadence followup.Cadence, policy retry.Policy) error {
	if lead.Email == "" {
		return &domain.PermanentError{Op: "followup-send",
			Err: fmt.Errorf("lead %s has no email", lead.EntityID)}
	}
	current, err := store.GetLead(ctx, db, lead.EntityID)
	if err != nil {
		return err
	}
	if current.Status != lead.Status {
		return &domain.ConflictError{EntityID: lead.EntityID,
			Expected: lead.Status, Actual: current.Status}
	}
	k := lead.ActionCount + 1
	subject, body := followup.Template(k, lead.CreatorName, lead.ChannelName, lead.AssetURL)

	err = policy.Do(ctx, "smtp-send", func(ctx context.Context) error {
		sender, err := m.Send(ctx, lead.Email, subject, body)
		if err == nil {
			log.Printf("[dispatch] sent followup %d to %s via %s", k, lead.Email, sender.Email)
		}
		return err
	})
	if err != nil {
		return err
	}
	return followup.Dispatch(ctx, db, lead, body, time.Now().UTC(), cadence)
}
