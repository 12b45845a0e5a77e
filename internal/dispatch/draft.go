package dispatch

import (
	"context"
	"database/sql"
	"fmt"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/lifecycle"
	"outreach-engine/internal/store"
)

// Draft builds the initial outreach message for a lead with a finished
// asset.
func Draft(lead *domain.Lead) (string, string) {
	name := lead.CreatorName
	if name == "" {
		name = "there"
	}
	subject := fmt.Sprintf("Made a sample animation from one of your %s videos", lead.ChannelName)
	body := fmt.Sprintf(`Hi %s,

I run a small studio that turns educational videos into professionally animated explainers. I liked "%s" enough that we animated a short sample from it on our own time:

%s

If you like what you see I'd be glad to talk about doing full videos. If not, no hard feelings, and feel free to keep the sample.

Best,`, name, lead.VideoTitle, lead.AssetURL)
	return subject, body
}

// DraftLead writes the generated draft and advances the lead for
// review.
func DraftLead(ctx context.Context, db *sql.DB, lead *domain.Lead) error {
	if lead.Email == "" {
		return &domain.PermanentError{Op: "draft", Err: fmt.Errorf("lead %s has no email", lead.EntityID)}
	}
	subject, body := Draft(lead)
	return store.SetDraft(ctx, db, lead.EntityID, domain.StatusAssetGenerated, subject, body)
}

// Approve releases a reviewed draft for sending.
func Approve(ctx context.Context, db *sql.DB, entityID string) error {
	return lifecycle.Transition(ctx, db, entityID, domain.StatusDrafted, domain.StatusReadyToSend)
}
