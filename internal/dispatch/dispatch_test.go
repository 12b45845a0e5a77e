package dispatch_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-engine/internal/config"
	"outreach-engine/internal/dispatch"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/store"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.Pool
}

func seedLead(t *testing.T, db *sql.DB, status domain.Status, email string) *domain.Lead {
	t.Helper()
	ctx := context.Background()
	subs := int64(250_000)
	require.NoError(t, store.UpsertLead(ctx, db, domain.Lead{
		EntityID:        "E1",
		ChannelName:     "Topology Talks",
		ChannelURL:      "https://youtube.com/@topologytalks",
		CreatorName:     "Sam",
		Email:           email,
		VideoTitle:      "Metric spaces in 20 minutes",
		SubscriberCount: &subs,
		SubscriberTier:  domain.TierSweetSpot,
		Status:          domain.StatusHarvested,
	}))
	_, err := db.ExecContext(ctx,
		`UPDATE leads SET status = ?, asset_url = ? WHERE entity_id = 'E1';`,
		string(status), "https://cdn.example.com/sample.mp4")
	require.NoError(t, err)

	lead, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	return lead
}

func TestDraftLeadWritesDraftAndAdvances(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	lead := seedLead(t, db, domain.StatusAssetGenerated, "sam@example.com")

	require.NoError(t, dispatch.DraftLead(ctx, db, lead))

	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDrafted, got.Status)
	assert.Contains(t, got.DraftSubject, "Topology Talks")
	assert.Contains(t, got.DraftBody, "Sam")
	assert.Contains(t, got.DraftBody, "sample.mp4")
}

func TestDraftLeadRequiresEmail(t *testing.T) {
	db := openTestDB(t)
	lead := seedLead(t, db, domain.StatusAssetGenerated, "")

	err := dispatch.DraftLead(context.Background(), db, lead)
	assert.True(t, domain.IsPermanent(err))
}

func TestDraftLeadWrongStatusConflicts(t *testing.T) {
	db := openTestDB(t)
	lead := seedLead(t, db, domain.StatusQualified, "sam@example.com")

	err := dispatch.DraftLead(context.Background(), db, lead)
	assert.True(t, domain.IsConflict(err))
}

func TestApproveReleasesDraft(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	lead := seedLead(t, db, domain.StatusAssetGenerated, "sam@example.com")

	require.NoError(t, dispatch.DraftLead(ctx, db, lead))
	require.NoError(t, dispatch.Approve(ctx, db, "E1"))

	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReadyToSend, got.Status)

	// approving twice loses the guarded write
	err = dispatch.Approve(ctx, db, "E1")
	assert.True(t, domain.IsConflict(err))
}

func TestDraftAddressesUnknownCreator(t *testing.T) {
	subject, body := dispatch.Draft(&domain.Lead{
		ChannelName: "Topology Talks",
		VideoTitle:  "Metric spaces",
		AssetURL:    "https://cdn.example.com/sample.mp4",
	})
	assert.NotEmpty(t, subject)
	assert.Contains(t, body, "Hi there,")
}

func TestNewMailerRequiresSenders(t *testing.T) {
	var cfg config.Config
	cfg.Dispatch.Enabled = true
	cfg.Dispatch.SMTPHost = "smtp.example.com"
	cfg.Dispatch.SMTPPort = 587

	_, err := dispatch.NewMailer(cfg)
	require.Error(t, err)
	var cerr *domain.ConfigError
	assert.ErrorAs(t, err, &cerr)
}
