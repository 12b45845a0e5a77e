package lifecycle

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func seed(t *testing.T, db *sql.DB, entityID string, status domain.Status) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.UpsertLead(ctx, db, domain.Lead{
		EntityID:    entityID,
		ChannelName: "Channel " + entityID,
		Status:      domain.StatusHarvested,
	}))
	if status != domain.StatusHarvested {
		_, err := db.ExecContext(ctx, `UPDATE leads SET status = ? WHERE entity_id = ?;`,
			string(status), entityID)
		require.NoError(t, err)
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(domain.StatusHarvested, domain.StatusQualified))
	assert.True(t, CanTransition(domain.StatusQualified, domain.StatusAssetGenerating))
	assert.True(t, CanTransition(domain.StatusAssetGenerating, domain.StatusQualified))
	assert.True(t, CanTransition(domain.StatusFollowup4, domain.StatusDead))

	// inbound events cut across the chain
	assert.True(t, CanTransition(domain.StatusSent, domain.StatusReplied))
	assert.True(t, CanTransition(domain.StatusFollowup2, domain.StatusUnsubscribed))

	assert.False(t, CanTransition(domain.StatusHarvested, domain.StatusSent))
	assert.False(t, CanTransition(domain.StatusSent, domain.StatusFollowup2))
}

func TestNoExitFromTerminal(t *testing.T) {
	for _, s := range []domain.Status{
		domain.StatusDisqualified, domain.StatusLowScore, domain.StatusReplied,
		domain.StatusConverted, domain.StatusUnsubscribed, domain.StatusDead,
	} {
		assert.False(t, CanTransition(s, domain.StatusQualified), "from %s", s)
		assert.False(t, CanTransition(s, domain.StatusReplied), "from %s", s)
	}
}

func TestTransitionIllegalEdge(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, "E1", domain.StatusHarvested)

	err := Transition(context.Background(), db, "E1", domain.StatusHarvested, domain.StatusSent)
	assert.True(t, domain.IsConflict(err))

	got, gerr := store.GetLead(context.Background(), db, "E1")
	require.NoError(t, gerr)
	assert.Equal(t, domain.StatusHarvested, got.Status)
}

func TestAssetGenerationRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed(t, db, "E1", domain.StatusQualified)

	require.NoError(t, BeginAssetGeneration(ctx, db, "E1"))
	require.NoError(t, CompleteAssetGeneration(ctx, db, "E1", "https://assets.example.com/e1.mp4"))

	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssetGenerated, got.Status)
	assert.Equal(t, "https://assets.example.com/e1.mp4", got.AssetURL)
}

func TestFailedAssetGenerationRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed(t, db, "E1", domain.StatusQualified)

	require.NoError(t, BeginAssetGeneration(ctx, db, "E1"))
	require.NoError(t, FailAssetGeneration(ctx, db, "E1"))

	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQualified, got.Status)

	// completing after the rollback is rejected
	err = CompleteAssetGeneration(ctx, db, "E1", "https://assets.example.com/e1.mp4")
	assert.True(t, domain.IsConflict(err))
}

func TestBeginAssetGenerationLostRace(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed(t, db, "E1", domain.StatusQualified)

	require.NoError(t, BeginAssetGeneration(ctx, db, "E1"))
	err := BeginAssetGeneration(ctx, db, "E1")
	assert.True(t, domain.IsConflict(err))
}

func TestMarkReplied(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed(t, db, "E1", domain.StatusFollowup2)

	require.NoError(t, MarkReplied(ctx, db, "E1"))

	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReplied, got.Status)

	// a second reply on a terminal lead is refused
	err = MarkReplied(ctx, db, "E1")
	assert.True(t, domain.IsConflict(err))
}

func TestMarkUnsubscribed(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed(t, db, "E1", domain.StatusSent)

	require.NoError(t, MarkUnsubscribed(ctx, db, "E1"))

	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnsubscribed, got.Status)
}

func TestTerminalExitClearsSchedule(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, tc := range []struct {
		entityID string
		retire   func() error
		want     domain.Status
	}{
		{"unsub", func() error { return MarkUnsubscribed(ctx, db, "unsub") }, domain.StatusUnsubscribed},
		{"conv", func() error { return MarkConverted(ctx, db, "conv") }, domain.StatusConverted},
	} {
		seed(t, db, tc.entityID, domain.StatusReadyToSend)
		sentAt := time.Now().UTC()
		require.NoError(t, store.MarkSent(ctx, db, tc.entityID, domain.StatusReadyToSend,
			"subject", sentAt, sentAt.Add(72*time.Hour)))

		got, err := store.GetLead(ctx, db, tc.entityID)
		require.NoError(t, err)
		require.NotNil(t, got.NextActionAt)

		require.NoError(t, tc.retire())
		got, err = store.GetLead(ctx, db, tc.entityID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.Status)
		assert.Nil(t, got.NextActionAt)
	}
}

func TestMarkConverted(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seed(t, db, "replied", domain.StatusReplied)
	require.NoError(t, MarkConverted(ctx, db, "replied"))
	got, err := store.GetLead(ctx, db, "replied")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConverted, got.Status)

	seed(t, db, "dead", domain.StatusDead)
	assert.True(t, domain.IsConflict(MarkConverted(ctx, db, "dead")))
}
