package followup

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

func seedReadyLead(t *testing.T, db *sql.DB, entityID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.UpsertLead(ctx, db, domain.Lead{
		EntityID:    entityID,
		ChannelName: "Channel " + entityID,
		Email:       "c@example.com",
		Status:      domain.StatusHarvested,
	}))
	_, err := db.ExecContext(ctx, `UPDATE leads SET status = ? WHERE entity_id = ?;`,
		string(domain.StatusReadyToSend), entityID)
	require.NoError(t, err)
}

func TestCadenceValidate(t *testing.T) {
	assert.NoError(t, DefaultCadence().Validate())
	assert.NoError(t, Cadence{1, 2, 3}.Validate())
	assert.Error(t, Cadence{}.Validate())
	assert.Error(t, Cadence{3, 3, 7}.Validate())
	assert.Error(t, Cadence{3, 2}.Validate())
	assert.Error(t, Cadence{0, 3}.Validate())
}

func TestMarkSentSchedulesFirstFollowup(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedReadyLead(t, db, "E1")

	sentAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, MarkSent(ctx, db, "E1", "hello", sentAt, DefaultCadence()))

	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, got.Status)
	assert.Equal(t, "hello", got.SentSubject)
	require.NotNil(t, got.NextActionAt)
	assert.True(t, got.NextActionAt.Equal(sentAt.AddDate(0, 0, 3)))

	events, err := store.ListEvents(ctx, db, "E1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "initial_outreach", events[0].Type)
}

// Full cadence walk: sent at T0 with offsets [3 7 10 15], no replies.
// Each next action time is strictly later than the previous one, and
// the fourth dispatch retires the lead.
func TestCadenceRunsToDead(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	cadence := DefaultCadence()
	seedReadyLead(t, db, "E1")

	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, MarkSent(ctx, db, "E1", "hello", t0, cadence))

	var prev time.Time
	for k := 1; k <= len(cadence); k++ {
		lead, err := store.GetLead(ctx, db, "E1")
		require.NoError(t, err)
		require.NotNil(t, lead.NextActionAt)

		if k > 1 {
			assert.True(t, lead.NextActionAt.After(prev),
				"follow-up %d must be scheduled after follow-up %d", k, k-1)
		}
		prev = *lead.NextActionAt

		now := lead.NextActionAt.Add(time.Minute)
		due, err := Due(ctx, db, now)
		require.NoError(t, err)
		require.Len(t, due, 1, "lead must be due before follow-up %d", k)

		require.NoError(t, Dispatch(ctx, db, &due[0], "nudge", now, cadence))
	}

	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDead, got.Status)
	assert.Nil(t, got.NextActionAt)
	assert.Equal(t, len(cadence), got.ActionCount)

	due, err := Due(ctx, db, got.UpdatedAt.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestDispatchSchedulesByOffsetDelta(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	cadence := DefaultCadence()
	seedReadyLead(t, db, "E1")

	t0 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, MarkSent(ctx, db, "E1", "hello", t0, cadence))

	now := t0.AddDate(0, 0, 3)
	lead, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	require.NoError(t, Dispatch(ctx, db, lead, "nudge", now, cadence))

	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFollowup1, got.Status)
	require.NotNil(t, got.NextActionAt)
	// offsets[1]-offsets[0] = 4 days
	assert.True(t, got.NextActionAt.Equal(now.AddDate(0, 0, 4)))
}

func TestDispatchLosesToReply(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	cadence := DefaultCadence()
	seedReadyLead(t, db, "E1")

	t0 := time.Now().UTC().AddDate(0, 0, -4)
	require.NoError(t, MarkSent(ctx, db, "E1", "hello", t0, cadence))

	due, err := Due(ctx, db, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, due, 1)

	// reply arrives between selection and dispatch
	require.NoError(t, RecordReply(ctx, db, "E1", "sounds interesting"))

	err = Dispatch(ctx, db, &due[0], "nudge", time.Now().UTC(), cadence)
	assert.True(t, domain.IsConflict(err))

	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReplied, got.Status)
	assert.Nil(t, got.NextActionAt)
}

func TestRecordReplyOnTerminalLeadIsNoop(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedReadyLead(t, db, "E1")

	t0 := time.Now().UTC()
	require.NoError(t, MarkSent(ctx, db, "E1", "hello", t0, DefaultCadence()))
	require.NoError(t, RecordReply(ctx, db, "E1", "first reply"))
	require.NoError(t, RecordReply(ctx, db, "E1", "second reply"))

	events, err := store.ListEvents(ctx, db, "E1")
	require.NoError(t, err)

	replies := 0
	for _, e := range events {
		if e.Type == "reply" {
			replies++
		}
	}
	assert.Equal(t, 1, replies)
}

func TestTemplatesAddressCreator(t *testing.T) {
	for k := 1; k <= 4; k++ {
		subject, body := Template(k, "Sam", "Science Simplified", "https://assets.example.com/s.mp4")
		assert.NotEmpty(t, subject)
		assert.Contains(t, body, "Sam")
	}

	_, body := Template(1, "", "Science Simplified", "https://assets.example.com/s.mp4")
	assert.Contains(t, body, "Hi there")
}
