package harvest

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/frontier"
	"outreach-engine/internal/retry"
	"outreach-engine/internal/source"
	"outreach-engine/internal/store"
)

type fakeSource struct {
	items map[string][]source.Item
	err   error
}

func (f *fakeSource) Query(ctx context.Context, term string, limit int) ([]source.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[term], nil
}

type fakeEnricher struct {
	mu      sync.Mutex
	byID    map[string]source.Enrichment
	failing map[string]error
	calls   []string
}

func (f *fakeEnricher) Lookup(ctx context.Context, entityID string) (source.Enrichment, error) {
	f.mu.Lock()
	f.calls = append(f.calls, entityID)
	f.mu.Unlock()
	if err, ok := f.failing[entityID]; ok {
		return source.Enrichment{}, err
	}
	return f.byID[entityID], nil
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.Harvest.MaxItemsPerKeyword = 25
	cfg.Harvest.EnrichWorkers = 4
	cfg.Harvest.EnrichTimeoutSec = 5
	cfg.Harvest.EnrichBatchSec = 30
	cfg.Harvest.Disallow = []string{"for kids", "nursery rhymes"}
	cfg.Harvest.TooSmallBelow = 5_000
	cfg.Harvest.SmallBelow = 100_000
	cfg.Harvest.SweetSpotBelow = 1_000_000
	return cfg
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.Pool
}

func subs(v int64) *int64 { return &v }

func item(entityID, title string) source.Item {
	return source.Item{
		EntityID:   entityID,
		EntityName: "Channel " + entityID,
		EntityURL:  "https://www.youtube.com/channel/" + entityID,
		ItemID:     "vid-" + entityID,
		Title:      title,
	}
}

func TestRunCollapsesDuplicateEntities(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	src := &fakeSource{items: map[string][]source.Item{
		"topology explained": {
			item("E1", "Topology explained part 1"),
			item("E2", "Knot theory intro"),
			item("E1", "Topology explained part 2"),
			item("E3", "Manifolds for beginners"),
			item("E4", "Open sets"),
		},
	}}
	enr := &fakeEnricher{byID: map[string]source.Enrichment{
		"E1": {SubscriberCount: subs(250_000), ProfileText: "Math explainers. mail: e1@example.com", VideoCount: 80},
		"E2": {SubscriberCount: subs(40_000)},
		"E3": {SubscriberCount: subs(12_000)},
		"E4": {SubscriberCount: subs(900_000)},
	}}

	fr := frontier.New(db, nil, retry.Default())
	h := New(db, src, enr, fr, testConfig(), retry.Default())

	_, err := store.InsertKeywordIgnore(ctx, db, "topology explained")
	require.NoError(t, err)

	c, err := h.Run(ctx, []string{"topology explained"})
	require.NoError(t, err)
	assert.Equal(t, 5, c.Scanned)
	assert.Equal(t, 4, c.New)

	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHarvested, got.Status)
	assert.Equal(t, domain.TierSweetSpot, got.SubscriberTier)
	assert.Equal(t, "e1@example.com", got.Email)
	assert.Equal(t, "Topology explained part 1", got.VideoTitle)
	assert.Equal(t, 80, got.VideoCount)

	// keyword claimed after a successful pass
	n, err := store.CountAvailableKeywords(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunSkipsKnownEntities(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertLead(ctx, db, domain.Lead{
		EntityID:    "E1",
		ChannelName: "Channel E1",
		Status:      domain.StatusQualified,
	}))

	src := &fakeSource{items: map[string][]source.Item{
		"topology explained": {item("E1", "Topology explained")},
	}}
	enr := &fakeEnricher{byID: map[string]source.Enrichment{}}

	fr := frontier.New(db, nil, retry.Default())
	h := New(db, src, enr, fr, testConfig(), retry.Default())

	c, err := h.Run(ctx, []string{"topology explained"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.SkippedSeen)
	assert.Zero(t, c.New)
	assert.Empty(t, enr.calls)

	// the known lead is untouched
	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQualified, got.Status)
}

func TestRunDropsTooSmallChannels(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	src := &fakeSource{items: map[string][]source.Item{
		"kw": {item("tiny", "A tiny channel"), item("ok", "A fine channel")},
	}}
	enr := &fakeEnricher{byID: map[string]source.Enrichment{
		"tiny": {SubscriberCount: subs(1_200)},
		"ok":   {SubscriberCount: subs(50_000)},
	}}

	fr := frontier.New(db, nil, retry.Default())
	h := New(db, src, enr, fr, testConfig(), retry.Default())

	c, err := h.Run(ctx, []string{"kw"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.SkippedTooSmall)
	assert.Equal(t, 1, c.New)

	_, err = store.GetLead(ctx, db, "tiny")
	assert.ErrorIs(t, err, domain.ErrLeadNotFound)
}

func TestRunKeepsUnresolvedEnrichment(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	src := &fakeSource{items: map[string][]source.Item{
		"kw": {item("E1", "Video")},
	}}
	enr := &fakeEnricher{
		byID:    map[string]source.Enrichment{},
		failing: map[string]error{"E1": &domain.PermanentError{Op: "lookup", Err: errors.New("404")}},
	}

	fr := frontier.New(db, nil, retry.Default())
	h := New(db, src, enr, fr, testConfig(), retry.Default())

	c, err := h.Run(ctx, []string{"kw"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.New)

	got, err := store.GetLead(ctx, db, "E1")
	require.NoError(t, err)
	assert.False(t, got.StatsAvailable)
	assert.Equal(t, domain.TierUnknown, got.SubscriberTier)
}

func TestRunFilteredByDisallowList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	src := &fakeSource{items: map[string][]source.Item{
		"kw": {item("E1", "Counting songs FOR KIDS")},
	}}
	enr := &fakeEnricher{byID: map[string]source.Enrichment{}}

	fr := frontier.New(db, nil, retry.Default())
	h := New(db, src, enr, fr, testConfig(), retry.Default())

	c, err := h.Run(ctx, []string{"kw"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.SkippedFiltered)
	assert.Zero(t, c.New)
	assert.Empty(t, enr.calls)
}

func TestRunLeavesKeywordUnclaimedOnQueryFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := store.InsertKeywordIgnore(ctx, db, "kw")
	require.NoError(t, err)

	src := &fakeSource{err: &domain.PermanentError{Op: "query", Err: errors.New("403")}}
	fr := frontier.New(db, nil, retry.Default())
	h := New(db, src, &fakeEnricher{}, fr, testConfig(), retry.Default())

	_, err = h.Run(ctx, []string{"kw"})
	require.NoError(t, err)

	n, err := store.CountAvailableKeywords(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDisallowed(t *testing.T) {
	list := []string{"for kids", "reaction"}

	bad, term := Disallowed("Science FOR KIDS compilation", "", list)
	assert.True(t, bad)
	assert.Equal(t, "for kids", term)

	bad, _ = Disallowed("Quantum mechanics lecture", "deep dive", list)
	assert.False(t, bad)

	bad, term = Disallowed("Physics video", "my reaction to the lecture", list)
	assert.True(t, bad)
	assert.Equal(t, "reaction", term)
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "me@example.com", ExtractEmail("business: Me@Example.com or DM"))
	assert.Equal(t, "a.b-c@mail.co.uk", ExtractEmail("reach a.b-c@mail.co.uk anytime"))
	assert.Empty(t, ExtractEmail("no contact info here"))
	assert.Empty(t, ExtractEmail(""))
}
