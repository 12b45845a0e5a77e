package source

import "context"

// Item is one search result from the content discovery source.
type Item struct {
	EntityID      string // owning channel id
	EntityName    string
	EntityURL     string
	ItemID        string // video id
	Title         string
	Description   string
	Engagement    string // view count text, free-form
	PublishedText string
}

// Source queries the content discovery backend for recent items matching
// a search term.
type Source interface {
	Query(ctx context.Context, term string, limit int) ([]Item, error)
}

// Enrichment is the profile snapshot fetched per unseen entity.
type Enrichment struct {
	SubscriberCount *int64
	ProfileText     string
	VideoCount      int
}

// Enricher resolves an entity id to its profile snapshot.
type Enricher interface {
	Lookup(ctx context.Context, entityID string) (Enrichment, error)
}

// TranscriptSource resolves a video id to a text excerpt standing in for
// its transcript, capped at maxChars.
type TranscriptSource interface {
	Excerpt(ctx context.Context, videoID string, maxChars int) (string, error)
}
