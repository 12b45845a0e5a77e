package domain

import "time"

// Lead is one discovered creator tracked through the outreach lifecycle.
// EntityID is the channel id and is unique across all leads.
type Lead struct {
	ID          int64
	EntityID    string
	ChannelName string
	ChannelURL  string
	CreatorName string
	Email       string

	KeywordSource string

	// Source item that surfaced the channel.
	VideoID          string
	VideoTitle       string
	VideoDescription string

	// Enrichment snapshot.
	SubscriberCount *int64
	SubscriberTier  Tier
	ProfileText     string
	StatsAvailable  bool
	VideoCount      int

	// Qualification record.
	Score             int
	ScoreBreakdown    map[string]int
	Evaluation        string // raw evaluator output, kept for audit
	DispositionReason string

	Status       Status
	NextActionAt *time.Time
	ActionCount  int

	// Asset / outreach artifacts.
	AssetURL     string
	DraftSubject string
	DraftBody    string
	SentSubject  string
	SentAt       *time.Time

	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ThreadEntry is one append-only entry in a lead's event thread.
type ThreadEntry struct {
	ID       string    `json:"id"`
	EntityID string    `json:"entity_id"`
	At       time.Time `json:"at"`
	Type     string    `json:"type"`
	Payload  string    `json:"payload"`
	Response string    `json:"response,omitempty"`
}
