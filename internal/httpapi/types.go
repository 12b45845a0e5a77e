package httpapi

import (
	"time"

	"outreach-engine/internal/domain"
)

type leadView struct {
	EntityID       string         `json:"entity_id"`
	ChannelName    string         `json:"channel_name"`
	ChannelURL     string         `json:"channel_url"`
	CreatorName    string         `json:"creator_name,omitempty"`
	Email          string         `json:"email,omitempty"`
	KeywordSource  string         `json:"keyword_source,omitempty"`
	VideoTitle     string         `json:"video_title,omitempty"`
	SubscriberTier string         `json:"subscriber_tier"`
	Subscribers    *int64         `json:"subscribers,omitempty"`
	Score          int            `json:"score"`
	ScoreBreakdown map[string]int `json:"score_breakdown,omitempty"`
	Reason         string         `json:"disposition_reason,omitempty"`
	Status         string         `json:"status"`
	NextActionAt   *time.Time     `json:"next_action_at,omitempty"`
	ActionCount    int            `json:"action_count"`
	AssetURL       string         `json:"asset_url,omitempty"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func viewOf(l *domain.Lead) leadView {
	return leadView{
		EntityID:       l.EntityID,
		ChannelName:    l.ChannelName,
		ChannelURL:     l.ChannelURL,
		CreatorName:    l.CreatorName,
		Email:          l.Email,
		KeywordSource:  l.KeywordSource,
		VideoTitle:     l.VideoTitle,
		SubscriberTier: string(l.SubscriberTier),
		Subscribers:    l.SubscriberCount,
		Score:          l.Score,
		ScoreBreakdown: l.ScoreBreakdown,
		Reason:         l.DispositionReason,
		Status:         string(l.Status),
		NextActionAt:   l.NextActionAt,
		ActionCount:    l.ActionCount,
		AssetURL:       l.AssetURL,
		SentAt:         l.SentAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func viewsOf(leads []domain.Lead) []leadView {
	out := make([]leadView, len(leads))
	for i := range leads {
		out[i] = viewOf(&leads[i])
	}
	return out
}

type upsertLeadRequest struct {
	EntityID         string `json:"entity_id"`
	ChannelName      string `json:"channel_name"`
	ChannelURL       string `json:"channel_url"`
	CreatorName      string `json:"creator_name"`
	Email            string `json:"email"`
	KeywordSource    string `json:"keyword_source"`
	VideoID          string `json:"video_id"`
	VideoTitle       string `json:"video_title"`
	VideoDescription string `json:"video_description"`
	Subscribers      *int64 `json:"subscribers"`
	ProfileText      string `json:"profile_text"`
	VideoCount       int    `json:"video_count"`
}

type recordEventRequest struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`

	// Set together to record the outcome of an earlier entry instead
	// of appending a new one.
	EventID  string `json:"event_id"`
	Response string `json:"response"`
}
