package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
	"outreach-engine/internal/lifecycle"
	"outreach-engine/internal/store"
)

type LeadsHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

// Upsert lets an external collaborator register or refresh a lead
// draft directly.
func (h LeadsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertLeadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if req.EntityID == "" || req.ChannelName == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_fields", "entity_id and channel_name are required")
		return
	}

	tier := domain.ClassifyTier(req.Subscribers, domain.DefaultTierThresholds())
	lead := domain.Lead{
		EntityID:         req.EntityID,
		ChannelName:      req.ChannelName,
		ChannelURL:       req.ChannelURL,
		CreatorName:      req.CreatorName,
		Email:            strings.ToLower(req.Email),
		KeywordSource:    req.KeywordSource,
		VideoID:          req.VideoID,
		VideoTitle:       req.VideoTitle,
		VideoDescription: req.VideoDescription,
		SubscriberCount:  req.Subscribers,
		SubscriberTier:   tier,
		ProfileText:      req.ProfileText,
		StatsAvailable:   req.Subscribers != nil,
		VideoCount:       req.VideoCount,
		Status:           domain.StatusHarvested,
	}
	if err := store.UpsertLead(r.Context(), h.DB, lead); err != nil {
		writeDomainError(w, r, err)
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.PublishLead(reqID, events.TypeLeadUpserted, lead.EntityID, string(lead.Status))
	writeJSON(w, map[string]any{"ok": true, "entity_id": lead.EntityID})
}

func (h LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := domain.Status(q.Get("status"))
	if !status.Valid() {
		WriteError(w, r, http.StatusBadRequest, "bad_status", "unknown or missing status")
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	leads, err := store.ListLeadsByStatus(r.Context(), h.DB, status, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, viewsOf(leads))
}

func (h LeadsHandler) Due(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	if raw := r.URL.Query().Get("now"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "bad_time", "now must be RFC3339")
			return
		}
		now = t
	}
	leads, err := store.ListLeadsDue(r.Context(), h.DB, now)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, viewsOf(leads))
}

func (h LeadsHandler) Get(w http.ResponseWriter, r *http.Request, entityID string) {
	lead, err := store.GetLead(r.Context(), h.DB, entityID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, viewOf(lead))
}

// RecordEvent appends an entry to the lead's thread on behalf of an
// external service.
func (h LeadsHandler) RecordEvent(w http.ResponseWriter, r *http.Request, entityID string) {
	var req recordEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if _, err := store.GetLead(r.Context(), h.DB, entityID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if req.EventID != "" {
		if req.Response == "" {
			WriteError(w, r, http.StatusBadRequest, "missing_fields", "response is required with event_id")
			return
		}
		if err := store.SetEventResponse(r.Context(), h.DB, req.EventID, req.Response); err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true, "event_id": req.EventID})
		return
	}
	if req.Type == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_fields", "type is required")
		return
	}
	id, err := store.AppendEvent(r.Context(), h.DB, entityID, req.Type, req.Payload)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "event_id": id})
}

func (h LeadsHandler) ListEvents(w http.ResponseWriter, r *http.Request, entityID string) {
	entries, err := store.ListEvents(r.Context(), h.DB, entityID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, entries)
}

// AddNote appends an operator note to the lead record.
func (h LeadsHandler) AddNote(w http.ResponseWriter, r *http.Request, entityID string) {
	var req struct {
		Note string `json:"note"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_fields", "note is required")
		return
	}
	if err := store.AppendNote(r.Context(), h.DB, entityID, req.Note); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

// Asset generation callbacks. The generation service claims a lead,
// then reports success or failure; failure rolls the lead back so it
// is never stuck mid-flight.

func (h LeadsHandler) AssetBegin(w http.ResponseWriter, r *http.Request, entityID string) {
	if err := lifecycle.BeginAssetGeneration(r.Context(), h.DB, entityID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.publishTransition(r, entityID, domain.StatusAssetGenerating)
	writeJSON(w, map[string]any{"ok": true})
}

func (h LeadsHandler) AssetComplete(w http.ResponseWriter, r *http.Request, entityID string) {
	var req struct {
		AssetURL string `json:"asset_url"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if req.AssetURL == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_fields", "asset_url is required")
		return
	}
	if err := lifecycle.CompleteAssetGeneration(r.Context(), h.DB, entityID, req.AssetURL); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.publishTransition(r, entityID, domain.StatusAssetGenerated)
	writeJSON(w, map[string]any{"ok": true})
}

func (h LeadsHandler) AssetFail(w http.ResponseWriter, r *http.Request, entityID string) {
	if err := lifecycle.FailAssetGeneration(r.Context(), h.DB, entityID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.publishTransition(r, entityID, domain.StatusQualified)
	writeJSON(w, map[string]any{"ok": true})
}

func (h LeadsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := store.CountByStatus(r.Context(), h.DB)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, counts)
}

func (h LeadsHandler) publishTransition(r *http.Request, entityID string, to domain.Status) {
	h.Hub.PublishLead(RequestIDFrom(r.Context()), events.TypeLeadTransitioned, entityID, string(to))
}
