package events

import (
	"encoding/json"
	"time"
)

// Event is the envelope every stream message rides in. EntityID is set on
// per-lead events so subscribers can filter without decoding Data.
type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	EntityID  string          `json:"entity_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MakeEvent encodes a pass-level event that carries no lead.
func MakeEvent(reqID, typ string, v int, data any) string {
	return Event{Type: typ, Version: v, RequestID: reqID}.encode(data)
}

// MakeLeadEvent encodes an event about one lead.
func MakeLeadEvent(reqID, typ, entityID string, data any) string {
	return Event{Type: typ, Version: 1, RequestID: reqID, EntityID: entityID}.encode(data)
}

func (e Event) encode(data any) string {
	if data != nil {
		b, _ := json.Marshal(data)
		e.Data = b
	}
	e.At = time.Now().UTC()
	b, _ := json.Marshal(e)
	return string(b)
}
