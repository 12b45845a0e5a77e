package events

import "sync"

// Event types published over the stream.
const (
	TypeLeadUpserted      = "lead.upserted"
	TypeLeadQualified     = "lead.qualified"
	TypeLeadDisqualified  = "lead.disqualified"
	TypeLeadTransitioned  = "lead.transitioned"
	TypeFollowupDispatch  = "followup.dispatched"
	TypeReplyRecorded     = "reply.recorded"
	TypeHarvestDone       = "harvest.done"
	TypeKeywordsGenerated = "keywords.generated"
)

// Hub fans engine events out to SSE subscribers. Slow clients drop
// events rather than stall the publisher.
type Hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]struct{})}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, 10)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) Publish(evt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
			// drop if slow
		}
	}
}

// PublishLead publishes a typed per-lead event.
func (h *Hub) PublishLead(reqID, typ, entityID, status string) {
	h.Publish(MakeLeadEvent(reqID, typ, entityID, map[string]string{
		"status": status,
	}))
}
