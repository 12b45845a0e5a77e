package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeEventRoundTrip(t *testing.T) {
	raw := MakeEvent("req-1", TypeHarvestDone, 1, map[string]int{"new": 3})

	var evt Event
	require.NoError(t, json.Unmarshal([]byte(raw), &evt))
	assert.Equal(t, TypeHarvestDone, evt.Type)
	assert.Equal(t, "req-1", evt.RequestID)
	assert.Equal(t, 1, evt.Version)
	assert.Empty(t, evt.EntityID)
	assert.False(t, evt.At.IsZero())
}

func TestMakeLeadEventCarriesEntity(t *testing.T) {
	raw := MakeLeadEvent("req-2", TypeLeadQualified, "UC001", map[string]string{
		"status": "qualified",
	})

	var evt Event
	require.NoError(t, json.Unmarshal([]byte(raw), &evt))
	assert.Equal(t, TypeLeadQualified, evt.Type)
	assert.Equal(t, "UC001", evt.EntityID)

	var data map[string]string
	require.NoError(t, json.Unmarshal(evt.Data, &data))
	assert.Equal(t, "qualified", data["status"])
}

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish("hello")
	assert.Equal(t, "hello", <-a)
	assert.Equal(t, "hello", <-b)

	h.Unsubscribe(b)
	h.Publish("again")
	assert.Equal(t, "again", <-a)
	_, open := <-b
	assert.False(t, open)
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	h := Hub{clients: map[chan string]struct{}{}}
	ch := make(chan string, 1)
	h.clients[ch] = struct{}{}

	h.Publish("first")
	h.Publish("second")

	assert.Equal(t, "first", <-ch)
	select {
	case v := <-ch:
		t.Fatalf("expected drop, got %q", v)
	default:
	}
}
