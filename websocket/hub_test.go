package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RoutesEventToMatchingSession(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	subscribed := &Client{Hub: hub, Send: make(chan []byte, 1), SessionID: "session-a"}
	other := &Client{Hub: hub, Send: make(chan []byte, 1), SessionID: "session-b"}
	hub.register <- subscribed
	hub.register <- other

	hub.PublishToSession("session-a", Event{
		Type:      EventMessage,
		SessionID: "session-a",
		Payload:   map[string]string{"content": "olá"},
	})

	select {
	case raw := <-subscribed.Send:
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, EventMessage, event.Type)
		assert.Equal(t, "session-a", event.SessionID)
	case <-time.After(time.Second):
		t.Fatal("subscribed client never received the event")
	}

	select {
	case <-other.Send:
		t.Fatal("client of another session received the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	// No Run loop draining; the buffered channel fills and further events drop.
	for i := 0; i < 200; i++ {
		hub.PublishToSession("session-a", Event{Type: EventScore, SessionID: "session-a"})
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{Hub: hub, Send: make(chan []byte, 1), SessionID: "session-a"}
	hub.register <- client
	hub.unregister <- client

	select {
	case _, ok := <-client.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed on unregister")
	}
}
