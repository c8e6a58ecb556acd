package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func waitForClientCount(t *testing.T, hub *Hub, userID uuid.UUID, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[userID]) == want
	}, time.Second, 5*time.Millisecond)
}

func TestHubDeliversEventToRegisteredClient(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userID := uuid.New()
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 4)}
	hub.register <- client
	waitForClientCount(t, hub, userID, 1)

	hub.Send(userID, "turn_completed", map[string]int{"assistant_sequence": 2})

	select {
	case raw := <-client.Send:
		var envelope struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &envelope))
		assert.Equal(t, "turn_completed", envelope.Type)
		assert.JSONEq(t, `{"assistant_sequence": 2}`, string(envelope.Data))
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestHubDropsSlowClientWithoutPanic(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userID := uuid.New()
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 1)}
	hub.register <- client
	waitForClientCount(t, hub, userID, 1)

	// Fill the buffer so the next delivery overflows.
	client.Send <- []byte("backlog")

	hub.Send(userID, "turn_completed", map[string]string{"k": "v"})

	// The slow client is unregistered, not the process crashed.
	waitForClientCount(t, hub, userID, 0)

	// Send closes exactly once: a later event for the same user is a no-op.
	hub.Send(userID, "turn_completed", map[string]string{"k": "v"})
}
