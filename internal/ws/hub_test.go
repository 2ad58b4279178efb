package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, userID string, buffer int) *Client {
	c := &Client{hub: h, send: make(chan []byte, buffer), UserID: userID}
	h.addClient(c)
	return c
}

func connected(h *Hub, userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID]) > 0
}

func encode(t *testing.T, userID string, event model.WSEvent) string {
	t.Helper()
	data, err := json.Marshal(TargetedEvent{TargetUserID: userID, Event: event})
	require.NoError(t, err)
	return string(data)
}

func TestDeliver_OnlyTargetUser(t *testing.T) {
	h := NewHub(nil)
	phone := newTestClient(h, "u1", 4)
	tablet := newTestClient(h, "u1", 4)
	other := newTestClient(h, "u2", 4)

	h.deliver(encode(t, "u1", model.WSEvent{
		Type:    model.WSEventUnreadCountChanged,
		Payload: model.UnreadCountEvent{UserID: "u1", UnreadCount: 3},
	}))

	for _, c := range []*Client{phone, tablet} {
		require.Len(t, c.send, 1)
		var got struct {
			Type    string                 `json:"type"`
			Payload model.UnreadCountEvent `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(<-c.send, &got))
		assert.Equal(t, model.WSEventUnreadCountChanged, got.Type)
		assert.Equal(t, int64(3), got.Payload.UnreadCount)
	}
	assert.Len(t, other.send, 0)
}

func TestDeliver_IgnoresMalformed(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient(h, "u1", 1)

	h.deliver("{not json")
	h.deliver(`{"event":{"type":"notification"}}`)

	assert.Len(t, c.send, 0)
	assert.True(t, connected(h, "u1"))
}

func TestSendToLocalUser_DropsSlowClient(t *testing.T) {
	h := NewHub(nil)
	slow := newTestClient(h, "u1", 1)
	fast := newTestClient(h, "u1", 4)

	assert.Equal(t, 2, h.sendToLocalUser("u1", []byte("one")))
	assert.Equal(t, 1, h.sendToLocalUser("u1", []byte("two")))

	_, open := <-slow.send
	assert.True(t, open) // buffered "one"
	_, open = <-slow.send
	assert.False(t, open)
	assert.Len(t, fast.send, 2)

	// Unregistering an already dropped client must not close its channel again.
	h.removeClient(slow)
	assert.True(t, connected(h, "u1"))
}

func TestRemoveClient_LastConnectionGoesOffline(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient(h, "u1", 1)

	h.removeClient(c)
	assert.False(t, connected(h, "u1"))
}

func TestRun_StopReleasesSockets(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		// no Redis in tests; only the register loop runs
		h.loop(ctx)
		close(stopped)
	}()

	c := &Client{hub: h, send: make(chan []byte, 1), UserID: "u1"}
	require.True(t, h.Register(c))
	assert.Eventually(t, func() bool { return connected(h, "u1") }, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped

	_, open := <-c.send
	assert.False(t, open)
	assert.False(t, connected(h, "u1"))

	late := &Client{hub: h, send: make(chan []byte, 1), UserID: "u2"}
	returned := make(chan bool, 1)
	go func() {
		h.Unregister(c)
		returned <- h.Register(late)
	}()
	select {
	case ok := <-returned:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Register blocked after the hub stopped")
	}
}
