package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func waitOnline(t *testing.T, hub *Hub, userID uuid.UUID, want bool) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.IsUserOnline(userID) == want },
		time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "client queue closed")
		var raw struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &raw))
		return Event{Type: raw.Type, Payload: raw.Payload}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected event %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PublishToPostReachesSubscribersOnly(t *testing.T) {
	hub := startHub(t)
	postID := uuid.New()

	watcher := NewClient(uuid.New())
	bystander := NewClient(uuid.New())
	hub.Register(watcher)
	hub.Register(bystander)
	waitOnline(t, hub, watcher.UserID, true)
	waitOnline(t, hub, bystander.UserID, true)

	hub.Subscribe(watcher, postID)
	assert.Equal(t, 1, hub.SubscriberCount(postID))

	hub.PublishToPost(postID, Event{Type: EventCommentCreated, Payload: map[string]string{"id": "c1"}})

	ev := receive(t, watcher)
	assert.Equal(t, EventCommentCreated, ev.Type)
	assertNothing(t, bystander)
}

func TestHub_SendToUsers(t *testing.T) {
	hub := startHub(t)
	a := NewClient(uuid.New())
	b := NewClient(uuid.New())
	hub.Register(a)
	hub.Register(b)
	waitOnline(t, hub, a.UserID, true)
	waitOnline(t, hub, b.UserID, true)

	hub.SendToUsers([]uuid.UUID{b.UserID, uuid.New()}, Event{Type: EventNotificationNew})

	assert.Equal(t, EventNotificationNew, receive(t, b).Type)
	assertNothing(t, a)
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub := startHub(t)
	postID := uuid.New()
	c := NewClient(uuid.New())
	hub.Register(c)
	waitOnline(t, hub, c.UserID, true)

	hub.Subscribe(c, postID)
	hub.Unsubscribe(c, postID)
	assert.Equal(t, 0, hub.SubscriberCount(postID))

	hub.PublishToPost(postID, Event{Type: EventCommentVoted})
	assertNothing(t, c)
}

func TestHub_NewSessionReplacesOld(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	postID := uuid.New()

	old := NewClient(userID)
	hub.Register(old)
	waitOnline(t, hub, userID, true)
	hub.Subscribe(old, postID)

	fresh := NewClient(userID)
	hub.Register(fresh)

	// Old queue gets closed once the new session takes over.
	select {
	case _, ok := <-old.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("old client was not closed")
	}
	assert.Equal(t, 0, hub.SubscriberCount(postID))

	// Late unregister of the old session must not evict the new one.
	hub.Unregister(old)
	hub.SendToUsers([]uuid.UUID{userID}, Event{Type: EventMessageNew})
	assert.Equal(t, EventMessageNew, receive(t, fresh).Type)
	assert.True(t, hub.IsUserOnline(userID))
}

func TestHub_UnregisterClosesQueue(t *testing.T) {
	hub := startHub(t)
	c := NewClient(uuid.New())
	hub.Register(c)
	waitOnline(t, hub, c.UserID, true)

	hub.Unregister(c)
	waitOnline(t, hub, c.UserID, false)

	_, ok := <-c.Send
	assert.False(t, ok)

	// Subscribing a closed client is a no-op.
	postID := uuid.New()
	hub.Subscribe(c, postID)
	assert.Equal(t, 0, hub.SubscriberCount(postID))
}

func TestHub_ReplyAfterDropIsNoop(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()

	client := NewClient(userID)
	hub.Register(client)
	waitOnline(t, hub, userID, true)

	hub.Reply(client, Event{Type: EventPong})
	assert.Equal(t, EventPong, receive(t, client).Type)

	hub.Unregister(client)
	waitOnline(t, hub, userID, false)

	assert.NotPanics(t, func() { hub.Reply(client, Event{Type: EventPong}) })
}

func TestHub_StopReleasesSessionsAndCallers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	live := NewClient(uuid.New())
	hub.Register(live)
	waitOnline(t, hub, live.UserID, true)

	cancel()
	<-stopped

	_, ok := <-live.Send
	assert.False(t, ok, "live session should be closed on stop")
	assert.False(t, hub.IsUserOnline(live.UserID))

	returned := make(chan struct{})
	go func() {
		hub.Unregister(live)
		late := NewClient(uuid.New())
		hub.Register(late)
		_, ok := <-late.Send
		assert.False(t, ok)
		for i := 0; i < 300; i++ {
			hub.PublishToPost(uuid.New(), Event{Type: EventCommentCreated})
		}
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("hub calls blocked after stop")
	}
}
