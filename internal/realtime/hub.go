package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/logger"
	"github.com/travellinq/backend/internal/metrics"
	"go.uber.org/zap"
)

// Event types pushed to clients.
const (
	EventCommentCreated  = "comment.created"
	EventCommentVoted    = "comment.voted"
	EventCommentHidden   = "comment.hidden"
	EventNotificationNew = "notification.new"
	EventMessageNew      = "message.new"
	EventBuddyNearby     = "buddy.nearby"
	EventPong            = "pong"
)

// Event is the envelope written to websocket clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is one connected websocket session.
type Client struct {
	UserID uuid.UUID
	Send   chan []byte

	posts  map[uuid.UUID]struct{}
	closed bool
}

// NewClient creates a client with a buffered outbound queue.
func NewClient(userID uuid.UUID) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, 256),
		posts:  make(map[uuid.UUID]struct{}),
	}
}

type delivery struct {
	userIDs []uuid.UUID
	postID  uuid.UUID
	event   Event
}

// Hub tracks connected clients and the posts each one is watching.
type Hub struct {
	clients     map[uuid.UUID]*Client
	subscribers map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		subscribers: make(map[uuid.UUID]map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan delivery, 256),
		done:        make(chan struct{}),
	}
}

// Run processes registrations and deliveries until ctx is done. On exit
// every session is closed and later calls return without blocking.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.stop()
			return

		case client := <-h.register:
			h.mu.Lock()
			// One live session per user; the newer one wins.
			if existing, ok := h.clients[client.UserID]; ok {
				h.dropLocked(existing)
			}
			h.clients[client.UserID] = client
			h.mu.Unlock()
			metrics.Get().RealtimeClients.Inc()
			logger.Log.Debug("realtime client connected", zap.String("user_id", client.UserID.String()))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				h.dropLocked(client)
			}
			h.mu.Unlock()
			logger.Log.Debug("realtime client disconnected", zap.String("user_id", client.UserID.String()))

		case d := <-h.broadcast:
			data, err := json.Marshal(d.event)
			if err != nil {
				logger.Log.Warn("realtime marshal failed", zap.String("type", d.event.Type), zap.Error(err))
				continue
			}

			h.mu.RLock()
			if d.postID != uuid.Nil {
				for client := range h.subscribers[d.postID] {
					trySend(client, data)
				}
			}
			for _, userID := range d.userIDs {
				if client, ok := h.clients[userID]; ok {
					trySend(client, data)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// dropLocked removes a client and closes its queue. Caller holds mu.
func (h *Hub) dropLocked(client *Client) {
	delete(h.clients, client.UserID)
	for postID := range client.posts {
		if subs, ok := h.subscribers[postID]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscribers, postID)
			}
		}
	}
	client.closed = true
	close(client.Send)
	metrics.Get().RealtimeClients.Dec()
}

func (h *Hub) stop() {
	h.mu.Lock()
	for _, client := range h.clients {
		h.dropLocked(client)
	}
	close(h.done)
	h.mu.Unlock()
}

func trySend(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		// Slow reader; drop rather than block the hub.
	}
}

// Register adds a session. After the hub stops the session is closed
// straight away.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		h.mu.Lock()
		if !client.closed {
			client.closed = true
			close(client.Send)
		}
		h.mu.Unlock()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) publish(d delivery) {
	select {
	case h.broadcast <- d:
	case <-h.done:
	}
}

// Reply queues an event for a single session, such as a pong. It is a
// no-op once the session has been dropped.
func (h *Hub) Reply(client *Client, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !client.closed {
		trySend(client, data)
	}
}

// Subscribe starts delivering a post's comment events to client.
func (h *Hub) Subscribe(client *Client, postID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client.closed {
		return
	}
	subs, ok := h.subscribers[postID]
	if !ok {
		subs = make(map[*Client]struct{})
		h.subscribers[postID] = subs
	}
	subs[client] = struct{}{}
	client.posts[postID] = struct{}{}
}

// Unsubscribe stops delivering a post's events to client.
func (h *Hub) Unsubscribe(client *Client, postID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(client.posts, postID)
	if subs, ok := h.subscribers[postID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscribers, postID)
		}
	}
}

// PublishToPost sends an event to everyone watching the post.
func (h *Hub) PublishToPost(postID uuid.UUID, event Event) {
	h.publish(delivery{postID: postID, event: event})
}

// SendToUsers sends an event to the listed users if they are connected.
func (h *Hub) SendToUsers(userIDs []uuid.UUID, event Event) {
	if len(userIDs) == 0 {
		return
	}
	h.publish(delivery{userIDs: userIDs, event: event})
}

// IsUserOnline checks if a user is currently connected.
func (h *Hub) IsUserOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// SubscriberCount returns how many clients watch a post.
func (h *Hub) SubscriberCount(postID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[postID])
}
