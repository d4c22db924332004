// Package realtime pushes server events to live websocket connections
// grouped in rooms.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"event-ticketing/pkg/observability"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	EventNewNotification      = "new_notification"
	EventNotificationRead     = "notification_read"
	EventAllNotificationsRead = "all_notifications_read"
	EventNotificationDeleted  = "notification_deleted"
)

const (
	AdminRoom   = "admin_room"
	busChannel  = "eventx:realtime"
	sendBacklog = 32
)

func UserRoom(userID string) string   { return "user_" + userID }
func EventRoom(eventID string) string { return "event_" + eventID }

// Emitter is what services need to push to rooms.
type Emitter interface {
	Emit(ctx context.Context, room, event string, payload any)
}

// envelope travels over the Redis bus between instances.
type envelope struct {
	Room    string          `json:"room"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// frame is what a client receives.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub tracks connections by room on this instance. With a Redis client,
// emits are published on a shared channel and every instance delivers to
// its own connections.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}
	closed  bool

	rdb *redis.Client
	log *zap.Logger
}

func NewHub(rdb *redis.Client, log *zap.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]map[string]struct{}),
		rdb:     rdb,
		log:     log.With(zap.String("component", "realtime")),
	}
}

// Run consumes the Redis bus until ctx is done. Without Redis it just waits.
func (h *Hub) Run(ctx context.Context) error {
	if h.rdb == nil {
		<-ctx.Done()
		return nil
	}

	sub := h.rdb.Subscribe(ctx, busChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	h.log.Info("Realtime bus subscribed", zap.String("channel", busChannel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.log.Warn("Dropping malformed bus message", zap.Error(err))
				continue
			}
			h.deliver(env.Room, env.Event, env.Payload)
		}
	}
}

// Emit is fire-and-forget: rooms without connections simply drop the event.
func (h *Hub) Emit(ctx context.Context, room, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("Failed to encode realtime payload", zap.Error(err), zap.String("event", event))
		return
	}

	if h.rdb != nil {
		msg, _ := json.Marshal(envelope{Room: room, Event: event, Payload: data})
		err := h.rdb.Publish(ctx, busChannel, msg).Err()
		if err == nil {
			return
		}
		h.log.Warn("Realtime bus publish failed, delivering locally", zap.Error(err))
	}

	h.deliver(room, event, data)
}

func (h *Hub) deliver(room, event string, data json.RawMessage) {
	msg, err := json.Marshal(frame{Event: event, Data: data})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- msg:
		default:
			h.log.Warn("Client send buffer full, dropping event",
				zap.String("user_id", c.userID),
				zap.String("event", event))
		}
	}
}

// register adds c to the given rooms. It returns false after Close.
func (h *Hub) register(c *Client, rooms ...string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = make(map[string]struct{})
	for _, room := range rooms {
		h.joinLocked(c, room)
	}
	observability.LiveConnections.Inc()
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	rooms, ok := h.clients[c]
	if !ok {
		return
	}
	for room := range rooms {
		delete(h.rooms[room], c)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.clients, c)
	close(c.send)
	observability.LiveConnections.Dec()
}

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.joinLocked(c, room)
	}
}

func (h *Hub) joinLocked(c *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	h.clients[c][room] = struct{}{}
}

func (h *Hub) leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rooms, ok := h.clients[c]; ok {
		delete(rooms, room)
		delete(h.rooms[room], c)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
}

// RoomSize reports how many local connections are in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
	h.log.Info("Realtime hub closed")
}
