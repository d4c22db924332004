package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Client is one websocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// clientMessage is what a browser may send: joining or leaving an event room.
type clientMessage struct {
	Action  string `json:"action"`
	EventID string `json:"eventId"`
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, sendBacklog), userID: userID}
}

// Serve attaches conn to the hub: it joins the user's room (and the admin
// room for admins) and blocks until the connection goes away.
func (h *Hub) Serve(conn *websocket.Conn, userID string, isAdmin bool) {
	c := newClient(h, conn, userID)

	rooms := []string{UserRoom(userID)}
	if isAdmin {
		rooms = append(rooms, AdminRoom)
	}
	if !h.register(c, rooms...) {
		_ = conn.Close()
		return
	}

	h.log.Debug("Client connected", zap.String("user_id", userID), zap.Bool("admin", isAdmin))

	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
		c.hub.log.Debug("Client disconnected", zap.String("user_id", c.userID))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.EventID == "" {
		return
	}
	switch msg.Action {
	case "join_event":
		c.hub.join(c, EventRoom(msg.EventID))
	case "leave_event":
		c.hub.leave(c, EventRoom(msg.EventID))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
