package realtime

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"campuslink/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 32
)

// client is one authenticated websocket. Outbound events go through a
// buffered channel so hub broadcasts never block on a slow peer.
type client struct {
	id       string
	identity domain.Identity
	gateway  *Gateway
	conn     *websocket.Conn
	send     chan Event
	logger   *slog.Logger
}

func (c *client) ID() string { return c.id }

func (c *client) Deliver(ev Event) bool {
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// inbound is the client-to-server frame shape. Only chat:join is
// recognized; anything else is ignored.
type inbound struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func (c *client) readPump() {
	defer func() {
		c.gateway.Registry.LeaveAll(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("realtime: read failed", "err", err, "user_id", c.identity.UserID)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Debug("realtime: bad frame", "err", err, "user_id", c.identity.UserID)
			continue
		}

		switch msg.Event {
		case "chat:join":
			var payload struct {
				ConnectionID string `json:"connection_id"`
			}
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			c.gateway.joinConnectionRoom(c, c.identity.UserID, payload.ConnectionID)
		case "chat:leave":
			var payload struct {
				ConnectionID string `json:"connection_id"`
			}
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			c.gateway.Registry.Leave(c, ConnectionRoom(payload.ConnectionID))
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
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
