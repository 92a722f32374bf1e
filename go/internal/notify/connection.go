package notify

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Connection represents a WebSocket connection to a scoreboard client
type Connection struct {
	ID      string
	MatchID uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	hub     *Hub

	closeOnce sync.Once

	// Connection metadata
	ConnectedAt time.Time
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and registers it for a match
func (h *Hub) UpgradeConnection(w http.ResponseWriter, r *http.Request, matchID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.NewString(),
		MatchID:     matchID,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		hub:         h,
		ConnectedAt: time.Now(),
	}

	h.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("match_id", matchID.String()).
		Msg("WebSocket connection established")

	return nil
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[conn.MatchID] == nil {
		h.connections[conn.MatchID] = make(map[*Connection]bool)
	}
	h.connections[conn.MatchID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("match_id", conn.MatchID.String()).
		Int("total_connections", len(h.connections[conn.MatchID])).
		Msg("connection registered")
}

func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	connections, exists := h.connections[conn.MatchID]
	if !exists || !connections[conn] {
		return
	}
	delete(connections, conn)
	conn.closeSend()
	if len(connections) == 0 {
		delete(h.connections, conn.MatchID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("match_id", conn.MatchID.String()).
		Msg("connection unregistered")
}

func (c *Connection) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.hub.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump keeps the read deadline fresh and notices when the client goes away.
// Clients only listen; anything they send is logged and discarded.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.hub.config.MaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			return
		}

		log.Debug().
			Str("connection_id", c.ID).
			Int("bytes", len(message)).
			Msg("ignoring client message")
		_ = c.Conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	}
}
