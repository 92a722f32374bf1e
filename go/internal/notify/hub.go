package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Notifier receives match notifications. The session layer calls it after
// every mutation; it must not block.
type Notifier interface {
	Notify(n Notification)
}

// Hub fans notifications out to websocket clients and in-process
// subscribers, grouped by match.
type Hub struct {
	// Connection pools organized by match ID
	connections map[uuid.UUID]map[*Connection]bool
	subscribers map[uuid.UUID]map[*subscriber]bool
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   Config

	broadcastCh chan Notification
}

type subscriber struct {
	ch   chan Notification
	once sync.Once
}

// Config holds configuration for the hub and its websocket connections
type Config struct {
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	PingInterval     time.Duration `yaml:"ping_interval"`
	MaxMessageSize   int64         `yaml:"max_message_size"`
	ReadBufferSize   int           `yaml:"read_buffer_size"`
	WriteBufferSize  int           `yaml:"write_buffer_size"`
	BroadcastBuffer  int           `yaml:"broadcast_buffer"`
	SubscriberBuffer int           `yaml:"subscriber_buffer"`

	CheckOrigin func(r *http.Request) bool `yaml:"-"`
}

// DefaultConfig returns default hub configuration
func DefaultConfig() Config {
	return Config{
		WriteTimeout:     10 * time.Second,
		ReadTimeout:      60 * time.Second,
		PingInterval:     30 * time.Second,
		MaxMessageSize:   1024,
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		BroadcastBuffer:  1000,
		SubscriberBuffer: 64,
	}
}

// NewHub creates a hub. Call Start to begin delivering notifications.
func NewHub(config Config) *Hub {
	defaults := DefaultConfig()
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.BroadcastBuffer <= 0 {
		config.BroadcastBuffer = defaults.BroadcastBuffer
	}
	if config.SubscriberBuffer <= 0 {
		config.SubscriberBuffer = defaults.SubscriberBuffer
	}
	return &Hub{
		connections: make(map[uuid.UUID]map[*Connection]bool),
		subscribers: make(map[uuid.UUID]map[*subscriber]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan Notification, config.BroadcastBuffer),
	}
}

// Start processes broadcasts until ctx is done.
func (h *Hub) Start(ctx context.Context) {
	log.Info().Msg("notification hub started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("notification hub shutting down")
			return
		case n := <-h.broadcastCh:
			h.handleBroadcast(n)
		}
	}
}

// Notify queues n for delivery. It never blocks; when the queue is full the
// notification is dropped.
func (h *Hub) Notify(n Notification) {
	select {
	case h.broadcastCh <- n:
	default:
		log.Warn().
			Str("match_id", n.MatchID).
			Str("type", string(n.Type)).
			Msg("broadcast channel full, dropping notification")
	}
}

// Subscribe registers an in-process listener for one match. The returned
// function unsubscribes and closes the channel.
func (h *Hub) Subscribe(matchID uuid.UUID) (<-chan Notification, func()) {
	sub := &subscriber{ch: make(chan Notification, h.config.SubscriberBuffer)}

	h.mu.Lock()
	if h.subscribers[matchID] == nil {
		h.subscribers[matchID] = make(map[*subscriber]bool)
	}
	h.subscribers[matchID][sub] = true
	h.mu.Unlock()

	return sub.ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.subscribers[matchID]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.subscribers, matchID)
			}
		}
		sub.once.Do(func() { close(sub.ch) })
	}
}

// CloseMatch disconnects every client and subscriber of a match.
func (h *Hub) CloseMatch(matchID uuid.UUID) {
	h.mu.Lock()
	conns := h.connections[matchID]
	subs := h.subscribers[matchID]
	delete(h.connections, matchID)
	delete(h.subscribers, matchID)
	h.mu.Unlock()

	for conn := range conns {
		conn.closeSend()
	}
	for sub := range subs {
		sub.once.Do(func() { close(sub.ch) })
	}
}

func (h *Hub) handleBroadcast(n Notification) {
	matchID, err := uuid.Parse(n.MatchID)
	if err != nil {
		log.Error().Err(err).Str("match_id", n.MatchID).Msg("notification with invalid match id")
		return
	}

	// Deliver while holding the read lock so an unsubscribe cannot close a
	// channel mid-send. Both sends are non-blocking.
	h.mu.RLock()
	var slow []*Connection
	delivered := 0
	if conns := h.connections[matchID]; len(conns) > 0 {
		data, err := json.Marshal(n)
		if err != nil {
			h.mu.RUnlock()
			log.Error().Err(err).Msg("failed to marshal notification for broadcast")
			return
		}
		for conn := range conns {
			select {
			case conn.Send <- data:
				delivered++
			default:
				slow = append(slow, conn)
			}
		}
	}
	for sub := range h.subscribers[matchID] {
		select {
		case sub.ch <- n:
			delivered++
		default:
			log.Warn().Str("match_id", n.MatchID).Msg("subscriber buffer full, dropping notification")
		}
	}
	h.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		h.unregisterConnection(conn)
		conn.Conn.Close()
	}

	log.Debug().
		Str("type", string(n.Type)).
		Str("match_id", n.MatchID).
		Int("recipients", delivered).
		Msg("notification broadcasted")
}

// Stats describes the hub's current audience.
type Stats struct {
	TotalConnections int            `json:"total_connections"`
	TotalSubscribers int            `json:"total_subscribers"`
	ActiveMatches    int            `json:"active_matches"`
	MatchConnections map[string]int `json:"match_connections"`
}

// GetStats returns statistics about active connections
func (h *Hub) GetStats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := Stats{MatchConnections: make(map[string]int)}
	active := make(map[uuid.UUID]bool)
	for matchID, conns := range h.connections {
		stats.TotalConnections += len(conns)
		stats.MatchConnections[matchID.String()] = len(conns)
		active[matchID] = true
	}
	for matchID, subs := range h.subscribers {
		stats.TotalSubscribers += len(subs)
		active[matchID] = true
	}
	stats.ActiveMatches = len(active)
	return stats
}
