package notify

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests for match feeds
type WebSocketHandler struct {
	hub *Hub
	// exists reports whether a match is being scored; nil accepts any id.
	exists func(uuid.UUID) bool
}

func NewWebSocketHandler(hub *Hub, exists func(uuid.UUID) bool) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, exists: exists}
}

// HandleMatchConnection upgrades GET /ws/matches/{id}.
func (h *WebSocketHandler) HandleMatchConnection(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}
	if h.exists != nil && !h.exists(matchID) {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}

	if err := h.hub.UpgradeConnection(w, r, matchID); err != nil {
		// The upgrader has already written an error response.
		log.Error().
			Err(err).
			Str("match_id", matchID.String()).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleStats returns statistics about active connections
func (h *WebSocketHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.hub.GetStats()); err != nil {
		log.Error().Err(err).Msg("failed to write connection stats")
	}
}

// RegisterRoutes registers WebSocket routes on r.
func (h *WebSocketHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws/matches/{id}", h.HandleMatchConnection).Methods(http.MethodGet)
	r.HandleFunc("/ws/stats", h.HandleStats).Methods(http.MethodGet)
}
