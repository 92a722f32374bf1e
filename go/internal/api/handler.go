package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/scoring"
	"github.com/mcdev12/scorekeeper/go/internal/session"
)

const maxBodyBytes = 1 << 20

// ErrLineupUnavailable is returned when a team sheet could not be fetched.
var ErrLineupUnavailable = errors.New("team sheet unavailable")

// TeamSheetSource supplies lineups for teams created without one.
type TeamSheetSource interface {
	GetTeamSheet(ctx context.Context, teamID uuid.UUID) (models.TeamSheet, error)
}

// Handler serves the scoring API over a session registry.
type Handler struct {
	registry *session.Registry
	sheets   TeamSheetSource
}

// NewHandler creates a handler. sheets may be nil.
func NewHandler(registry *session.Registry, sheets TeamSheetSource) *Handler {
	return &Handler{registry: registry, sheets: sheets}
}

// RegisterRoutes registers the match API on r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/matches", h.handleCreateMatch).Methods(http.MethodPost)
	api.HandleFunc("/matches", h.handleListMatches).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", h.handleGetMatch).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", h.handleEndMatch).Methods(http.MethodDelete)
	api.HandleFunc("/matches/{id}/status", h.handleUpdateStatus).Methods(http.MethodPost)
	api.HandleFunc("/matches/{id}/commands", h.handleCommand).Methods(http.MethodPost)
	api.HandleFunc("/matches/{id}/undo", h.handleUndo).Methods(http.MethodPost)
	api.HandleFunc("/matches/{id}/redo", h.handleRedo).Methods(http.MethodPost)
	api.HandleFunc("/matches/{id}/resume", h.handleResume).Methods(http.MethodPost)
}

type createMatchRequest struct {
	Sport  models.Sport     `json:"sport"`
	Home   models.TeamSheet `json:"home"`
	Away   models.TeamSheet `json:"away"`
	Title  string           `json:"title"`
	Venue  string           `json:"venue"`
	Config json.RawMessage  `json:"config,omitempty"`
}

type statusRequest struct {
	Status models.MatchStatus `json:"status"`
}

// MatchResponse is the match as returned by every read and lifecycle call.
type MatchResponse struct {
	Match    json.RawMessage `json:"match"`
	Sequence uint64          `json:"sequence"`
	CanUndo  bool            `json:"can_undo"`
	CanRedo  bool            `json:"can_redo"`
}

// CommandResponse is returned by command, undo and redo calls.
type CommandResponse struct {
	session.Outcome
	Match json.RawMessage `json:"match"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"matches": len(h.registry.IDs()),
	})
}

func (h *Handler) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if !decode(w, r, &req) {
		return
	}

	config, err := h.registry.DecodeConfig(req.Sport, req.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Sport == models.SportFootball {
		if req.Home, err = h.fillSheet(r.Context(), req.Home); err != nil {
			writeError(w, err)
			return
		}
		if req.Away, err = h.fillSheet(r.Context(), req.Away); err != nil {
			writeError(w, err)
			return
		}
	}

	s, err := h.registry.Create(session.CreateMatchRequest{
		Sport:  req.Sport,
		Home:   req.Home,
		Away:   req.Away,
		Title:  req.Title,
		Venue:  req.Venue,
		Config: config,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeMatch(w, http.StatusCreated, s)
}

// fillSheet fetches the lineup for a team sent without starters.
func (h *Handler) fillSheet(ctx context.Context, sheet models.TeamSheet) (models.TeamSheet, error) {
	if h.sheets == nil || len(sheet.Starters) > 0 || sheet.ID == uuid.Nil {
		return sheet, nil
	}
	fetched, err := h.sheets.GetTeamSheet(ctx, sheet.ID)
	if err != nil {
		return sheet, fmt.Errorf("%w: %v", ErrLineupUnavailable, err)
	}
	if sheet.Name != "" {
		fetched.Name = sheet.Name
	}
	return fetched, nil
}

func (h *Handler) handleListMatches(w http.ResponseWriter, r *http.Request) {
	ids := h.registry.IDs()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"matches": out})
}

func (h *Handler) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeMatch(w, http.StatusOK, s)
}

func (h *Handler) handleEndMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := matchID(w, r)
	if !ok {
		return
	}
	end := h.registry.End
	if r.URL.Query().Get("purge") == "true" {
		end = h.registry.Purge
	}
	if err := end(matchID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.UpdateStatus(req.Status); err != nil {
		writeError(w, err)
		return
	}
	h.writeMatch(w, http.StatusOK, s)
}

func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req scoring.CommandRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := s.Apply(req)
	h.writeOutcome(w, out, err)
}

func (h *Handler) handleUndo(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	out, err := s.Undo()
	h.writeOutcome(w, out, err)
}

func (h *Handler) handleRedo(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	out, err := s.Redo()
	h.writeOutcome(w, out, err)
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	matchID, ok := matchID(w, r)
	if !ok {
		return
	}
	s, err := h.registry.Resume(r.Context(), matchID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeMatch(w, http.StatusOK, s)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	matchID, ok := matchID(w, r)
	if !ok {
		return nil, false
	}
	s, err := h.registry.Get(matchID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return s, true
}

func matchID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid match id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeMatch(w http.ResponseWriter, status int, s *session.Session) {
	data, seq, err := s.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, MatchResponse{
		Match:    data,
		Sequence: seq,
		CanUndo:  s.CanUndo(),
		CanRedo:  s.CanRedo(),
	})
}

// writeOutcome returns 200 for applied and skipped commands alike; the
// result field says which. The match is the one captured with the outcome.
func (h *Handler) writeOutcome(w http.ResponseWriter, out session.Outcome, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CommandResponse{Outcome: out, Match: out.Snapshot})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
