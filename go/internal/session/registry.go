package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/scorekeeper/go/internal/matchsync"
	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/notify"
	"github.com/mcdev12/scorekeeper/go/internal/scoring"
	"github.com/mcdev12/scorekeeper/go/internal/sports/base"
	"github.com/mcdev12/scorekeeper/go/internal/store"
)

var (
	ErrSessionNotFound = errors.New("match session not found")
	ErrAlreadyHosted   = errors.New("match is already hosted")
	ErrInvalidMatch    = errors.New("invalid match request")
	ErrNoStore         = errors.New("no snapshot store configured")
)

// CreateMatchRequest describes a new match. A nil Config uses the sport's
// default rules.
type CreateMatchRequest struct {
	Sport  models.Sport
	Home   models.TeamSheet
	Away   models.TeamSheet
	Title  string
	Venue  string
	Config models.SportConfig
}

type matchCloser interface {
	CloseMatch(matchID uuid.UUID)
}

// Registry hosts one Session per live match.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	factory  *base.Factory
	builder  *scoring.Builder
	sink     SyncSink
	notifier notify.Notifier
	store    store.MatchStore
}

// NewRegistry creates a registry. sink, notifier and st may be nil.
func NewRegistry(factory *base.Factory, sink SyncSink, notifier notify.Notifier, st store.MatchStore) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		factory:  factory,
		builder:  scoring.NewBuilder(factory),
		sink:     sink,
		notifier: notifier,
		store:    st,
	}
}

// Create builds a scheduled match from req and hosts it.
func (r *Registry) Create(req CreateMatchRequest) (*Session, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	match, err := r.factory.NewMatch(req.Sport, req.Home.ID, req.Away.ID, req.Config)
	if err != nil {
		return nil, err
	}
	match.Title = req.Title
	match.Venue = req.Venue

	if football, ok := match.Football(); ok {
		if err := checkSheet(req.Home, football.Config.PlayersPerSide); err != nil {
			return nil, err
		}
		if err := checkSheet(req.Away, football.Config.PlayersPerSide); err != nil {
			return nil, err
		}
		football.Lineups = []*models.Lineup{req.Home.Lineup(), req.Away.Lineup()}
	}

	if err := checkPayload(match); err != nil {
		return nil, err
	}
	data, err := json.Marshal(match)
	if err != nil {
		return nil, fmt.Errorf("marshal match: %w", err)
	}

	// Hold the session lock until MATCH_CREATED is queued so nothing else
	// on this match can be synced ahead of it.
	s := newSession(match, 0, r.builder, r.factory.Clock(), r.sink, r.notifier)
	s.mu.Lock()
	if err := r.add(s); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.enqueue(matchsync.SyncEvent{
		Action:    matchsync.ActionMatchCreated,
		Snapshot:  data,
		CreatedAt: match.CreatedAt,
	})
	s.mu.Unlock()

	log.Info().
		Str("match_id", match.ID.String()).
		Str("sport", string(match.Sport)).
		Msg("match created")
	return s, nil
}

func validateCreate(req CreateMatchRequest) error {
	if req.Sport == "" {
		return fmt.Errorf("%w: sport is required", ErrInvalidMatch)
	}
	if req.Home.ID == uuid.Nil || req.Away.ID == uuid.Nil {
		return fmt.Errorf("%w: both teams are required", ErrInvalidMatch)
	}
	if req.Home.ID == req.Away.ID {
		return fmt.Errorf("%w: a team cannot play itself", ErrInvalidMatch)
	}
	if req.Config != nil && req.Config.Sport() != req.Sport {
		return fmt.Errorf("%w: %s config for a %s match", ErrInvalidMatch, req.Config.Sport(), req.Sport)
	}
	return nil
}

func checkSheet(sheet models.TeamSheet, playersPerSide int) error {
	if playersPerSide > 0 && len(sheet.Starters) > 0 && len(sheet.Starters) != playersPerSide {
		return fmt.Errorf("%w: team %s has %d starters, want %d", ErrInvalidMatch, sheet.ID, len(sheet.Starters), playersPerSide)
	}
	seen := make(map[uuid.UUID]bool, len(sheet.Starters)+len(sheet.Bench))
	for _, id := range append(append([]uuid.UUID{}, sheet.Starters...), sheet.Bench...) {
		if id == uuid.Nil || seen[id] {
			return fmt.Errorf("%w: team %s lists player %s more than once or without an id", ErrInvalidMatch, sheet.ID, id)
		}
		seen[id] = true
	}
	return nil
}

// Host takes ownership of an existing match with a fresh history.
func (r *Registry) Host(match *models.Match) (*Session, error) {
	return r.host(match, 0)
}

func (r *Registry) host(match *models.Match, sequence uint64) (*Session, error) {
	if err := checkPayload(match); err != nil {
		return nil, err
	}
	s := newSession(match, sequence, r.builder, r.factory.Clock(), r.sink, r.notifier)
	if err := r.add(s); err != nil {
		return nil, err
	}
	return s, nil
}

func checkPayload(match *models.Match) error {
	if match == nil || match.Payload == nil {
		return fmt.Errorf("%w: match has no payload", ErrInvalidMatch)
	}
	if match.Payload.Sport() != match.Sport {
		return fmt.Errorf("%w: %s payload on a %s match", ErrInvalidMatch, match.Payload.Sport(), match.Sport)
	}
	return nil
}

func (r *Registry) add(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.match.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyHosted, s.match.ID)
	}
	r.sessions[s.match.ID] = s
	return nil
}

// Get returns the session hosting matchID.
func (r *Registry) Get(matchID uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, matchID)
	}
	return s, nil
}

// Exists reports whether matchID is hosted.
func (r *Registry) Exists(matchID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[matchID]
	return ok
}

// IDs lists hosted matches in id order.
func (r *Registry) IDs() []uuid.UUID {
	r.mu.RLock()
	ids := make([]uuid.UUID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// End stops hosting matchID. Its history is discarded and its live
// subscribers are disconnected.
func (r *Registry) End(matchID uuid.UUID) error {
	r.mu.Lock()
	s, ok := r.sessions[matchID]
	delete(r.sessions, matchID)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, matchID)
	}

	s.Close()
	if closer, ok := r.notifier.(matchCloser); ok {
		closer.CloseMatch(matchID)
	}
	log.Info().Str("match_id", matchID.String()).Msg("match session ended")
	return nil
}

// Purge ends matchID and deletes its stored snapshot and mirrored documents.
// A match that is only ended can still be resumed; a purged one cannot.
func (r *Registry) Purge(matchID uuid.UUID) error {
	r.mu.RLock()
	s, ok := r.sessions[matchID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, matchID)
	}
	if err := r.End(matchID); err != nil {
		return err
	}
	s.purge()
	log.Info().Str("match_id", matchID.String()).Msg("match purged")
	return nil
}

// Resume hosts a match from its latest stored snapshot. The command history
// starts empty; the sequence continues from the snapshot.
func (r *Registry) Resume(ctx context.Context, matchID uuid.UUID) (*Session, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	if s, err := r.Get(matchID); err == nil {
		return s, nil
	}

	snapshot, err := r.store.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	match, err := snapshot.Match()
	if err != nil {
		return nil, fmt.Errorf("decode snapshot for %s: %w", matchID, err)
	}
	if match.ID != matchID {
		return nil, fmt.Errorf("%w: snapshot for %s holds match %s", ErrInvalidMatch, matchID, match.ID)
	}

	s, err := r.host(match, snapshot.Sequence)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("match_id", matchID.String()).
		Uint64("sequence", snapshot.Sequence).
		Msg("match session resumed")
	return s, nil
}

// Close ends every hosted session.
func (r *Registry) Close() {
	for _, id := range r.IDs() {
		if err := r.End(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			log.Error().Err(err).Str("match_id", id.String()).Msg("failed to end session")
		}
	}
}

// DecodeConfig decodes raw rules for sport, starting from the sport's
// defaults. Empty input yields the defaults.
func (r *Registry) DecodeConfig(sport models.Sport, raw json.RawMessage) (models.SportConfig, error) {
	config, err := r.factory.NewConfig(sport)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return config, nil
	}
	if err := json.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("%w: decode %s config: %v", ErrInvalidMatch, sport, err)
	}
	return config, nil
}
