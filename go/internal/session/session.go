package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/scorekeeper/go/internal/matchsync"
	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/notify"
	"github.com/mcdev12/scorekeeper/go/internal/scoring"
)

var (
	ErrMatchNotLive  = errors.New("match is not live")
	ErrSessionClosed = errors.New("session is closed")
)

// SyncSink accepts sync events without blocking. *matchsync.Dispatcher
// satisfies it.
type SyncSink interface {
	Enqueue(event matchsync.SyncEvent) bool
}

// Outcome describes what an execute, undo or redo did.
type Outcome struct {
	Result      scoring.Result      `json:"result"`
	CommandType scoring.CommandType `json:"command_type,omitempty"`
	EventID     *uuid.UUID          `json:"event_id,omitempty"`
	Sequence    uint64              `json:"sequence"`
	CanUndo     bool                `json:"can_undo"`
	CanRedo     bool                `json:"can_redo"`

	// Snapshot is the match as it stood at Sequence, encoded under the same
	// lock as the mutation.
	Snapshot json.RawMessage `json:"-"`
}

// Session is the single owner of one match and its command history.
//
// Every read and write of the aggregate goes through the session's mutex,
// so a command always runs to completion before another one, or a reader,
// sees the match. The history push happens under the same lock as the
// execute.
type Session struct {
	mu       sync.Mutex
	match    *models.Match
	manager  *scoring.Manager
	builder  *scoring.Builder
	clock    clockwork.Clock
	sink     SyncSink
	notifier notify.Notifier
	sequence uint64
	closed   bool
}

func newSession(match *models.Match, sequence uint64, builder *scoring.Builder, clock clockwork.Clock, sink SyncSink, notifier notify.Notifier) *Session {
	return &Session{
		match:    match,
		manager:  scoring.NewManager(),
		builder:  builder,
		clock:    clock,
		sink:     sink,
		notifier: notifier,
		sequence: sequence,
	}
}

// MatchID returns the id of the hosted match.
func (s *Session) MatchID() uuid.UUID {
	return s.match.ID
}

// Sport returns the sport of the hosted match.
func (s *Session) Sport() models.Sport {
	return s.match.Sport
}

func (s *Session) checkWritable() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.match.Status != models.MatchStatusLive {
		return fmt.Errorf("%w: status is %s", ErrMatchNotLive, s.match.Status)
	}
	return nil
}

// Apply builds a command from req against the current state and executes it.
func (s *Session) Apply(req scoring.CommandRequest) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritable(); err != nil {
		return Outcome{}, err
	}
	cmd, err := s.builder.Build(s.match, req)
	if err != nil {
		return Outcome{}, err
	}
	return s.execute(cmd)
}

// Execute runs a command that was built for this session's match.
func (s *Session) Execute(cmd scoring.Command) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritable(); err != nil {
		return Outcome{}, err
	}
	return s.execute(cmd)
}

func (s *Session) execute(cmd scoring.Command) (Outcome, error) {
	res := s.manager.ExecuteCommand(cmd)
	if res.Applied() {
		s.commandApplied(matchsync.ActionCommandExecuted, cmd)
	}
	return s.outcome(cmd, res)
}

// Undo reverts the most recent command.
func (s *Session) Undo() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritable(); err != nil {
		return Outcome{}, err
	}
	cmd, res := s.manager.Undo()
	if res.Applied() {
		s.commandApplied(matchsync.ActionCommandUndone, cmd)
	}
	return s.outcome(cmd, res)
}

// Redo re-applies the most recently undone command.
func (s *Session) Redo() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritable(); err != nil {
		return Outcome{}, err
	}
	cmd, res := s.manager.Redo()
	if res.Applied() {
		s.commandApplied(matchsync.ActionCommandRedone, cmd)
	}
	return s.outcome(cmd, res)
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.CanRedo()
}

func (s *Session) outcome(cmd scoring.Command, res scoring.Result) (Outcome, error) {
	snapshot, err := json.Marshal(s.match)
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal match: %w", err)
	}
	out := Outcome{
		Result:   res,
		Sequence: s.sequence,
		CanUndo:  s.manager.CanUndo(),
		CanRedo:  s.manager.CanRedo(),
		Snapshot: snapshot,
	}
	if cmd != nil {
		out.CommandType = cmd.CommandType()
		if id, ok := cmd.EventID(); ok {
			out.EventID = &id
		}
	}
	return out, nil
}

// Start moves a scheduled match to LIVE.
func (s *Session) Start() error { return s.UpdateStatus(models.MatchStatusLive) }

// Complete finishes a live match.
func (s *Session) Complete() error { return s.UpdateStatus(models.MatchStatusCompleted) }

// Abandon stops a match that will not be finished.
func (s *Session) Abandon() error { return s.UpdateStatus(models.MatchStatusAbandoned) }

// UpdateStatus moves the match through its lifecycle. Once the match is
// terminal the command history is discarded.
func (s *Session) UpdateStatus(to models.MatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	from := s.match.Status
	if err := models.ValidateStatusTransition(from, to); err != nil {
		return err
	}

	s.match.Status = to
	if to.IsTerminal() {
		s.manager.Reset()
	}
	seq, snapshot, now := s.advance()
	s.enqueue(matchsync.SyncEvent{
		Action:    matchsync.ActionStatusChanged,
		Sequence:  seq,
		Snapshot:  snapshot,
		CreatedAt: now,
	})
	s.notify(notify.TypeMatchStatusChanged, seq, notify.MatchStatusChangedPayload{From: from, To: to})
	s.notify(notify.TypeMatchUpdated, seq, notify.MatchUpdatedPayload{Match: snapshot})

	log.Info().
		Str("match_id", s.match.ID.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("match status changed")
	return nil
}

// View runs fn with read access to the match. fn must not keep the pointer
// or mutate the match.
func (s *Session) View(fn func(match *models.Match)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.match)
}

// Snapshot returns the match encoded as JSON with its current sequence number.
func (s *Session) Snapshot() (json.RawMessage, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(s.match)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal match: %w", err)
	}
	return data, s.sequence, nil
}

// Close ends the session. The history is discarded and further calls fail
// with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.manager.Reset()
	s.enqueue(matchsync.SyncEvent{
		Action:    matchsync.ActionMatchEnded,
		Sequence:  s.sequence,
		CreatedAt: s.clock.Now().UTC(),
	})
}

// purge asks the sync destinations to drop everything stored for the match.
// It is queued behind the session's earlier events.
func (s *Session) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enqueue(matchsync.SyncEvent{
		Action:    matchsync.ActionMatchPurged,
		Sequence:  s.sequence,
		CreatedAt: s.clock.Now().UTC(),
	})
}

// advance stamps a new mutation: bumps the sequence, touches UpdatedAt and
// encodes the match.
func (s *Session) advance() (uint64, json.RawMessage, time.Time) {
	now := s.clock.Now().UTC()
	s.sequence++
	s.match.UpdatedAt = now
	snapshot, err := json.Marshal(s.match)
	if err != nil {
		log.Error().Err(err).Str("match_id", s.match.ID.String()).Msg("failed to encode match snapshot")
		snapshot = nil
	}
	return s.sequence, snapshot, now
}

func (s *Session) commandApplied(action matchsync.Action, cmd scoring.Command) {
	seq, snapshot, now := s.advance()

	event := matchsync.SyncEvent{
		Action:      action,
		CommandType: string(cmd.CommandType()),
		Sequence:    seq,
		Snapshot:    snapshot,
		CreatedAt:   now,
	}
	eventID, hasEvent := cmd.EventID()
	var eventData json.RawMessage
	if hasEvent {
		event.EventID = &eventID
		if action != matchsync.ActionCommandUndone {
			eventData = s.encodeEvent(eventID)
			event.Event = eventData
		}
	}
	s.enqueue(event)

	switch {
	case hasEvent && action == matchsync.ActionCommandUndone:
		s.notify(notify.TypeEventRemoved, seq, notify.EventRemovedPayload{
			CommandType: string(cmd.CommandType()),
			EventID:     eventID,
		})
	case hasEvent && eventData != nil:
		s.notify(notify.TypeEventAdded, seq, notify.EventAddedPayload{
			CommandType: string(cmd.CommandType()),
			Event:       eventData,
		})
	}
	s.notify(notify.TypeMatchUpdated, seq, notify.MatchUpdatedPayload{Match: snapshot})

	log.Debug().
		Str("match_id", s.match.ID.String()).
		Str("action", string(action)).
		Str("command", string(cmd.CommandType())).
		Uint64("sequence", seq).
		Msg("match mutated")
}

func (s *Session) encodeEvent(id uuid.UUID) json.RawMessage {
	event := findEvent(s.match, id)
	if event == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event_id", id.String()).Msg("failed to encode event")
		return nil
	}
	return data
}

func findEvent(match *models.Match, id uuid.UUID) models.MatchEvent {
	if cricket, ok := match.Cricket(); ok {
		for i := len(cricket.Events) - 1; i >= 0; i-- {
			if cricket.Events[i].ID == id {
				return cricket.Events[i]
			}
		}
	}
	if football, ok := match.Football(); ok {
		for i := len(football.Events) - 1; i >= 0; i-- {
			if football.Events[i].ID == id {
				return football.Events[i]
			}
		}
	}
	return nil
}

func (s *Session) enqueue(event matchsync.SyncEvent) {
	if s.sink == nil {
		return
	}
	event.ID = uuid.Must(uuid.NewV7())
	event.MatchID = s.match.ID
	event.Sport = s.match.Sport
	event.Status = s.match.Status
	s.sink.Enqueue(event)
}

func (s *Session) notify(t notify.Type, seq uint64, payload interface{}) {
	if s.notifier == nil {
		return
	}
	n, err := notify.New(s.match.ID, t, seq, s.clock.Now().UTC(), payload)
	if err != nil {
		log.Error().Err(err).Str("type", string(t)).Msg("failed to build notification")
		return
	}
	s.notifier.Notify(n)
}
