package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MatchEvent is one entry of a match's append-only log.
// Implemented only by *CricketEvent and *FootballEvent.
type MatchEvent interface {
	EventID() uuid.UUID
	EventMatchID() uuid.UUID
	EventKind() DetailKind
	EventDetail() Detail
	isMatchEvent()
}

// CricketEvent records a wicket or extras on a specific delivery.
type CricketEvent struct {
	ID            uuid.UUID  `json:"id"`
	MatchID       uuid.UUID  `json:"match_id"`
	TeamID        uuid.UUID  `json:"team_id"`
	PlayerID      uuid.UUID  `json:"player_id"`
	InningsNumber int        `json:"innings_number"`
	OverNumber    int        `json:"over_number"`
	BallNumber    int        `json:"ball_number"`
	Kind          DetailKind `json:"kind"`
	Detail        Detail     `json:"detail"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (e *CricketEvent) EventID() uuid.UUID      { return e.ID }
func (e *CricketEvent) EventMatchID() uuid.UUID { return e.MatchID }
func (e *CricketEvent) EventKind() DetailKind   { return e.Kind }
func (e *CricketEvent) EventDetail() Detail     { return e.Detail }
func (e *CricketEvent) isMatchEvent()           {}

// Attach sets the detail and the kind that goes with it.
func (e *CricketEvent) Attach(d Detail) {
	e.Detail = d
	e.Kind = d.Kind()
}

// UnmarshalJSON decodes Detail into the variant named by Kind.
func (e *CricketEvent) UnmarshalJSON(data []byte) error {
	type eventAlias CricketEvent
	var raw struct {
		eventAlias
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	detail, err := DecodeDetail(raw.Kind, raw.Detail)
	if err != nil {
		return err
	}
	*e = CricketEvent(raw.eventAlias)
	e.Detail = detail
	return nil
}

// FootballEvent records a goal, card, shot, save or substitution.
type FootballEvent struct {
	ID        uuid.UUID  `json:"id"`
	MatchID   uuid.UUID  `json:"match_id"`
	TeamID    uuid.UUID  `json:"team_id"`
	PlayerID  uuid.UUID  `json:"player_id"`
	Minute    int        `json:"minute"`
	Kind      DetailKind `json:"kind"`
	Detail    Detail     `json:"detail"`
	CreatedAt time.Time  `json:"created_at"`
}

func (e *FootballEvent) EventID() uuid.UUID      { return e.ID }
func (e *FootballEvent) EventMatchID() uuid.UUID { return e.MatchID }
func (e *FootballEvent) EventKind() DetailKind   { return e.Kind }
func (e *FootballEvent) EventDetail() Detail     { return e.Detail }
func (e *FootballEvent) isMatchEvent()           {}

// Attach sets the detail and the kind that goes with it.
func (e *FootballEvent) Attach(d Detail) {
	e.Detail = d
	e.Kind = d.Kind()
}

// UnmarshalJSON decodes Detail into the variant named by Kind.
func (e *FootballEvent) UnmarshalJSON(data []byte) error {
	type eventAlias FootballEvent
	var raw struct {
		eventAlias
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	detail, err := DecodeDetail(raw.Kind, raw.Detail)
	if err != nil {
		return err
	}
	*e = FootballEvent(raw.eventAlias)
	e.Detail = detail
	return nil
}
