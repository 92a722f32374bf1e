package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sport identifies which scoring model a match uses.
type Sport string

const (
	SportCricket  Sport = "cricket"
	SportFootball Sport = "football"
)

// MatchStatus defines the lifecycle status of a match.
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "SCHEDULED"
	MatchStatusLive      MatchStatus = "LIVE"
	MatchStatusCompleted MatchStatus = "COMPLETED"
	MatchStatusAbandoned MatchStatus = "ABANDONED"
)

// IsTerminal reports whether no further scoring may happen.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusCompleted || s == MatchStatusAbandoned
}

// ErrInvalidStatusTransition is returned for a lifecycle move that is not allowed.
var ErrInvalidStatusTransition = errors.New("invalid status transition")

// ValidateStatusTransition checks a lifecycle move
// SCHEDULED -> LIVE -> COMPLETED | ABANDONED. A scheduled match may be abandoned.
func ValidateStatusTransition(from, to MatchStatus) error {
	validTransitions := map[MatchStatus][]MatchStatus{
		MatchStatusScheduled: {MatchStatusLive, MatchStatusAbandoned},
		MatchStatusLive:      {MatchStatusCompleted, MatchStatusAbandoned},
		MatchStatusCompleted: {},
		MatchStatusAbandoned: {},
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return fmt.Errorf("%w: unknown match status %q", ErrInvalidStatusTransition, from)
	}
	for _, status := range allowed {
		if status == to {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidStatusTransition, from, to)
}

// MatchPayload is the sport-specific part of a match.
// Implemented only by *CricketMatch and *FootballMatch.
type MatchPayload interface {
	Sport() Sport
	isMatchPayload()
}

// Match is the aggregate root every scoring command operates on.
type Match struct {
	ID         uuid.UUID    `json:"id"`
	Sport      Sport        `json:"sport"`
	Status     MatchStatus  `json:"status"`
	HomeTeamID uuid.UUID    `json:"home_team_id"`
	AwayTeamID uuid.UUID    `json:"away_team_id"`
	Title      string       `json:"title,omitempty"`
	Venue      string       `json:"venue,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Payload    MatchPayload `json:"payload"`
}

// Cricket returns the cricket payload, if this is a cricket match.
func (m *Match) Cricket() (*CricketMatch, bool) {
	if m == nil {
		return nil, false
	}
	c, ok := m.Payload.(*CricketMatch)
	return c, ok && c != nil
}

// Football returns the football payload, if this is a football match.
func (m *Match) Football() (*FootballMatch, bool) {
	if m == nil {
		return nil, false
	}
	f, ok := m.Payload.(*FootballMatch)
	return f, ok && f != nil
}

// UnmarshalJSON decodes the payload into the variant named by Sport.
func (m *Match) UnmarshalJSON(data []byte) error {
	type matchAlias Match
	var raw struct {
		matchAlias
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Match(raw.matchAlias)
	m.Payload = nil

	switch m.Sport {
	case SportCricket:
		payload := &CricketMatch{}
		if len(raw.Payload) > 0 && string(raw.Payload) != "null" {
			if err := json.Unmarshal(raw.Payload, payload); err != nil {
				return fmt.Errorf("failed to decode cricket payload: %w", err)
			}
		}
		m.Payload = payload
	case SportFootball:
		payload := &FootballMatch{}
		if len(raw.Payload) > 0 && string(raw.Payload) != "null" {
			if err := json.Unmarshal(raw.Payload, payload); err != nil {
				return fmt.Errorf("failed to decode football payload: %w", err)
			}
		}
		m.Payload = payload
	default:
		return fmt.Errorf("unknown sport %q", m.Sport)
	}
	return nil
}
