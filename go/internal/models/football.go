package models

import (
	"github.com/google/uuid"
)

// FootballMatch is the football payload of a Match.
type FootballMatch struct {
	Config    FootballConfig   `json:"config"`
	Events    []*FootballEvent `json:"events"`
	HomeScore int              `json:"home_score"`
	AwayScore int              `json:"away_score"`
	Lineups   []*Lineup        `json:"lineups"`
}

func (f *FootballMatch) Sport() Sport { return SportFootball }
func (f *FootballMatch) isMatchPayload() {}

// AppendEvent adds an event to the log.
func (f *FootballMatch) AppendEvent(event *FootballEvent) {
	f.Events = append(f.Events, event)
}

// RemoveEvent drops the most recent entry with the given id.
func (f *FootballMatch) RemoveEvent(id uuid.UUID) bool {
	for i := len(f.Events) - 1; i >= 0; i-- {
		if f.Events[i].ID == id {
			f.Events = append(f.Events[:i], f.Events[i+1:]...)
			return true
		}
	}
	return false
}

// Lineup returns the lineup of a team, or nil.
func (f *FootballMatch) Lineup(teamID uuid.UUID) *Lineup {
	for _, l := range f.Lineups {
		if l.TeamID == teamID {
			return l
		}
	}
	return nil
}

// Lineup tracks who is on the pitch for one team.
type Lineup struct {
	TeamID            uuid.UUID   `json:"team_id"`
	Players           []uuid.UUID `json:"players"`
	Bench             []uuid.UUID `json:"bench"`
	SubstitutionsMade int         `json:"substitutions_made"`
}

// Contains reports whether playerID is on the pitch.
func (l *Lineup) Contains(playerID uuid.UUID) bool {
	return indexOf(l.Players, playerID) >= 0
}

// Swap puts in on the pitch in the position out held and sends out to the bench.
func (l *Lineup) Swap(out, in uuid.UUID) bool {
	pos := indexOf(l.Players, out)
	if pos < 0 || indexOf(l.Players, in) >= 0 {
		return false
	}
	l.Players[pos] = in

	if bench := indexOf(l.Bench, in); bench >= 0 {
		l.Bench = append(l.Bench[:bench:bench], l.Bench[bench+1:]...)
	}
	l.Bench = append(l.Bench, out)
	return true
}

// Replace puts with on the pitch where current stands. The bench is left alone.
func (l *Lineup) Replace(current, with uuid.UUID) bool {
	pos := indexOf(l.Players, current)
	if pos < 0 {
		return false
	}
	l.Players[pos] = with
	return true
}

func indexOf(ids []uuid.UUID, id uuid.UUID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
