package models

import (
	"github.com/google/uuid"
)

// TeamSheet is a team as it arrives for a match: who starts and who is on the bench.
type TeamSheet struct {
	ID       uuid.UUID   `json:"id"`
	Name     string      `json:"name"`
	Code     string      `json:"code,omitempty"`
	Starters []uuid.UUID `json:"starters"`
	Bench    []uuid.UUID `json:"bench,omitempty"`
}

// Lineup converts the sheet into a fresh match lineup.
func (t TeamSheet) Lineup() *Lineup {
	players := make([]uuid.UUID, len(t.Starters))
	copy(players, t.Starters)
	bench := make([]uuid.UUID, len(t.Bench))
	copy(bench, t.Bench)
	return &Lineup{
		TeamID:  t.ID,
		Players: players,
		Bench:   bench,
	}
}
