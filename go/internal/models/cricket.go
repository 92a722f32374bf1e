package models

import (
	"time"

	"github.com/google/uuid"
)

// ExtrasType classifies a delivery that earns runs other than off the bat.
type ExtrasType string

const (
	ExtrasNone    ExtrasType = ""
	ExtrasWide    ExtrasType = "WIDE"
	ExtrasNoBall  ExtrasType = "NO_BALL"
	ExtrasBye     ExtrasType = "BYE"
	ExtrasLegBye  ExtrasType = "LEG_BYE"
	ExtrasPenalty ExtrasType = "PENALTY"
)

// Valid reports whether t is a known extras type (including none).
func (t ExtrasType) Valid() bool {
	switch t {
	case ExtrasNone, ExtrasWide, ExtrasNoBall, ExtrasBye, ExtrasLegBye, ExtrasPenalty:
		return true
	}
	return false
}

// CricketMatch is the cricket payload of a Match.
type CricketMatch struct {
	Config  CricketConfig   `json:"config"`
	Innings []*Innings      `json:"innings"`
	Events  []*CricketEvent `json:"events"`
}

func (c *CricketMatch) Sport() Sport { return SportCricket }
func (c *CricketMatch) isMatchPayload() {}

// CurrentInnings returns the innings accepting balls, or nil.
func (c *CricketMatch) CurrentInnings() *Innings {
	if c == nil || len(c.Innings) == 0 {
		return nil
	}
	last := c.Innings[len(c.Innings)-1]
	if last.IsCompleted {
		return nil
	}
	return last
}

// CurrentOver returns the over accepting balls, or nil.
func (c *CricketMatch) CurrentOver() *Over {
	innings := c.CurrentInnings()
	if innings == nil {
		return nil
	}
	return innings.CurrentOver()
}

// AppendEvent adds an event to the log.
func (c *CricketMatch) AppendEvent(event *CricketEvent) {
	c.Events = append(c.Events, event)
}

// RemoveEvent drops the most recent entry with the given id.
// Returns false when the event is not in the log.
func (c *CricketMatch) RemoveEvent(id uuid.UUID) bool {
	for i := len(c.Events) - 1; i >= 0; i-- {
		if c.Events[i].ID == id {
			c.Events = append(c.Events[:i], c.Events[i+1:]...)
			return true
		}
	}
	return false
}

// Innings is one batting turn of a team.
type Innings struct {
	ID             uuid.UUID `json:"id"`
	Number         int       `json:"number"`
	BattingTeamID  uuid.UUID `json:"batting_team_id"`
	BowlingTeamID  uuid.UUID `json:"bowling_team_id"`
	TotalRuns      int       `json:"total_runs"`
	WicketsFallen  int       `json:"wickets_fallen"`
	OversCompleted int       `json:"overs_completed"`
	IsCompleted    bool      `json:"is_completed"`
	Overs          []*Over   `json:"overs"`
}

// CurrentOver returns the last over if it is still open.
func (i *Innings) CurrentOver() *Over {
	if i == nil || len(i.Overs) == 0 {
		return nil
	}
	last := i.Overs[len(i.Overs)-1]
	if last.IsCompleted {
		return nil
	}
	return last
}

// RemoveOver removes o if it is the last over. Identity, not equality, is compared.
func (i *Innings) RemoveOver(o *Over) bool {
	n := len(i.Overs)
	if n == 0 || i.Overs[n-1] != o {
		return false
	}
	i.Overs[n-1] = nil
	i.Overs = i.Overs[:n-1]
	return true
}

// Over is a sequence of deliveries from one bowler.
type Over struct {
	ID            uuid.UUID `json:"id"`
	Number        int       `json:"number"`
	BowlerID      uuid.UUID `json:"bowler_id"`
	Balls         []*Ball   `json:"balls"`
	RunsInOver    int       `json:"runs_in_over"`
	WicketsInOver int       `json:"wickets_in_over"`
	IsCompleted   bool      `json:"is_completed"`
}

// LegalDeliveries counts balls that use up one of the over's six slots.
func (o *Over) LegalDeliveries() int {
	count := 0
	for _, b := range o.Balls {
		if b.IsLegalDelivery() {
			count++
		}
	}
	return count
}

// AppendBall adds b and stamps its position within the over.
func (o *Over) AppendBall(b *Ball) {
	b.OverNumber = o.Number
	b.BallNumber = len(o.Balls) + 1
	o.Balls = append(o.Balls, b)
}

// RemoveLastBall pops the most recent delivery.
func (o *Over) RemoveLastBall() *Ball {
	n := len(o.Balls)
	if n == 0 {
		return nil
	}
	b := o.Balls[n-1]
	o.Balls[n-1] = nil
	o.Balls = o.Balls[:n-1]
	return b
}

// Ball is a single delivery.
type Ball struct {
	ID            uuid.UUID  `json:"id"`
	InningsNumber int        `json:"innings_number"`
	OverNumber    int        `json:"over_number"`
	BallNumber    int        `json:"ball_number"`
	BatterID      uuid.UUID  `json:"batter_id"`
	BowlerID      uuid.UUID  `json:"bowler_id"`
	RunsScored    int        `json:"runs_scored"`
	IsWicket      bool       `json:"is_wicket"`
	IsBoundary    bool       `json:"is_boundary"`
	ExtrasType    ExtrasType `json:"extras_type,omitempty"`
	ExtrasRuns    int        `json:"extras_runs,omitempty"`
	DeliveredAt   time.Time  `json:"delivered_at"`
}

// IsLegalDelivery reports whether the ball counts toward the six-ball limit.
// Wides and no-balls are re-bowled; penalty runs are not a delivery at all.
func (b *Ball) IsLegalDelivery() bool {
	switch b.ExtrasType {
	case ExtrasWide, ExtrasNoBall, ExtrasPenalty:
		return false
	}
	return true
}

// TotalRuns is what the delivery adds to the over and innings.
func (b *Ball) TotalRuns() int {
	return b.RunsScored + b.ExtrasRuns
}
