package scoring

import (
	"slices"

	"github.com/google/uuid"

	"github.com/mcdev12/scorekeeper/go/internal/models"
)

// appendEventCommand appends one detailed event to the football log. Card,
// shot and save commands are nothing more than this.
type appendEventCommand struct {
	match       *models.Match
	event       *models.FootballEvent
	detail      models.Detail
	commandType CommandType
}

func newAppendEventCommand(match *models.Match, event *models.FootballEvent, detail models.Detail, commandType CommandType) appendEventCommand {
	return appendEventCommand{match: match, event: event, detail: detail, commandType: commandType}
}

func (c *appendEventCommand) Execute() Result {
	football, ok := c.match.Football()
	if !ok {
		return skipped(ReasonSportMismatch)
	}
	c.event.Attach(c.detail)
	football.AppendEvent(c.event)
	return applied()
}

func (c *appendEventCommand) Undo() Result {
	football, ok := c.match.Football()
	if !ok {
		return skipped(ReasonSportMismatch)
	}
	if !football.RemoveEvent(c.event.ID) {
		return skipped(ReasonEventNotFound)
	}
	return applied()
}

func (c *appendEventCommand) EventID() (uuid.UUID, bool) { return c.event.ID, true }
func (c *appendEventCommand) CommandType() CommandType  { return c.commandType }

// AddCardCommand records a booking.
type AddCardCommand struct{ appendEventCommand }

func NewAddCardCommand(match *models.Match, event *models.FootballEvent, detail *models.CardDetail) *AddCardCommand {
	return &AddCardCommand{newAppendEventCommand(match, event, detail, CommandTypeAddCard)}
}

// AddShotCommand records an attempt on goal.
type AddShotCommand struct{ appendEventCommand }

func NewAddShotCommand(match *models.Match, event *models.FootballEvent, detail *models.ShotDetail) *AddShotCommand {
	return &AddShotCommand{newAppendEventCommand(match, event, detail, CommandTypeAddShot)}
}

// AddSaveCommand records a goalkeeper save.
type AddSaveCommand struct{ appendEventCommand }

func NewAddSaveCommand(match *models.Match, event *models.FootballEvent, detail *models.SaveDetail) *AddSaveCommand {
	return &AddSaveCommand{newAppendEventCommand(match, event, detail, CommandTypeAddSave)}
}

// AddGoalCommand records a goal and credits the team named on the event.
// The team is matched by id against the match's home and away teams.
type AddGoalCommand struct {
	appendEventCommand
}

func NewAddGoalCommand(match *models.Match, event *models.FootballEvent, detail *models.GoalDetail) *AddGoalCommand {
	return &AddGoalCommand{newAppendEventCommand(match, event, detail, CommandTypeAddGoal)}
}

func (c *AddGoalCommand) score(football *models.FootballMatch) *int {
	switch c.event.TeamID {
	case c.match.HomeTeamID:
		return &football.HomeScore
	case c.match.AwayTeamID:
		return &football.AwayScore
	default:
		return nil
	}
}

func (c *AddGoalCommand) Execute() Result {
	football, ok := c.match.Football()
	if !ok {
		return skipped(ReasonSportMismatch)
	}
	counter := c.score(football)
	if counter == nil {
		return skipped(ReasonUnknownTeam)
	}

	c.event.Attach(c.detail)
	football.AppendEvent(c.event)
	*counter++
	return applied()
}

func (c *AddGoalCommand) Undo() Result {
	football, ok := c.match.Football()
	if !ok {
		return skipped(ReasonSportMismatch)
	}
	counter := c.score(football)
	if counter == nil {
		return skipped(ReasonUnknownTeam)
	}
	if !football.RemoveEvent(c.event.ID) {
		return skipped(ReasonEventNotFound)
	}
	*counter--
	return applied()
}

// SubstitutePlayerCommand swaps a player on the pitch for another.
type SubstitutePlayerCommand struct {
	appendEventCommand
	substitution *models.SubstitutionDetail
	bench        []uuid.UUID
}

func NewSubstitutePlayerCommand(match *models.Match, event *models.FootballEvent, detail *models.SubstitutionDetail) *SubstitutePlayerCommand {
	return &SubstitutePlayerCommand{
		appendEventCommand: newAppendEventCommand(match, event, detail, CommandTypeSubstitutePlayer),
		substitution:       detail,
	}
}

func (c *SubstitutePlayerCommand) Execute() Result {
	football, ok := c.match.Football()
	if !ok {
		return skipped(ReasonSportMismatch)
	}
	lineup := football.Lineup(c.event.TeamID)
	if lineup == nil {
		return skipped(ReasonUnknownTeam)
	}
	if !lineup.Contains(c.substitution.PlayerOutID) {
		return skipped(ReasonPlayerNotInLineup)
	}
	if lineup.Contains(c.substitution.PlayerInID) {
		return skipped(ReasonPlayerOnPitch)
	}

	c.bench = slices.Clone(lineup.Bench)
	lineup.Swap(c.substitution.PlayerOutID, c.substitution.PlayerInID)
	lineup.SubstitutionsMade++

	c.event.Attach(c.detail)
	football.AppendEvent(c.event)
	return applied()
}

func (c *SubstitutePlayerCommand) Undo() Result {
	football, ok := c.match.Football()
	if !ok {
		return skipped(ReasonSportMismatch)
	}
	lineup := football.Lineup(c.event.TeamID)
	if lineup == nil {
		return skipped(ReasonUnknownTeam)
	}
	if !lineup.Contains(c.substitution.PlayerInID) {
		return skipped(ReasonStateChanged)
	}
	if !football.RemoveEvent(c.event.ID) {
		return skipped(ReasonEventNotFound)
	}

	lineup.Replace(c.substitution.PlayerInID, c.substitution.PlayerOutID)
	lineup.Bench = c.bench
	lineup.SubstitutionsMade--
	return applied()
}
