package scoring

import (
	"github.com/google/uuid"

	"github.com/mcdev12/scorekeeper/go/internal/models"
)

// cricketState resolves the current innings and over of a match. The same
// guard is evaluated on entry to every Execute and Undo.
func cricketState(match *models.Match) (*models.CricketMatch, *models.Innings, *models.Over, SkipReason) {
	cricket, ok := match.Cricket()
	if !ok {
		return nil, nil, nil, ReasonSportMismatch
	}
	innings := cricket.CurrentInnings()
	if innings == nil {
		return cricket, nil, nil, ReasonNoCurrentInnings
	}
	over := innings.CurrentOver()
	if over == nil {
		return cricket, innings, nil, ReasonNoCurrentOver
	}
	return cricket, innings, over, ""
}

func lastBallIs(over *models.Over, ball *models.Ball) bool {
	n := len(over.Balls)
	return n > 0 && over.Balls[n-1] == ball
}

func hasEvent(cricket *models.CricketMatch, id uuid.UUID) bool {
	for i := len(cricket.Events) - 1; i >= 0; i-- {
		if cricket.Events[i].ID == id {
			return true
		}
	}
	return false
}

func stampEvent(event *models.CricketEvent, ball *models.Ball) {
	event.InningsNumber = ball.InningsNumber
	event.OverNumber = ball.OverNumber
	event.BallNumber = ball.BallNumber
}

// AddBallCommand records a delivery with runs off the bat and no extras.
type AddBallCommand struct {
	match *models.Match
	ball  *models.Ball
}

func NewAddBallCommand(match *models.Match, ball *models.Ball) *AddBallCommand {
	return &AddBallCommand{match: match, ball: ball}
}

func (c *AddBallCommand) Execute() Result {
	_, innings, over, reason := cricketState(c.match)
	if reason != "" {
		return skipped(reason)
	}

	c.ball.InningsNumber = innings.Number
	over.AppendBall(c.ball)
	runs := c.ball.TotalRuns()
	innings.TotalRuns += runs
	over.RunsInOver += runs
	return applied()
}

func (c *AddBallCommand) Undo() Result {
	_, innings, over, reason := cricketState(c.match)
	if reason != "" {
		return skipped(reason)
	}
	if !lastBallIs(over, c.ball) {
		return skipped(ReasonStateChanged)
	}

	over.RemoveLastBall()
	runs := c.ball.TotalRuns()
	innings.TotalRuns -= runs
	over.RunsInOver -= runs
	return applied()
}

func (c *AddBallCommand) EventID() (uuid.UUID, bool) { return uuid.Nil, false }
func (c *AddBallCommand) CommandType() CommandType  { return CommandTypeAddBall }

// Ball returns the delivery this command records.
func (c *AddBallCommand) Ball() *models.Ball { return c.ball }

// AddExtrasCommand records a delivery that concedes extras. Wides and no-balls
// are appended like any other ball; they just do not count as legal.
type AddExtrasCommand struct {
	match  *models.Match
	ball   *models.Ball
	event  *models.CricketEvent
	detail *models.ExtrasDetail
}

func NewAddExtrasCommand(match *models.Match, ball *models.Ball, event *models.CricketEvent, detail *models.ExtrasDetail) *AddExtrasCommand {
	return &AddExtrasCommand{match: match, ball: ball, event: event, detail: detail}
}

func (c *AddExtrasCommand) Execute() Result {
	cricket, innings, over, reason := cricketState(c.match)
	if reason != "" {
		return skipped(reason)
	}

	c.ball.ExtrasType = c.detail.Type
	c.ball.ExtrasRuns = c.detail.Runs
	c.ball.InningsNumber = innings.Number
	over.AppendBall(c.ball)
	runs := c.ball.TotalRuns()
	innings.TotalRuns += runs
	over.RunsInOver += runs

	c.event.Attach(c.detail)
	stampEvent(c.event, c.ball)
	cricket.AppendEvent(c.event)
	return applied()
}

func (c *AddExtrasCommand) Undo() Result {
	cricket, innings, over, reason := cricketState(c.match)
	if reason != "" {
		return skipped(reason)
	}
	if !lastBallIs(over, c.ball) {
		return skipped(ReasonStateChanged)
	}
	if !hasEvent(cricket, c.event.ID) {
		return skipped(ReasonEventNotFound)
	}

	over.RemoveLastBall()
	runs := c.ball.TotalRuns()
	innings.TotalRuns -= runs
	over.RunsInOver -= runs
	cricket.RemoveEvent(c.event.ID)
	return applied()
}

func (c *AddExtrasCommand) EventID() (uuid.UUID, bool) { return c.event.ID, true }
func (c *AddExtrasCommand) CommandType() CommandType  { return CommandTypeAddExtras }

// AddWicketCommand records a dismissal and any runs completed off the bat.
// Extras on the same delivery are a separate AddExtras.
type AddWicketCommand struct {
	match  *models.Match
	ball   *models.Ball
	event  *models.CricketEvent
	detail *models.WicketDetail
}

func NewAddWicketCommand(match *models.Match, ball *models.Ball, event *models.CricketEvent, detail *models.WicketDetail) *AddWicketCommand {
	return &AddWicketCommand{match: match, ball: ball, event: event, detail: detail}
}

func (c *AddWicketCommand) Execute() Result {
	cricket, innings, over, reason := cricketState(c.match)
	if reason != "" {
		return skipped(reason)
	}

	c.ball.IsWicket = true
	c.ball.InningsNumber = innings.Number
	over.AppendBall(c.ball)
	innings.WicketsFallen++
	over.WicketsInOver++
	innings.TotalRuns += c.ball.RunsScored
	over.RunsInOver += c.ball.RunsScored

	c.event.Attach(c.detail)
	stampEvent(c.event, c.ball)
	cricket.AppendEvent(c.event)
	return applied()
}

func (c *AddWicketCommand) Undo() Result {
	cricket, innings, over, reason := cricketState(c.match)
	if reason != "" {
		return skipped(reason)
	}
	if !lastBallIs(over, c.ball) {
		return skipped(ReasonStateChanged)
	}
	if !hasEvent(cricket, c.event.ID) {
		return skipped(ReasonEventNotFound)
	}

	cricket.RemoveEvent(c.event.ID)
	over.RunsInOver -= c.ball.RunsScored
	innings.TotalRuns -= c.ball.RunsScored
	over.WicketsInOver--
	innings.WicketsFallen--
	over.RemoveLastBall()
	return applied()
}

func (c *AddWicketCommand) EventID() (uuid.UUID, bool) { return c.event.ID, true }
func (c *AddWicketCommand) CommandType() CommandType  { return CommandTypeAddWicket }

// EndOverCommand closes the current over and opens the next one.
//
// The outgoing over is captured when the command is built: undo must put that
// exact over back as current, not a rebuilt copy. The incoming over is kept
// too, so a redo reinstalls the same object.
type EndOverCommand struct {
	match    *models.Match
	previous *models.Over
	next     *models.Over
}

// NewEndOverCommand captures the match's current over. next is the over to
// open; it is numbered after the captured one.
func NewEndOverCommand(match *models.Match, next *models.Over) *EndOverCommand {
	var previous *models.Over
	if cricket, ok := match.Cricket(); ok {
		previous = cricket.CurrentOver()
	}
	if next == nil {
		next = &models.Over{ID: uuid.New(), Balls: []*models.Ball{}}
	}
	if previous != nil {
		next.Number = previous.Number + 1
	}
	return &EndOverCommand{match: match, previous: previous, next: next}
}

func (c *EndOverCommand) Execute() Result {
	_, innings, over, reason := cricketState(c.match)
	if reason != "" {
		return skipped(reason)
	}
	if c.previous == nil || over != c.previous {
		return skipped(ReasonStateChanged)
	}

	c.previous.IsCompleted = true
	innings.OversCompleted++
	innings.Overs = append(innings.Overs, c.next)
	return applied()
}

func (c *EndOverCommand) Undo() Result {
	_, innings, over, reason := cricketState(c.match)
	if reason != "" {
		return skipped(reason)
	}
	if over != c.next || len(c.next.Balls) > 0 {
		return skipped(ReasonStateChanged)
	}

	innings.RemoveOver(c.next)
	c.previous.IsCompleted = false
	innings.OversCompleted--
	return applied()
}

func (c *EndOverCommand) EventID() (uuid.UUID, bool) { return uuid.Nil, false }
func (c *EndOverCommand) CommandType() CommandType  { return CommandTypeEndOver }

// Previous returns the over this command closes.
func (c *EndOverCommand) Previous() *models.Over { return c.previous }

// Next returns the over this command opens.
func (c *EndOverCommand) Next() *models.Over { return c.next }

// StartInningsCommand opens a new innings together with its first over.
type StartInningsCommand struct {
	match   *models.Match
	innings *models.Innings
}

func NewStartInningsCommand(match *models.Match, innings *models.Innings) *StartInningsCommand {
	return &StartInningsCommand{match: match, innings: innings}
}

func (c *StartInningsCommand) Execute() Result {
	cricket, ok := c.match.Cricket()
	if !ok {
		return skipped(ReasonSportMismatch)
	}
	if cricket.CurrentInnings() != nil {
		return skipped(ReasonInningsInProgress)
	}

	c.innings.Number = len(cricket.Innings) + 1
	cricket.Innings = append(cricket.Innings, c.innings)
	return applied()
}

func (c *StartInningsCommand) Undo() Result {
	cricket, ok := c.match.Cricket()
	if !ok {
		return skipped(ReasonSportMismatch)
	}
	n := len(cricket.Innings)
	if n == 0 || cricket.Innings[n-1] != c.innings {
		return skipped(ReasonStateChanged)
	}

	cricket.Innings[n-1] = nil
	cricket.Innings = cricket.Innings[:n-1]
	return applied()
}

func (c *StartInningsCommand) EventID() (uuid.UUID, bool) { return uuid.Nil, false }
func (c *StartInningsCommand) CommandType() CommandType  { return CommandTypeStartInnings }

// EndInningsCommand closes the current innings.
type EndInningsCommand struct {
	match   *models.Match
	innings *models.Innings
}

// NewEndInningsCommand captures the match's current innings.
func NewEndInningsCommand(match *models.Match) *EndInningsCommand {
	var innings *models.Innings
	if cricket, ok := match.Cricket(); ok {
		innings = cricket.CurrentInnings()
	}
	return &EndInningsCommand{match: match, innings: innings}
}

func (c *EndInningsCommand) Execute() Result {
	cricket, ok := c.match.Cricket()
	if !ok {
		return skipped(ReasonSportMismatch)
	}
	current := cricket.CurrentInnings()
	if current == nil || c.innings == nil {
		return skipped(ReasonNoCurrentInnings)
	}
	if current != c.innings {
		return skipped(ReasonStateChanged)
	}

	c.innings.IsCompleted = true
	return applied()
}

func (c *EndInningsCommand) Undo() Result {
	cricket, ok := c.match.Cricket()
	if !ok {
		return skipped(ReasonSportMismatch)
	}
	n := len(cricket.Innings)
	if c.innings == nil || n == 0 || cricket.Innings[n-1] != c.innings || !c.innings.IsCompleted {
		return skipped(ReasonStateChanged)
	}

	c.innings.IsCompleted = false
	return applied()
}

func (c *EndInningsCommand) EventID() (uuid.UUID, bool) { return uuid.Nil, false }
func (c *EndInningsCommand) CommandType() CommandType  { return CommandTypeEndInnings }
