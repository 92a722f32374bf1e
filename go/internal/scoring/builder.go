package scoring

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/sports/base"
)

var (
	// ErrUnknownCommandType is returned for a request type with no command.
	ErrUnknownCommandType = errors.New("unknown command type")
	// ErrInvalidRequest is returned when a request fails validation.
	ErrInvalidRequest = errors.New("invalid command request")
)

const maxRunsOffBat = 6

// CommandRequest is the wire form of a scoring action. Only the fields the
// command type needs are read.
type CommandRequest struct {
	Type     CommandType `json:"type"`
	TeamID   uuid.UUID   `json:"team_id,omitempty"`
	PlayerID uuid.UUID   `json:"player_id,omitempty"`

	// Cricket
	BatterID      uuid.UUID            `json:"batter_id,omitempty"`
	BowlerID      uuid.UUID            `json:"bowler_id,omitempty"`
	Runs          int                  `json:"runs,omitempty"`
	IsBoundary    bool                 `json:"is_boundary,omitempty"`
	ExtrasType    models.ExtrasType    `json:"extras_type,omitempty"`
	ExtrasRuns    int                  `json:"extras_runs,omitempty"`
	DismissalType models.DismissalType `json:"dismissal_type,omitempty"`
	FielderID     *uuid.UUID           `json:"fielder_id,omitempty"`
	NextBowlerID  uuid.UUID            `json:"next_bowler_id,omitempty"`
	BattingTeamID uuid.UUID            `json:"batting_team_id,omitempty"`
	BowlingTeamID uuid.UUID            `json:"bowling_team_id,omitempty"`

	// Football
	Minute       int                `json:"minute,omitempty"`
	AssistID     *uuid.UUID         `json:"assist_id,omitempty"`
	GoalType     models.GoalType    `json:"goal_type,omitempty"`
	CardColor    models.CardColor   `json:"card_color,omitempty"`
	CardReason   string             `json:"card_reason,omitempty"`
	ShotOutcome  models.ShotOutcome `json:"shot_outcome,omitempty"`
	GoalkeeperID uuid.UUID          `json:"goalkeeper_id,omitempty"`
	ShooterID    *uuid.UUID         `json:"shooter_id,omitempty"`
	PlayerOutID  uuid.UUID          `json:"player_out_id,omitempty"`
	PlayerInID   uuid.UUID          `json:"player_in_id,omitempty"`
}

// Builder turns requests into commands bound to a match, using the factory
// for ids, timestamps and empty events.
type Builder struct {
	factory *base.Factory
}

// NewBuilder creates a Builder.
func NewBuilder(factory *base.Factory) *Builder {
	return &Builder{factory: factory}
}

// Build validates req against the match's sport and rules and returns the
// command. The command is not executed.
func (b *Builder) Build(match *models.Match, req CommandRequest) (Command, error) {
	switch req.Type {
	case CommandTypeStartInnings, CommandTypeEndInnings, CommandTypeAddBall,
		CommandTypeAddExtras, CommandTypeAddWicket, CommandTypeEndOver:
		cricket, ok := match.Cricket()
		if !ok {
			return nil, fmt.Errorf("%w: %s is a cricket command, match is %s", ErrInvalidRequest, req.Type, match.Sport)
		}
		return b.buildCricket(match, cricket, req)
	case CommandTypeAddGoal, CommandTypeAddCard, CommandTypeAddShot,
		CommandTypeAddSave, CommandTypeSubstitutePlayer:
		football, ok := match.Football()
		if !ok {
			return nil, fmt.Errorf("%w: %s is a football command, match is %s", ErrInvalidRequest, req.Type, match.Sport)
		}
		return b.buildFootball(match, football, req)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommandType, req.Type)
	}
}

func (b *Builder) buildCricket(match *models.Match, cricket *models.CricketMatch, req CommandRequest) (Command, error) {
	switch req.Type {
	case CommandTypeStartInnings:
		if err := validateStartInnings(match, cricket, req); err != nil {
			return nil, err
		}
		innings := b.factory.NewInnings(len(cricket.Innings)+1, req.BattingTeamID, req.BowlingTeamID, req.BowlerID)
		return NewStartInningsCommand(match, innings), nil

	case CommandTypeEndInnings:
		return NewEndInningsCommand(match), nil

	case CommandTypeEndOver:
		number := 1
		if over := cricket.CurrentOver(); over != nil {
			number = over.Number + 1
		}
		return NewEndOverCommand(match, b.factory.NewOver(number, req.NextBowlerID)), nil
	}

	if err := validateRuns(req.Runs); err != nil {
		return nil, err
	}
	ball := b.factory.NewBall()
	ball.BatterID = req.BatterID
	ball.BowlerID = req.BowlerID
	if ball.BowlerID == uuid.Nil {
		if over := cricket.CurrentOver(); over != nil {
			ball.BowlerID = over.BowlerID
		}
	}
	ball.RunsScored = req.Runs
	ball.IsBoundary = req.IsBoundary

	switch req.Type {
	case CommandTypeAddBall:
		if req.ExtrasType != models.ExtrasNone || req.ExtrasRuns != 0 {
			return nil, fmt.Errorf("%w: use %s for deliveries with extras", ErrInvalidRequest, CommandTypeAddExtras)
		}
		return NewAddBallCommand(match, ball), nil

	case CommandTypeAddExtras:
		if err := validateExtras(req.ExtrasType, req.ExtrasRuns); err != nil {
			return nil, err
		}
		event, err := b.cricketEvent(match, req)
		if err != nil {
			return nil, err
		}
		detail, err := newDetail[*models.ExtrasDetail](b.factory, match.Sport, models.DetailKindExtras)
		if err != nil {
			return nil, err
		}
		detail.Type = req.ExtrasType
		detail.Runs = req.ExtrasRuns
		return NewAddExtrasCommand(match, ball, event, detail), nil

	case CommandTypeAddWicket:
		if req.DismissalType == "" {
			return nil, fmt.Errorf("%w: dismissal type is required", ErrInvalidRequest)
		}
		if req.ExtrasType != models.ExtrasNone || req.ExtrasRuns != 0 {
			return nil, fmt.Errorf("%w: record extras with %s before the %s", ErrInvalidRequest, CommandTypeAddExtras, CommandTypeAddWicket)
		}
		event, err := b.cricketEvent(match, req)
		if err != nil {
			return nil, err
		}
		batterOut := req.PlayerID
		if batterOut == uuid.Nil {
			batterOut = req.BatterID
		}
		event.PlayerID = batterOut
		detail, err := newDetail[*models.WicketDetail](b.factory, match.Sport, models.DetailKindWicket)
		if err != nil {
			return nil, err
		}
		detail.DismissalType = req.DismissalType
		detail.BatterOutID = batterOut
		detail.BowlerID = ball.BowlerID
		detail.FielderID = req.FielderID
		return NewAddWicketCommand(match, ball, event, detail), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommandType, req.Type)
}

func (b *Builder) cricketEvent(match *models.Match, req CommandRequest) (*models.CricketEvent, error) {
	event, err := b.factory.NewCricketEvent(match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	event.TeamID = req.TeamID
	event.PlayerID = req.PlayerID
	if event.PlayerID == uuid.Nil {
		event.PlayerID = req.BatterID
	}
	return event, nil
}

func (b *Builder) buildFootball(match *models.Match, football *models.FootballMatch, req CommandRequest) (Command, error) {
	if req.TeamID == uuid.Nil {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidRequest)
	}
	if req.Minute < 0 {
		return nil, fmt.Errorf("%w: minute cannot be negative", ErrInvalidRequest)
	}
	event, err := b.factory.NewFootballEvent(match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	event.TeamID = req.TeamID
	event.PlayerID = req.PlayerID
	event.Minute = req.Minute

	switch req.Type {
	case CommandTypeAddGoal:
		if req.PlayerID == uuid.Nil {
			return nil, fmt.Errorf("%w: scorer is required", ErrInvalidRequest)
		}
		goalType := req.GoalType
		if goalType == "" {
			goalType = models.GoalTypeOpenPlay
		}
		detail, err := newDetail[*models.GoalDetail](b.factory, match.Sport, models.DetailKindGoal)
		if err != nil {
			return nil, err
		}
		detail.ScorerID = req.PlayerID
		detail.AssistID = req.AssistID
		detail.GoalType = goalType
		return NewAddGoalCommand(match, event, detail), nil

	case CommandTypeAddCard:
		switch req.CardColor {
		case models.CardYellow, models.CardSecondYellow, models.CardRed:
		default:
			return nil, fmt.Errorf("%w: invalid card color %q", ErrInvalidRequest, req.CardColor)
		}
		detail, err := newDetail[*models.CardDetail](b.factory, match.Sport, models.DetailKindCard)
		if err != nil {
			return nil, err
		}
		detail.Color = req.CardColor
		detail.Reason = req.CardReason
		return NewAddCardCommand(match, event, detail), nil

	case CommandTypeAddShot:
		if req.ShotOutcome == "" {
			return nil, fmt.Errorf("%w: shot outcome is required", ErrInvalidRequest)
		}
		detail, err := newDetail[*models.ShotDetail](b.factory, match.Sport, models.DetailKindShot)
		if err != nil {
			return nil, err
		}
		detail.Outcome = req.ShotOutcome
		return NewAddShotCommand(match, event, detail), nil

	case CommandTypeAddSave:
		keeper := req.GoalkeeperID
		if keeper == uuid.Nil {
			keeper = req.PlayerID
		}
		event.PlayerID = keeper
		detail, err := newDetail[*models.SaveDetail](b.factory, match.Sport, models.DetailKindSave)
		if err != nil {
			return nil, err
		}
		detail.GoalkeeperID = keeper
		detail.ShooterID = req.ShooterID
		return NewAddSaveCommand(match, event, detail), nil

	case CommandTypeSubstitutePlayer:
		if err := validateSubstitution(football, req); err != nil {
			return nil, err
		}
		event.PlayerID = req.PlayerInID
		detail, err := newDetail[*models.SubstitutionDetail](b.factory, match.Sport, models.DetailKindSubstitution)
		if err != nil {
			return nil, err
		}
		detail.PlayerOutID = req.PlayerOutID
		detail.PlayerInID = req.PlayerInID
		return NewSubstitutePlayerCommand(match, event, detail), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommandType, req.Type)
}

// newDetail asks the factory for an empty detail of kind, so a sport can only
// carry the details its plugin declares.
func newDetail[T models.Detail](factory *base.Factory, sport models.Sport, kind models.DetailKind) (T, error) {
	var zero T
	detail, err := factory.NewDetail(sport, kind)
	if err != nil {
		return zero, fmt.Errorf("failed to create %s detail: %w", kind, err)
	}
	typed, ok := detail.(T)
	if !ok {
		return zero, fmt.Errorf("factory returned %T for %s detail", detail, kind)
	}
	return typed, nil
}

func validateRuns(runs int) error {
	if runs < 0 || runs > maxRunsOffBat {
		return fmt.Errorf("%w: runs must be between 0 and %d, got %d", ErrInvalidRequest, maxRunsOffBat, runs)
	}
	return nil
}

func validateExtras(t models.ExtrasType, runs int) error {
	if t == models.ExtrasNone || !t.Valid() {
		return fmt.Errorf("%w: invalid extras type %q", ErrInvalidRequest, t)
	}
	if runs < 0 {
		return fmt.Errorf("%w: extras runs cannot be negative", ErrInvalidRequest)
	}
	if runs == 0 && (t == models.ExtrasWide || t == models.ExtrasNoBall) {
		return fmt.Errorf("%w: %s concedes at least one run", ErrInvalidRequest, t)
	}
	return nil
}

func validateStartInnings(match *models.Match, cricket *models.CricketMatch, req CommandRequest) error {
	if req.BattingTeamID == uuid.Nil || req.BowlingTeamID == uuid.Nil {
		return fmt.Errorf("%w: batting and bowling teams are required", ErrInvalidRequest)
	}
	if req.BattingTeamID == req.BowlingTeamID {
		return fmt.Errorf("%w: a team cannot bowl to itself", ErrInvalidRequest)
	}
	for _, id := range []uuid.UUID{req.BattingTeamID, req.BowlingTeamID} {
		if id != match.HomeTeamID && id != match.AwayTeamID {
			return fmt.Errorf("%w: team %s is not playing this match", ErrInvalidRequest, id)
		}
	}
	if limit := cricket.Config.MaxInnings; limit > 0 && len(cricket.Innings) >= limit {
		return fmt.Errorf("%w: all %d innings have been played", ErrInvalidRequest, limit)
	}
	return nil
}

func validateSubstitution(football *models.FootballMatch, req CommandRequest) error {
	if req.PlayerOutID == uuid.Nil || req.PlayerInID == uuid.Nil {
		return fmt.Errorf("%w: players in and out are required", ErrInvalidRequest)
	}
	if req.PlayerOutID == req.PlayerInID {
		return fmt.Errorf("%w: a player cannot replace themselves", ErrInvalidRequest)
	}
	lineup := football.Lineup(req.TeamID)
	if lineup == nil {
		return nil
	}
	if limit := football.Config.MaxSubstitutions; limit > 0 && lineup.SubstitutionsMade >= limit {
		return fmt.Errorf("%w: all %d substitutions have been used", ErrInvalidRequest, limit)
	}
	return nil
}
