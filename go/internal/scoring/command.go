package scoring

import (
	"github.com/google/uuid"
)

// CommandType names a scoring action. The sync layer uses it, together with
// the event id, to correlate a local mutation with its remote log entry.
type CommandType string

const (
	CommandTypeStartInnings     CommandType = "START_INNINGS"
	CommandTypeEndInnings       CommandType = "END_INNINGS"
	CommandTypeAddBall          CommandType = "ADD_BALL"
	CommandTypeAddExtras        CommandType = "ADD_EXTRAS"
	CommandTypeAddWicket        CommandType = "ADD_WICKET"
	CommandTypeEndOver          CommandType = "END_OVER"
	CommandTypeAddGoal          CommandType = "ADD_GOAL"
	CommandTypeAddCard          CommandType = "ADD_CARD"
	CommandTypeAddShot          CommandType = "ADD_SHOT"
	CommandTypeAddSave          CommandType = "ADD_SAVE"
	CommandTypeSubstitutePlayer CommandType = "SUBSTITUTE_PLAYER"
)

// Command is a single-use, reversible mutation of one match aggregate.
//
// Execute is not idempotent: calling it twice applies the change twice. The
// Manager guarantees it runs once per execute or redo. Undo applies the exact
// inverse of the most recent Execute.
type Command interface {
	Execute() Result
	Undo() Result
	// EventID returns the id of the log entry the command appends, if any.
	EventID() (uuid.UUID, bool)
	CommandType() CommandType
}

// ResultStatus says whether a command changed the aggregate.
type ResultStatus string

const (
	StatusApplied ResultStatus = "APPLIED"
	StatusSkipped ResultStatus = "SKIPPED"
)

// SkipReason explains why a command left the aggregate untouched.
type SkipReason string

const (
	ReasonSportMismatch     SkipReason = "SPORT_MISMATCH"
	ReasonNoCurrentInnings  SkipReason = "NO_CURRENT_INNINGS"
	ReasonNoCurrentOver     SkipReason = "NO_CURRENT_OVER"
	ReasonInningsInProgress SkipReason = "INNINGS_IN_PROGRESS"
	ReasonStateChanged      SkipReason = "STATE_CHANGED"
	ReasonUnknownTeam       SkipReason = "UNKNOWN_TEAM"
	ReasonPlayerNotInLineup SkipReason = "PLAYER_NOT_IN_LINEUP"
	ReasonPlayerOnPitch     SkipReason = "PLAYER_ALREADY_ON_PITCH"
	ReasonEventNotFound     SkipReason = "EVENT_NOT_FOUND"
	ReasonNothingToUndo     SkipReason = "NOTHING_TO_UNDO"
	ReasonNothingToRedo     SkipReason = "NOTHING_TO_REDO"
)

// Result is the outcome of Execute or Undo.
type Result struct {
	Status ResultStatus `json:"status"`
	Reason SkipReason   `json:"reason,omitempty"`
}

// Applied reports whether the aggregate changed.
func (r Result) Applied() bool {
	return r.Status == StatusApplied
}

func applied() Result {
	return Result{Status: StatusApplied}
}

func skipped(reason SkipReason) Result {
	return Result{Status: StatusSkipped, Reason: reason}
}
