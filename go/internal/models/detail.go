package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// DetailKind discriminates the Detail variants. It doubles as the event category.
type DetailKind string

const (
	DetailKindWicket       DetailKind = "WICKET"
	DetailKindExtras       DetailKind = "EXTRAS"
	DetailKindGoal         DetailKind = "GOAL"
	DetailKindCard         DetailKind = "CARD"
	DetailKindShot         DetailKind = "SHOT"
	DetailKindSave         DetailKind = "SAVE"
	DetailKindSubstitution DetailKind = "SUBSTITUTION"
)

// Detail is the variant payload attached to an event. The set of
// implementations is closed: callers switch on the concrete type.
type Detail interface {
	Kind() DetailKind
	isDetail()
}

// DismissalType is how a batter got out.
type DismissalType string

const (
	DismissalBowled         DismissalType = "BOWLED"
	DismissalCaught         DismissalType = "CAUGHT"
	DismissalLBW            DismissalType = "LBW"
	DismissalRunOut         DismissalType = "RUN_OUT"
	DismissalStumped        DismissalType = "STUMPED"
	DismissalHitWicket      DismissalType = "HIT_WICKET"
	DismissalRetiredOut     DismissalType = "RETIRED_OUT"
	DismissalObstructing    DismissalType = "OBSTRUCTING_THE_FIELD"
	DismissalTimedOut       DismissalType = "TIMED_OUT"
	DismissalHandledTheBall DismissalType = "HANDLED_THE_BALL"
)

// WicketDetail describes a dismissal.
type WicketDetail struct {
	DismissalType DismissalType `json:"dismissal_type"`
	BatterOutID   uuid.UUID     `json:"batter_out_id"`
	BowlerID      uuid.UUID     `json:"bowler_id"`
	FielderID     *uuid.UUID    `json:"fielder_id,omitempty"`
}

// ExtrasDetail describes runs conceded as extras.
type ExtrasDetail struct {
	Type ExtrasType `json:"type"`
	Runs int        `json:"runs"`
}

// GoalType is how a goal was scored.
type GoalType string

const (
	GoalTypeOpenPlay GoalType = "OPEN_PLAY"
	GoalTypePenalty  GoalType = "PENALTY"
	GoalTypeFreeKick GoalType = "FREE_KICK"
	GoalTypeHeader   GoalType = "HEADER"
	GoalTypeOwnGoal  GoalType = "OWN_GOAL"
)

// GoalDetail describes a goal.
type GoalDetail struct {
	ScorerID uuid.UUID  `json:"scorer_id"`
	AssistID *uuid.UUID `json:"assist_id,omitempty"`
	GoalType GoalType   `json:"goal_type"`
}

// CardColor is the card shown.
type CardColor string

const (
	CardYellow       CardColor = "YELLOW"
	CardSecondYellow CardColor = "SECOND_YELLOW"
	CardRed          CardColor = "RED"
)

// CardDetail describes a booking.
type CardDetail struct {
	Color  CardColor `json:"color"`
	Reason string    `json:"reason,omitempty"`
}

// ShotOutcome is where a shot ended up.
type ShotOutcome string

const (
	ShotOnTarget  ShotOutcome = "ON_TARGET"
	ShotOffTarget ShotOutcome = "OFF_TARGET"
	ShotBlocked   ShotOutcome = "BLOCKED"
	ShotWoodwork  ShotOutcome = "WOODWORK"
)

// ShotDetail describes an attempt on goal.
type ShotDetail struct {
	Outcome ShotOutcome `json:"outcome"`
}

// SaveDetail describes a goalkeeper save.
type SaveDetail struct {
	GoalkeeperID uuid.UUID  `json:"goalkeeper_id"`
	ShooterID    *uuid.UUID `json:"shooter_id,omitempty"`
}

// SubstitutionDetail describes a player change.
type SubstitutionDetail struct {
	PlayerOutID uuid.UUID `json:"player_out_id"`
	PlayerInID  uuid.UUID `json:"player_in_id"`
	Reason      string    `json:"reason,omitempty"`
}

func (*WicketDetail) Kind() DetailKind       { return DetailKindWicket }
func (*ExtrasDetail) Kind() DetailKind       { return DetailKindExtras }
func (*GoalDetail) Kind() DetailKind         { return DetailKindGoal }
func (*CardDetail) Kind() DetailKind         { return DetailKindCard }
func (*ShotDetail) Kind() DetailKind         { return DetailKindShot }
func (*SaveDetail) Kind() DetailKind         { return DetailKindSave }
func (*SubstitutionDetail) Kind() DetailKind { return DetailKindSubstitution }

func (*WicketDetail) isDetail()       {}
func (*ExtrasDetail) isDetail()       {}
func (*GoalDetail) isDetail()         {}
func (*CardDetail) isDetail()         {}
func (*ShotDetail) isDetail()         {}
func (*SaveDetail) isDetail()         {}
func (*SubstitutionDetail) isDetail() {}

// NewEmptyDetail returns a zero-valued detail of the given kind.
func NewEmptyDetail(kind DetailKind) (Detail, error) {
	switch kind {
	case DetailKindWicket:
		return &WicketDetail{}, nil
	case DetailKindExtras:
		return &ExtrasDetail{}, nil
	case DetailKindGoal:
		return &GoalDetail{}, nil
	case DetailKindCard:
		return &CardDetail{}, nil
	case DetailKindShot:
		return &ShotDetail{}, nil
	case DetailKindSave:
		return &SaveDetail{}, nil
	case DetailKindSubstitution:
		return &SubstitutionDetail{}, nil
	default:
		return nil, fmt.Errorf("unknown detail kind %q", kind)
	}
}

// DecodeDetail decodes raw into the variant named by kind.
func DecodeDetail(kind DetailKind, raw json.RawMessage) (Detail, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	detail, err := NewEmptyDetail(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, detail); err != nil {
		return nil, fmt.Errorf("failed to decode %s detail: %w", kind, err)
	}
	return detail, nil
}
