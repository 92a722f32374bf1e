package football

import (
	"fmt"

	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/sports/base"
)

const (
	DefaultHalfLengthMinutes = 45
	DefaultPlayersPerSide    = 11
	DefaultMaxSubstitutions  = 5
)

// Plugin implements the SportPlugin interface for football.
type Plugin struct{}

func init() {
	if err := base.RegisterPlugin(&Plugin{}); err != nil {
		panic(fmt.Sprintf("Failed to register football plugin: %v", err))
	}
}

func (p *Plugin) Sport() models.Sport {
	return models.SportFootball
}

// NewPayload returns a football payload at 0-0 with no lineups.
func (p *Plugin) NewPayload(config models.SportConfig) (models.MatchPayload, error) {
	cfg, ok := config.(*models.FootballConfig)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("football: expected football config, got %T", config)
	}
	return &models.FootballMatch{
		Config:  *cfg,
		Events:  []*models.FootballEvent{},
		Lineups: []*models.Lineup{},
	}, nil
}

func (p *Plugin) NewEvent() models.MatchEvent {
	return &models.FootballEvent{}
}

func (p *Plugin) DetailKinds() []models.DetailKind {
	return []models.DetailKind{
		models.DetailKindGoal,
		models.DetailKindCard,
		models.DetailKindShot,
		models.DetailKindSave,
		models.DetailKindSubstitution,
	}
}

func (p *Plugin) NewConfig() models.SportConfig {
	return &models.FootballConfig{
		HalfLengthMinutes: DefaultHalfLengthMinutes,
		PlayersPerSide:    DefaultPlayersPerSide,
		MaxSubstitutions:  DefaultMaxSubstitutions,
	}
}
