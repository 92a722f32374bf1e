package cricket

import (
	"fmt"

	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/sports/base"
)

// Default limited-overs rules.
const (
	DefaultOversPerInnings = 20
	DefaultBallsPerOver    = 6
	DefaultMaxInnings      = 2
	DefaultPlayersPerSide  = 11
)

// Plugin implements the SportPlugin interface for cricket.
type Plugin struct{}

// init registers the cricket plugin with the base registry.
func init() {
	if err := base.RegisterPlugin(&Plugin{}); err != nil {
		panic(fmt.Sprintf("Failed to register cricket plugin: %v", err))
	}
}

func (p *Plugin) Sport() models.Sport {
	return models.SportCricket
}

// NewPayload returns a cricket payload with no innings and an empty event log.
func (p *Plugin) NewPayload(config models.SportConfig) (models.MatchPayload, error) {
	cfg, ok := config.(*models.CricketConfig)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("cricket: expected cricket config, got %T", config)
	}
	return &models.CricketMatch{
		Config:  *cfg,
		Innings: []*models.Innings{},
		Events:  []*models.CricketEvent{},
	}, nil
}

func (p *Plugin) NewEvent() models.MatchEvent {
	return &models.CricketEvent{}
}

func (p *Plugin) DetailKinds() []models.DetailKind {
	return []models.DetailKind{models.DetailKindWicket, models.DetailKindExtras}
}

func (p *Plugin) NewConfig() models.SportConfig {
	return &models.CricketConfig{
		OversPerInnings: DefaultOversPerInnings,
		BallsPerOver:    DefaultBallsPerOver,
		MaxInnings:      DefaultMaxInnings,
		PlayersPerSide:  DefaultPlayersPerSide,
	}
}
