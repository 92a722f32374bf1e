package base

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/scorekeeper/go/internal/models"
)

// Factory creates aggregates, events and details for registered sports,
// stamping ids and timestamps from its clock.
type Factory struct {
	clock   clockwork.Clock
	enabled map[models.Sport]bool
}

// NewFactory creates a factory limited to the given sports. With no sports
// listed every registered plugin is available.
func NewFactory(clock clockwork.Clock, enabled ...models.Sport) *Factory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	f := &Factory{clock: clock}
	if len(enabled) > 0 {
		f.enabled = make(map[models.Sport]bool, len(enabled))
		for _, sport := range enabled {
			f.enabled[sport] = true
		}
	}
	return f
}

// Clock returns the clock used for timestamps.
func (f *Factory) Clock() clockwork.Clock {
	return f.clock
}

func (f *Factory) plugin(sport models.Sport) (SportPlugin, error) {
	if sport == "" {
		return nil, ErrMissingSport
	}
	if f.enabled != nil && !f.enabled[sport] {
		return nil, fmt.Errorf("%w: sport %q is not enabled", ErrUnsupportedSport, sport)
	}
	return GetPlugin(sport)
}

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewMatch creates an empty, scheduled match. A nil config uses the sport's defaults.
func (f *Factory) NewMatch(sport models.Sport, homeTeamID, awayTeamID uuid.UUID, config models.SportConfig) (*models.Match, error) {
	plugin, err := f.plugin(sport)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = plugin.NewConfig()
	}
	payload, err := plugin.NewPayload(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s payload: %w", sport, err)
	}

	now := f.clock.Now().UTC()
	return &models.Match{
		ID:         newID(),
		Sport:      sport,
		Status:     models.MatchStatusScheduled,
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
		CreatedAt:  now,
		UpdatedAt:  now,
		Payload:    payload,
	}, nil
}

// NewEvent creates an empty event of the sport's event type.
func (f *Factory) NewEvent(sport models.Sport, matchID uuid.UUID) (models.MatchEvent, error) {
	plugin, err := f.plugin(sport)
	if err != nil {
		return nil, err
	}

	event := plugin.NewEvent()
	now := f.clock.Now().UTC()
	switch e := event.(type) {
	case *models.CricketEvent:
		e.ID, e.MatchID, e.CreatedAt = newID(), matchID, now
	case *models.FootballEvent:
		e.ID, e.MatchID, e.CreatedAt = newID(), matchID, now
	default:
		return nil, fmt.Errorf("plugin %q returned unknown event type %T", sport, event)
	}
	return event, nil
}

// NewCricketEvent creates an empty cricket event.
func (f *Factory) NewCricketEvent(matchID uuid.UUID) (*models.CricketEvent, error) {
	event, err := f.NewEvent(models.SportCricket, matchID)
	if err != nil {
		return nil, err
	}
	e, ok := event.(*models.CricketEvent)
	if !ok {
		return nil, fmt.Errorf("cricket plugin returned %T", event)
	}
	return e, nil
}

// NewFootballEvent creates an empty football event.
func (f *Factory) NewFootballEvent(matchID uuid.UUID) (*models.FootballEvent, error) {
	event, err := f.NewEvent(models.SportFootball, matchID)
	if err != nil {
		return nil, err
	}
	e, ok := event.(*models.FootballEvent)
	if !ok {
		return nil, fmt.Errorf("football plugin returned %T", event)
	}
	return e, nil
}

// NewDetail creates an empty detail of kind, if the sport supports it.
func (f *Factory) NewDetail(sport models.Sport, kind models.DetailKind) (models.Detail, error) {
	plugin, err := f.plugin(sport)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(plugin.DetailKinds(), kind) {
		return nil, fmt.Errorf("%w: %s has no %q detail", ErrUnsupportedDetail, sport, kind)
	}
	return models.NewEmptyDetail(kind)
}

// NewConfig returns the default rules of a sport.
func (f *Factory) NewConfig(sport models.Sport) (models.SportConfig, error) {
	plugin, err := f.plugin(sport)
	if err != nil {
		return nil, err
	}
	return plugin.NewConfig(), nil
}

// NewBall creates a delivery with an id and timestamp.
func (f *Factory) NewBall() *models.Ball {
	return &models.Ball{
		ID:          newID(),
		DeliveredAt: f.clock.Now().UTC(),
	}
}

// NewOver creates an empty, open over.
func (f *Factory) NewOver(number int, bowlerID uuid.UUID) *models.Over {
	return &models.Over{
		ID:       newID(),
		Number:   number,
		BowlerID: bowlerID,
		Balls:    []*models.Ball{},
	}
}

// NewInnings creates an innings with its first over already open.
func (f *Factory) NewInnings(number int, battingTeamID, bowlingTeamID, openingBowlerID uuid.UUID) *models.Innings {
	return &models.Innings{
		ID:            newID(),
		Number:        number,
		BattingTeamID: battingTeamID,
		BowlingTeamID: bowlingTeamID,
		Overs:         []*models.Over{f.NewOver(1, openingBowlerID)},
	}
}
