package base

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mcdev12/scorekeeper/go/internal/models"
)

var (
	// ErrMissingSport is returned when no sport discriminant is given.
	ErrMissingSport = errors.New("sport is required")
	// ErrUnsupportedSport is returned when no plugin is registered for the sport.
	ErrUnsupportedSport = errors.New("unsupported sport")
	// ErrUnsupportedDetail is returned when a sport has no such event detail.
	ErrUnsupportedDetail = errors.New("unsupported detail kind")
)

// SportPlugin builds the empty, sport-shaped pieces of a match.
type SportPlugin interface {
	Sport() models.Sport
	// NewPayload returns the empty sport payload of a match.
	NewPayload(config models.SportConfig) (models.MatchPayload, error)
	// NewEvent returns an empty event of the sport's event type.
	NewEvent() models.MatchEvent
	// DetailKinds lists the detail kinds the sport's events can carry.
	DetailKinds() []models.DetailKind
	// NewConfig returns the sport's default rules.
	NewConfig() models.SportConfig
}

var (
	registry   = make(map[models.Sport]SportPlugin)
	registryMu sync.RWMutex
)

// RegisterPlugin adds a plugin implementation under its sport.
// It should be called in each sport plugin's init() function.
func RegisterPlugin(plugin SportPlugin) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	key := plugin.Sport()
	if key == "" {
		return fmt.Errorf("plugin sport cannot be empty")
	}
	if _, exists := registry[key]; exists {
		return fmt.Errorf("plugin already registered for sport %q", key)
	}
	registry[key] = plugin
	return nil
}

// GetPlugin retrieves a plugin by sport.
func GetPlugin(sport models.Sport) (SportPlugin, error) {
	if sport == "" {
		return nil, ErrMissingSport
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	plugin, exists := registry[sport]
	if !exists {
		return nil, fmt.Errorf("%w: no sport plugin registered for %q", ErrUnsupportedSport, sport)
	}
	return plugin, nil
}

// RegisteredSports lists the sports that have a plugin, sorted.
func RegisteredSports() []models.Sport {
	registryMu.RLock()
	defer registryMu.RUnlock()
	sports := make([]models.Sport, 0, len(registry))
	for sport := range registry {
		sports = append(sports, sport)
	}
	sort.Slice(sports, func(i, j int) bool { return sports[i] < sports[j] })
	return sports
}
