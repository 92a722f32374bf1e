package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/scorekeeper/go/internal/models"
)

// ErrNotFound is returned when no snapshot exists for a match.
var ErrNotFound = errors.New("match snapshot not found")

// Snapshot is the serialized state of a match after a numbered mutation.
type Snapshot struct {
	MatchID   uuid.UUID          `json:"match_id"`
	Sport     models.Sport       `json:"sport"`
	Status    models.MatchStatus `json:"status"`
	Sequence  uint64             `json:"sequence"`
	Data      json.RawMessage    `json:"data"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Match decodes the snapshot back into an aggregate.
func (s Snapshot) Match() (*models.Match, error) {
	var match models.Match
	if err := json.Unmarshal(s.Data, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// MatchStore persists the latest snapshot of each match. A Save with a
// sequence at or below the stored one is ignored, so out-of-order writes
// never roll a match back.
type MatchStore interface {
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context, matchID uuid.UUID) (*Snapshot, error)
	Delete(ctx context.Context, matchID uuid.UUID) error
}
