package matchsync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/scorekeeper/go/internal/models"
)

// Action is what happened to a match.
type Action string

const (
	ActionMatchCreated    Action = "MATCH_CREATED"
	ActionCommandExecuted Action = "COMMAND_EXECUTED"
	ActionCommandUndone   Action = "COMMAND_UNDONE"
	ActionCommandRedone   Action = "COMMAND_REDONE"
	ActionStatusChanged   Action = "STATUS_CHANGED"
	ActionMatchEnded      Action = "MATCH_ENDED"
	ActionMatchPurged     Action = "MATCH_PURGED"
)

// SyncEvent carries the state of a match after one mutation. Sequence
// increases by one per mutation of the same match; consumers use it to
// discard stale or duplicate deliveries.
type SyncEvent struct {
	ID          uuid.UUID          `json:"id"`
	MatchID     uuid.UUID          `json:"match_id"`
	Sport       models.Sport       `json:"sport"`
	Status      models.MatchStatus `json:"status"`
	Sequence    uint64             `json:"sequence"`
	Action      Action             `json:"action"`
	CommandType string             `json:"command_type,omitempty"`
	EventID     *uuid.UUID         `json:"event_id,omitempty"`
	Event       json.RawMessage    `json:"event,omitempty"`
	Snapshot    json.RawMessage    `json:"snapshot"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Topic is the dotted routing suffix of the event, e.g. "cricket.command_executed".
func (e SyncEvent) Topic() string {
	return fmt.Sprintf("%s.%s", e.Sport, strings.ToLower(string(e.Action)))
}

// EventPublisher delivers sync events to one destination.
type EventPublisher interface {
	Name() string
	Publish(ctx context.Context, event SyncEvent) error
}

func envelope(event SyncEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal sync event: %w", err)
	}
	return data, nil
}
