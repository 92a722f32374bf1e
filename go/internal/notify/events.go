package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/scorekeeper/go/internal/models"
)

// Notification is what subscribers of a match receive after it changes.
type Notification struct {
	ID        string          `json:"id"`        // Notification UUID
	MatchID   string          `json:"match_id"`  // Match UUID
	Type      Type            `json:"type"`      // Notification type
	Sequence  uint64          `json:"sequence"`  // Mutation number within the match
	Timestamp time.Time       `json:"timestamp"` // Creation time
	Data      json.RawMessage `json:"data"`      // Type-specific payload
}

// Type represents the type of match notification
type Type string

const (
	TypeEventAdded         Type = "EventAdded"
	TypeEventRemoved       Type = "EventRemoved"
	TypeMatchUpdated       Type = "MatchUpdated"
	TypeMatchStatusChanged Type = "MatchStatusChanged"
)

// EventAddedPayload is sent when a command appends an event to the log.
type EventAddedPayload struct {
	CommandType string          `json:"command_type"`
	Event       json.RawMessage `json:"event"`
}

// EventRemovedPayload is sent when undo takes an event out of the log.
type EventRemovedPayload struct {
	CommandType string    `json:"command_type"`
	EventID     uuid.UUID `json:"event_id"`
}

// MatchUpdatedPayload carries the full match after any mutation.
type MatchUpdatedPayload struct {
	Match json.RawMessage `json:"match"`
}

// MatchStatusChangedPayload is sent on a lifecycle transition.
type MatchStatusChangedPayload struct {
	From models.MatchStatus `json:"from"`
	To   models.MatchStatus `json:"to"`
}

// New builds a notification with payload encoded as its data.
func New(matchID uuid.UUID, t Type, sequence uint64, at time.Time, payload interface{}) (Notification, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Notification{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Notification{
		ID:        uuid.NewString(),
		MatchID:   matchID.String(),
		Type:      t,
		Sequence:  sequence,
		Timestamp: at,
		Data:      data,
	}, nil
}

// ParsePayload decodes the notification data into its payload struct.
func ParsePayload(n Notification) (interface{}, error) {
	switch n.Type {
	case TypeEventAdded:
		var payload EventAddedPayload
		if err := json.Unmarshal(n.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case TypeEventRemoved:
		var payload EventRemovedPayload
		if err := json.Unmarshal(n.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case TypeMatchUpdated:
		var payload MatchUpdatedPayload
		if err := json.Unmarshal(n.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case TypeMatchStatusChanged:
		var payload MatchStatusChangedPayload
		if err := json.Unmarshal(n.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, fmt.Errorf("unknown notification type: %s", n.Type)
	}
}
