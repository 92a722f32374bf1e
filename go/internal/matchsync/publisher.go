package matchsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/scorekeeper/go/internal/store"
)

// LogPublisher writes each event to the log. Used in development and when
// no broker is configured.
type LogPublisher struct {
	level zerolog.Level
}

func NewLogPublisher(level zerolog.Level) *LogPublisher {
	return &LogPublisher{level: level}
}

func (p *LogPublisher) Name() string { return "log" }

func (p *LogPublisher) Publish(ctx context.Context, event SyncEvent) error {
	e := log.WithLevel(p.level).
		Str("match_id", event.MatchID.String()).
		Uint64("sequence", event.Sequence).
		Str("action", string(event.Action)).
		Str("status", string(event.Status))
	if event.CommandType != "" {
		e = e.Str("command", event.CommandType)
	}
	if event.EventID != nil {
		e = e.Str("event_id", event.EventID.String())
	}
	e.Int("snapshot_bytes", len(event.Snapshot)).Msg("match synced")
	return nil
}

// SnapshotPublisher persists the snapshot carried by each event and deletes
// it when the match is purged.
type SnapshotPublisher struct {
	store store.MatchStore
}

func NewSnapshotPublisher(s store.MatchStore) *SnapshotPublisher {
	return &SnapshotPublisher{store: s}
}

func (p *SnapshotPublisher) Name() string { return "snapshot" }

func (p *SnapshotPublisher) Publish(ctx context.Context, event SyncEvent) error {
	if event.Action == ActionMatchPurged {
		if err := p.store.Delete(ctx, event.MatchID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete snapshot: %w", err)
		}
		return nil
	}
	if len(event.Snapshot) == 0 {
		return nil
	}
	err := p.store.Save(ctx, store.Snapshot{
		MatchID:   event.MatchID,
		Sport:     event.Sport,
		Status:    event.Status,
		Sequence:  event.Sequence,
		Data:      event.Snapshot,
		UpdatedAt: event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
