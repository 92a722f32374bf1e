package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/scorekeeper/go/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_snapshots (
    match_id   UUID PRIMARY KEY,
    sport      TEXT NOT NULL,
    status     TEXT NOT NULL,
    sequence   BIGINT NOT NULL,
    data       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

const upsertSnapshot = `
INSERT INTO match_snapshots (match_id, sport, status, sequence, data, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (match_id) DO UPDATE
SET status = EXCLUDED.status,
    sequence = EXCLUDED.sequence,
    data = EXCLUDED.data,
    updated_at = EXCLUDED.updated_at
WHERE match_snapshots.sequence < EXCLUDED.sequence`

const selectSnapshot = `
SELECT sport, status, sequence, data, updated_at
FROM match_snapshots
WHERE match_id = $1`

// PostgresStore keeps snapshots in a JSONB column, one row per match.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create match_snapshots: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, snapshot Snapshot) error {
	tag, err := s.pool.Exec(ctx, upsertSnapshot,
		snapshot.MatchID,
		string(snapshot.Sport),
		string(snapshot.Status),
		int64(snapshot.Sequence),
		[]byte(snapshot.Data),
		snapshot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Debug().
			Str("match_id", snapshot.MatchID.String()).
			Uint64("sequence", snapshot.Sequence).
			Msg("stale snapshot ignored")
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, matchID uuid.UUID) (*Snapshot, error) {
	var (
		snapshot Snapshot
		sport    string
		status   string
		sequence int64
		data     []byte
	)
	err := s.pool.QueryRow(ctx, selectSnapshot, matchID).Scan(
		&sport, &status, &sequence, &data, &snapshot.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	snapshot.MatchID = matchID
	snapshot.Sport = models.Sport(sport)
	snapshot.Status = models.MatchStatus(status)
	snapshot.Sequence = uint64(sequence)
	snapshot.Data = data
	return &snapshot, nil
}

func (s *PostgresStore) Delete(ctx context.Context, matchID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM match_snapshots WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
