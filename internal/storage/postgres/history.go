package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicehall/internal/storage"
)

// HistoryRepository persists finished matches, retaining the most recent
// storage.HistoryCap entries.
type HistoryRepository struct {
	db *pgxpool.Pool
}

// NewHistoryRepository creates a HistoryRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts a finished match and trims entries past the retention cap.
//
// Precondition: e.ID must be non-empty.
func (r *HistoryRepository) Append(ctx context.Context, e storage.HistoryEntry) error {
	if e.ID == "" {
		return fmt.Errorf("history entry is missing an id")
	}
	players, err := json.Marshal(e.Players)
	if err != nil {
		return fmt.Errorf("encoding history players: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning history transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO match_history (id, date, game_type, duration_ms, players)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Date, e.GameType, e.Duration.Milliseconds(), players,
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM match_history
		WHERE id NOT IN (
			SELECT id FROM match_history ORDER BY date DESC LIMIT $1
		)`,
		storage.HistoryCap,
	)
	if err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}

	return tx.Commit(ctx)
}

// List returns the retained entries, most recent first.
func (r *HistoryRepository) List(ctx context.Context) ([]storage.HistoryEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, date, game_type, duration_ms, players
		FROM match_history ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var out []storage.HistoryEntry
	for rows.Next() {
		var e storage.HistoryEntry
		var durationMs int64
		var players []byte
		if err := rows.Scan(&e.ID, &e.Date, &e.GameType, &durationMs, &players); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		if err := json.Unmarshal(players, &e.Players); err != nil {
			return nil, fmt.Errorf("decoding history players: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
