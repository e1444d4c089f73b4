package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicehall/internal/storage"
)

// SaveRepository persists suspended games as JSONB payloads keyed by game id.
type SaveRepository struct {
	db *pgxpool.Pool
}

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

// Put inserts or replaces the save for its game id.
//
// Precondition: s.GameID must be non-empty.
func (r *SaveRepository) Put(ctx context.Context, s storage.SaveGame) error {
	if s.GameID == "" {
		return fmt.Errorf("save is missing a game id")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding save: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO save_games (game_id, game_type, payload, game_start_time, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (game_id) DO UPDATE
		SET game_type = EXCLUDED.game_type,
		    payload = EXCLUDED.payload,
		    updated_at = NOW()`,
		s.GameID, s.GameType, payload, s.GameStartTime,
	)
	if err != nil {
		return fmt.Errorf("upserting save: %w", err)
	}
	return nil
}

// Get retrieves the save for id.
//
// Postcondition: Returns the save or storage.ErrSaveNotFound.
func (r *SaveRepository) Get(ctx context.Context, id string) (storage.SaveGame, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT payload FROM save_games WHERE game_id = $1`, id,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.SaveGame{}, storage.ErrSaveNotFound
		}
		return storage.SaveGame{}, fmt.Errorf("querying save: %w", err)
	}
	var s storage.SaveGame
	if err := json.Unmarshal(payload, &s); err != nil {
		return storage.SaveGame{}, fmt.Errorf("decoding save: %w", err)
	}
	return s, nil
}

// Delete removes the save for id. Deleting a missing save is not an error.
func (r *SaveRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM save_games WHERE game_id = $1`, id); err != nil {
		return fmt.Errorf("deleting save: %w", err)
	}
	return nil
}

// List returns all saves, most recently started first.
func (r *SaveRepository) List(ctx context.Context) ([]storage.SaveGame, error) {
	rows, err := r.db.Query(ctx,
		`SELECT payload FROM save_games ORDER BY game_start_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	defer rows.Close()

	var out []storage.SaveGame
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning save row: %w", err)
		}
		var s storage.SaveGame
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, fmt.Errorf("decoding save: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
