package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicehall/internal/game/player"
	"github.com/cory-johannsen/dicehall/internal/storage"
)

// ProfileRepository persists player profiles keyed case-insensitively by
// name.
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a ProfileRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `name, color, games_played, wins, avg_score, best_score, total_score, yahtzee_count`

func scanProfile(row pgx.Row) (storage.Profile, error) {
	var p storage.Profile
	err := row.Scan(
		&p.Name, &p.Color,
		&p.Stats.GamesPlayed, &p.Stats.Wins, &p.Stats.AvgScore,
		&p.Stats.BestScore, &p.Stats.TotalScore, &p.Stats.YahtzeeCount,
	)
	return p, err
}

// Get retrieves the profile for name, folding case and whitespace.
//
// Postcondition: Returns the profile or storage.ErrProfileNotFound.
func (r *ProfileRepository) Get(ctx context.Context, name string) (storage.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM player_profiles WHERE name_key = $1`,
		player.Key(name),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Profile{}, storage.ErrProfileNotFound
		}
		return storage.Profile{}, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// Upsert inserts or replaces the profile keyed by the folded name.
//
// Precondition: p.Name must not be blank.
func (r *ProfileRepository) Upsert(ctx context.Context, p storage.Profile) error {
	key := player.Key(p.Name)
	if key == "" {
		return fmt.Errorf("profile is missing a name")
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO player_profiles
			(name_key, name, color, games_played, wins, avg_score, best_score, total_score, yahtzee_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (name_key) DO UPDATE
		SET name = EXCLUDED.name,
		    color = EXCLUDED.color,
		    games_played = EXCLUDED.games_played,
		    wins = EXCLUDED.wins,
		    avg_score = EXCLUDED.avg_score,
		    best_score = EXCLUDED.best_score,
		    total_score = EXCLUDED.total_score,
		    yahtzee_count = EXCLUDED.yahtzee_count`,
		key, p.Name, p.Color,
		p.Stats.GamesPlayed, p.Stats.Wins, p.Stats.AvgScore,
		p.Stats.BestScore, p.Stats.TotalScore, p.Stats.YahtzeeCount,
	)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

// List returns all profiles sorted by name.
func (r *ProfileRepository) List(ctx context.Context) ([]storage.Profile, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+profileColumns+` FROM player_profiles ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var out []storage.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
