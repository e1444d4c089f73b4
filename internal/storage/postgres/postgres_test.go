package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicehall/internal/storage"
	"github.com/cory-johannsen/dicehall/internal/storage/postgres"
	"github.com/cory-johannsen/dicehall/internal/testutil"
)

func testSave(id string, startedAt time.Time) storage.SaveGame {
	return storage.SaveGame{
		GameID:   id,
		GameType: storage.GameTypeFarkle,
		Players: []storage.SavedPlayer{
			{Name: "Alice", Color: "#e74c3c", TotalScore: 3000},
			{Name: "Bob", Color: "#3498db", TotalScore: 1500},
		},
		CurrentPlayerIndex: 1,
		Farkle: &storage.FarkleState{
			TargetScore: 10000,
			TriggeredBy: -1,
			Turn: storage.FarkleTurnState{
				Phase:       "selecting",
				TurnScore:   300,
				RollCount:   1,
				StraightDie: -1,
			},
		},
		GameStartTime: startedAt,
	}
}

func TestSaveRepository_PutGetDelete(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewSaveRepository(pool)
	ctx := context.Background()

	save := testSave("game-1", time.Now().Round(time.Millisecond).UTC())
	require.NoError(t, repo.Put(ctx, save))

	got, err := repo.Get(ctx, "game-1")
	require.NoError(t, err)
	assert.Equal(t, save, got)

	// Put replaces the existing payload.
	save.CurrentPlayerIndex = 0
	save.Players[0].TotalScore = 4500
	require.NoError(t, repo.Put(ctx, save))
	got, err = repo.Get(ctx, "game-1")
	require.NoError(t, err)
	assert.Equal(t, 4500, got.Players[0].TotalScore)

	require.NoError(t, repo.Delete(ctx, "game-1"))
	require.NoError(t, repo.Delete(ctx, "game-1"), "deleting a missing save is not an error")
	_, err = repo.Get(ctx, "game-1")
	assert.ErrorIs(t, err, storage.ErrSaveNotFound)
}

func TestSaveRepository_ListMostRecentFirst(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewSaveRepository(pool)
	ctx := context.Background()

	base := time.Now().Round(time.Millisecond).UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Put(ctx, testSave(
			fmt.Sprintf("game-%d", i),
			base.Add(time.Duration(i)*time.Minute),
		)))
	}

	out, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "game-2", out[0].GameID)
	assert.Equal(t, "game-0", out[2].GameID)
}

func TestSaveRepository_RejectsEmptyID(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewSaveRepository(pool)
	assert.Error(t, repo.Put(context.Background(), storage.SaveGame{}))
}

func TestHistoryRepository_AppendListAndTrim(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewHistoryRepository(pool)
	ctx := context.Background()

	base := time.Now().Round(time.Millisecond).UTC()
	for i := 0; i < storage.HistoryCap+3; i++ {
		require.NoError(t, repo.Append(ctx, storage.HistoryEntry{
			ID:       fmt.Sprintf("entry-%d", i),
			Date:     base.Add(time.Duration(i) * time.Minute),
			GameType: storage.GameTypeYahtzee,
			Duration: 42 * time.Minute,
			Players: []storage.HistoryPlayer{
				{Name: "Alice", FinalScore: 250 + i, IsWinner: true},
			},
		}))
	}

	out, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, storage.HistoryCap, "old entries are trimmed")
	assert.Equal(t, fmt.Sprintf("entry-%d", storage.HistoryCap+2), out[0].ID)
	assert.Equal(t, 42*time.Minute, out[0].Duration)
	require.Len(t, out[0].Players, 1)
	assert.True(t, out[0].Players[0].IsWinner)
}

func TestProfileRepository_UpsertGetList(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewProfileRepository(pool)
	ctx := context.Background()

	p := storage.Profile{Name: "Alice", Color: "#e74c3c"}
	p.ApplyResult(10500, true, 0)
	require.NoError(t, repo.Upsert(ctx, p))

	// Lookup folds case and whitespace.
	got, err := repo.Get(ctx, "  ALICE ")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	// A second result accumulates under the same key.
	p.ApplyResult(8000, false, 2)
	require.NoError(t, repo.Upsert(ctx, p))
	got, err = repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stats.GamesPlayed)
	assert.Equal(t, 1, got.Stats.Wins)
	assert.Equal(t, 10500, got.Stats.BestScore)
	assert.Equal(t, float64(9250), got.Stats.AvgScore)
	assert.Equal(t, 2, got.Stats.YahtzeeCount)

	_, err = repo.Get(ctx, "Bob")
	assert.ErrorIs(t, err, storage.ErrProfileNotFound)

	require.NoError(t, repo.Upsert(ctx, storage.Profile{Name: "Bob"}))
	out, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Alice", out[0].Name)
	assert.Equal(t, "Bob", out[1].Name)
}

func TestProfileRepository_RejectsBlankName(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewProfileRepository(pool)
	assert.Error(t, repo.Upsert(context.Background(), storage.Profile{Name: "  "}))
}
