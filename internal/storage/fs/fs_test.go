package fs_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicehall/internal/storage"
	"github.com/cory-johannsen/dicehall/internal/storage/fs"
)

func TestSaves_RoundTrip(t *testing.T) {
	ctx := context.Background()
	saves := fs.NewSaves(t.TempDir())

	save := storage.SaveGame{
		GameID:   "abc-123",
		GameType: storage.GameTypeFarkle,
		Players: []storage.SavedPlayer{
			{Name: "Alice", Color: "#e74c3c", TotalScore: 2500},
		},
		CurrentPlayerIndex: 0,
		Farkle: &storage.FarkleState{
			TargetScore: 10000,
			TriggeredBy: -1,
		},
		GameStartTime: time.Now().Round(time.Second).UTC(),
	}
	require.NoError(t, saves.Put(ctx, save))

	got, err := saves.Get(ctx, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, save, got)

	_, err = saves.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrSaveNotFound)
}

func TestSaves_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	saves := fs.NewSaves(t.TempDir())

	base := time.Now().Round(time.Second).UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, saves.Put(ctx, storage.SaveGame{
			GameID:        fmt.Sprintf("g%d", i),
			GameType:      storage.GameTypeYahtzee,
			GameStartTime: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	out, err := saves.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "g2", out[0].GameID, "most recently started first")

	require.NoError(t, saves.Delete(ctx, "g1"))
	require.NoError(t, saves.Delete(ctx, "g1"), "deleting a missing save is not an error")
	out, err = saves.List(ctx)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestSaves_ListOnEmptyRoot(t *testing.T) {
	saves := fs.NewSaves(filepath.Join(t.TempDir(), "never-created"))
	out, err := saves.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSaves_ListSkipsCorruptFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	saves := fs.NewSaves(dir)
	require.NoError(t, saves.Put(ctx, storage.SaveGame{GameID: "good", GameType: storage.GameTypeFarkle}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "saves", "bad.json"), []byte("{not json"), 0o644))

	out, err := saves.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "good", out[0].GameID)
}

func TestSaves_RejectsPathEscapingIDs(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	saves := fs.NewSaves(dataDir)

	for _, id := range []string{"", "..", "../escape", `..\escape`, "a/b"} {
		assert.Error(t, saves.Put(ctx, storage.SaveGame{GameID: id}), "id %q", id)
		_, err := saves.Get(ctx, id)
		assert.ErrorIs(t, err, storage.ErrSaveNotFound, "id %q", id)
		assert.NoError(t, saves.Delete(ctx, id), "id %q", id)
	}

	// Nothing may have been written outside the saves directory.
	ents, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, ents)
}

func TestProfiles_RejectsPathEscapingNames(t *testing.T) {
	ctx := context.Background()
	profiles := fs.NewProfiles(t.TempDir())
	assert.Error(t, profiles.Upsert(ctx, storage.Profile{Name: "../Mallory"}))
	_, err := profiles.Get(ctx, "../Mallory")
	assert.ErrorIs(t, err, storage.ErrProfileNotFound)
}

func TestHistory_AppendAndCap(t *testing.T) {
	ctx := context.Background()
	history := fs.NewHistory(t.TempDir())

	for i := 0; i < storage.HistoryCap+5; i++ {
		require.NoError(t, history.Append(ctx, storage.HistoryEntry{
			ID:       fmt.Sprintf("e%d", i),
			GameType: storage.GameTypeFarkle,
			Players: []storage.HistoryPlayer{
				{Name: "Alice", FinalScore: 10000 + i, IsWinner: true},
			},
		}))
	}

	out, err := history.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, storage.HistoryCap)
	assert.Equal(t, fmt.Sprintf("e%d", storage.HistoryCap+4), out[0].ID, "most recent first")
	assert.Equal(t, fmt.Sprintf("e%d", 5), out[storage.HistoryCap-1].ID, "oldest entries dropped")
}

func TestHistory_ListOnEmptyRoot(t *testing.T) {
	history := fs.NewHistory(t.TempDir())
	out, err := history.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestProfiles_UpsertGetAndFolding(t *testing.T) {
	ctx := context.Background()
	profiles := fs.NewProfiles(t.TempDir())

	p := storage.Profile{Name: "Alice", Color: "#e74c3c"}
	p.ApplyResult(10500, true, 0)
	require.NoError(t, profiles.Upsert(ctx, p))

	got, err := profiles.Get(ctx, " ALICE ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, 10500, got.Stats.BestScore)

	// Upserting under a differently-cased name replaces the same record.
	p.Name = "alice"
	p.ApplyResult(8000, false, 0)
	require.NoError(t, profiles.Upsert(ctx, p))
	got, err = profiles.Get(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stats.GamesPlayed)

	_, err = profiles.Get(ctx, "Bob")
	assert.ErrorIs(t, err, storage.ErrProfileNotFound)
}

func TestProfiles_ListSortedByName(t *testing.T) {
	ctx := context.Background()
	profiles := fs.NewProfiles(t.TempDir())
	for _, name := range []string{"Cara", "Alice", "Bob"} {
		require.NoError(t, profiles.Upsert(ctx, storage.Profile{Name: name}))
	}

	out, err := profiles.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"Alice", "Bob", "Cara"}, []string{out[0].Name, out[1].Name, out[2].Name})
}

func TestProfiles_RejectsBlankName(t *testing.T) {
	profiles := fs.NewProfiles(t.TempDir())
	assert.Error(t, profiles.Upsert(context.Background(), storage.Profile{Name: "   "}))
}
