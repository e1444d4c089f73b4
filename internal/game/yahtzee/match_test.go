package yahtzee_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dicehall/internal/game/player"
	"github.com/cory-johannsen/dicehall/internal/game/yahtzee"
	"github.com/cory-johannsen/dicehall/internal/storage"
	"github.com/cory-johannsen/dicehall/internal/storage/memory"
)

func twoPlayers() []player.Player {
	return []player.Player{
		{Name: "Alice", Color: "#e74c3c"},
		{Name: "Bob", Color: "#3498db"},
	}
}

// playTurn rolls once and scores the given category for the current player.
func playTurn(t *testing.T, m *yahtzee.Match, id yahtzee.CategoryID) int {
	t.Helper()
	turn := m.Turn()
	require.True(t, turn.Roll())
	require.True(t, turn.RollCompleted())
	s, ok := m.Choose(id)
	require.True(t, ok, "choosing %s", id)
	require.NoError(t, m.CompleteTurn(context.Background()))
	return s
}

// playFullGame drives every player through all 13 categories in table order.
// Every roll deals all sixes, so each turn is a five-of-a-kind.
func playFullGame(t *testing.T, m *yahtzee.Match) {
	t.Helper()
	for _, cat := range yahtzee.Categories {
		for range m.Players() {
			playTurn(t, m, cat.ID)
		}
	}
}

func allSixes(players, turns int) []int {
	return repeat(6, players*turns*yahtzee.NumDice)
}

func TestMatch_TurnsAlternate(t *testing.T) {
	src := newScript(allSixes(2, 2)...)
	m, err := yahtzee.NewMatch(twoPlayers(), src, storage.Stores{}, nil)
	require.NoError(t, err)
	require.Equal(t, 0, m.CurrentPlayerIndex())

	s := playTurn(t, m, yahtzee.Sixes)
	assert.Equal(t, 30, s)
	assert.Equal(t, 1, m.CurrentPlayerIndex())

	playTurn(t, m, yahtzee.Sixes)
	assert.Equal(t, 0, m.CurrentPlayerIndex())

	assert.True(t, m.Card(0).Filled(yahtzee.Sixes))
	assert.True(t, m.Card(1).Filled(yahtzee.Sixes))
}

func TestMatch_CompleteTurnRequiresScoredTurn(t *testing.T) {
	m, err := yahtzee.NewMatch(twoPlayers(), newScript(allSixes(1, 1)...), storage.Stores{}, nil)
	require.NoError(t, err)
	assert.Error(t, m.CompleteTurn(context.Background()))

	require.True(t, m.Turn().Roll())
	require.True(t, m.Turn().RollCompleted())
	assert.Error(t, m.CompleteTurn(context.Background()), "picking phase is not terminal")
}

func TestMatch_FullGameEndToEnd(t *testing.T) {
	stores := memory.NewStores()
	src := newScript(allSixes(2, 13)...)
	m, err := yahtzee.NewMatch(twoPlayers(), src, stores, nil)
	require.NoError(t, err)

	playFullGame(t, m)
	require.True(t, m.Finished())
	assert.Nil(t, m.Turn())

	// Identical rolls: both players tie and both win.
	winners := m.Winners()
	assert.Len(t, winners, 2)

	// All-sixes hands: upper 30, kinds 30 each, yahtzee 50, chance 30,
	// everything shaped (full house, straights) zero, plus 12 bonus
	// yahtzees at 100.
	want := 30 + 30 + 30 + 50 + 30 + 12*100
	assert.Equal(t, want, m.Card(0).Total())
	assert.Equal(t, 13, m.Card(0).YahtzeeCount())

	entries, err := stores.History.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, storage.GameTypeYahtzee, entries[0].GameType)
	require.Len(t, entries[0].Players, 2)
	assert.True(t, entries[0].Players[0].IsWinner)
	assert.Equal(t, want, entries[0].Players[0].FinalScore)

	alice, err := stores.Profiles.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.Stats.GamesPlayed)
	assert.Equal(t, 1, alice.Stats.Wins)
	assert.Equal(t, 13, alice.Stats.YahtzeeCount)
	assert.Equal(t, want, alice.Stats.BestScore)
}

// flakyProfiles wraps a ProfileStore so Get fails while Upsert still works.
type flakyProfiles struct {
	storage.ProfileStore
}

func (f flakyProfiles) Get(ctx context.Context, name string) (storage.Profile, error) {
	return storage.Profile{}, errors.New("connection reset")
}

func TestMatch_ProfileReadFailureLeavesStoredStatsIntact(t *testing.T) {
	stores := memory.NewStores()
	alice := storage.Profile{Name: "Alice", Color: "#e74c3c"}
	alice.Stats = storage.ProfileStats{GamesPlayed: 10, Wins: 4, TotalScore: 9000, BestScore: 1200, AvgScore: 900, YahtzeeCount: 2}
	require.NoError(t, stores.Profiles.Upsert(context.Background(), alice))

	inner := stores.Profiles
	stores.Profiles = flakyProfiles{ProfileStore: inner}

	src := newScript(allSixes(1, 13)...)
	m, err := yahtzee.NewMatch(twoPlayers()[:1], src, stores, nil)
	require.NoError(t, err)
	playFullGame(t, m)
	require.True(t, m.Finished())

	// The read failed, so the stored stats must not be rewritten from scratch.
	got, err := inner.Get(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, alice.Stats, got.Stats)
}

func TestMatch_SaveAndRestoreMidGame(t *testing.T) {
	stores := memory.NewStores()
	src := newScript(allSixes(2, 13)...)
	m, err := yahtzee.NewMatch(twoPlayers(), src, stores, nil)
	require.NoError(t, err)

	playTurn(t, m, yahtzee.Yahtzee)
	turn := m.Turn()
	require.True(t, turn.Roll())
	require.True(t, turn.RollCompleted())
	require.True(t, turn.ToggleHold(2))

	require.NoError(t, m.Save(context.Background()))
	save, err := stores.Saves.Get(context.Background(), m.ID())
	require.NoError(t, err)
	assert.Equal(t, storage.GameTypeYahtzee, save.GameType)

	restored, err := yahtzee.RestoreMatch(save, newScript(1), stores, nil)
	require.NoError(t, err)
	assert.Equal(t, m.ID(), restored.ID())
	assert.Equal(t, m.CurrentPlayerIndex(), restored.CurrentPlayerIndex())
	assert.Equal(t, m.Players(), restored.Players())
	assert.Equal(t, turn.Phase(), restored.Turn().Phase())
	assert.Equal(t, turn.Values(), restored.Turn().Values())
	assert.Equal(t, turn.Held(), restored.Turn().Held())
	assert.True(t, restored.Card(0).Filled(yahtzee.Yahtzee))
	assert.Equal(t, 1, restored.Card(0).YahtzeeCount())
	assert.Equal(t, m.Snapshot(), restored.Snapshot())
}

func TestMatch_FinishedMatchDeletesSave(t *testing.T) {
	stores := memory.NewStores()
	src := newScript(allSixes(1, 13)...)
	m, err := yahtzee.NewMatch(twoPlayers()[:1], src, stores, nil)
	require.NoError(t, err)

	require.NoError(t, m.Save(context.Background()))
	playFullGame(t, m)
	require.True(t, m.Finished())

	_, err = stores.Saves.Get(context.Background(), m.ID())
	assert.ErrorIs(t, err, storage.ErrSaveNotFound)
}

func TestMatch_RestoreRejectsWrongGameType(t *testing.T) {
	_, err := yahtzee.RestoreMatch(storage.SaveGame{
		GameID:   "x",
		GameType: storage.GameTypeFarkle,
	}, newScript(1), storage.Stores{}, nil)
	assert.Error(t, err)
}

func TestMatch_RequiresPlayers(t *testing.T) {
	_, err := yahtzee.NewMatch(nil, newScript(1), storage.Stores{}, nil)
	assert.Error(t, err)
	_, err = yahtzee.NewMatch([]player.Player{{Name: " "}}, newScript(1), storage.Stores{}, nil)
	assert.Error(t, err)
}
