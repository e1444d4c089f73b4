// Package storage defines the persisted record shapes for suspended games,
// match history, and player profiles, plus the store interfaces the game
// controllers are constructed with. Implementations live in the postgres and
// fs subpackages.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cory-johannsen/dicehall/internal/game/dice"
)

// HistoryCap is the maximum number of match-history entries retained.
// Appending beyond the cap evicts the oldest entries.
const HistoryCap = 50

// Game type labels used in save and history records.
const (
	GameTypeFarkle  = "farkle"
	GameTypeYahtzee = "yahtzee"
)

// ErrSaveNotFound is returned when a save-game lookup yields no record.
var ErrSaveNotFound = errors.New("save game not found")

// ErrProfileNotFound is returned when a profile lookup yields no record.
var ErrProfileNotFound = errors.New("player profile not found")

// SavedPlayer is one player's slice of a suspended game.
type SavedPlayer struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	// TotalScore is the Farkle banked total. Unused for Yahtzee.
	TotalScore int `json:"totalScore,omitempty"`
	// Categories maps Yahtzee category ids to their locked-in scores.
	// Unused for Farkle.
	Categories map[string]int `json:"categories,omitempty"`
	// YahtzeeCount is the number of five-of-a-kinds scored this game.
	YahtzeeCount int `json:"yahtzeeCount,omitempty"`
}

// FarkleState holds the Farkle-specific fields of a save: the suspended turn
// plus the final-round bookkeeping.
type FarkleState struct {
	Turn        FarkleTurnState `json:"turn"`
	TargetScore int             `json:"targetScore"`
	FinalRound  bool            `json:"finalRound"`
	TriggeredBy int             `json:"triggeredBy"`
	FinalTaken  []int           `json:"finalTaken"`
}

// FarkleTurnState mirrors the turn state machine's snapshot. The dice tray
// snapshot lives in SaveGame.Dice.
type FarkleTurnState struct {
	Phase           string `json:"phase"`
	TurnScore       int    `json:"turnScore"`
	RollCount       int    `json:"rollCount"`
	SetAside        []int  `json:"setAside"`
	Selected        []int  `json:"selected"`
	StraightMissing int    `json:"straightMissing,omitempty"`
	StraightDie     int    `json:"straightDie,omitempty"`
}

// YahtzeeState holds the Yahtzee-specific fields of a save. Scorecards live
// on the SavedPlayers; only the in-flight turn phase is recorded here.
type YahtzeeState struct {
	Phase string `json:"phase"`
}

// SaveGame is one suspended game, keyed by GameID.
type SaveGame struct {
	GameID             string        `json:"gameId"`
	GameType           string        `json:"gameType"`
	Players            []SavedPlayer `json:"players"`
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`
	Farkle             *FarkleState  `json:"farkle,omitempty"`
	Yahtzee            *YahtzeeState `json:"yahtzee,omitempty"`
	Dice               dice.Snapshot `json:"dice"`
	GameStartTime      time.Time     `json:"gameStartTime"`
}

// HistoryPlayer is one player's line in a finished-match record.
type HistoryPlayer struct {
	Name       string `json:"name"`
	FinalScore int    `json:"finalScore"`
	IsWinner   bool   `json:"isWinner"`
}

// HistoryEntry is one finished match, most-recent-first in listings.
type HistoryEntry struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	GameType string          `json:"gameType"`
	Players  []HistoryPlayer `json:"players"`
	Duration time.Duration   `json:"duration"`
}

// ProfileStats is a player's long-run aggregate across finished games.
type ProfileStats struct {
	GamesPlayed  int     `json:"gamesPlayed"`
	Wins         int     `json:"wins"`
	AvgScore     float64 `json:"avgScore"`
	BestScore    int     `json:"bestScore"`
	TotalScore   int     `json:"totalScore"`
	YahtzeeCount int     `json:"yahtzeeCount"`
}

// Profile is one player's record, keyed case-insensitively by name.
type Profile struct {
	Name  string       `json:"name"`
	Color string       `json:"color"`
	Stats ProfileStats `json:"stats"`
}

// ApplyResult folds one finished game into the profile stats. AvgScore is
// recomputed from the running total.
func (p *Profile) ApplyResult(finalScore int, won bool, yahtzees int) {
	p.Stats.GamesPlayed++
	if won {
		p.Stats.Wins++
	}
	p.Stats.TotalScore += finalScore
	if finalScore > p.Stats.BestScore {
		p.Stats.BestScore = finalScore
	}
	p.Stats.YahtzeeCount += yahtzees
	p.Stats.AvgScore = float64(p.Stats.TotalScore) / float64(p.Stats.GamesPlayed)
}

// SaveStore persists suspended games, one record per game id.
type SaveStore interface {
	// Put inserts or overwrites the save keyed by s.GameID.
	Put(ctx context.Context, s SaveGame) error
	// Get returns the save for id, or ErrSaveNotFound.
	Get(ctx context.Context, id string) (SaveGame, error)
	// Delete removes the save for id. Deleting a missing save is not an error.
	Delete(ctx context.Context, id string) error
	// List returns all saves, most recently started first.
	List(ctx context.Context) ([]SaveGame, error)
}

// HistoryStore keeps the append-only finished-match log, capped at
// HistoryCap entries.
type HistoryStore interface {
	// Append records a finished match and evicts the oldest entries beyond
	// HistoryCap.
	Append(ctx context.Context, e HistoryEntry) error
	// List returns the retained entries, most recent first.
	List(ctx context.Context) ([]HistoryEntry, error)
}

// Stores bundles the persistence collaborators injected into a game
// controller. Any field may be nil, in which case that concern is skipped:
// persistence failures never affect in-memory state.
type Stores struct {
	Saves    SaveStore
	History  HistoryStore
	Profiles ProfileStore
}

// ProfileStore keeps one profile per distinct player name
// (case-insensitive).
type ProfileStore interface {
	// Get returns the profile whose name matches case-insensitively, or
	// ErrProfileNotFound.
	Get(ctx context.Context, name string) (Profile, error)
	// Upsert inserts or replaces the profile keyed by the lower-cased name.
	Upsert(ctx context.Context, p Profile) error
	// List returns all profiles sorted by name.
	List(ctx context.Context) ([]Profile, error)
}
