package yahtzee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicehall/internal/game/dice"
	"github.com/cory-johannsen/dicehall/internal/game/player"
	"github.com/cory-johannsen/dicehall/internal/storage"
)

// Match cycles players through Yahtzee turns until every scorecard is
// complete, then summarizes the finished match into history and profiles.
type Match struct {
	id        string
	players   []player.Player
	cards     []*Scorecard
	current   int
	startedAt time.Time
	finished  bool
	winners   []int

	src    dice.Source
	turn   *Turn
	stores storage.Stores
	logger *zap.Logger
}

// NewMatch seats the given players and starts the first player's turn.
//
// Precondition: at least one player with a non-empty name; src non-nil.
// logger may be nil.
func NewMatch(players []player.Player, src dice.Source, stores storage.Stores, logger *zap.Logger) (*Match, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("yahtzee: match requires at least one player")
	}
	for _, p := range players {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("yahtzee: %w", err)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	seated := make([]player.Player, len(players))
	copy(seated, players)
	cards := make([]*Scorecard, len(seated))
	for i := range cards {
		cards[i] = NewScorecard()
	}
	m := &Match{
		id:        uuid.NewString(),
		players:   seated,
		cards:     cards,
		startedAt: time.Now(),
		src:       src,
		stores:    stores,
		logger:    logger,
	}
	m.turn = NewTurn(m.newTray(), logger)
	m.logger.Info("yahtzee match started",
		zap.String("game_id", m.id),
		zap.Int("players", len(seated)),
	)
	return m, nil
}

func (m *Match) newTray() *dice.Tray {
	return dice.NewTray(NumDice, Sides, MaxRolls, m.src, m.logger)
}

// ID returns the generated game id the save snapshot is keyed by.
func (m *Match) ID() string { return m.id }

// Players returns the seated players in turn order.
func (m *Match) Players() []player.Player {
	out := make([]player.Player, len(m.players))
	copy(out, m.players)
	return out
}

// Card returns player i's scorecard.
func (m *Match) Card(i int) *Scorecard { return m.cards[i] }

// CurrentPlayerIndex returns the index of the player whose turn it is.
func (m *Match) CurrentPlayerIndex() int { return m.current }

// CurrentPlayer returns the player whose turn it is.
func (m *Match) CurrentPlayer() player.Player { return m.players[m.current] }

// Turn returns the active turn state machine. Nil once the match finished.
func (m *Match) Turn() *Turn { return m.turn }

// Finished reports whether the match has ended.
func (m *Match) Finished() bool { return m.finished }

// Winners returns the players with the highest grand total. Multiple winners
// on a tie. Empty until the match finishes.
func (m *Match) Winners() []player.Player {
	out := make([]player.Player, 0, len(m.winners))
	for _, i := range m.winners {
		out = append(out, m.players[i])
	}
	return out
}

func (m *Match) isWinner(i int) bool {
	for _, w := range m.winners {
		if w == i {
			return true
		}
	}
	return false
}

// Choose scores the active turn into the current player's card. The category
// pick is irrevocable and ends the turn.
func (m *Match) Choose(id CategoryID) (int, bool) {
	if m.finished {
		return 0, false
	}
	return m.turn.Choose(id, m.cards[m.current])
}

// CompleteTurn seats the next player or ends the match once every scorecard
// is complete.
//
// Precondition: the active turn must be over (a category was scored).
func (m *Match) CompleteTurn(ctx context.Context) error {
	if m.finished {
		return fmt.Errorf("yahtzee: match already finished")
	}
	if !m.turn.Over() {
		return fmt.Errorf("yahtzee: turn is not over (phase %s)", m.turn.Phase())
	}

	allDone := true
	for _, card := range m.cards {
		if !card.Complete() {
			allDone = false
			break
		}
	}
	if allDone {
		m.finish(ctx)
		return nil
	}

	// Advance to the next player with an incomplete card.
	for {
		m.current = (m.current + 1) % len(m.players)
		if !m.cards[m.current].Complete() {
			break
		}
	}
	m.turn = NewTurn(m.newTray(), m.logger)
	return nil
}

// finish ends the match: computes winners, appends the history entry,
// updates player profiles, and removes the suspended save. Persistence
// failures are logged and otherwise ignored.
func (m *Match) finish(ctx context.Context) {
	m.finished = true
	m.turn = nil

	best := 0
	totals := make([]int, len(m.cards))
	for i, card := range m.cards {
		totals[i] = card.Total()
		if totals[i] > best {
			best = totals[i]
		}
	}
	for i, total := range totals {
		if total == best {
			m.winners = append(m.winners, i)
		}
	}
	duration := time.Since(m.startedAt)
	m.logger.Info("yahtzee match finished",
		zap.String("game_id", m.id),
		zap.Ints("totals", totals),
		zap.Duration("duration", duration),
	)

	if m.stores.History != nil {
		entry := storage.HistoryEntry{
			ID:       uuid.NewString(),
			Date:     time.Now(),
			GameType: storage.GameTypeYahtzee,
			Duration: duration,
		}
		for i, p := range m.players {
			entry.Players = append(entry.Players, storage.HistoryPlayer{
				Name:       p.Name,
				FinalScore: totals[i],
				IsWinner:   m.isWinner(i),
			})
		}
		if err := m.stores.History.Append(ctx, entry); err != nil {
			m.logger.Warn("appending match history", zap.Error(err))
		}
	}

	if m.stores.Profiles != nil {
		for i, p := range m.players {
			profile, err := m.stores.Profiles.Get(ctx, p.Name)
			switch {
			case errors.Is(err, storage.ErrProfileNotFound):
				profile = storage.Profile{Name: p.Name, Color: p.Color}
			case err != nil:
				// A transient read failure must not clobber the stored
				// stats with a single-game profile. Skip this player.
				m.logger.Warn("reading player profile",
					zap.String("player", p.Name), zap.Error(err))
				continue
			}
			profile.ApplyResult(totals[i], m.isWinner(i), m.cards[i].YahtzeeCount())
			if err := m.stores.Profiles.Upsert(ctx, profile); err != nil {
				m.logger.Warn("updating player profile",
					zap.String("player", p.Name), zap.Error(err))
			}
		}
	}

	if m.stores.Saves != nil {
		if err := m.stores.Saves.Delete(ctx, m.id); err != nil {
			m.logger.Warn("deleting finished save", zap.Error(err))
		}
	}
}

// Save writes the full match snapshot to the save store. Failures are logged
// and returned, but never mutate in-memory state.
func (m *Match) Save(ctx context.Context) error {
	if m.stores.Saves == nil {
		return nil
	}
	if m.finished {
		return fmt.Errorf("yahtzee: cannot save a finished match")
	}
	if err := m.stores.Saves.Put(ctx, m.Snapshot()); err != nil {
		m.logger.Warn("saving match", zap.String("game_id", m.id), zap.Error(err))
		return fmt.Errorf("saving match: %w", err)
	}
	return nil
}

// Snapshot returns the persistable state of the match and its active turn.
//
// Precondition: the match is not finished.
func (m *Match) Snapshot() storage.SaveGame {
	diceSnap, phase := m.turn.Snapshot()
	save := storage.SaveGame{
		GameID:             m.id,
		GameType:           storage.GameTypeYahtzee,
		CurrentPlayerIndex: m.current,
		Yahtzee:            &storage.YahtzeeState{Phase: phase},
		Dice:               diceSnap,
		GameStartTime:      m.startedAt,
	}
	for i, p := range m.players {
		save.Players = append(save.Players, storage.SavedPlayer{
			Name:         p.Name,
			Color:        p.Color,
			Categories:   m.cards[i].Export(),
			YahtzeeCount: m.cards[i].YahtzeeCount(),
		})
	}
	return save
}

// RestoreMatch rebuilds a suspended match from its save record.
//
// Precondition: save.GameType == storage.GameTypeYahtzee and save.Yahtzee is
// non-nil.
func RestoreMatch(save storage.SaveGame, src dice.Source, stores storage.Stores, logger *zap.Logger) (*Match, error) {
	if save.GameType != storage.GameTypeYahtzee || save.Yahtzee == nil {
		return nil, fmt.Errorf("yahtzee: save %q is not a yahtzee game", save.GameID)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	players := make([]player.Player, len(save.Players))
	cards := make([]*Scorecard, len(save.Players))
	for i, sp := range save.Players {
		players[i] = player.Player{Name: sp.Name, Color: sp.Color}
		cards[i] = RestoreScorecard(sp.Categories, sp.YahtzeeCount)
	}
	if save.CurrentPlayerIndex < 0 || save.CurrentPlayerIndex >= len(players) {
		return nil, fmt.Errorf("yahtzee: save %q has invalid current player %d", save.GameID, save.CurrentPlayerIndex)
	}

	m := &Match{
		id:        save.GameID,
		players:   players,
		cards:     cards,
		current:   save.CurrentPlayerIndex,
		startedAt: save.GameStartTime,
		src:       src,
		stores:    stores,
		logger:    logger,
	}
	turn, err := RestoreTurn(m.newTray(), save.Dice, save.Yahtzee.Phase, logger)
	if err != nil {
		return nil, fmt.Errorf("yahtzee: restoring turn: %w", err)
	}
	m.turn = turn
	m.logger.Info("yahtzee match restored", zap.String("game_id", m.id))
	return m, nil
}
