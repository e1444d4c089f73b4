package farkle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicehall/internal/game/dice"
	"github.com/cory-johannsen/dicehall/internal/game/player"
	"github.com/cory-johannsen/dicehall/internal/game/rules"
	"github.com/cory-johannsen/dicehall/internal/storage"
)

// Match cycles players through Farkle turns, drives the final round once a
// player reaches the target score, and summarizes the finished match into
// history and profiles.
type Match struct {
	id         string
	players    []player.Player
	totals     []int
	current    int
	finalRound bool
	trigger    int // index of the player who triggered the final round, -1 before
	finalTaken map[int]bool
	startedAt  time.Time
	finished   bool
	winners    []int

	tray    *dice.Tray
	turn    *Turn
	ruleset rules.Rules
	stores  storage.Stores
	logger  *zap.Logger
}

// NewMatch seats the given players and starts the first player's turn.
//
// Precondition: at least one player with a non-empty name; src non-nil.
// logger may be nil.
func NewMatch(players []player.Player, ruleset rules.Rules, src dice.Source, stores storage.Stores, logger *zap.Logger) (*Match, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("farkle: match requires at least one player")
	}
	for _, p := range players {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("farkle: %w", err)
		}
	}
	if err := ruleset.Validate(); err != nil {
		return nil, fmt.Errorf("farkle: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	seated := make([]player.Player, len(players))
	copy(seated, players)
	tray := dice.NewTray(NumDice, Sides, dice.UnlimitedRolls, src, logger)
	m := &Match{
		id:         uuid.NewString(),
		players:    seated,
		totals:     make([]int, len(seated)),
		trigger:    -1,
		finalTaken: make(map[int]bool),
		startedAt:  time.Now(),
		tray:       tray,
		turn:       NewTurn(tray, ruleset, logger),
		ruleset:    ruleset,
		stores:     stores,
		logger:     logger,
	}
	m.logger.Info("farkle match started",
		zap.String("game_id", m.id),
		zap.Int("players", len(seated)),
		zap.Int("target", ruleset.TargetScore),
	)
	return m, nil
}

// ID returns the generated game id the save snapshot is keyed by.
func (m *Match) ID() string { return m.id }

// Players returns the seated players in turn order.
func (m *Match) Players() []player.Player {
	out := make([]player.Player, len(m.players))
	copy(out, m.players)
	return out
}

// Total returns player i's banked total.
func (m *Match) Total(i int) int { return m.totals[i] }

// CurrentPlayerIndex returns the index of the player whose turn it is.
func (m *Match) CurrentPlayerIndex() int { return m.current }

// CurrentPlayer returns the player whose turn it is.
func (m *Match) CurrentPlayer() player.Player { return m.players[m.current] }

// Turn returns the active turn state machine. Nil once the match finished.
func (m *Match) Turn() *Turn { return m.turn }

// FinalRound reports whether the final round is active and, if so, which
// player triggered it.
func (m *Match) FinalRound() (bool, int) { return m.finalRound, m.trigger }

// Finished reports whether the match has ended.
func (m *Match) Finished() bool { return m.finished }

// Winners returns the players with the highest total. Multiple winners on a
// tie. Empty until the match finishes.
func (m *Match) Winners() []player.Player {
	out := make([]player.Player, 0, len(m.winners))
	for _, i := range m.winners {
		out = append(out, m.players[i])
	}
	return out
}

// isWinner reports whether seat i is among the winning indices.
func (m *Match) isWinner(i int) bool {
	for _, w := range m.winners {
		if w == i {
			return true
		}
	}
	return false
}

// CompleteTurn folds a finished turn into the match: banks the turn score,
// advances the final-round bookkeeping, and either seats the next player or
// ends the match.
//
// Precondition: the active turn must be over (banked or bust).
func (m *Match) CompleteTurn(ctx context.Context) error {
	if m.finished {
		return fmt.Errorf("farkle: match already finished")
	}
	if !m.turn.Over() {
		return fmt.Errorf("farkle: turn is not over (phase %s)", m.turn.Phase())
	}

	if m.turn.Phase() == PhaseBanked {
		m.totals[m.current] += m.turn.TurnScore()
		m.logger.Debug("farkle turn banked",
			zap.String("player", m.players[m.current].Name),
			zap.Int("banked", m.turn.TurnScore()),
			zap.Int("total", m.totals[m.current]),
		)
	}

	if !m.finalRound && m.totals[m.current] >= m.ruleset.TargetScore {
		m.finalRound = true
		m.trigger = m.current
		m.logger.Info("farkle final round triggered",
			zap.String("player", m.players[m.current].Name),
			zap.Int("total", m.totals[m.current]),
		)
	} else if m.finalRound && m.current != m.trigger {
		m.finalTaken[m.current] = true
	}

	if m.finalRound && len(m.finalTaken) == len(m.players)-1 {
		m.finish(ctx)
		return nil
	}

	m.advance()
	m.turn = NewTurn(m.tray, m.ruleset, m.logger)
	m.tray.ReleaseAll()
	return nil
}

// advance moves to the next seat, skipping the final-round trigger.
func (m *Match) advance() {
	for {
		m.current = (m.current + 1) % len(m.players)
		if m.finalRound && m.current == m.trigger {
			continue
		}
		return
	}
}

// finish ends the match: computes winners, appends the history entry,
// updates player profiles, and removes the suspended save. Persistence
// failures are logged and otherwise ignored.
func (m *Match) finish(ctx context.Context) {
	m.finished = true
	m.turn = nil

	best := 0
	for _, total := range m.totals {
		if total > best {
			best = total
		}
	}
	for i, total := range m.totals {
		if total == best {
			m.winners = append(m.winners, i)
		}
	}
	duration := time.Since(m.startedAt)
	m.logger.Info("farkle match finished",
		zap.String("game_id", m.id),
		zap.Ints("totals", m.totals),
		zap.Duration("duration", duration),
	)

	if m.stores.History != nil {
		entry := storage.HistoryEntry{
			ID:       uuid.NewString(),
			Date:     time.Now(),
			GameType: storage.GameTypeFarkle,
			Duration: duration,
		}
		for i, p := range m.players {
			entry.Players = append(entry.Players, storage.HistoryPlayer{
				Name:       p.Name,
				FinalScore: m.totals[i],
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
			profile.ApplyResult(m.totals[i], m.isWinner(i), 0)
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
		return fmt.Errorf("farkle: cannot save a finished match")
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
	turnSnap := m.turn.Snapshot()
	taken := make([]int, 0, len(m.finalTaken))
	for i := range m.finalTaken {
		taken = append(taken, i)
	}
	sort.Ints(taken)

	save := storage.SaveGame{
		GameID:             m.id,
		GameType:           storage.GameTypeFarkle,
		CurrentPlayerIndex: m.current,
		Farkle: &storage.FarkleState{
			Turn: storage.FarkleTurnState{
				Phase:           turnSnap.Phase,
				TurnScore:       turnSnap.TurnScore,
				RollCount:       turnSnap.RollCount,
				SetAside:        turnSnap.SetAside,
				Selected:        turnSnap.Selected,
				StraightMissing: turnSnap.StraightMissing,
				StraightDie:     turnSnap.StraightDie,
			},
			TargetScore: m.ruleset.TargetScore,
			FinalRound:  m.finalRound,
			TriggeredBy: m.trigger,
			FinalTaken:  taken,
		},
		Dice:          turnSnap.Dice,
		GameStartTime: m.startedAt,
	}
	for i, p := range m.players {
		save.Players = append(save.Players, storage.SavedPlayer{
			Name:       p.Name,
			Color:      p.Color,
			TotalScore: m.totals[i],
		})
	}
	return save
}

// RestoreMatch rebuilds a suspended match from its save record.
//
// Precondition: save.GameType == storage.GameTypeFarkle and save.Farkle is
// non-nil.
func RestoreMatch(save storage.SaveGame, ruleset rules.Rules, src dice.Source, stores storage.Stores, logger *zap.Logger) (*Match, error) {
	if save.GameType != storage.GameTypeFarkle || save.Farkle == nil {
		return nil, fmt.Errorf("farkle: save %q is not a farkle game", save.GameID)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	players := make([]player.Player, len(save.Players))
	totals := make([]int, len(save.Players))
	for i, sp := range save.Players {
		players[i] = player.Player{Name: sp.Name, Color: sp.Color}
		totals[i] = sp.TotalScore
	}
	if save.CurrentPlayerIndex < 0 || save.CurrentPlayerIndex >= len(players) {
		return nil, fmt.Errorf("farkle: save %q has invalid current player %d", save.GameID, save.CurrentPlayerIndex)
	}

	ruleset.TargetScore = save.Farkle.TargetScore
	if err := ruleset.Validate(); err != nil {
		return nil, fmt.Errorf("farkle: %w", err)
	}

	tray := dice.NewTray(NumDice, Sides, dice.UnlimitedRolls, src, logger)
	st := save.Farkle.Turn
	turn, err := RestoreTurn(tray, ruleset, TurnSnapshot{
		Phase:           st.Phase,
		TurnScore:       st.TurnScore,
		RollCount:       st.RollCount,
		SetAside:        st.SetAside,
		Selected:        st.Selected,
		StraightMissing: st.StraightMissing,
		StraightDie:     st.StraightDie,
		Dice:            save.Dice,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("farkle: restoring turn: %w", err)
	}

	finalTaken := make(map[int]bool, len(save.Farkle.FinalTaken))
	for _, i := range save.Farkle.FinalTaken {
		finalTaken[i] = true
	}

	m := &Match{
		id:         save.GameID,
		players:    players,
		totals:     totals,
		current:    save.CurrentPlayerIndex,
		finalRound: save.Farkle.FinalRound,
		trigger:    save.Farkle.TriggeredBy,
		finalTaken: finalTaken,
		startedAt:  save.GameStartTime,
		tray:       tray,
		turn:       turn,
		ruleset:    ruleset,
		stores:     stores,
		logger:     logger,
	}
	m.logger.Info("farkle match restored", zap.String("game_id", m.id))
	return m, nil
}
