package yahtzee

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicehall/internal/game/dice"
)

// Phase is the state of a Yahtzee turn.
type Phase int

const (
	// PhaseIdle: no roll has been taken yet this turn.
	PhaseIdle Phase = iota
	// PhaseRolling: a roll was issued and awaits the roll-finished signal.
	// All commands are no-ops in this phase.
	PhaseRolling
	// PhasePicking: the player may toggle holds, roll again while rolls
	// remain, or score a category.
	PhasePicking
	// PhaseScored: the turn ended with a category locked in.
	PhaseScored
)

// String returns the snapshot label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRolling:
		return "rolling"
	case PhasePicking:
		return "picking"
	case PhaseScored:
		return "scored"
	default:
		return "unknown"
	}
}

func phaseFromString(s string) (Phase, bool) {
	for p := PhaseIdle; p <= PhaseScored; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return PhaseIdle, false
}

// Turn drives one player's Yahtzee turn: up to three rolls of five dice with
// free hold toggles between rolls, ending with an irrevocable category pick.
type Turn struct {
	tray   *dice.Tray
	phase  Phase
	logger *zap.Logger
}

// NewTurn creates a fresh turn over a five-die, three-roll tray.
func NewTurn(tray *dice.Tray, logger *zap.Logger) *Turn {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Turn{tray: tray, phase: PhaseIdle, logger: logger}
}

// Phase returns the current turn phase.
func (t *Turn) Phase() Phase { return t.phase }

// Values returns the current face values.
func (t *Turn) Values() []int { return t.tray.Values() }

// Held returns the current hold flags.
func (t *Turn) Held() []bool { return t.tray.Held() }

// RollsLeft returns the remaining roll budget.
func (t *Turn) RollsLeft() int { return t.tray.RollsLeft() }

// Over reports whether the turn has ended.
func (t *Turn) Over() bool { return t.phase == PhaseScored }

// Roll issues a roll of all unheld dice. Legal from PhaseIdle and
// PhasePicking while rolls remain; the turn moves to PhaseRolling until
// RollCompleted fires.
func (t *Turn) Roll() bool {
	if t.phase != PhaseIdle && t.phase != PhasePicking {
		return false
	}
	if _, ok := t.tray.Roll(); !ok {
		return false
	}
	t.phase = PhaseRolling
	t.logger.Debug("yahtzee roll issued",
		zap.Ints("values", t.tray.Values()),
		zap.Int("rolls_left", t.tray.RollsLeft()),
	)
	return true
}

// RollCompleted is the external roll-finished signal.
func (t *Turn) RollCompleted() bool {
	if t.phase != PhaseRolling {
		return false
	}
	t.phase = PhasePicking
	return true
}

// ToggleHold flips the hold flag for die i. Legal in PhasePicking while
// rolls remain; the tray enforces the roll-budget rule.
func (t *Turn) ToggleHold(i int) bool {
	if t.phase != PhasePicking {
		return false
	}
	return t.tray.ToggleHold(i)
}

// Choose locks values into the given category on card and ends the turn.
// Legal only in PhasePicking; an already-filled category is a no-op.
func (t *Turn) Choose(id CategoryID, card *Scorecard) (int, bool) {
	if t.phase != PhasePicking {
		return 0, false
	}
	score, ok := card.Set(id, t.tray.Values())
	if !ok {
		return 0, false
	}
	t.phase = PhaseScored
	t.logger.Debug("yahtzee category scored",
		zap.String("category", string(id)),
		zap.Int("score", score),
	)
	return score, true
}

// Snapshot returns the tray snapshot together with the phase label for
// persistence. The scorecards live with the match players.
func (t *Turn) Snapshot() (dice.Snapshot, string) {
	return t.tray.Snapshot(), t.phase.String()
}

// RestoreTurn rebuilds a turn over tray from a persisted tray snapshot and
// phase label.
func RestoreTurn(tray *dice.Tray, snap dice.Snapshot, phase string, logger *zap.Logger) (*Turn, error) {
	p, ok := phaseFromString(phase)
	if !ok {
		return nil, fmt.Errorf("yahtzee: unknown turn phase %q", phase)
	}
	if err := tray.Restore(snap); err != nil {
		return nil, err
	}
	t := NewTurn(tray, logger)
	t.phase = p
	return t, nil
}
