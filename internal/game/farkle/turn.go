package farkle

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicehall/internal/game/dice"
	"github.com/cory-johannsen/dicehall/internal/game/rules"
)

// Phase is the state of a Farkle turn.
type Phase int

const (
	// PhaseIdle: no roll has been taken yet this turn.
	PhaseIdle Phase = iota
	// PhaseRolling: a roll has been issued and its values computed, but the
	// external roll-finished signal has not fired yet. All commands except
	// RollCompleted are no-ops in this phase.
	PhaseRolling
	// PhaseSelecting: the player is choosing dice to score.
	PhaseSelecting
	// PhaseConfirmed: a selection has been scored; the player may roll the
	// remaining dice or bank.
	PhaseConfirmed
	// PhaseStraightAttempt: the single straight-completion die has been
	// re-rolled and awaits the roll-finished signal.
	PhaseStraightAttempt
	// PhaseBust: the turn ended with the accumulated score forfeited.
	PhaseBust
	// PhaseBanked: the turn ended with the accumulated score committed.
	PhaseBanked
)

// String returns the snapshot label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRolling:
		return "rolling"
	case PhaseSelecting:
		return "selecting"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseStraightAttempt:
		return "straightAttempt"
	case PhaseBust:
		return "bust"
	case PhaseBanked:
		return "banked"
	default:
		return "unknown"
	}
}

// phaseFromString is the inverse of Phase.String for snapshot restore.
func phaseFromString(s string) (Phase, bool) {
	for p := PhaseIdle; p <= PhaseBanked; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return PhaseIdle, false
}

// straightContext records the in-flight straight-completion sub-game: which
// face is missing and which die index is being re-rolled to complete it.
type straightContext struct {
	missing  int
	dieIndex int
}

// Turn drives a single player's Farkle turn over a six-die tray. Every
// transition happens through one of the command methods; illegal commands
// return false and change nothing.
//
// Invariant: set-aside and selected index sets are disjoint; the tray's held
// flags mirror the set-aside set outside of a straight attempt.
type Turn struct {
	tray      *dice.Tray
	ruleset   rules.Rules
	phase     Phase
	turnScore int
	rollCount int
	setAside  map[int]bool
	selected  map[int]bool
	straight  *straightContext
	logger    *zap.Logger
}

// NewTurn creates a fresh turn over the given six-die tray.
//
// Precondition: tray must have NumDice dice and an unlimited roll budget;
// logger may be nil.
func NewTurn(tray *dice.Tray, ruleset rules.Rules, logger *zap.Logger) *Turn {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Turn{
		tray:     tray,
		ruleset:  ruleset,
		phase:    PhaseIdle,
		setAside: make(map[int]bool),
		selected: make(map[int]bool),
		logger:   logger,
	}
}

// Phase returns the current turn phase.
func (t *Turn) Phase() Phase { return t.phase }

// TurnScore returns the points accumulated and not yet banked this turn.
func (t *Turn) TurnScore() int { return t.turnScore }

// RollCount returns the number of rolls taken this turn, including the
// straight-attempt re-roll.
func (t *Turn) RollCount() int { return t.rollCount }

// Values returns the current face values of all six dice.
func (t *Turn) Values() []int { return t.tray.Values() }

// SetAside returns the sorted indices of dice scored earlier this turn.
func (t *Turn) SetAside() []int { return sortedIndices(t.setAside) }

// Selected returns the sorted indices of the pending selection.
func (t *Turn) Selected() []int { return sortedIndices(t.selected) }

// Over reports whether the turn has reached a terminal phase.
func (t *Turn) Over() bool { return t.phase == PhaseBust || t.phase == PhaseBanked }

func sortedIndices(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// availableIndices returns the sorted indices of dice not yet set aside.
func (t *Turn) availableIndices() []int {
	var out []int
	for i := 0; i < t.tray.Size(); i++ {
		if !t.setAside[i] {
			out = append(out, i)
		}
	}
	return out
}

// AvailableValues returns the faces of all dice not yet set aside.
func (t *Turn) AvailableValues() []int {
	idx := t.availableIndices()
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = t.tray.Value(j)
	}
	return out
}

// ScorableIndices returns the indices eligible for highlighting in the
// current selecting phase. Empty outside PhaseSelecting.
func (t *Turn) ScorableIndices() []int {
	if t.phase != PhaseSelecting {
		return nil
	}
	return FindScorableDiceIndices(t.AvailableValues(), t.availableIndices())
}

// StraightAttemptOffer reports whether the straight-completion rescue is
// currently on offer, and the missing face if so. It requires the selecting
// phase with all six dice still available.
func (t *Turn) StraightAttemptOffer() (missing int, ok bool) {
	if t.phase != PhaseSelecting || len(t.setAside) != 0 || !t.ruleset.StraightAttempt {
		return 0, false
	}
	return DetectStraightAttempt(t.tray.Values())
}

// Roll issues a roll of all dice not set aside. Legal from PhaseIdle and
// PhaseConfirmed only; the turn moves to PhaseRolling until RollCompleted
// fires.
func (t *Turn) Roll() bool {
	if t.phase != PhaseIdle && t.phase != PhaseConfirmed {
		return false
	}
	for i := 0; i < t.tray.Size(); i++ {
		t.tray.SetHeld(i, t.setAside[i])
	}
	if _, ok := t.tray.Roll(); !ok {
		return false
	}
	t.rollCount++
	t.phase = PhaseRolling
	t.logger.Debug("farkle roll issued",
		zap.Int("roll_count", t.rollCount),
		zap.Ints("values", t.tray.Values()),
	)
	return true
}

// RollCompleted is the external roll-finished signal. From PhaseRolling the
// turn moves to PhaseSelecting, or to PhaseBust when the available dice
// contain no scoring combination. From PhaseStraightAttempt it resolves the
// straight-completion sub-game.
func (t *Turn) RollCompleted() bool {
	switch t.phase {
	case PhaseRolling:
		t.selected = make(map[int]bool)
		if IsFarkle(t.AvailableValues()) {
			t.bust("no scoring dice")
			return true
		}
		t.phase = PhaseSelecting
		return true
	case PhaseStraightAttempt:
		t.resolveStraightAttempt()
		return true
	default:
		return false
	}
}

// ToggleSelect flips die i in or out of the pending selection. Legal only in
// PhaseSelecting for dice that are not set aside.
func (t *Turn) ToggleSelect(i int) bool {
	if t.phase != PhaseSelecting {
		return false
	}
	if i < 0 || i >= t.tray.Size() || t.setAside[i] {
		return false
	}
	if t.selected[i] {
		delete(t.selected, i)
	} else {
		t.selected[i] = true
	}
	return true
}

// ConfirmSelection scores the pending selection. An empty or invalid
// selection is a no-op. On a valid selection the score is added to the turn
// score and the dice move to the set-aside set; then, in order:
//
//  1. all six dice set aside: hot dice — the set-aside set resets and the
//     turn moves to PhaseConfirmed with the score carried over;
//  2. rollCount >= the forced-bust roll count with turnScore below the
//     forced-bust threshold: the turn busts and the score is forfeited;
//  3. otherwise the turn moves to PhaseConfirmed.
func (t *Turn) ConfirmSelection() bool {
	if t.phase != PhaseSelecting || len(t.selected) == 0 {
		return false
	}
	faces := make([]int, 0, len(t.selected))
	for i := range t.selected {
		faces = append(faces, t.tray.Value(i))
	}
	score, ok := ScoreSelection(faces)
	if !ok {
		return false
	}

	t.turnScore += score
	for i := range t.selected {
		t.setAside[i] = true
	}
	t.selected = make(map[int]bool)
	t.logger.Debug("farkle selection confirmed",
		zap.Int("score", score),
		zap.Int("turn_score", t.turnScore),
		zap.Ints("set_aside", t.SetAside()),
	)

	if len(t.setAside) == t.tray.Size() {
		t.hotDice()
		return true
	}
	if t.rollCount >= t.ruleset.BustRollCount && t.turnScore < t.ruleset.BustThreshold {
		t.bust("forced bust below threshold")
		return true
	}
	t.phase = PhaseConfirmed
	return true
}

// AttemptStraight sets aside five of the six dice (all but one instance of
// the duplicated face) and re-rolls the remaining die to complete a straight.
// Legal only in PhaseSelecting with all six dice available and a detected
// straight-attempt opportunity.
func (t *Turn) AttemptStraight() bool {
	missing, ok := t.StraightAttemptOffer()
	if !ok {
		return false
	}
	values := t.tray.Values()
	counts := faceCounts(values)
	dupFace := 0
	for face := 1; face <= Sides; face++ {
		if counts[face] == 2 {
			dupFace = face
			break
		}
	}
	// Keep the first die of the duplicated face free and set aside the rest.
	rerollIndex := -1
	for i, v := range values {
		if v == dupFace && rerollIndex == -1 {
			rerollIndex = i
			continue
		}
		t.setAside[i] = true
		t.tray.SetHeld(i, true)
	}
	t.tray.SetHeld(rerollIndex, false)
	t.selected = make(map[int]bool)
	t.straight = &straightContext{missing: missing, dieIndex: rerollIndex}
	if _, ok := t.tray.Roll(); !ok {
		panic("farkle: straight attempt roll failed on unlimited tray")
	}
	t.rollCount++
	t.phase = PhaseStraightAttempt
	t.logger.Debug("farkle straight attempt",
		zap.Int("missing", missing),
		zap.Int("die", rerollIndex),
	)
	return true
}

// resolveStraightAttempt finishes the straight-completion sub-game once the
// roll-finished signal fires: the missing face completes the straight for
// 1000 points and hot dice; anything else busts the turn.
func (t *Turn) resolveStraightAttempt() {
	ctx := t.straight
	t.straight = nil
	rolled := t.tray.Value(ctx.dieIndex)
	if rolled == ctx.missing {
		t.turnScore += StraightScore
		t.setAside[ctx.dieIndex] = true
		t.hotDice()
		t.logger.Debug("farkle straight completed",
			zap.Int("face", rolled),
			zap.Int("turn_score", t.turnScore),
		)
		return
	}
	t.bust("straight attempt failed")
}

// hotDice resets the set-aside set and held flags so all six dice can roll
// again, preserving the accumulated turn score.
func (t *Turn) hotDice() {
	t.setAside = make(map[int]bool)
	t.tray.ReleaseAll()
	t.phase = PhaseConfirmed
	t.logger.Debug("farkle hot dice", zap.Int("turn_score", t.turnScore))
}

// bust forfeits the turn score and ends the turn.
func (t *Turn) bust(reason string) {
	t.logger.Debug("farkle bust",
		zap.String("reason", reason),
		zap.Int("forfeited", t.turnScore),
	)
	t.turnScore = 0
	t.selected = make(map[int]bool)
	t.phase = PhaseBust
}

// Bank commits the turn score and ends the turn. Legal only from
// PhaseConfirmed. Returns the banked amount.
func (t *Turn) Bank() (int, bool) {
	if t.phase != PhaseConfirmed {
		return 0, false
	}
	t.phase = PhaseBanked
	t.logger.Debug("farkle banked", zap.Int("turn_score", t.turnScore))
	return t.turnScore, true
}

// TurnSnapshot captures a turn's observable state for persistence.
type TurnSnapshot struct {
	Phase           string        `json:"phase"`
	TurnScore       int           `json:"turnScore"`
	RollCount       int           `json:"rollCount"`
	SetAside        []int         `json:"setAside"`
	Selected        []int         `json:"selected"`
	StraightMissing int           `json:"straightMissing,omitempty"`
	StraightDie     int           `json:"straightDie,omitempty"`
	Dice            dice.Snapshot `json:"dice"`
}

// Snapshot returns the turn's observable state.
//
// Postcondition: RestoreTurn(tray, ruleset, Snapshot(), logger) reproduces an
// identical observable state.
func (t *Turn) Snapshot() TurnSnapshot {
	s := TurnSnapshot{
		Phase:     t.phase.String(),
		TurnScore: t.turnScore,
		RollCount: t.rollCount,
		SetAside:  t.SetAside(),
		Selected:  t.Selected(),
		Dice:      t.tray.Snapshot(),
	}
	if t.straight != nil {
		s.StraightMissing = t.straight.missing
		s.StraightDie = t.straight.dieIndex
	}
	return s
}

// RestoreTurn rebuilds a turn over tray from a snapshot.
//
// Precondition: tray size matches the snapshot's dice snapshot.
func RestoreTurn(tray *dice.Tray, ruleset rules.Rules, s TurnSnapshot, logger *zap.Logger) (*Turn, error) {
	phase, ok := phaseFromString(s.Phase)
	if !ok {
		return nil, fmt.Errorf("farkle: unknown turn phase %q", s.Phase)
	}
	if err := tray.Restore(s.Dice); err != nil {
		return nil, err
	}
	t := NewTurn(tray, ruleset, logger)
	t.phase = phase
	t.turnScore = s.TurnScore
	t.rollCount = s.RollCount
	for _, i := range s.SetAside {
		t.setAside[i] = true
	}
	for _, i := range s.Selected {
		t.selected[i] = true
	}
	if phase == PhaseStraightAttempt {
		t.straight = &straightContext{missing: s.StraightMissing, dieIndex: s.StraightDie}
	}
	return t, nil
}
