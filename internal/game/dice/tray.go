package dice

import (
	"fmt"

	"go.uber.org/zap"
)

// Tray owns one game's dice: N face values in [1, sides] with a parallel
// held flag per die. Held dice are excluded from the next roll.
//
// Invariant: len(values) == len(held) == Size() at all times.
//
// A Tray is scoped to a single game instance and is not safe for concurrent
// use; the turn state machines serialize access to it.
type Tray struct {
	values    []int
	held      []bool
	sides     int
	rollsLeft int // UnlimitedRolls means no limit
	hasRolled bool
	src       Source
	logger    *zap.Logger
}

// NewTray creates a tray of n dice with the given number of sides and roll
// limit. rollLimit == UnlimitedRolls disables the limit. All dice start at
// face 1 and unheld; the tray reports hasRolled == false until the first
// roll.
//
// Precondition: n >= 1, sides >= 2, src non-nil. logger may be nil (rolls
// are then not logged).
func NewTray(n, sides, rollLimit int, src Source, logger *zap.Logger) *Tray {
	if n < 1 {
		panic(fmt.Sprintf("dice: NewTray called with n = %d", n))
	}
	if sides < 2 {
		panic(fmt.Sprintf("dice: NewTray called with sides = %d", sides))
	}
	if src == nil {
		panic("dice: NewTray called with nil Source")
	}
	values := make([]int, n)
	for i := range values {
		values[i] = 1
	}
	return &Tray{
		values:    values,
		held:      make([]bool, n),
		sides:     sides,
		rollsLeft: rollLimit,
		src:       src,
		logger:    logger,
	}
}

// Roll draws a uniformly random face in [1, sides] for every die not marked
// held and returns the indices that changed. It is a silent no-op (nil,
// false) when no rolls remain.
//
// Postcondition: on success rollsLeft is decremented (unless unlimited) and
// every returned index holds a value in [1, sides].
func (t *Tray) Roll() ([]int, bool) {
	if t.rollsLeft == 0 {
		return nil, false
	}
	var changed []int
	for i := range t.values {
		if t.held[i] {
			continue
		}
		t.values[i] = t.src.Intn(t.sides) + 1
		changed = append(changed, i)
	}
	if t.rollsLeft > 0 {
		t.rollsLeft--
	}
	t.hasRolled = true
	if t.logger != nil {
		t.logger.Debug("dice roll",
			zap.Ints("values", t.values),
			zap.Ints("changed", changed),
			zap.Int("rolls_left", t.rollsLeft),
		)
	}
	return changed, true
}

// ToggleHold flips the held flag for die i. It is only legal after the first
// roll and while rolls remain (the Yahtzee hold rule); otherwise it is a
// silent no-op returning false.
func (t *Tray) ToggleHold(i int) bool {
	if i < 0 || i >= len(t.held) {
		return false
	}
	if !t.hasRolled || t.rollsLeft == 0 {
		return false
	}
	t.held[i] = !t.held[i]
	return true
}

// SetHeld sets the held flag for die i unconditionally. Game engines that
// manage set-aside dice themselves (Farkle) use this instead of ToggleHold.
func (t *Tray) SetHeld(i int, held bool) bool {
	if i < 0 || i >= len(t.held) {
		return false
	}
	t.held[i] = held
	return true
}

// ReleaseAll clears every held flag. Used by the hot-dice reset.
func (t *Tray) ReleaseAll() {
	for i := range t.held {
		t.held[i] = false
	}
}

// Size returns the number of dice in the tray.
func (t *Tray) Size() int { return len(t.values) }

// Sides returns the number of faces per die.
func (t *Tray) Sides() int { return t.sides }

// Value returns the face of die i.
//
// Precondition: 0 <= i < Size().
func (t *Tray) Value(i int) int { return t.values[i] }

// Values returns a copy of all face values.
func (t *Tray) Values() []int {
	out := make([]int, len(t.values))
	copy(out, t.values)
	return out
}

// IsHeld reports whether die i is held.
//
// Precondition: 0 <= i < Size().
func (t *Tray) IsHeld(i int) bool { return t.held[i] }

// Held returns a copy of all held flags.
func (t *Tray) Held() []bool {
	out := make([]bool, len(t.held))
	copy(out, t.held)
	return out
}

// RollsLeft returns the remaining roll count, or UnlimitedRolls.
func (t *Tray) RollsLeft() int { return t.rollsLeft }

// HasRolled reports whether any roll has happened yet.
func (t *Tray) HasRolled() bool { return t.hasRolled }

// Snapshot captures the tray's observable state for persistence.
type Snapshot struct {
	Values    []int  `json:"values"`
	Held      []bool `json:"held"`
	RollsLeft int    `json:"rollsLeft"`
	HasRolled bool   `json:"hasRolled"`
}

// Snapshot returns a deep copy of the tray's observable state.
//
// Postcondition: Restore(Snapshot()) reproduces identical observable state.
func (t *Tray) Snapshot() Snapshot {
	return Snapshot{
		Values:    t.Values(),
		Held:      t.Held(),
		RollsLeft: t.rollsLeft,
		HasRolled: t.hasRolled,
	}
}

// Restore overwrites the tray's state from a snapshot taken on a tray of the
// same size.
//
// Postcondition: Values, Held, RollsLeft, and HasRolled match s exactly, or
// an error is returned and the tray is unchanged.
func (t *Tray) Restore(s Snapshot) error {
	if len(s.Values) != len(t.values) || len(s.Held) != len(t.held) {
		return fmt.Errorf("dice: snapshot size %d/%d does not match tray size %d",
			len(s.Values), len(s.Held), len(t.values))
	}
	for _, v := range s.Values {
		if v < 1 || v > t.sides {
			return fmt.Errorf("dice: snapshot value %d out of range [1, %d]", v, t.sides)
		}
	}
	copy(t.values, s.Values)
	copy(t.held, s.Held)
	t.rollsLeft = s.RollsLeft
	t.hasRolled = s.HasRolled
	return nil
}
