// Package dice provides the randomness abstraction and the dice tray shared
// by the dicehall game engines.
package dice

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// UnlimitedRolls disables the tray's roll limit. Farkle trays use it: the
// turn state machine, not the tray, decides when rolling stops.
const UnlimitedRolls = -1
