// Package player defines player identity shared by all dicehall games.
package player

import (
	"fmt"
	"strings"
)

// Player is a seat at the table: a display name and a UI color. Per-game
// scores live with the game controllers, long-run stats with the profile
// store.
type Player struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Key returns the case-insensitive profile key for a player name.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Validate checks that a player has a usable name.
func (p Player) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name must not be empty")
	}
	return nil
}

// DefaultColors is the palette assigned to seats in join order when none is
// chosen.
var DefaultColors = []string{"#e74c3c", "#3498db", "#2ecc71", "#f1c40f", "#9b59b6", "#e67e22"}
