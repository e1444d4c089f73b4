package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicehall/internal/game/farkle"
)

// playFarkle drives a Farkle match at the terminal until it finishes or the
// player quits to the menu. Quitting forces a synchronous save first.
func (a *app) playFarkle(ctx context.Context, m *farkle.Match) {
	for !m.Finished() {
		a.renderFarkle(m)
		turn := m.Turn()

		switch turn.Phase() {
		case farkle.PhaseIdle, farkle.PhaseConfirmed:
			if !a.farkleRollOrBank(ctx, m) {
				return
			}
		case farkle.PhaseSelecting:
			if !a.farkleSelect(ctx, m) {
				return
			}
		case farkle.PhaseBust:
			a.banner("*** BUST! %s loses the turn score ***", m.CurrentPlayer().Name)
			a.completeFarkleTurn(ctx, m)
		case farkle.PhaseBanked:
			a.banner("%s banks %d", m.CurrentPlayer().Name, turn.TurnScore())
			a.completeFarkleTurn(ctx, m)
		default:
			// Rolling and StraightAttempt resolve immediately below; a
			// restored save can land here mid-roll.
			a.animateRoll()
			turn.RollCompleted()
		}
	}

	names := make([]string, 0)
	for _, w := range m.Winners() {
		names = append(names, w.Name)
	}
	fmt.Printf("\n*** winner: %s ***\n", strings.Join(names, " and "))
}

// farkleRollOrBank handles the roll/bank/quit prompt. Returns false when the
// player quit to the menu.
func (a *app) farkleRollOrBank(ctx context.Context, m *farkle.Match) bool {
	turn := m.Turn()
	options := "r=roll"
	if turn.Phase() == farkle.PhaseConfirmed {
		options += ", b=bank"
	}
	cmd, ok := a.prompt("[%s] %s, q=save & quit: ", m.CurrentPlayer().Name, options)
	if !ok {
		return a.quitFarkle(ctx, m)
	}
	switch cmd {
	case "r":
		if turn.Roll() {
			a.animateRoll()
			turn.RollCompleted()
		}
	case "b":
		if _, ok := turn.Bank(); !ok {
			fmt.Println("nothing to bank yet")
		}
	case "q":
		return a.quitFarkle(ctx, m)
	}
	return true
}

// farkleSelect handles the die-selection prompt. Returns false when the
// player quit to the menu.
func (a *app) farkleSelect(ctx context.Context, m *farkle.Match) bool {
	turn := m.Turn()
	options := "1-6=toggle die, c=confirm"
	if _, ok := turn.StraightAttemptOffer(); ok {
		options += ", s=straight attempt"
	}
	cmd, ok := a.prompt("[%s] %s, q=save & quit: ", m.CurrentPlayer().Name, options)
	if !ok {
		return a.quitFarkle(ctx, m)
	}
	switch cmd {
	case "c":
		if !turn.ConfirmSelection() {
			fmt.Println("that selection does not score")
		}
	case "s":
		if turn.AttemptStraight() {
			a.animateRoll()
			turn.RollCompleted()
			if turn.Phase() != farkle.PhaseBust {
				a.banner("*** straight completed! +%d and hot dice ***", farkle.StraightScore)
			}
		}
	case "q":
		return a.quitFarkle(ctx, m)
	default:
		if n, err := strconv.Atoi(cmd); err == nil {
			turn.ToggleSelect(n - 1)
		}
	}
	return true
}

// completeFarkleTurn advances the match past a terminal turn phase and
// autosaves, fire-and-forget.
func (a *app) completeFarkleTurn(ctx context.Context, m *farkle.Match) {
	if err := m.CompleteTurn(ctx); err != nil {
		a.logger.Warn("completing turn", zap.Error(err))
		return
	}
	if !m.Finished() {
		_ = m.Save(ctx)
	}
}

// quitFarkle forces a synchronous save before returning to the menu.
func (a *app) quitFarkle(ctx context.Context, m *farkle.Match) bool {
	if err := m.Save(ctx); err != nil {
		fmt.Printf("saving game: %v\n", err)
	} else {
		fmt.Println("game saved")
	}
	return false
}

func (a *app) renderFarkle(m *farkle.Match) {
	fmt.Println()
	if final, trigger := m.FinalRound(); final {
		fmt.Printf("FINAL ROUND (triggered by %s)\n", m.Players()[trigger].Name)
	}
	for i, p := range m.Players() {
		marker := "  "
		if i == m.CurrentPlayerIndex() {
			marker = "> "
		}
		fmt.Printf("%s%-16s %6d\n", marker, p.Name, m.Total(i))
	}

	turn := m.Turn()
	if turn == nil {
		return
	}
	fmt.Printf("turn score %d, roll %d\n", turn.TurnScore(), turn.RollCount())
	if turn.Phase() == farkle.PhaseIdle {
		return
	}

	setAside := toSet(turn.SetAside())
	selected := toSet(turn.Selected())
	scorable := toSet(turn.ScorableIndices())
	var row []string
	for i, v := range turn.Values() {
		s := strconv.Itoa(v)
		switch {
		case setAside[i]:
			s = "(" + s + ")"
		case selected[i]:
			s = "[" + s + "]"
		case scorable[i]:
			s = s + "*"
		}
		row = append(row, s)
	}
	fmt.Printf("dice: %s   (parens = set aside, brackets = selected, * = scorable)\n",
		strings.Join(row, " "))

	if turn.Phase() == farkle.PhaseSelecting {
		if hints := combinationHints(turn.AvailableValues()); len(hints) > 0 {
			fmt.Printf("combinations: %s\n", strings.Join(hints, ", "))
		}
	}
}

// combinationHints formats the scoring patterns the available dice satisfy.
func combinationHints(values []int) []string {
	var hints []string
	for _, c := range farkle.AvailableCombinations(values) {
		switch c.Name {
		case "single":
			hints = append(hints, fmt.Sprintf("single %d = %d", c.Face, c.Score))
		case "of a kind":
			hints = append(hints, fmt.Sprintf("%d x %d = %d", c.Count, c.Face, c.Score))
		default:
			hints = append(hints, fmt.Sprintf("%s = %d", c.Name, c.Score))
		}
	}
	return hints
}

func toSet(indices []int) map[int]bool {
	set := make(map[int]bool, len(indices))
	for _, i := range indices {
		set[i] = true
	}
	return set
}
