package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicehall/internal/game/yahtzee"
)

// playYahtzee drives a Yahtzee match at the terminal until it finishes or
// the player quits to the menu. Quitting forces a synchronous save first.
func (a *app) playYahtzee(ctx context.Context, m *yahtzee.Match) {
	for !m.Finished() {
		a.renderYahtzee(m)
		turn := m.Turn()

		switch turn.Phase() {
		case yahtzee.PhaseIdle:
			if !a.yahtzeeRoll(ctx, m) {
				return
			}
		case yahtzee.PhasePicking:
			if !a.yahtzeePick(ctx, m) {
				return
			}
		case yahtzee.PhaseScored:
			a.completeYahtzeeTurn(ctx, m)
		default:
			// A restored save can land mid-roll.
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

func (a *app) yahtzeeRoll(ctx context.Context, m *yahtzee.Match) bool {
	cmd, ok := a.prompt("[%s] r=roll, q=save & quit: ", m.CurrentPlayer().Name)
	if !ok {
		return a.quitYahtzee(ctx, m)
	}
	switch cmd {
	case "r":
		if m.Turn().Roll() {
			a.animateRoll()
			m.Turn().RollCompleted()
		}
	case "q":
		return a.quitYahtzee(ctx, m)
	}
	return true
}

func (a *app) yahtzeePick(ctx context.Context, m *yahtzee.Match) bool {
	turn := m.Turn()
	options := "category name=score it"
	if turn.RollsLeft() > 0 {
		options = "1-5=toggle hold, r=reroll, " + options
	}
	cmd, ok := a.prompt("[%s] %s, q=save & quit: ", m.CurrentPlayer().Name, options)
	if !ok {
		return a.quitYahtzee(ctx, m)
	}
	switch cmd {
	case "r":
		if turn.Roll() {
			a.animateRoll()
			turn.RollCompleted()
		}
	case "q":
		return a.quitYahtzee(ctx, m)
	default:
		if n, err := strconv.Atoi(cmd); err == nil {
			turn.ToggleHold(n - 1)
			return true
		}
		id := yahtzee.CategoryID(cmd)
		if _, ok := yahtzee.Lookup(id); !ok {
			fmt.Println("unknown category; use the ids from the scorecard")
			return true
		}
		if score, ok := m.Choose(id); ok {
			a.banner("%s scores %d in %s", m.CurrentPlayer().Name, score, cmd)
		} else {
			fmt.Println("that category is already filled")
		}
	}
	return true
}

func (a *app) completeYahtzeeTurn(ctx context.Context, m *yahtzee.Match) {
	if err := m.CompleteTurn(ctx); err != nil {
		a.logger.Warn("completing turn", zap.Error(err))
		return
	}
	if !m.Finished() {
		_ = m.Save(ctx)
	}
}

func (a *app) quitYahtzee(ctx context.Context, m *yahtzee.Match) bool {
	if err := m.Save(ctx); err != nil {
		fmt.Printf("saving game: %v\n", err)
	} else {
		fmt.Println("game saved")
	}
	return false
}

func (a *app) renderYahtzee(m *yahtzee.Match) {
	fmt.Println()
	for i, p := range m.Players() {
		marker := "  "
		if i == m.CurrentPlayerIndex() {
			marker = "> "
		}
		fmt.Printf("%s%-16s %6d\n", marker, p.Name, m.Card(i).Total())
	}

	turn := m.Turn()
	if turn == nil {
		return
	}
	card := m.Card(m.CurrentPlayerIndex())
	fmt.Println("scorecard:")
	for _, cat := range yahtzee.Categories {
		if s, ok := card.Score(cat.ID); ok {
			fmt.Printf("  %-14s %3d\n", cat.ID, s)
		} else {
			fmt.Printf("  %-14s   -\n", cat.ID)
		}
	}
	fmt.Printf("  upper bonus    %3d   yahtzee bonus %3d\n", card.UpperBonus(), card.YahtzeeBonus())

	if turn.Phase() == yahtzee.PhaseIdle {
		return
	}
	held := turn.Held()
	var row []string
	for i, v := range turn.Values() {
		s := strconv.Itoa(v)
		if held[i] {
			s = "[" + s + "]"
		}
		row = append(row, s)
	}
	fmt.Printf("dice: %s   rolls left: %d   (brackets = held)\n",
		strings.Join(row, " "), turn.RollsLeft())
}
