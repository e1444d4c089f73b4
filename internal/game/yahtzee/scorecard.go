package yahtzee

// Scorecard tracks one player's category scores for a single game.
//
// Invariant: a category score, once set, is immutable for the rest of the
// game.
type Scorecard struct {
	scores       map[CategoryID]int
	yahtzeeCount int
}

// NewScorecard returns an empty scorecard.
func NewScorecard() *Scorecard {
	return &Scorecard{scores: make(map[CategoryID]int)}
}

// Set scores values into the given category. It returns (0, false) for an
// unknown or already-filled category; the card is unchanged in that case.
// Scoring a five-of-a-kind increments the yahtzee counter regardless of the
// chosen category; every five-of-a-kind after the first earns the 100-point
// bonus in Total.
func (c *Scorecard) Set(id CategoryID, values []int) (int, bool) {
	cat, ok := Lookup(id)
	if !ok {
		return 0, false
	}
	if _, filled := c.scores[id]; filled {
		return 0, false
	}
	score := cat.Score(values)
	c.scores[id] = score
	if IsYahtzee(values) {
		c.yahtzeeCount++
	}
	return score, true
}

// Score returns the locked-in score for id, if set.
func (c *Scorecard) Score(id CategoryID) (int, bool) {
	s, ok := c.scores[id]
	return s, ok
}

// Filled reports whether id has been scored.
func (c *Scorecard) Filled(id CategoryID) bool {
	_, ok := c.scores[id]
	return ok
}

// Complete reports whether all 13 categories are filled.
func (c *Scorecard) Complete() bool {
	return len(c.scores) == len(Categories)
}

// YahtzeeCount returns the number of five-of-a-kinds scored this game.
func (c *Scorecard) YahtzeeCount() int { return c.yahtzeeCount }

// UpperSubtotal returns the sum of the six numeral categories scored so far.
func (c *Scorecard) UpperSubtotal() int {
	total := 0
	for _, cat := range Categories {
		if cat.Section != Upper {
			continue
		}
		if s, ok := c.scores[cat.ID]; ok {
			total += s
		}
	}
	return total
}

// UpperBonus returns 35 once the upper subtotal reaches 63, else 0.
func (c *Scorecard) UpperBonus() int {
	if c.UpperSubtotal() >= UpperBonusThreshold {
		return UpperBonusScore
	}
	return 0
}

// YahtzeeBonus returns 100 for every five-of-a-kind after the first.
func (c *Scorecard) YahtzeeBonus() int {
	if c.yahtzeeCount > 1 {
		return (c.yahtzeeCount - 1) * YahtzeeBonusScore
	}
	return 0
}

// Total returns the grand total: all categories plus the upper and yahtzee
// bonuses.
func (c *Scorecard) Total() int {
	total := c.UpperBonus() + c.YahtzeeBonus()
	for _, s := range c.scores {
		total += s
	}
	return total
}

// Export returns the filled categories as a plain map for persistence.
func (c *Scorecard) Export() map[string]int {
	out := make(map[string]int, len(c.scores))
	for id, s := range c.scores {
		out[string(id)] = s
	}
	return out
}

// RestoreScorecard rebuilds a scorecard from persisted category scores and
// the yahtzee counter.
func RestoreScorecard(scores map[string]int, yahtzeeCount int) *Scorecard {
	c := NewScorecard()
	for id, s := range scores {
		if _, ok := Lookup(CategoryID(id)); ok {
			c.scores[CategoryID(id)] = s
		}
	}
	c.yahtzeeCount = yahtzeeCount
	return c
}
