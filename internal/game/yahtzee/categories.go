// Package yahtzee implements the Yahtzee dice game: the fixed category
// table, per-player scorecards, the simplified roll/hold/pick turn machine,
// and the match controller.
package yahtzee

// NumDice is the number of dice in a Yahtzee game.
const NumDice = 5

// Sides is the number of faces per die.
const Sides = 6

// MaxRolls is the per-turn roll budget.
const MaxRolls = 3

// Fixed score values.
const (
	FullHouseScore      = 25
	SmallStraightScore  = 30
	LargeStraightScore  = 40
	YahtzeeScore        = 50
	YahtzeeBonusScore   = 100
	UpperBonusScore     = 35
	UpperBonusThreshold = 63
)

// CategoryID identifies one of the 13 scoring categories.
type CategoryID string

const (
	Ones          CategoryID = "ones"
	Twos          CategoryID = "twos"
	Threes        CategoryID = "threes"
	Fours         CategoryID = "fours"
	Fives         CategoryID = "fives"
	Sixes         CategoryID = "sixes"
	ThreeOfAKind  CategoryID = "threeOfAKind"
	FourOfAKind   CategoryID = "fourOfAKind"
	FullHouse     CategoryID = "fullHouse"
	SmallStraight CategoryID = "smallStraight"
	LargeStraight CategoryID = "largeStraight"
	Yahtzee       CategoryID = "yahtzee"
	Chance        CategoryID = "chance"
)

// Section groups categories for display and the upper bonus.
type Section int

const (
	// Upper holds the six numeral categories counted toward the 63-point
	// bonus.
	Upper Section = iota
	// Lower holds the seven combination categories.
	Lower
)

// Category is one scoring rule: a pure function from five die faces to a
// score. The table is statically defined and shared read-only by all
// players.
type Category struct {
	ID      CategoryID
	Name    string
	Section Section
	Score   func(values []int) int
}

// Categories is the fixed 13-category table in display order.
var Categories = []Category{
	{Ones, "Ones", Upper, sumOfFace(1)},
	{Twos, "Twos", Upper, sumOfFace(2)},
	{Threes, "Threes", Upper, sumOfFace(3)},
	{Fours, "Fours", Upper, sumOfFace(4)},
	{Fives, "Fives", Upper, sumOfFace(5)},
	{Sixes, "Sixes", Upper, sumOfFace(6)},
	{ThreeOfAKind, "Three of a Kind", Lower, nOfAKindSum(3)},
	{FourOfAKind, "Four of a Kind", Lower, nOfAKindSum(4)},
	{FullHouse, "Full House", Lower, scoreFullHouse},
	{SmallStraight, "Small Straight", Lower, scoreSmallStraight},
	{LargeStraight, "Large Straight", Lower, scoreLargeStraight},
	{Yahtzee, "Yahtzee", Lower, scoreYahtzee},
	{Chance, "Chance", Lower, sumAll},
}

// categoryByID indexes the fixed table.
var categoryByID = func() map[CategoryID]Category {
	m := make(map[CategoryID]Category, len(Categories))
	for _, c := range Categories {
		m[c.ID] = c
	}
	return m
}()

// Lookup returns the category for id.
func Lookup(id CategoryID) (Category, bool) {
	c, ok := categoryByID[id]
	return c, ok
}

func faceCounts(values []int) [Sides + 1]int {
	var counts [Sides + 1]int
	for _, v := range values {
		if v >= 1 && v <= Sides {
			counts[v]++
		}
	}
	return counts
}

func sumAll(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// sumOfFace scores the upper categories: the sum of all dice showing face.
func sumOfFace(face int) func([]int) int {
	return func(values []int) int {
		return faceCounts(values)[face] * face
	}
}

// nOfAKindSum scores the sum of all dice when any face appears at least n
// times, else zero.
func nOfAKindSum(n int) func([]int) int {
	return func(values []int) int {
		counts := faceCounts(values)
		for face := 1; face <= Sides; face++ {
			if counts[face] >= n {
				return sumAll(values)
			}
		}
		return 0
	}
}

// scoreFullHouse scores 25 for exactly one triple and one pair.
func scoreFullHouse(values []int) int {
	counts := faceCounts(values)
	triple, pair := false, false
	for face := 1; face <= Sides; face++ {
		switch counts[face] {
		case 2:
			pair = true
		case 3:
			triple = true
		}
	}
	if triple && pair {
		return FullHouseScore
	}
	return 0
}

// runLength returns the longest run of consecutive faces present.
func runLength(values []int) int {
	counts := faceCounts(values)
	best, run := 0, 0
	for face := 1; face <= Sides; face++ {
		if counts[face] > 0 {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

// scoreSmallStraight scores 30 when any four consecutive faces are present.
func scoreSmallStraight(values []int) int {
	if runLength(values) >= 4 {
		return SmallStraightScore
	}
	return 0
}

// scoreLargeStraight scores 40 when five consecutive faces are present.
func scoreLargeStraight(values []int) int {
	if runLength(values) >= 5 {
		return LargeStraightScore
	}
	return 0
}

// IsYahtzee reports whether all five dice show the same face.
func IsYahtzee(values []int) bool {
	counts := faceCounts(values)
	for face := 1; face <= Sides; face++ {
		if counts[face] == NumDice {
			return true
		}
	}
	return false
}

func scoreYahtzee(values []int) int {
	if IsYahtzee(values) {
		return YahtzeeScore
	}
	return 0
}
