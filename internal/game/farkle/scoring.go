// Package farkle implements the Farkle dice game: the pure scoring engine,
// the per-turn state machine, and the match controller.
package farkle

import "sort"

// NumDice is the number of dice in a Farkle game.
const NumDice = 6

// Sides is the number of faces per die.
const Sides = 6

// Combination score constants.
const (
	StraightScore    = 1000
	ThreePairsScore  = 1500
	TwoTripletsScore = 2500
	SingleOneScore   = 100
	SingleFiveScore  = 50
)

// faceCounts tallies occurrences per face value. Index 0 is unused.
func faceCounts(values []int) [Sides + 1]int {
	var counts [Sides + 1]int
	for _, v := range values {
		if v >= 1 && v <= Sides {
			counts[v]++
		}
	}
	return counts
}

// isStraight reports whether counts describe 1,2,3,4,5,6 each exactly once.
func isStraight(counts [Sides + 1]int) bool {
	for face := 1; face <= Sides; face++ {
		if counts[face] != 1 {
			return false
		}
	}
	return true
}

// isThreePairs reports whether counts describe three distinct values each
// appearing exactly twice.
func isThreePairs(counts [Sides + 1]int) bool {
	pairs := 0
	for face := 1; face <= Sides; face++ {
		switch counts[face] {
		case 0:
		case 2:
			pairs++
		default:
			return false
		}
	}
	return pairs == 3
}

// isTwoTriplets reports whether counts describe two distinct values each
// appearing exactly three times.
func isTwoTriplets(counts [Sides + 1]int) bool {
	triplets := 0
	for face := 1; face <= Sides; face++ {
		switch counts[face] {
		case 0:
		case 3:
			triplets++
		default:
			return false
		}
	}
	return triplets == 2
}

// kindBase returns the three-of-a-kind base score for a face: 1000 for aces,
// face*100 otherwise.
func kindBase(face int) int {
	if face == 1 {
		return StraightScore
	}
	return face * 100
}

// kindScore returns the score for count dice of the same face.
//
// Precondition: count >= 3. The score doubles for each die beyond three:
// kindBase(face) * 2^(count-3).
func kindScore(face, count int) int {
	score := kindBase(face)
	for i := 3; i < count; i++ {
		score *= 2
	}
	return score
}

// ScoreSelection computes the score of an arbitrary group of die faces. It
// returns (0, false) when any die in the group cannot be attributed to a
// scoring pattern, or when nothing in the group scores.
//
// A six-dice group is first matched against the whole-group patterns
// (straight, three pairs, two triplets), which consume the entire group.
// Otherwise every face with three or more occurrences scores as a single
// N-of-a-kind, and leftover dice are only valid as single 1s or 5s.
func ScoreSelection(values []int) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}
	counts := faceCounts(values)
	total := 0
	for _, v := range values {
		if v < 1 || v > Sides {
			return 0, false
		}
	}

	if len(values) == NumDice {
		switch {
		case isStraight(counts):
			return StraightScore, true
		case isThreePairs(counts):
			return ThreePairsScore, true
		case isTwoTriplets(counts):
			return TwoTripletsScore, true
		}
	}

	for face := 1; face <= Sides; face++ {
		count := counts[face]
		switch {
		case count == 0:
		case count >= 3:
			total += kindScore(face, count)
		case face == 1:
			total += count * SingleOneScore
		case face == 5:
			total += count * SingleFiveScore
		default:
			// A leftover die that is neither a 1 nor a 5: the player
			// picked a non-scoring die, so the whole selection is invalid.
			return 0, false
		}
	}

	if total == 0 {
		return 0, false
	}
	return total, true
}

// IsFarkle reports whether the given available dice contain no scoring
// combination at all: no 1 or 5, no three-or-more-of-a-kind, and (for a full
// six-dice group) neither a straight nor three pairs.
//
// Precondition: values are the currently available (not set-aside) dice.
func IsFarkle(values []int) bool {
	counts := faceCounts(values)
	if counts[1] > 0 || counts[5] > 0 {
		return false
	}
	for face := 1; face <= Sides; face++ {
		if counts[face] >= 3 {
			return false
		}
	}
	if len(values) == NumDice && (isStraight(counts) || isThreePairs(counts)) {
		return false
	}
	return true
}

// FindScorableDiceIndices returns the subset of indices whose die could be
// part of some scoring combination: 1s, 5s, any face with three or more
// occurrences, and all indices when a full six-dice group forms a straight,
// three pairs, or two triplets. Used for highlighting only; it does not
// validate selections.
//
// Precondition: len(values) == len(indices); values[i] is the face of die
// indices[i].
func FindScorableDiceIndices(values, indices []int) []int {
	counts := faceCounts(values)
	if len(values) == NumDice && (isStraight(counts) || isThreePairs(counts) || isTwoTriplets(counts)) {
		out := make([]int, len(indices))
		copy(out, indices)
		sort.Ints(out)
		return out
	}
	var out []int
	for i, v := range values {
		if v == 1 || v == 5 || counts[v] >= 3 {
			out = append(out, indices[i])
		}
	}
	sort.Ints(out)
	return out
}

// DetectStraightAttempt reports whether a six-dice roll is one die short of a
// full straight: exactly five distinct faces with exactly one face
// duplicated. On success it returns the missing face value.
func DetectStraightAttempt(values []int) (missing int, possible bool) {
	if len(values) != NumDice {
		return 0, false
	}
	counts := faceCounts(values)
	missing = 0
	doubles := 0
	for face := 1; face <= Sides; face++ {
		switch counts[face] {
		case 0:
			if missing != 0 {
				return 0, false
			}
			missing = face
		case 1:
		case 2:
			doubles++
		default:
			return 0, false
		}
	}
	if missing == 0 || doubles != 1 {
		return 0, false
	}
	return missing, true
}

// Combination describes one pattern currently satisfiable by the available
// dice, for display purposes. Combinations of different counts for the same
// face may overlap; the list is not a partition.
type Combination struct {
	Name  string
	Face  int // 0 for whole-group patterns
	Count int
	Score int
}

// AvailableCombinations enumerates every pattern satisfiable by the available
// dice, for hinting only.
func AvailableCombinations(values []int) []Combination {
	counts := faceCounts(values)
	var out []Combination

	if len(values) == NumDice {
		switch {
		case isStraight(counts):
			out = append(out, Combination{Name: "straight", Count: NumDice, Score: StraightScore})
		case isThreePairs(counts):
			out = append(out, Combination{Name: "three pairs", Count: NumDice, Score: ThreePairsScore})
		case isTwoTriplets(counts):
			out = append(out, Combination{Name: "two triplets", Count: NumDice, Score: TwoTripletsScore})
		}
	}

	for face := 1; face <= Sides; face++ {
		count := counts[face]
		for k := 3; k <= count; k++ {
			out = append(out, Combination{
				Name:  "of a kind",
				Face:  face,
				Count: k,
				Score: kindScore(face, k),
			})
		}
	}
	if counts[1] > 0 {
		out = append(out, Combination{Name: "single", Face: 1, Count: 1, Score: SingleOneScore})
	}
	if counts[5] > 0 {
		out = append(out, Combination{Name: "single", Face: 5, Count: 1, Score: SingleFiveScore})
	}
	return out
}
