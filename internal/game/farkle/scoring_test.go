package farkle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicehall/internal/game/farkle"
)

func TestScoreSelection_Table(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   int
		valid  bool
	}{
		{"three ones", []int{1, 1, 1}, 1000, true},
		{"three twos", []int{2, 2, 2}, 200, true},
		{"three fives", []int{5, 5, 5}, 500, true},
		{"three sixes", []int{6, 6, 6}, 600, true},
		{"straight", []int{1, 2, 3, 4, 5, 6}, 1000, true},
		{"straight shuffled", []int{6, 3, 1, 5, 2, 4}, 1000, true},
		{"three pairs", []int{2, 2, 3, 3, 5, 5}, 1500, true},
		{"three pairs with ones", []int{1, 1, 2, 2, 3, 3}, 1500, true},
		{"two triplets", []int{4, 4, 4, 2, 2, 2}, 2500, true},
		{"four ones", []int{1, 1, 1, 1}, 2000, true},
		{"five ones", []int{1, 1, 1, 1, 1}, 4000, true},
		{"six ones", []int{1, 1, 1, 1, 1, 1}, 8000, true},
		{"four twos", []int{2, 2, 2, 2}, 400, true},
		{"six sixes", []int{6, 6, 6, 6, 6, 6}, 4800, true},
		{"single one", []int{1}, 100, true},
		{"single five", []int{5}, 50, true},
		{"one and five", []int{1, 5}, 150, true},
		{"triple plus singles", []int{3, 3, 3, 1, 5}, 450, true},
		{"four ones plus fives", []int{1, 1, 1, 1, 5, 5}, 2100, true},
		{"nothing scores", []int{2, 3, 4}, 0, false},
		{"partial junk", []int{1, 1, 2}, 0, false},
		{"pair of twos", []int{2, 2}, 0, false},
		{"empty", nil, 0, false},
		{"out of range face", []int{1, 7}, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := farkle.ScoreSelection(tc.values)
			assert.Equal(t, tc.valid, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestScoreSelection_SpecialPatternsShortCircuit(t *testing.T) {
	// Three pairs beats counting the fives as singles.
	got, ok := farkle.ScoreSelection([]int{5, 5, 2, 2, 3, 3})
	require.True(t, ok)
	assert.Equal(t, 1500, got)

	// Two triplets beats the two separate three-of-a-kinds (1000 + 200).
	got, ok = farkle.ScoreSelection([]int{1, 1, 1, 2, 2, 2})
	require.True(t, ok)
	assert.Equal(t, 2500, got)
}

func TestScoreSelection_SixOfAKindIsNotAPattern(t *testing.T) {
	// Six of a kind is scored as an N-of-a-kind, not as a whole-group pattern.
	got, ok := farkle.ScoreSelection([]int{2, 2, 2, 2, 2, 2})
	require.True(t, ok)
	assert.Equal(t, 1600, got) // 200 * 2^3
}

func TestIsFarkle(t *testing.T) {
	assert.True(t, farkle.IsFarkle([]int{2, 3, 4, 6}))
	assert.True(t, farkle.IsFarkle([]int{2, 2, 3, 4, 6, 6}))
	assert.False(t, farkle.IsFarkle([]int{2, 3, 4, 5}))
	assert.False(t, farkle.IsFarkle([]int{1, 2, 3, 4, 5, 6}))
	assert.False(t, farkle.IsFarkle([]int{2, 2, 3, 3, 6, 6}), "three pairs")
	assert.False(t, farkle.IsFarkle([]int{4, 4, 4, 2, 3, 6}), "three of a kind")
	assert.False(t, farkle.IsFarkle([]int{1}))
	assert.True(t, farkle.IsFarkle([]int{2}))
}

func TestIsFarkle_StraightOnlyWithSixDice(t *testing.T) {
	// 2,3,4,6 of five dice never form a straight; only a 6-dice group can.
	assert.True(t, farkle.IsFarkle([]int{2, 3, 4, 6, 6}))
}

func TestFindScorableDiceIndices(t *testing.T) {
	// values correspond to the original indices passed alongside.
	indices := []int{0, 1, 2, 3, 4, 5}

	got := farkle.FindScorableDiceIndices([]int{1, 2, 3, 5, 2, 6}, indices)
	assert.Equal(t, []int{0, 3}, got, "only the 1 and the 5 highlight")

	got = farkle.FindScorableDiceIndices([]int{4, 4, 4, 2, 3, 6}, indices)
	assert.Equal(t, []int{0, 1, 2}, got, "the triple highlights")

	got = farkle.FindScorableDiceIndices([]int{1, 2, 3, 4, 5, 6}, indices)
	assert.Equal(t, indices, got, "a straight highlights everything")

	got = farkle.FindScorableDiceIndices([]int{2, 2, 3, 3, 6, 6}, indices)
	assert.Equal(t, indices, got, "three pairs highlight everything")

	got = farkle.FindScorableDiceIndices([]int{2, 3}, []int{4, 5})
	assert.Empty(t, got)
}

func TestFindScorableDiceIndices_PreservesOriginalIndices(t *testing.T) {
	// Dice 1 and 3 are set aside; available dice sit at indices 0, 2, 4, 5.
	got := farkle.FindScorableDiceIndices([]int{5, 2, 1, 3}, []int{0, 2, 4, 5})
	assert.Equal(t, []int{0, 4}, got)
}

func TestDetectStraightAttempt(t *testing.T) {
	missing, ok := farkle.DetectStraightAttempt([]int{1, 2, 3, 4, 5, 5})
	require.True(t, ok)
	assert.Equal(t, 6, missing)

	missing, ok = farkle.DetectStraightAttempt([]int{1, 1, 2, 3, 4, 5})
	require.True(t, ok)
	assert.Equal(t, 6, missing)

	missing, ok = farkle.DetectStraightAttempt([]int{2, 3, 3, 4, 5, 6})
	require.True(t, ok)
	assert.Equal(t, 1, missing)

	_, ok = farkle.DetectStraightAttempt([]int{1, 1, 1, 2, 3, 4})
	assert.False(t, ok, "a triple is not exactly one duplicated pair")

	_, ok = farkle.DetectStraightAttempt([]int{1, 1, 2, 2, 3, 4})
	assert.False(t, ok, "two pairs plus singles is rejected")

	_, ok = farkle.DetectStraightAttempt([]int{1, 2, 3, 4, 5, 6})
	assert.False(t, ok, "a complete straight needs no rescue")

	_, ok = farkle.DetectStraightAttempt([]int{1, 2, 3, 4, 5})
	assert.False(t, ok, "only defined for six dice")
}

func TestAvailableCombinations(t *testing.T) {
	combos := farkle.AvailableCombinations([]int{1, 1, 1, 1, 5, 2})

	// Overlapping hints: 3-of-a-kind and 4-of-a-kind for the ones.
	var kinds []int
	var scores []int
	for _, c := range combos {
		if c.Face == 1 && c.Name == "of a kind" {
			kinds = append(kinds, c.Count)
			scores = append(scores, c.Score)
		}
	}
	assert.Equal(t, []int{3, 4}, kinds)
	assert.Equal(t, []int{1000, 2000}, scores)

	var hasSingleOne, hasSingleFive bool
	for _, c := range combos {
		if c.Name == "single" && c.Face == 1 {
			hasSingleOne = true
		}
		if c.Name == "single" && c.Face == 5 {
			hasSingleFive = true
		}
	}
	assert.True(t, hasSingleOne)
	assert.True(t, hasSingleFive)
}

func TestAvailableCombinations_WholeGroupPatterns(t *testing.T) {
	combos := farkle.AvailableCombinations([]int{1, 2, 3, 4, 5, 6})
	require.NotEmpty(t, combos)
	assert.Equal(t, "straight", combos[0].Name)
	assert.Equal(t, 1000, combos[0].Score)
}

// Every accepted selection is fully attributable: each die is a 1, a 5, part
// of a >=3-of-a-kind of its face, or the whole selection is one of the
// six-dice patterns.
func TestScoreSelection_Property_AcceptedSelectionsAttributable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOfN(rapid.IntRange(1, 6), 1, 6).Draw(rt, "values")
		score, ok := farkle.ScoreSelection(values)
		if !ok {
			return
		}
		assert.Greater(rt, score, 0)

		counts := make(map[int]int)
		for _, v := range values {
			counts[v]++
		}
		wholeGroup := false
		if len(values) == 6 {
			distinct := len(counts)
			pairs, triples := 0, 0
			for _, c := range counts {
				if c == 2 {
					pairs++
				}
				if c == 3 {
					triples++
				}
			}
			wholeGroup = distinct == 6 || pairs == 3 || triples == 2
		}
		if wholeGroup {
			return
		}
		for _, v := range values {
			attributable := v == 1 || v == 5 || counts[v] >= 3
			assert.True(rt, attributable, "die %d not attributable in %v", v, values)
		}
	})
}

// IsFarkle agrees with ScoreSelection: a farkled roll has no scoring subset.
func TestIsFarkle_Property_NoScorableSubsetWhenFarkled(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOfN(rapid.IntRange(1, 6), 1, 6).Draw(rt, "values")
		if !farkle.IsFarkle(values) {
			return
		}
		// No single die scores.
		for _, v := range values {
			_, ok := farkle.ScoreSelection([]int{v})
			assert.False(rt, ok)
		}
		// The whole group does not score either.
		_, ok := farkle.ScoreSelection(values)
		assert.False(rt, ok)
	})
}
