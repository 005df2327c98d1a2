package potbuilder

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sumContributions(cs []Contribution) int {
	total := 0
	for _, c := range cs {
		total += c.Amount
	}
	return total
}

// S2 from spec.md: three players, A all-in for 10, B and C call 10 each,
// no further betting. One main pot of 30 eligible to all three.
func TestBuildSidePots_S2_SingleAllInNoFurtherBetting(t *testing.T) {
	contributions := []Contribution{
		{PlayerID: "A", Amount: 10, AllIn: true},
		{PlayerID: "B", Amount: 10},
		{PlayerID: "C", Amount: 10},
	}
	pots := BuildSidePots(contributions)
	if assert.Len(t, pots, 1) {
		assert.Equal(t, 30, pots[0].Amount)
		assert.ElementsMatch(t, []string{"A", "B", "C"}, pots[0].EligiblePlayerIDs)
	}
}

func TestBuildSidePots_ThreeWayTwoAllInsCreatesTwoSidePots(t *testing.T) {
	// A all-in for 10, B all-in for 30, C covers with 60.
	contributions := []Contribution{
		{PlayerID: "A", Amount: 10, AllIn: true},
		{PlayerID: "B", Amount: 30, AllIn: true},
		{PlayerID: "C", Amount: 60},
	}
	pots := BuildSidePots(contributions)
	if assert.Len(t, pots, 3) {
		assert.Equal(t, 30, pots[0].Amount) // 10*3
		assert.ElementsMatch(t, []string{"A", "B", "C"}, pots[0].EligiblePlayerIDs)

		assert.Equal(t, 40, pots[1].Amount) // (30-10)*2
		assert.ElementsMatch(t, []string{"B", "C"}, pots[1].EligiblePlayerIDs)

		assert.Equal(t, 30, pots[2].Amount) // 60-30
		assert.ElementsMatch(t, []string{"C"}, pots[2].EligiblePlayerIDs)
	}
	assert.Equal(t, sumContributions(contributions), Total(pots))
}

func TestBuildSidePots_NoAllIns_SingleMainPot(t *testing.T) {
	contributions := []Contribution{
		{PlayerID: "A", Amount: 20},
		{PlayerID: "B", Amount: 20},
		{PlayerID: "C", Amount: 20},
	}
	pots := BuildSidePots(contributions)
	if assert.Len(t, pots, 1) {
		assert.Equal(t, 60, pots[0].Amount)
		assert.ElementsMatch(t, []string{"A", "B", "C"}, pots[0].EligiblePlayerIDs)
	}
}

func TestBuildSidePots_FoldedPlayerChipsStayInPotButNotEligible(t *testing.T) {
	contributions := []Contribution{
		{PlayerID: "A", Amount: 10, AllIn: true},
		{PlayerID: "B", Amount: 10, Folded: true},
		{PlayerID: "C", Amount: 40},
	}
	pots := BuildSidePots(contributions)
	require := sumContributions(contributions)
	assert.Equal(t, require, Total(pots))
	for _, p := range pots {
		assert.NotContains(t, p.EligiblePlayerIDs, "B")
	}
}

func TestBuildSidePots_AllButWinnerFolded(t *testing.T) {
	contributions := []Contribution{
		{PlayerID: "A", Amount: 5, Folded: true},
		{PlayerID: "B", Amount: 5, Folded: true},
		{PlayerID: "C", Amount: 5},
	}
	pots := BuildSidePots(contributions)
	if assert.Len(t, pots, 1) {
		assert.Equal(t, 15, pots[0].Amount)
		assert.Equal(t, []string{"C"}, pots[0].EligiblePlayerIDs)
	}
}

// Property: across many randomly generated all-in patterns, pot amounts
// always sum to total contributions, every pot's eligibility is
// non-empty, and eligibility sets shrink (or stay the same) along the
// ordering.
func TestBuildSidePots_PropertiesHoldAcrossRandomPatterns(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	ids := []string{"p0", "p1", "p2", "p3", "p4", "p5"}

	for trial := 0; trial < 500; trial++ {
		n := 2 + rng.Intn(5)
		contributions := make([]Contribution, n)
		for i := 0; i < n; i++ {
			amount := rng.Intn(200)
			folded := rng.Intn(4) == 0
			allIn := !folded && amount > 0 && rng.Intn(3) == 0
			contributions[i] = Contribution{
				PlayerID: ids[i],
				Amount:   amount,
				Folded:   folded,
				AllIn:    allIn,
			}
		}
		// A hand always has someone left to win the pot: if the draw
		// above left no non-folded contributor, make the first one live.
		live := false
		for _, ct := range contributions {
			live = live || (!ct.Folded && ct.Amount > 0)
		}
		if !live {
			contributions[0].Folded = false
			if contributions[0].Amount == 0 {
				contributions[0].Amount = 1
			}
		}

		pots := BuildSidePots(contributions)

		assert.Equal(t, sumContributions(contributions), Total(pots))

		var prevSet map[string]bool
		for _, p := range pots {
			assert.NotEmpty(t, p.EligiblePlayerIDs, "pot with amount %d has no eligible players", p.Amount)
			assert.Greater(t, p.Amount, 0)

			curSet := make(map[string]bool, len(p.EligiblePlayerIDs))
			for _, id := range p.EligiblePlayerIDs {
				curSet[id] = true
			}
			if prevSet != nil {
				for id := range curSet {
					assert.True(t, prevSet[id], "eligibility set grew: %s appeared in a later pot not present earlier", id)
				}
			}
			prevSet = curSet
		}
	}
}
