// Package potbuilder splits a hand's total pot across all-in
// contribution thresholds, producing side pots with exact eligibility
// sets.
//
// This is a from-scratch implementation of spec.md's §4.3 algorithm; it
// does not reuse the teacher's internal/game/pot.go CalculateSidePots,
// which mixes a mutating CollectBets step into side-pot calculation in
// a way that can double-count chips when an all-in level exactly
// matches another player's total contribution (spec.md §9, open
// question 2). BuildSidePots below is a pure function over a snapshot
// of contributions with no hidden state.
package potbuilder

import "sort"

// Contribution is one player's total chips committed to the pot this
// hand (not just this round) along with their fold/all-in status.
type Contribution struct {
	PlayerID string
	Amount   int
	Folded   bool
	AllIn    bool
}

// SidePot is one pot in the ordered list, from the lowest all-in level
// to the main pot.
type SidePot struct {
	Amount            int
	EligiblePlayerIDs []string
}

// BuildSidePots computes the ordered list of side pots for a hand's
// contributions. See spec.md §4.3 for the algorithm; amounts across the
// returned pots always sum to the sum of all contributions, and each
// pot's eligibility is non-empty iff its amount is non-zero.
func BuildSidePots(contributions []Contribution) []SidePot {
	levels := distinctAllInLevels(contributions)

	pots := make([]SidePot, 0, len(levels)+1)
	prev := 0
	for _, level := range levels {
		amount := 0
		var eligible []string
		for _, ct := range contributions {
			capped := ct.Amount
			if capped > level {
				capped = level
			}
			if delta := capped - prev; delta > 0 {
				amount += delta
			}
			if !ct.Folded && ct.Amount >= level {
				eligible = append(eligible, ct.PlayerID)
			}
		}
		if amount > 0 && len(eligible) > 0 {
			pots = append(pots, SidePot{Amount: amount, EligiblePlayerIDs: eligible})
		}
		prev = level
	}

	// Chips contributed beyond the highest all-in level (or, if there
	// were no all-ins at all, every contributor's full contribution,
	// folded or not) form one final pot eligible to the non-folded
	// contributors. If only folded players contributed past the top
	// level, those chips join the highest pot already built.
	remainder := 0
	var remainderEligible []string
	for _, ct := range contributions {
		beyond := ct.Amount - prev
		if beyond <= 0 {
			continue
		}
		remainder += beyond
		if !ct.Folded {
			remainderEligible = append(remainderEligible, ct.PlayerID)
		}
	}
	switch {
	case remainder > 0 && len(remainderEligible) > 0:
		pots = append(pots, SidePot{Amount: remainder, EligiblePlayerIDs: remainderEligible})
	case remainder > 0 && len(pots) > 0:
		pots[len(pots)-1].Amount += remainder
	}

	return pots
}

// distinctAllInLevels returns the distinct positive contribution amounts
// among all-in players, ascending.
func distinctAllInLevels(contributions []Contribution) []int {
	seen := make(map[int]bool)
	for _, ct := range contributions {
		if ct.AllIn && ct.Amount > 0 {
			seen[ct.Amount] = true
		}
	}
	levels := make([]int, 0, len(seen))
	for l := range seen {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	return levels
}

// Total sums the amounts across a list of side pots.
func Total(pots []SidePot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}
