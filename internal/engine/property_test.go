package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestProperty_ChipsAreConservedAcrossRandomizedHands drives many
// simulated hands through the full action/round/showdown machinery with
// pseudo-random legal actions fed back from each ActionOnEvent, and
// asserts the one invariant that must always hold regardless of how the
// cards or actions fall: no chip is created or destroyed.
func TestProperty_ChipsAreConservedAcrossRandomizedHands(t *testing.T) {
	for trial := 0; trial < 25; trial++ {
		rng := rand.New(rand.NewSource(int64(trial)))

		cfg := DefaultConfig()
		cfg.BuyIn = 20 + rng.Intn(180)
		numPlayers := 2 + rng.Intn(4) // 2..5

		var pending *ActionOnEvent
		var e *Engine
		e = New(cfg, WithEventSink(func(ev Event) {
			if ao, ok := ev.(ActionOnEvent); ok {
				pending = &ao
			}
		}))

		ids := make([]string, 0, numPlayers)
		for i := 0; i < numPlayers; i++ {
			id := string(rune('A' + i))
			require.NoError(t, e.AddPlayer(id, id, i))
			ids = append(ids, id)
		}

		before := totalChips(e, ids)

		for hand := 0; hand < 10 && e.CanStartHand(); hand++ {
			require.NoError(t, e.StartHand())

			for i := 0; i < 200 && e.handInProgress; i++ {
				require.NotNil(t, pending, "a hand in progress must always have a pending action request")
				action := pickRandomAction(rng, pending.ValidActions)
				amount := 0
				if action.MinAmount != action.MaxAmount {
					amount = action.MinAmount + rng.Intn(action.MaxAmount-action.MinAmount+1)
				} else {
					amount = action.MinAmount
				}
				playerID := pending.PlayerID
				pending = nil
				ok, err := e.HandleAction(playerID, action.Action, amount)
				require.NoError(t, err)
				require.True(t, ok)
			}
			require.False(t, e.handInProgress, "simulated hand did not terminate within the action budget")
		}

		after := totalChips(e, ids)
		require.Equal(t, before, after, "trial %d: chips must be conserved", trial)
	}
}

func totalChips(e *Engine, ids []string) int {
	total := 0
	for _, id := range ids {
		if p := e.findByID(id); p != nil {
			total += p.Chips
		}
	}
	return total
}

// pickRandomAction favors resolving the hand (fold/check/call) over
// raising, so trials terminate in a bounded number of actions while
// still exercising the raise/all-in path regularly.
func pickRandomAction(rng *rand.Rand, specs []ActionSpec) ActionSpec {
	var raises []ActionSpec
	var settling []ActionSpec
	for _, s := range specs {
		if s.Action == Raise || s.Action == AllIn {
			raises = append(raises, s)
		} else {
			settling = append(settling, s)
		}
	}
	if len(raises) > 0 && rng.Intn(4) == 0 {
		return raises[rng.Intn(len(raises))]
	}
	return settling[rng.Intn(len(settling))]
}
