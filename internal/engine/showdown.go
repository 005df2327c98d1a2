package engine

import (
	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/evaluator"
	"github.com/lox/holdem-engine/internal/potbuilder"
)

func (e *Engine) buildSidePots() []potbuilder.SidePot {
	contributions := make([]potbuilder.Contribution, len(e.inHand))
	for i, p := range e.inHand {
		contributions[i] = potbuilder.Contribution{
			PlayerID: p.ID,
			Amount:   p.TotalBet,
			Folded:   p.HasFolded,
			AllIn:    p.IsAllIn,
		}
	}
	return potbuilder.BuildSidePots(contributions)
}

// awardSingleWinner handles the fast path where every other player has
// folded: the lone remaining player takes the entire pot with no
// evaluation needed.
func (e *Engine) awardSingleWinner() {
	var winner *Player
	for _, p := range e.inHand {
		if !p.HasFolded {
			winner = p
			break
		}
	}
	amount := e.hand.Pot
	winner.Chips += amount

	e.emit(ShowdownEvent{Results: []ShowdownResult{{
		PlayerID:  winner.ID,
		WinAmount: amount,
	}}})

	e.finishHand()
}

// showdown evaluates every non-folded player's best seven-card hand,
// splits each side pot among its best hand(s), and pays out.
func (e *Engine) showdown() {
	pots := e.buildSidePots()
	e.emit(PotUpdateEvent{Pot: e.hand.Pot, SidePots: pots})

	hands := make(map[string]evaluator.EvaluatedHand, len(e.inHand))
	for _, p := range e.inHand {
		if p.HasFolded {
			continue
		}
		cards := append(append([]deck.Card{}, p.HoleCards...), e.hand.CommunityCards...)
		h, err := evaluator.EvaluateBest(cards)
		if err != nil {
			panic("engine: " + err.Error())
		}
		hands[p.ID] = h
	}

	awards := make(map[string]int)
	for _, pot := range pots {
		for id, amt := range e.resolvePot(pot, hands) {
			awards[id] += amt
		}
	}

	results := make([]ShowdownResult, 0, len(hands))
	for _, p := range e.inHand {
		if p.HasFolded {
			continue
		}
		h := hands[p.ID]
		p.Chips += awards[p.ID]
		results = append(results, ShowdownResult{
			PlayerID:  p.ID,
			Cards:     p.HoleCards,
			Hand:      &h,
			WinAmount: awards[p.ID],
		})
	}

	e.emit(ShowdownEvent{Results: results})
	e.finishHand()
}

// resolvePot splits one side pot among its best hand(s), with any odd
// remainder chip going to the tied winner seated closest to the left of
// the dealer.
func (e *Engine) resolvePot(pot potbuilder.SidePot, hands map[string]evaluator.EvaluatedHand) map[string]int {
	var winners []*Player
	var best evaluator.EvaluatedHand
	first := true
	for _, id := range pot.EligiblePlayerIDs {
		h := hands[id]
		switch {
		case first || h.CompareTo(best) > 0:
			best = h
			winners = []*Player{e.findByID(id)}
			first = false
		case h.CompareTo(best) == 0:
			winners = append(winners, e.findByID(id))
		}
	}

	awards := make(map[string]int, len(winners))
	share := pot.Amount / len(winners)
	remainder := pot.Amount % len(winners)
	for _, w := range winners {
		awards[w.ID] += share
	}
	if remainder > 0 {
		lucky := closestLeftOfDealer(winners, e.hand.DealerSeat, e.cfg.MaxSeats)
		awards[lucky.ID] += remainder
	}
	return awards
}

// closestLeftOfDealer returns whichever of winners sits nearest,
// clockwise, to the seat immediately left of the dealer.
func closestLeftOfDealer(winners []*Player, dealerSeat, maxSeats int) *Player {
	best := winners[0]
	bestDist := seatDistanceFromDealer(best.Seat, dealerSeat, maxSeats)
	for _, w := range winners[1:] {
		d := seatDistanceFromDealer(w.Seat, dealerSeat, maxSeats)
		if d < bestDist {
			bestDist = d
			best = w
		}
	}
	return best
}

func seatDistanceFromDealer(seat, dealerSeat, maxSeats int) int {
	return ((seat-dealerSeat-1)%maxSeats + maxSeats) % maxSeats
}

// finishHand closes out the hand: clears in-progress state, purges
// busted disconnected players, and emits hand_end.
func (e *Engine) finishHand() {
	e.logger.Debug("hand ended", "hand", e.hand.HandNumber, "pot", e.hand.Pot)

	if e.history != nil {
		e.history.record(e.hand, e.inHand)
	}

	kept := e.players[:0:0]
	for _, p := range e.players {
		if p.IsConnected || p.Chips > 0 {
			kept = append(kept, p)
		}
	}
	e.players = kept

	roster := e.publicRoster()
	e.handInProgress = false
	e.hand = nil
	e.inHand = nil

	e.emit(HandEndEvent{Roster: roster})
}
