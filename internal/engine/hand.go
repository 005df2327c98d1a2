package engine

import (
	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/gameid"
)

// StartHand deals a new hand if the table has enough eligible players
// and none is already in progress. It purges disconnected and busted
// players from the roster, advances the button, posts blinds, deals
// hole cards, and sets the first player to act.
func (e *Engine) StartHand() error {
	e.guardReentrancy()
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.canStartHandLocked() {
		return ErrCannotStartHand
	}

	e.purgeIneligible()

	participants := make([]*Player, 0, len(e.players))
	for _, p := range e.players {
		if p.IsSittingOut {
			continue
		}
		p.resetForNewHand()
		participants = append(participants, p)
	}
	e.inHand = participants

	e.handNumber++
	dealerSeat := e.advanceDealer(participants)

	e.activeDeck = deck.NewDeck()
	e.hand = &HandState{
		Round:      Preflop,
		DealerSeat: dealerSeat,
		HandNumber: e.handNumber,
		HandID:     gameid.Generate(),
		MinRaise:   e.cfg.BigBlind,
	}
	e.handInProgress = true

	for _, p := range participants {
		cards, err := e.activeDeck.DealN(2)
		if err != nil {
			panic("engine: " + err.Error())
		}
		p.HoleCards = cards
	}

	e.postBlinds(participants, dealerSeat)

	e.emit(HandStartEvent{
		HandNumber: e.hand.HandNumber,
		HandID:     e.hand.HandID,
		DealerSeat: dealerSeat,
		Roster:     e.publicRoster(),
	})
	for _, p := range participants {
		e.emit(HoleCardsEvent{PlayerID: p.ID, Cards: p.HoleCards})
	}

	e.logger.Debug("hand started", "hand", e.hand.HandNumber, "dealer_seat", dealerSeat, "players", len(participants))

	e.beginRound()
	return nil
}

// advanceDealer moves the button to the next occupied seat among
// participants, or to the lowest occupied seat on the table's first
// hand.
func (e *Engine) advanceDealer(participants []*Player) int {
	if e.lastDealerSeat == -1 {
		e.lastDealerSeat = participants[0].Seat
	} else {
		e.lastDealerSeat = nextSeatAfter(participants, e.lastDealerSeat)
	}
	return e.lastDealerSeat
}

// postBlinds commits the small and big blind, capping each at the
// poster's stack. The dealer seat always posts the small blind and the
// next occupied seat posts the big blind, regardless of how many
// players are in the hand: this collapses cleanly to the heads-up case
// (dealer posts SB, the other player posts BB) without a separate
// branch. current_bet and min_raise are then set to the configured big
// blind regardless of what was actually posted, so a short-stacked
// blind is handled purely through side-pot eligibility rather than by
// shrinking what everyone else owes.
func (e *Engine) postBlinds(participants []*Player, dealerSeat int) {
	sbSeat := dealerSeat
	bbSeat := nextSeatAfter(participants, sbSeat)
	e.bbSeatThisHand = bbSeat

	e.postBlind(e.playerBySeatIn(participants, sbSeat), e.cfg.SmallBlind)
	e.postBlind(e.playerBySeatIn(participants, bbSeat), e.cfg.BigBlind)

	e.hand.CurrentBet = e.cfg.BigBlind
	e.hand.MinRaise = e.cfg.BigBlind
}

func (e *Engine) postBlind(p *Player, blind int) {
	amt := blind
	if amt > p.Chips {
		amt = p.Chips
	}
	p.Chips -= amt
	p.CurrentBet += amt
	p.TotalBet += amt
	e.hand.Pot += amt
	if p.Chips == 0 {
		p.IsAllIn = true
	}
}

// dealCommunity optionally burns a card, then deals n community cards
// and announces the cumulative board.
func (e *Engine) dealCommunity(n int, burn bool) {
	if burn {
		if err := e.activeDeck.Burn(); err != nil {
			panic("engine: " + err.Error())
		}
	}
	cards, err := e.activeDeck.DealN(n)
	if err != nil {
		panic("engine: " + err.Error())
	}
	e.hand.CommunityCards = append(e.hand.CommunityCards, cards...)

	board := make([]deck.Card, len(e.hand.CommunityCards))
	copy(board, e.hand.CommunityCards)
	e.emit(CommunityEvent{Round: e.hand.Round, Cards: board})
}
