package engine

// HandleAction validates and applies an action from whichever player is
// currently on action. amount is ignored for Fold and Check; for Call it
// is ignored (the engine computes the exact call amount); for Raise and
// AllIn it is the number of chips the player commits from their stack
// this turn (AllIn always uses their full remaining stack regardless of
// amount).
func (e *Engine) HandleAction(id string, action Action, amount int) (bool, error) {
	e.guardReentrancy()
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.handInProgress || e.hand.ActiveSeat == nil {
		return false, ErrNotActivePlayer
	}
	p := e.findByID(id)
	if p == nil || p.Seat != *e.hand.ActiveSeat {
		return false, ErrNotActivePlayer
	}
	return e.applyAction(p, action, amount)
}

// validActionsFor lists the legal actions for p given the hand's
// current betting state.
func (e *Engine) validActionsFor(p *Player) []ActionSpec {
	toCall := e.hand.CurrentBet - p.CurrentBet
	specs := []ActionSpec{{Action: Fold}}

	if toCall <= 0 {
		specs = append(specs, ActionSpec{Action: Check})
	} else {
		callAmt := toCall
		if callAmt > p.Chips {
			callAmt = p.Chips
		}
		specs = append(specs, ActionSpec{Action: Call, MinAmount: callAmt, MaxAmount: callAmt})
	}

	if p.Chips > toCall {
		minRaiseTotal := e.hand.CurrentBet + e.hand.MinRaise
		minIncrement := minRaiseTotal - p.CurrentBet
		if minIncrement > p.Chips {
			minIncrement = p.Chips
		}
		specs = append(specs, ActionSpec{Action: Raise, MinAmount: minIncrement, MaxAmount: p.Chips})
	}

	return specs
}

func (e *Engine) applyAction(p *Player, action Action, amount int) (bool, error) {
	toCall := e.hand.CurrentBet - p.CurrentBet

	switch action {
	case Fold:
		e.foldPlayer(p)
		e.afterAction(p)
		return true, nil

	case Check:
		if toCall != 0 {
			return false, ErrIllegalAction
		}
		e.recordAction(p, Check, p.CurrentBet)
		e.afterAction(p)
		return true, nil

	case Call:
		if toCall <= 0 {
			return false, ErrIllegalAction
		}
		callAmt := toCall
		if callAmt > p.Chips {
			callAmt = p.Chips
		}
		p.Chips -= callAmt
		p.CurrentBet += callAmt
		p.TotalBet += callAmt
		e.hand.Pot += callAmt
		if p.Chips == 0 {
			p.IsAllIn = true
		}
		e.recordAction(p, Call, p.CurrentBet)
		e.afterAction(p)
		return true, nil

	case Raise, AllIn:
		if p.Chips <= toCall {
			return false, ErrIllegalAction
		}
		raiseAmount := amount
		if action == AllIn {
			raiseAmount = p.Chips
		}
		if raiseAmount <= 0 || raiseAmount > p.Chips {
			return false, ErrIllegalAction
		}
		newBet := p.CurrentBet + raiseAmount
		raiseOver := newBet - e.hand.CurrentBet
		isAllIn := raiseAmount == p.Chips
		if raiseOver <= 0 {
			return false, ErrIllegalAction
		}
		if raiseOver < e.hand.MinRaise && !isAllIn {
			return false, ErrIllegalAction
		}

		p.Chips -= raiseAmount
		p.CurrentBet = newBet
		p.TotalBet += raiseAmount
		e.hand.Pot += raiseAmount
		e.hand.CurrentBet = newBet
		if isAllIn {
			p.IsAllIn = true
		}
		// A short all-in raise (below min_raise) never reopens the
		// action at a new, larger min_raise; only a full raise does.
		if raiseOver >= e.hand.MinRaise {
			e.hand.MinRaise = raiseOver
		}

		acted := Raise
		if isAllIn {
			acted = AllIn
		}
		e.recordAction(p, acted, newBet)
		e.afterAction(p)
		return true, nil

	default:
		return false, ErrIllegalAction
	}
}

func (e *Engine) recordAction(p *Player, action Action, amount int) {
	a := action
	p.LastAction = &a
	e.emit(PlayerActedEvent{
		PlayerID:       p.ID,
		Action:         action,
		Amount:         amount,
		Pot:            e.hand.Pot,
		RemainingChips: p.Chips,
	})
}

// afterAction decides what happens immediately after any completed
// action (including a timeout fold): award the pot if only one player
// remains, hand off to the next player to act, or end the round.
func (e *Engine) afterAction(actor *Player) {
	if e.countNonFolded() <= 1 {
		e.awardSingleWinner()
		return
	}
	rotated := e.rotatedAfter(actor.Seat)
	if next, ok := nextToAct(e.hand, rotated); ok {
		e.setActive(next)
		return
	}
	e.endRound()
}

// nextToAct scans a rotated player order (starting just after the last
// actor) for the next player who must act: either they haven't matched
// the current bet, or they haven't acted at all yet this round.
// LastAction is reset to nil at the start of every round (see
// endRound), so this also gives the preflop big blind their option: a
// blind posting never sets LastAction, so the big blind still counts as
// not yet acted even once every other player has called.
func nextToAct(hand *HandState, rotated []*Player) (*Player, bool) {
	for _, p := range rotated {
		if p.HasFolded || p.IsAllIn {
			continue
		}
		toCall := hand.CurrentBet - p.CurrentBet
		if toCall > 0 || p.LastAction == nil {
			return p, true
		}
	}
	return nil, false
}

// firstActive returns the first player in a rotated order who can still
// act (not folded, not all-in), with no regard to whether they've
// already matched the current bet — this is purely positional, used
// only to seat the first actor of a fresh round.
func firstActive(rotated []*Player) (*Player, bool) {
	for _, p := range rotated {
		if !p.HasFolded && !p.IsAllIn {
			return p, true
		}
	}
	return nil, false
}

func (e *Engine) setActive(p *Player) {
	seat := p.Seat
	e.hand.ActiveSeat = &seat
	deadline := e.clock.Now().Add(e.cfg.ActionTimeout)
	e.hand.ActionDeadline = deadline
	e.emit(ActionOnEvent{
		PlayerID:     p.ID,
		ValidActions: e.validActionsFor(p),
		Pot:          e.hand.Pot,
		CurrentBet:   e.hand.CurrentBet,
		Deadline:     deadline,
	})
}

// firstActorRotation returns the seat rotation used to find the first
// actor of the current round: the player after the big blind preflop,
// and the player after the dealer on every later street. Because the dealer seat always posts the small blind (see
// postBlinds), this naturally gives the dealer the first preflop action
// heads-up without a separate case.
func (e *Engine) firstActorRotation() []*Player {
	if e.hand.Round == Preflop {
		return e.rotatedAfter(e.bbSeatThisHand)
	}
	return e.rotatedAfter(e.hand.DealerSeat)
}

// beginRound starts (or immediately resolves) the betting for the
// hand's current round. If one player remains, they're awarded the pot.
// If at most one player can still act, there's nothing left to bet on,
// so the remaining board is dealt at once and the hand proceeds
// straight to showdown.
func (e *Engine) beginRound() {
	if e.countNonFolded() <= 1 {
		e.awardSingleWinner()
		return
	}
	if e.countActionable() <= 1 {
		e.fastForwardToShowdown()
		return
	}
	rotated := e.firstActorRotation()
	p, ok := firstActive(rotated)
	if !ok {
		e.fastForwardToShowdown()
		return
	}
	e.setActive(p)
}

// endRound closes out betting for the current round: reset per-player
// round state, move to the next round (or straight to showdown after
// the river), and start it.
func (e *Engine) endRound() {
	if e.countNonFolded() <= 1 {
		e.awardSingleWinner()
		return
	}
	if e.hand.Round == River {
		e.emitPotUpdate()
		e.hand.Round = Showdown
		e.showdown()
		return
	}

	for _, p := range e.inHand {
		p.CurrentBet = 0
		p.LastAction = nil
	}
	// A new street opens with nobody owing a bet; only the minimum
	// opening bet/raise size carries over from the blinds.
	e.hand.CurrentBet = 0
	e.hand.MinRaise = e.cfg.BigBlind
	e.emitPotUpdate()

	switch e.hand.Round {
	case Preflop:
		e.hand.Round = Flop
		e.dealCommunity(3, true)
	case Flop:
		e.hand.Round = Turn
		e.dealCommunity(1, true)
	case Turn:
		e.hand.Round = River
		e.dealCommunity(1, true)
	}
	e.beginRound()
}

// fastForwardToShowdown deals every remaining community card with no
// further betting and resolves the hand.
func (e *Engine) fastForwardToShowdown() {
	for e.hand.Round < River {
		switch e.hand.Round {
		case Preflop:
			e.hand.Round = Flop
			e.dealCommunity(3, true)
		case Flop:
			e.hand.Round = Turn
			e.dealCommunity(1, true)
		case Turn:
			e.hand.Round = River
			e.dealCommunity(1, true)
		}
	}
	e.hand.Round = Showdown
	e.showdown()
}

func (e *Engine) emitPotUpdate() {
	e.emit(PotUpdateEvent{
		Pot:      e.hand.Pot,
		SidePots: e.buildSidePots(),
	})
}
