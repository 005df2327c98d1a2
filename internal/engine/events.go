package engine

import (
	"time"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/evaluator"
	"github.com/lox/holdem-engine/internal/potbuilder"
)

// Event is the tagged union of everything the engine can emit. Callers
// type-switch on the concrete type; isEvent is unexported so no other
// package can implement Event.
type Event interface {
	isEvent()
}

// EventSink receives every event the engine produces, in emission
// order, on whatever goroutine called the triggering engine method. A
// sink must never call back into the Engine it is registered on; doing
// so panics (see Engine's re-entrancy guard).
type EventSink func(Event)

// HandStartEvent opens a new hand: who's dealt in, and who has the
// button.
type HandStartEvent struct {
	HandNumber int
	HandID     string
	DealerSeat int
	Roster     []PublicPlayer
}

func (HandStartEvent) isEvent() {}

// HoleCardsEvent is sent once per dealt-in player, carrying that
// player's own hole cards. Transports must route this only to the
// named player's connection.
type HoleCardsEvent struct {
	PlayerID string
	Cards    []deck.Card
}

func (HoleCardsEvent) isEvent() {}

// CommunityEvent announces the community cards revealed so far
// (cumulative, not just the cards newly dealt this street).
type CommunityEvent struct {
	Round Round
	Cards []deck.Card
}

func (CommunityEvent) isEvent() {}

// ActionOnEvent tells a player it's their turn, with the exact menu of
// legal actions and the deadline by which tick_timeout will auto-fold
// them.
type ActionOnEvent struct {
	PlayerID     string
	ValidActions []ActionSpec
	Pot          int
	CurrentBet   int
	Deadline     time.Time
}

func (ActionOnEvent) isEvent() {}

// PlayerActedEvent reports a completed action (including an
// engine-initiated timeout fold).
type PlayerActedEvent struct {
	PlayerID       string
	Action         Action
	Amount         int
	Pot            int
	RemainingChips int
}

func (PlayerActedEvent) isEvent() {}

// PotUpdateEvent reports the pot's current size and side-pot structure.
// It fires when a betting round ends with more than one player left;
// streets dealt without betting because no more than one player can act
// emit none.
type PotUpdateEvent struct {
	Pot      int
	SidePots []potbuilder.SidePot
}

func (PotUpdateEvent) isEvent() {}

// ShowdownResult is one shown player's outcome.
type ShowdownResult struct {
	PlayerID  string
	Cards     []deck.Card
	Hand      *evaluator.EvaluatedHand
	WinAmount int
}

// ShowdownEvent reports every non-folded player's hand and winnings.
type ShowdownEvent struct {
	Results []ShowdownResult
}

func (ShowdownEvent) isEvent() {}

// HandEndEvent closes the hand out with the post-hand chip counts.
type HandEndEvent struct {
	Roster []PublicPlayer
}

func (HandEndEvent) isEvent() {}
