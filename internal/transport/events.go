package transport

import (
	"fmt"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/engine"
	"github.com/lox/holdem-engine/internal/evaluator"
	"github.com/lox/holdem-engine/internal/potbuilder"
)

// publicPlayer mirrors engine.PublicPlayer with JSON tags and a string
// rendering of LastAction, since engine.Action has no marshaler of its
// own.
type publicPlayer struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Seat       int     `json:"seat"`
	Chips      int     `json:"chips"`
	CurrentBet int     `json:"currentBet"`
	HasFolded  bool    `json:"hasFolded"`
	IsAllIn    bool    `json:"isAllIn"`
	LastAction *string `json:"lastAction,omitempty"`
}

func publicRoster(roster []engine.PublicPlayer) []publicPlayer {
	out := make([]publicPlayer, len(roster))
	for i, p := range roster {
		out[i] = publicPlayer{
			ID:         p.ID,
			Name:       p.Name,
			Seat:       p.Seat,
			Chips:      p.Chips,
			CurrentBet: p.CurrentBet,
			HasFolded:  p.HasFolded,
			IsAllIn:    p.IsAllIn,
			LastAction: actionString(p.LastAction),
		}
	}
	return out
}

func actionString(a *engine.Action) *string {
	if a == nil {
		return nil
	}
	s := a.String()
	return &s
}

type handStartPayload struct {
	HandNumber int            `json:"handNumber"`
	HandID     string         `json:"handId"`
	DealerSeat int            `json:"dealerSeat"`
	Roster     []publicPlayer `json:"roster"`
}

type holeCardsPayload struct {
	Cards []deck.Card `json:"cards"`
}

type communityPayload struct {
	Round string      `json:"round"`
	Cards []deck.Card `json:"cards"`
}

type actionSpecPayload struct {
	Action    string `json:"action"`
	MinAmount int    `json:"minAmount"`
	MaxAmount int    `json:"maxAmount"`
}

type actionOnPayload struct {
	PlayerID     string              `json:"playerId"`
	ValidActions []actionSpecPayload `json:"validActions"`
	Pot          int                 `json:"pot"`
	CurrentBet   int                 `json:"currentBet"`
	DeadlineUnix int64               `json:"deadlineUnix"`
}

type playerActedPayload struct {
	PlayerID       string `json:"playerId"`
	Action         string `json:"action"`
	Amount         int    `json:"amount"`
	Pot            int    `json:"pot"`
	RemainingChips int    `json:"remainingChips"`
}

type potUpdatePayload struct {
	Pot      int                  `json:"pot"`
	SidePots []potbuilder.SidePot `json:"sidePots,omitempty"`
}

type showdownResultPayload struct {
	PlayerID  string                   `json:"playerId"`
	Cards     []deck.Card              `json:"cards,omitempty"`
	Hand      *evaluator.EvaluatedHand `json:"hand,omitempty"`
	WinAmount int                      `json:"winAmount"`
}

type showdownPayload struct {
	Results []showdownResultPayload `json:"results"`
}

type handEndPayload struct {
	Roster []publicPlayer `json:"roster"`
}

// envelopeFor translates one engine event into its wire envelope. Every
// engine.Event variant must have a case here; the default branch
// signals a new variant was added without updating this translation.
func envelopeFor(ev engine.Event) (*Envelope, error) {
	switch e := ev.(type) {
	case engine.HandStartEvent:
		return newEnvelope("hand_start", handStartPayload{
			HandNumber: e.HandNumber,
			HandID:     e.HandID,
			DealerSeat: e.DealerSeat,
			Roster:     publicRoster(e.Roster),
		})

	case engine.HoleCardsEvent:
		return newEnvelope("hole_cards", holeCardsPayload{Cards: e.Cards})

	case engine.CommunityEvent:
		return newEnvelope("community", communityPayload{
			Round: e.Round.String(),
			Cards: e.Cards,
		})

	case engine.ActionOnEvent:
		specs := make([]actionSpecPayload, len(e.ValidActions))
		for i, s := range e.ValidActions {
			specs[i] = actionSpecPayload{
				Action:    s.Action.String(),
				MinAmount: s.MinAmount,
				MaxAmount: s.MaxAmount,
			}
		}
		return newEnvelope("action_on", actionOnPayload{
			PlayerID:     e.PlayerID,
			ValidActions: specs,
			Pot:          e.Pot,
			CurrentBet:   e.CurrentBet,
			DeadlineUnix: e.Deadline.Unix(),
		})

	case engine.PlayerActedEvent:
		return newEnvelope("player_acted", playerActedPayload{
			PlayerID:       e.PlayerID,
			Action:         e.Action.String(),
			Amount:         e.Amount,
			Pot:            e.Pot,
			RemainingChips: e.RemainingChips,
		})

	case engine.PotUpdateEvent:
		return newEnvelope("pot_update", potUpdatePayload{Pot: e.Pot, SidePots: e.SidePots})

	case engine.ShowdownEvent:
		results := make([]showdownResultPayload, len(e.Results))
		for i, r := range e.Results {
			results[i] = showdownResultPayload{
				PlayerID:  r.PlayerID,
				Cards:     r.Cards,
				Hand:      r.Hand,
				WinAmount: r.WinAmount,
			}
		}
		return newEnvelope("showdown", showdownPayload{Results: results})

	case engine.HandEndEvent:
		return newEnvelope("hand_end", handEndPayload{Roster: publicRoster(e.Roster)})

	default:
		return nil, fmt.Errorf("transport: unknown event type %T", ev)
	}
}
