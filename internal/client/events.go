package client

import (
	"encoding/json"

	"github.com/lox/holdem-engine/internal/deck"
	"github.com/lox/holdem-engine/internal/evaluator"
	"github.com/lox/holdem-engine/internal/potbuilder"
)

// PublicPlayer is the wire shape of a seated player as broadcast in
// hand_start/hand_end envelopes.
type PublicPlayer struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Seat       int     `json:"seat"`
	Chips      int     `json:"chips"`
	CurrentBet int     `json:"currentBet"`
	HasFolded  bool    `json:"hasFolded"`
	IsAllIn    bool    `json:"isAllIn"`
	LastAction *string `json:"lastAction,omitempty"`
}

// HandStart is the decoded payload of a "hand_start" envelope.
type HandStart struct {
	HandNumber int            `json:"handNumber"`
	HandID     string         `json:"handId"`
	DealerSeat int            `json:"dealerSeat"`
	Roster     []PublicPlayer `json:"roster"`
}

// HoleCards is the decoded payload of a "hole_cards" envelope.
type HoleCards struct {
	Cards []deck.Card `json:"cards"`
}

// Community is the decoded payload of a "community" envelope.
type Community struct {
	Round string      `json:"round"`
	Cards []deck.Card `json:"cards"`
}

// ActionSpec is one legal action offered in an "action_on" envelope.
type ActionSpec struct {
	Action    string `json:"action"`
	MinAmount int    `json:"minAmount"`
	MaxAmount int    `json:"maxAmount"`
}

// ActionOn is the decoded payload of an "action_on" envelope.
type ActionOn struct {
	PlayerID     string       `json:"playerId"`
	ValidActions []ActionSpec `json:"validActions"`
	Pot          int          `json:"pot"`
	CurrentBet   int          `json:"currentBet"`
	DeadlineUnix int64        `json:"deadlineUnix"`
}

// PlayerActed is the decoded payload of a "player_acted" envelope.
type PlayerActed struct {
	PlayerID       string `json:"playerId"`
	Action         string `json:"action"`
	Amount         int    `json:"amount"`
	Pot            int    `json:"pot"`
	RemainingChips int    `json:"remainingChips"`
}

// PotUpdate is the decoded payload of a "pot_update" envelope.
type PotUpdate struct {
	Pot      int                  `json:"pot"`
	SidePots []potbuilder.SidePot `json:"sidePots,omitempty"`
}

// ShowdownResult is one player's outcome within a "showdown" envelope.
type ShowdownResult struct {
	PlayerID  string                   `json:"playerId"`
	Cards     []deck.Card              `json:"cards,omitempty"`
	Hand      *evaluator.EvaluatedHand `json:"hand,omitempty"`
	WinAmount int                      `json:"winAmount"`
}

// Showdown is the decoded payload of a "showdown" envelope.
type Showdown struct {
	Results []ShowdownResult `json:"results"`
}

// HandEnd is the decoded payload of a "hand_end" envelope.
type HandEnd struct {
	Roster []PublicPlayer `json:"roster"`
}

// ErrorData is the decoded payload of an "error" envelope.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Decode unmarshals env.Data into a concrete payload type based on
// env.Type, returning the decoded value or an error if the type is
// unrecognized or the payload doesn't match.
func Decode(env Envelope) (any, error) {
	var (
		v   any
		err error
	)
	switch env.Type {
	case "hand_start":
		var p HandStart
		err = json.Unmarshal(env.Data, &p)
		v = p
	case "hole_cards":
		var p HoleCards
		err = json.Unmarshal(env.Data, &p)
		v = p
	case "community":
		var p Community
		err = json.Unmarshal(env.Data, &p)
		v = p
	case "action_on":
		var p ActionOn
		err = json.Unmarshal(env.Data, &p)
		v = p
	case "player_acted":
		var p PlayerActed
		err = json.Unmarshal(env.Data, &p)
		v = p
	case "pot_update":
		var p PotUpdate
		err = json.Unmarshal(env.Data, &p)
		v = p
	case "showdown":
		var p Showdown
		err = json.Unmarshal(env.Data, &p)
		v = p
	case "hand_end":
		var p HandEnd
		err = json.Unmarshal(env.Data, &p)
		v = p
	case "error":
		var p ErrorData
		err = json.Unmarshal(env.Data, &p)
		v = p
	default:
		return nil, errUnknownEnvelope(env.Type)
	}
	return v, err
}

type errUnknownEnvelope string

func (e errUnknownEnvelope) Error() string { return "client: unknown envelope type " + string(e) }
