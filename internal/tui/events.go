package tui

import (
	"fmt"

	"github.com/lox/holdem-engine/internal/client"
)

// applyEnvelope decodes env and folds it into model state, appending
// whatever log lines a human operator would want to see.
func (m *TUIModel) applyEnvelope(env client.Envelope) {
	payload, err := client.Decode(env)
	if err != nil {
		m.logger.Error("failed to decode envelope", "type", env.Type, "error", err)
		return
	}

	switch p := payload.(type) {
	case client.HandStart:
		m.applyHandStart(p)
	case client.HoleCards:
		m.holeCards = p.Cards
		m.AddLogEntry(fmt.Sprintf("Dealt to You: %s", m.formatCards(p.Cards)))
	case client.Community:
		m.community = p.Cards
		m.AddLogEntry("")
		m.AddLogEntry(fmt.Sprintf("*** %s *** %s", streetLabel(p.Round), m.formatCards(p.Cards)))
	case client.ActionOn:
		m.actingPlayerID = p.PlayerID
		m.pot = p.Pot
		m.currentBet = p.CurrentBet
		m.validActions = p.ValidActions
	case client.PlayerActed:
		m.applyPlayerActed(p)
	case client.PotUpdate:
		m.pot = p.Pot
	case client.Showdown:
		m.applyShowdown(p)
	case client.HandEnd:
		m.applyRoster(p.Roster)
		m.actingPlayerID = ""
		m.validActions = nil
	case client.ErrorData:
		m.AddLogEntry(fmt.Sprintf("*** ERROR: %s ***", p.Message))
	}
}

func (m *TUIModel) applyHandStart(p client.HandStart) {
	m.applyRoster(p.Roster)
	m.AddLogEntry(fmt.Sprintf("Hand #%d • %d players", p.HandNumber, len(p.Roster)))
	m.AddLogEntry("")
	m.AddLogEntry("*** HOLE CARDS ***")
}

func (m *TUIModel) applyPlayerActed(p client.PlayerActed) {
	m.pot = p.Pot
	for i := range m.roster {
		if m.roster[i].ID == p.PlayerID {
			m.roster[i].Chips = p.RemainingChips
			switch p.Action {
			case "fold":
				m.roster[i].Folded = true
			case "all-in":
				m.roster[i].AllIn = true
			}
		}
	}

	name := m.playerNameFor(p.PlayerID)
	var entry string
	switch p.Action {
	case "fold":
		entry = fmt.Sprintf("%s: folds", name)
	case "check":
		entry = fmt.Sprintf("%s: checks", name)
	case "call":
		entry = fmt.Sprintf("%s: calls $%d (pot now: $%d)", name, p.Amount, p.Pot)
	case "raise":
		entry = fmt.Sprintf("%s: raises to $%d (pot now: $%d)", name, p.Amount, p.Pot)
	case "all-in":
		entry = fmt.Sprintf("%s: goes all-in for $%d", name, p.Amount)
	default:
		entry = fmt.Sprintf("%s: %s", name, p.Action)
	}
	m.AddLogEntry(entry)
}

func (m *TUIModel) applyShowdown(p client.Showdown) {
	m.AddLogEntry("")
	m.AddLogEntry("*** SHOWDOWN ***")
	for _, r := range p.Results {
		name := m.playerNameFor(r.PlayerID)
		if len(r.Cards) > 0 {
			m.AddLogEntry(fmt.Sprintf("%s shows %s", name, m.formatCards(r.Cards)))
		}
		if r.WinAmount > 0 {
			m.AddLogEntry(fmt.Sprintf("%s wins $%d", name, r.WinAmount))
		}
	}
}

func (m *TUIModel) applyRoster(roster []client.PublicPlayer) {
	seats := make([]seatView, 0, len(roster))
	for _, p := range roster {
		seats = append(seats, seatView{
			ID:         p.ID,
			Name:       p.Name,
			Seat:       p.Seat,
			Chips:      p.Chips,
			CurrentBet: p.CurrentBet,
			Folded:     p.HasFolded,
			AllIn:      p.IsAllIn,
		})
	}
	m.roster = seats
}

func (m *TUIModel) playerNameFor(id string) string {
	for _, p := range m.roster {
		if p.ID == id {
			if id == m.selfID {
				return "You"
			}
			return p.Name
		}
	}
	return id
}

func streetLabel(round string) string {
	switch round {
	case "flop":
		return "FLOP"
	case "turn":
		return "TURN"
	case "river":
		return "RIVER"
	default:
		return round
	}
}
