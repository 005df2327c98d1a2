// Package tui is a bubbletea reference operator client: it renders the
// envelope stream from internal/client as a scrolling hand log plus a
// seat sidebar, and turns typed input into action commands.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem-engine/internal/client"
	"github.com/lox/holdem-engine/internal/deck"
)

// Palette for the operator client's panes. Tuned for a dark terminal: a
// felt-green accent for emphasis, muted gray for chrome, and red/black
// matching suit color rather than chip state.
var (
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	boardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB3D5")).Bold(true)
	actingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	foldedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	seatedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	potStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166")).Bold(true)
	actionsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166")).Bold(true)
	foldBtnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84855")).Bold(true)
	goBtnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	redCardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84855")).Bold(true)
	blkCardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E2E2E")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// seatView is the sidebar's rendering of one roster entry.
type seatView struct {
	ID         string
	Name       string
	Seat       int
	Chips      int
	CurrentBet int
	Folded     bool
	AllIn      bool
}

// ActionResult is one parsed command ready to send to the table.
type ActionResult struct {
	Action   string
	Amount   int
	Continue bool
}

// TUIModel is the Bubble Tea model for the operator client.
type TUIModel struct {
	logger *log.Logger
	selfID string

	logViewport viewport.Model
	actionInput textinput.Model

	gameLog      []string
	actionResult chan ActionResult
	quitting     bool
	focusedPane  int // 0 = log, 1 = input

	width  int
	height int

	roster         []seatView
	holeCards      []deck.Card
	community      []deck.Card
	pot            int
	currentBet     int
	actingPlayerID string
	validActions   []client.ActionSpec

	testMode bool
	captured []string
}

// NewTUIModel creates the operator TUI for the player identified by selfID.
func NewTUIModel(selfID string, logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(selfID, logger, false)
}

// NewTUIModelWithOptions additionally allows enabling test mode, in which
// log entries are captured instead of requiring a live terminal.
func NewTUIModelWithOptions(selfID string, logger *log.Logger, testMode bool) *TUIModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Enter your action (call, raise 10, fold, check, allin)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = accentStyle
	ti.TextStyle = seatedStyle
	ti.Prompt = "> "

	return &TUIModel{
		logger:       logger.WithPrefix("tui"),
		selfID:       selfID,
		logViewport:  vp,
		actionInput:  ti,
		actionResult: make(chan ActionResult, 1),
		focusedPane:  1,
		testMode:     testMode,
	}
}

// IsTestMode reports whether the model is running without a live terminal.
func (m *TUIModel) IsTestMode() bool { return m.testMode }

// GetCapturedLog returns every log line recorded while in test mode.
func (m *TUIModel) GetCapturedLog() []string { return m.captured }

// InjectAction feeds an action result as if the user had typed it,
// bypassing the textinput widget. Used by tests.
func (m *TUIModel) InjectAction(action string, amount int) {
	m.actionResult <- ActionResult{Action: action, Amount: amount, Continue: action != "quit"}
}

// WaitForAction blocks until the user submits an action or quits.
func (m *TUIModel) WaitForAction() ActionResult {
	return <-m.actionResult
}

// Init initializes the TUI model.
func (m *TUIModel) Init() tea.Cmd {
	return textinput.Blink
}

// EnvelopeMsg carries one envelope into the Update loop. The caller
// forwards client.Client.Events() into the running program with
// program.Send(tui.EnvelopeMsg(env)).
type EnvelopeMsg client.Envelope

// ConnectionClosedMsg signals the event channel has been closed.
type ConnectionClosedMsg struct{}

// Update handles messages in the TUI.
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case EnvelopeMsg:
		m.applyEnvelope(client.Envelope(msg))

	case ConnectionClosedMsg:
		m.AddLogEntry("*** disconnected from table ***")

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.actionResult <- ActionResult{Action: "quit"}
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.processAction(input)
				m.actionInput.SetValue("")
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI.
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	calculatedActionWidth := m.width - 2
	calculatedActionHeight := actionHeight - 2

	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(calculatedActionWidth).
		Height(calculatedActionHeight)
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := lipgloss.Width(sidebarContent)
	calculatedSidebarWidth := 25
	if sidebarWidth > calculatedSidebarWidth {
		calculatedSidebarWidth = sidebarWidth
	}
	calculatedSidebarHeight := m.height - actionHeight - 4

	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedSidebarWidth).
		Height(calculatedSidebarHeight)
	sidebarPane := sidebarStyle.Render(sidebarContent)

	logContent := m.renderLogPane()
	m.logViewport.SetContent(logContent)

	calculatedLogWidth := m.width - calculatedSidebarWidth - 4
	calculatedLogHeight := m.height - actionHeight - 4
	m.logViewport.Width = calculatedLogWidth
	m.logViewport.Height = calculatedLogHeight

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedLogWidth).
		Height(calculatedLogHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *TUIModel) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

func (m *TUIModel) renderSidebarPane() string {
	var content strings.Builder

	if len(m.community) > 0 {
		content.WriteString(boardStyle.Render("Board: " + m.formatCards(m.community)))
		content.WriteString("\n\n")
	}

	for _, p := range m.roster {
		var indicators []string
		if p.Folded {
			indicators = append(indicators, "FOLD")
		} else if p.AllIn {
			indicators = append(indicators, "ALL-IN")
		}

		prefix := "  "
		if p.ID == m.actingPlayerID {
			prefix = "▶ "
		}

		name := p.Name
		if p.ID == m.selfID {
			name = "You"
		}

		line := fmt.Sprintf("%s%s $%d", prefix, name, p.Chips)
		if len(indicators) > 0 {
			line += " [" + strings.Join(indicators, ",") + "]"
		}
		if p.CurrentBet > 0 {
			line += fmt.Sprintf(" ($%d)", p.CurrentBet)
		}

		var style lipgloss.Style
		switch {
		case p.Folded:
			style = foldedStyle
		case p.ID == m.actingPlayerID:
			style = actingStyle
		default:
			style = seatedStyle
		}

		content.WriteString(style.Render(line))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(potStyle.Render(fmt.Sprintf("Pot: $%d", m.pot)))
	if m.currentBet > 0 {
		content.WriteString(" | ")
		content.WriteString(potStyle.Render(fmt.Sprintf("Bet: $%d", m.currentBet)))
	}

	return content.String()
}

func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	onTurn := m.actingPlayerID == m.selfID && len(m.validActions) > 0
	if onTurn {
		content.WriteString(m.renderHandInfo())
		content.WriteString("\n")
		content.WriteString(m.renderAvailableActions())
		content.WriteString("\n")
		m.actionInput.Placeholder = "Enter your action (call, raise 10, fold, check, allin)"
	} else {
		content.WriteString(boardStyle.Render("Waiting..."))
		content.WriteString("\n")
		m.actionInput.Placeholder = "Waiting for your turn..."
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(hintStyle.Render(
			"Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(hintStyle.Render(
			"Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}

	return content.String()
}

func (m *TUIModel) renderHandInfo() string {
	hand := m.formatCards(m.holeCards)
	return boardStyle.Render(fmt.Sprintf("Hand: %s  Pot: $%d", hand, m.pot))
}

func (m *TUIModel) renderAvailableActions() string {
	var actions []string
	for _, a := range m.validActions {
		switch a.Action {
		case "fold":
			actions = append(actions, foldBtnStyle.Render("[fold]"))
		case "check":
			actions = append(actions, goBtnStyle.Render("[check]"))
		case "call":
			actions = append(actions, goBtnStyle.Render(fmt.Sprintf("[call $%d]", a.MinAmount)))
		case "raise":
			actions = append(actions, potStyle.Render(fmt.Sprintf("[raise $%d-$%d]", a.MinAmount, a.MaxAmount)))
		case "all-in":
			actions = append(actions, potStyle.Render(fmt.Sprintf("[allin $%d]", a.MaxAmount)))
		}
	}
	return actionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

func (m *TUIModel) formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}
	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		if card.IsRed() {
			formatted = append(formatted, redCardStyle.Render(card.String()))
		} else {
			formatted = append(formatted, blkCardStyle.Render(card.String()))
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// AddLogEntry appends a line to the game log and scrolls to the bottom.
func (m *TUIModel) AddLogEntry(entry string) {
	if m.testMode {
		m.captured = append(m.captured, entry)
		return
	}
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// ClearLog empties the game log.
func (m *TUIModel) ClearLog() {
	m.gameLog = nil
	m.logViewport.SetContent("")
}

// processAction parses a typed command into an ActionResult. Accepted
// forms: fold, check, call, allin, raise <amount>.
func (m *TUIModel) processAction(input string) {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return
	}

	action := parts[0]
	amount := 0
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			amount = n
		}
	}

	if action == "quit" {
		m.actionResult <- ActionResult{Action: "quit"}
		return
	}

	m.actionResult <- ActionResult{Action: action, Amount: amount, Continue: true}
}
