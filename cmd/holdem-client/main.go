package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/holdem-engine/internal/client"
	"github.com/lox/holdem-engine/internal/tui"
)

var CLI struct {
	Table    string `short:"t" long:"table" required:"" help:"Table URL to connect to, e.g. ws://localhost:9000/ws/main"`
	Player   string `short:"p" long:"player" help:"Player name (prompted for if omitted)"`
	Seat     int    `short:"s" long:"seat" default:"-1" help:"Seat to request (-1 picks the first open seat)"`
	LogLevel string `short:"l" long:"log-level" default:"info" help:"Log level"`
	LogFile  string `long:"log-file" default:"holdem-client.log" help:"Log file path"`
}

func main() {
	ctx := kong.Parse(&CLI)

	playerName := CLI.Player
	if playerName == "" {
		fmt.Print("Enter your player name: ")
		var input string
		fmt.Scanln(&input)
		playerName = strings.TrimSpace(input)
		if playerName == "" {
			fmt.Println("Player name is required")
			ctx.Exit(1)
		}
	}

	logFile, err := os.OpenFile(CLI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Printf("Failed to open log file: %v\n", err)
		ctx.Exit(1)
	}
	defer logFile.Close()

	logger := log.New(logFile)
	logger.SetLevel(parseLevel(CLI.LogLevel))

	playerID := uuid.NewString()
	logger.Info("connecting", "table", CLI.Table, "player", playerName, "playerID", playerID)

	c, err := client.New(CLI.Table, logger)
	if err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		ctx.Exit(1)
	}
	defer c.Close()

	if err := c.Join(playerID, playerName, CLI.Seat); err != nil {
		fmt.Printf("Failed to join table: %v\n", err)
		ctx.Exit(1)
	}

	model := tui.NewTUIModel(playerID, logger)
	model.AddLogEntry("=== Texas Hold'em Client ===")
	model.AddLogEntry("Connected to: " + CLI.Table)
	model.AddLogEntry("Player: " + playerName)
	model.AddLogEntry("")

	program := tea.NewProgram(model, tea.WithAltScreen())

	go pumpEnvelopes(program, c)
	go sendActions(c, model, logger)

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		ctx.Exit(1)
	}
}

// pumpEnvelopes forwards every envelope from the client into the
// Bubbletea program as a message, so the TUI model stays the single
// owner of game state.
func pumpEnvelopes(program *tea.Program, c *client.Client) {
	for env := range c.Events() {
		program.Send(tui.EnvelopeMsg(env))
	}
	program.Send(tui.ConnectionClosedMsg{})
}

// sendActions turns parsed TUI commands into outbound action frames.
func sendActions(c *client.Client, model *tui.TUIModel, logger *log.Logger) {
	for {
		result := model.WaitForAction()
		if !result.Continue {
			return
		}
		if result.Action == "" {
			continue
		}
		if err := c.Act(normalizeAction(result.Action), result.Amount); err != nil {
			logger.Error("failed to send action", "action", result.Action, "error", err)
		}
	}
}

func normalizeAction(action string) string {
	switch action {
	case "bet":
		return "raise"
	case "allin", "all_in":
		return "all-in"
	default:
		return action
	}
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
