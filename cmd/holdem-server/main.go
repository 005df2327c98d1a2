package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"

	"github.com/lox/holdem-engine/internal/config"
	"github.com/lox/holdem-engine/internal/engine"
	"github.com/lox/holdem-engine/internal/transport"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"holdem-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	LogFile  string `short:"f" long:"log-file" help:"Log file path (overrides config)"`
}

// stripANSIWriter strips ANSI color escape sequences before writing,
// so a log file stays plain text even though the terminal gets color.
type stripANSIWriter struct {
	writer *os.File
}

func (s *stripANSIWriter) Write(p []byte) (int, error) {
	stripped := make([]byte, 0, len(p))
	inEscape := false
	for i := 0; i < len(p); i++ {
		if p[i] == '\x1b' && i+1 < len(p) && p[i+1] == '[' {
			inEscape = true
			i++
			continue
		}
		if inEscape {
			if (p[i] >= 'A' && p[i] <= 'Z') || (p[i] >= 'a' && p[i] <= 'z') {
				inEscape = false
			}
			continue
		}
		stripped = append(stripped, p[i])
	}
	return s.writer.Write(stripped)
}

// multiTargetWriter writes colored output to the terminal and plain
// text to a log file simultaneously.
type multiTargetWriter struct {
	termWriter *os.File
	fileWriter *stripANSIWriter
}

func (m *multiTargetWriter) Write(p []byte) (int, error) {
	_, err1 := m.termWriter.Write(p)
	_, err2 := m.fileWriter.Write(p)
	if err1 != nil {
		return len(p), err1
	}
	if err2 != nil {
		return len(p), err2
	}
	return len(p), nil
}

func main() {
	ctx := kong.Parse(&CLI)

	file, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	if CLI.Addr != "" {
		file.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		file.Server.LogLevel = CLI.LogLevel
	}
	if CLI.LogFile != "" {
		file.Server.LogFile = CLI.LogFile
	}

	if err := file.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	logger := newLogger(file.Server.LogFile)
	logger.SetColorProfile(termenv.TrueColor)
	logger.SetLevel(parseLevel(file.Server.LogLevel))

	logger.Info("starting holdem server", "addr", file.Address(), "tables", len(file.Tables))

	mux := http.NewServeMux()
	var tables []*table
	for _, tc := range file.Tables {
		t := newTable(tc, logger)
		mux.Handle("/ws/"+tc.Name, t.hub)
		tables = append(tables, t)
		logger.Info("table ready", "name", tc.Name,
			"stakes", fmt.Sprintf("%d/%d", tc.SmallBlind, tc.BigBlind), "max_seats", tc.MaxSeats)
	}

	srv := &http.Server{Addr: file.Address(), Handler: mux}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutting down")
		for _, t := range tables {
			t.engine.Destroy()
		}
		os.Exit(0)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		ctx.Exit(1)
	}
}

// table bundles one engine instance with its transport hub and a
// ticker that drives its action-timeout deadline.
type table struct {
	engine *engine.Engine
	hub    *transport.Hub
}

func newTable(tc config.TableConfig, logger *log.Logger) *table {
	tableLogger := logger.WithPrefix(tc.Name)
	hub := transport.NewHub(tableLogger)
	clock := quartz.NewReal()

	opts := []engine.Option{
		engine.WithEventSink(hub.EventSink),
		engine.WithLogger(tableLogger),
		engine.WithClock(clock),
	}

	if hf, err := os.OpenFile(tc.HandHistoryFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err != nil {
		tableLogger.Warn("hand history disabled", "file", tc.HandHistoryFile, "error", err)
	} else {
		opts = append(opts, engine.WithHandHistory(engine.NewHandHistory(hf, tableLogger, 0)))
	}

	e := engine.New(tc.Engine(), opts...)
	hub.Attach(e)

	go runTicker(e, clock)

	return &table{engine: e, hub: hub}
}

func runTicker(e *engine.Engine, clock quartz.Clock) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		e.TickTimeout(clock.Now())
	}
}

func newLogger(logFile string) *log.Logger {
	if logFile == "" {
		return log.New(os.Stderr)
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		return log.New(os.Stderr)
	}

	return log.New(&multiTargetWriter{
		termWriter: os.Stderr,
		fileWriter: &stripANSIWriter{writer: f},
	})
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
