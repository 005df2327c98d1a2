// Package config loads table configuration from HCL files, falling back
// to sensible defaults for anything left unset.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem-engine/internal/engine"
)

// File is the top-level shape of an HCL configuration file: one server
// block plus one or more table blocks. Each table block decodes into
// an engine.Config the caller hands to engine.New.
type File struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings holds the listener and logging configuration that
// applies to the whole process, independent of any one table.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// TableConfig is one HCL "table" block. ActionTimeoutSeconds is
// expressed in whole seconds in the file since HCL has no native
// duration type.
type TableConfig struct {
	Name                 string `hcl:"name,label"`
	MaxSeats             int    `hcl:"max_seats,optional"`
	SmallBlind           int    `hcl:"small_blind"`
	BigBlind             int    `hcl:"big_blind"`
	BuyIn                int    `hcl:"buy_in,optional"`
	ActionTimeoutSeconds int    `hcl:"action_timeout_seconds,optional"`
	HandHistoryFile      string `hcl:"hand_history_file,optional"`
}

// Engine converts a decoded table block into the engine's own Config
// type, so the rest of the program never has to know HCL exists.
func (t TableConfig) Engine() engine.Config {
	return engine.Config{
		SmallBlind:    t.SmallBlind,
		BigBlind:      t.BigBlind,
		BuyIn:         t.BuyIn,
		ActionTimeout: time.Duration(t.ActionTimeoutSeconds) * time.Second,
		MaxSeats:      t.MaxSeats,
	}
}

// DefaultFile returns the configuration used when no file is present:
// one six-max table at the engine's own default stakes.
func DefaultFile() *File {
	def := engine.DefaultConfig()
	return &File{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
			LogFile:  "holdem-server.log",
		},
		Tables: []TableConfig{
			{
				Name:                 "main",
				MaxSeats:             def.MaxSeats,
				SmallBlind:           def.SmallBlind,
				BigBlind:             def.BigBlind,
				BuyIn:                def.BuyIn,
				ActionTimeoutSeconds: int(def.ActionTimeout / time.Second),
				HandHistoryFile:      "main-hands.jsonl",
			},
		},
	}
}

// Load reads and decodes an HCL file at path, filling in defaults for
// anything the file leaves at its zero value. A missing file is not an
// error: it yields DefaultFile() so the server can run unconfigured.
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultFile(), nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", path, diags.Error())
	}

	var f File
	diags = gohcl.DecodeBody(hclFile.Body, nil, &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", path, diags.Error())
	}

	applyDefaults(&f)
	return &f, nil
}

func applyDefaults(f *File) {
	def := engine.DefaultConfig()

	if f.Server.Address == "" {
		f.Server.Address = "localhost"
	}
	if f.Server.Port == 0 {
		f.Server.Port = 8080
	}
	if f.Server.LogLevel == "" {
		f.Server.LogLevel = "info"
	}
	if f.Server.LogFile == "" {
		f.Server.LogFile = "holdem-server.log"
	}

	for i := range f.Tables {
		t := &f.Tables[i]
		if t.MaxSeats == 0 {
			t.MaxSeats = def.MaxSeats
		}
		if t.ActionTimeoutSeconds == 0 {
			t.ActionTimeoutSeconds = int(def.ActionTimeout / time.Second)
		}
		if t.BuyIn == 0 {
			t.BuyIn = t.BigBlind * 100
		}
		if t.HandHistoryFile == "" {
			t.HandHistoryFile = t.Name + "-hands.jsonl"
		}
	}

	if len(f.Tables) == 0 {
		f.Tables = DefaultFile().Tables
	}
}

// Address returns the "host:port" listener address assembled from the
// server block.
func (f *File) Address() string {
	return fmt.Sprintf("%s:%d", f.Server.Address, f.Server.Port)
}

// TableByName returns the named table block, or nil if none matches.
func (f *File) TableByName(name string) *TableConfig {
	for i := range f.Tables {
		if f.Tables[i].Name == name {
			return &f.Tables[i]
		}
	}
	return nil
}

// Validate checks the decoded file for values the engine could not run
// with, returning the first problem found.
func (f *File) Validate() error {
	if f.Server.Port < 1 || f.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", f.Server.Port)
	}
	if len(f.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	for _, t := range f.Tables {
		if t.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", t.Name)
		}
		if t.BigBlind <= t.SmallBlind {
			return fmt.Errorf("table %s: big blind must be greater than small blind", t.Name)
		}
		if t.MaxSeats < 2 || t.MaxSeats > 10 {
			return fmt.Errorf("table %s: max seats must be between 2 and 10", t.Name)
		}
		if t.BuyIn <= 0 {
			return fmt.Errorf("table %s: buy-in must be positive", t.Name)
		}
		if t.ActionTimeoutSeconds <= 0 {
			return fmt.Errorf("table %s: action timeout must be positive", t.Name)
		}
	}
	return nil
}
