package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "does-not-exist.hcl"))
	require.NoError(t, err)
	require.Len(t, f.Tables, 1)
	assert.Equal(t, "localhost:8080", f.Address())
	assert.NoError(t, f.Validate())
}

func TestLoad_DecodesTableBlockAndFillsDefaults(t *testing.T) {
	path := writeHCL(t, `
server {
  address   = "0.0.0.0"
  port      = 9090
  log_level = "debug"
}

table "main" {
  small_blind = 5
  big_blind   = 10
}
`)

	f, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	assert.Equal(t, "0.0.0.0:9090", f.Address())
	assert.Equal(t, "debug", f.Server.LogLevel)

	table := f.TableByName("main")
	require.NotNil(t, table)
	assert.Equal(t, 5, table.SmallBlind)
	assert.Equal(t, 10, table.BigBlind)
	assert.Equal(t, 6, table.MaxSeats, "unset max_seats falls back to the engine default")
	assert.Equal(t, 1000, table.BuyIn, "unset buy_in falls back to 100x the big blind")
	assert.Equal(t, 30, table.ActionTimeoutSeconds)
	assert.Equal(t, "main-hands.jsonl", table.HandHistoryFile, "unset hand_history_file falls back to <name>-hands.jsonl")
}

func TestTableConfig_EngineConvertsSecondsToDuration(t *testing.T) {
	tc := TableConfig{SmallBlind: 1, BigBlind: 2, BuyIn: 200, ActionTimeoutSeconds: 15, MaxSeats: 6}
	cfg := tc.Engine()
	assert.Equal(t, 15*time.Second, cfg.ActionTimeout)
	assert.Equal(t, 6, cfg.MaxSeats)
}

func TestValidate_RejectsBigBlindNotExceedingSmallBlind(t *testing.T) {
	f := DefaultFile()
	f.Tables[0].BigBlind = f.Tables[0].SmallBlind
	assert.Error(t, f.Validate())
}

func TestValidate_RejectsOutOfRangeMaxSeats(t *testing.T) {
	f := DefaultFile()
	f.Tables[0].MaxSeats = 1
	assert.Error(t, f.Validate())
}

func TestValidate_RejectsInvalidPort(t *testing.T) {
	f := DefaultFile()
	f.Server.Port = 70000
	assert.Error(t, f.Validate())
}

func TestLoad_RejectsMalformedHCL(t *testing.T) {
	path := writeHCL(t, `this is not valid hcl {{{`)
	_, err := Load(path)
	assert.Error(t, err)
}

func writeHCL(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holdem-server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
