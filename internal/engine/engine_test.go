package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture records every event an engine emits, in order.
type capture struct {
	events []Event
}

func (c *capture) sink(ev Event) {
	c.events = append(c.events, ev)
}

func (c *capture) of(kind func(Event) bool) []Event {
	var out []Event
	for _, ev := range c.events {
		if kind(ev) {
			out = append(out, ev)
		}
	}
	return out
}

func newTestEngine(t *testing.T, cfg Config, opts ...Option) (*Engine, *capture) {
	t.Helper()
	c := &capture{}
	allOpts := append([]Option{WithEventSink(c.sink)}, opts...)
	return New(cfg, allOpts...), c
}

func mustAddPlayer(t *testing.T, e *Engine, id, name string, seat int) {
	t.Helper()
	require.NoError(t, e.AddPlayer(id, name, seat))
}

func TestAddPlayer_RejectsInvalidSeat(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	assert.ErrorIs(t, e.AddPlayer("a", "A", -1), ErrInvalidSeat)
	assert.ErrorIs(t, e.AddPlayer("a", "A", 6), ErrInvalidSeat)
}

func TestAddPlayer_RejectsSeatTakenAndDuplicateID(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	mustAddPlayer(t, e, "a", "A", 0)
	assert.ErrorIs(t, e.AddPlayer("b", "B", 0), ErrSeatTaken)
	assert.ErrorIs(t, e.AddPlayer("a", "A2", 1), ErrDuplicateID)
}

func TestAddPlayer_RejectsWhenRosterFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSeats = 2
	e, _ := newTestEngine(t, cfg)
	mustAddPlayer(t, e, "a", "A", 0)
	mustAddPlayer(t, e, "b", "B", 1)
	assert.ErrorIs(t, e.AddPlayer("c", "C", 0), ErrRosterFull)
}

func TestAddPlayer_StartsWithConfiguredBuyIn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BuyIn = 500
	e, _ := newTestEngine(t, cfg)
	mustAddPlayer(t, e, "a", "A", 0)
	assert.Equal(t, 500, e.findByID("a").Chips)
}

func TestCanStartHand_RequiresTwoEligiblePlayers(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	assert.False(t, e.CanStartHand())
	mustAddPlayer(t, e, "a", "A", 0)
	assert.False(t, e.CanStartHand())
	mustAddPlayer(t, e, "b", "B", 1)
	assert.True(t, e.CanStartHand())
}

func TestCanStartHand_ExcludesSittingOutAndBustedAndDisconnected(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	mustAddPlayer(t, e, "a", "A", 0)
	mustAddPlayer(t, e, "b", "B", 1)
	mustAddPlayer(t, e, "c", "C", 2)
	mustAddPlayer(t, e, "d", "D", 3)

	e.findByID("b").IsSittingOut = true
	e.findByID("c").Chips = 0
	// Only a and d remain eligible; still enough to start.
	assert.True(t, e.CanStartHand())

	e.findByID("d").IsConnected = false
	// Now only a is eligible; not enough to start.
	assert.False(t, e.CanStartHand())
}

func TestStartHand_PurgesConnectedBustedPlayer(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	mustAddPlayer(t, e, "a", "A", 0)
	mustAddPlayer(t, e, "b", "B", 1)
	mustAddPlayer(t, e, "c", "C", 2)

	// c busted out but is still connected; a and b are enough to deal
	// another hand, so c must not linger in the roster forever.
	e.findByID("c").Chips = 0

	require.NoError(t, e.StartHand())
	assert.Nil(t, e.findByID("c"))
	assert.NotNil(t, e.findByID("a"))
	assert.NotNil(t, e.findByID("b"))
}

func TestCanStartHand_FalseWhileHandInProgress(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	mustAddPlayer(t, e, "a", "A", 0)
	mustAddPlayer(t, e, "b", "B", 1)
	require.NoError(t, e.StartHand())
	assert.False(t, e.CanStartHand())
}

func TestStartHand_FailsWithoutEnoughPlayers(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	mustAddPlayer(t, e, "a", "A", 0)
	assert.ErrorIs(t, e.StartHand(), ErrCannotStartHand)
}

// S1 from spec.md: three players A(100)@0, B(100)@2, C(100)@4, SB=1,
// BB=2, dealer=A. C acts first, C folds, A folds, B wins the blinds.
func TestStartHand_S1_BlindWalk(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SmallBlind, cfg.BigBlind, cfg.BuyIn = 1, 2, 100
	e, rec := newTestEngine(t, cfg)
	mustAddPlayer(t, e, "A", "A", 0)
	mustAddPlayer(t, e, "B", "B", 2)
	mustAddPlayer(t, e, "C", "C", 4)

	require.NoError(t, e.StartHand())

	onEvents := rec.of(func(ev Event) bool { _, ok := ev.(ActionOnEvent); return ok })
	require.NotEmpty(t, onEvents)
	first := onEvents[0].(ActionOnEvent)
	assert.Equal(t, "C", first.PlayerID, "C should act first in a 3-way hand with dealer=A")

	ok, err := e.HandleAction("C", Fold, 0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.HandleAction("A", Fold, 0)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 99, e.findByID("A").Chips)
	assert.Equal(t, 101, e.findByID("B").Chips)
	assert.Equal(t, 100, e.findByID("C").Chips)

	ends := rec.of(func(ev Event) bool { _, ok := ev.(HandEndEvent); return ok })
	assert.Len(t, ends, 1)
}

// S6 from spec.md: the player on action disconnects; remove_player
// auto-folds them and advances action; if only one player remains they
// win without a showdown.
func TestRemovePlayer_S6_DisconnectOnActionAwardsRemainingPlayer(t *testing.T) {
	cfg := DefaultConfig()
	e, rec := newTestEngine(t, cfg)
	mustAddPlayer(t, e, "A", "A", 0)
	mustAddPlayer(t, e, "B", "B", 1)
	require.NoError(t, e.StartHand())

	active := e.hand.ActiveSeat
	require.NotNil(t, active)
	activePlayer := e.playerBySeatIn(e.inHand, *active)

	e.RemovePlayer(activePlayer.ID)

	shows := rec.of(func(ev Event) bool { _, ok := ev.(ShowdownEvent); return ok })
	require.Len(t, shows, 1)
	sd := shows[0].(ShowdownEvent)
	require.Len(t, sd.Results, 1)
	assert.Nil(t, sd.Results[0].Hand)
	assert.Empty(t, sd.Results[0].Cards)
}

func TestRemovePlayer_BetweenHandsRemovesFromRoster(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	mustAddPlayer(t, e, "a", "A", 0)
	mustAddPlayer(t, e, "b", "B", 1)
	e.RemovePlayer("a")
	assert.Nil(t, e.findByID("a"))
	assert.NotNil(t, e.findByID("b"))
}

func TestSetConnected_UpdatesFlagWithoutRemoving(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	mustAddPlayer(t, e, "a", "A", 0)
	e.SetConnected("a", false)
	assert.False(t, e.findByID("a").IsConnected)
	e.SetConnected("a", true)
	assert.True(t, e.findByID("a").IsConnected)
}

func TestHandleAction_RejectsFromNonActivePlayer(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	mustAddPlayer(t, e, "a", "A", 0)
	mustAddPlayer(t, e, "b", "B", 1)
	require.NoError(t, e.StartHand())

	active := e.playerBySeatIn(e.inHand, *e.hand.ActiveSeat)
	var bystander string
	if active.ID == "a" {
		bystander = "b"
	} else {
		bystander = "a"
	}
	ok, err := e.HandleAction(bystander, Fold, 0)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNotActivePlayer)
}

func TestReentrancyGuard_PanicsWhenSinkCallsBackIntoEngine(t *testing.T) {
	cfg := DefaultConfig()
	var e *Engine
	e = New(cfg, WithEventSink(func(ev Event) {
		if _, ok := ev.(HandStartEvent); ok {
			e.CanStartHand()
		}
	}))
	mustAddPlayer(t, e, "a", "A", 0)
	mustAddPlayer(t, e, "b", "B", 1)

	assert.Panics(t, func() { _ = e.StartHand() })
}
