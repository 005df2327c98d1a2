package engine

import (
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/internal/deck"
)

// Engine runs one table. All public methods are safe to call from
// multiple goroutines; each serializes through a single mutex so the
// table always sees one command at a time, exactly as if it were a
// single-threaded mailbox.
type Engine struct {
	cfg    Config
	sink   EventSink
	clock  quartz.Clock
	logger *log.Logger

	players []*Player // seated roster, kept sorted by seat

	handInProgress bool
	handNumber     int
	lastDealerSeat int // -1 until the first hand is dealt

	hand           *HandState
	inHand         []*Player // this hand's dealt-in players, sorted by seat
	bbSeatThisHand int
	activeDeck     *deck.Deck

	mu      sync.Mutex
	inSink  bool
	history *HandHistory
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithClock overrides the engine's time source, for deterministic
// timeout tests.
func WithClock(c quartz.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger overrides the engine's structured logger. A nil logger
// leaves the default (discarding) logger in place.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEventSink registers the callback that receives every emitted
// event. Without one, events are silently dropped.
func WithEventSink(sink EventSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithHandHistory attaches a recorder that appends a summary of every
// completed hand.
func WithHandHistory(h *HandHistory) Option {
	return func(e *Engine) { e.history = h }
}

// New constructs an Engine for one table with the given configuration.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:            cfg,
		clock:          quartz.NewReal(),
		logger:         log.New(io.Discard),
		lastDealerSeat: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// guardReentrancy panics if the calling goroutine is already inside an
// event-sink callback for this engine. A plain mutex would simply
// deadlock in that situation; this gives the programmer error a clear
// message instead.
func (e *Engine) guardReentrancy() {
	if e.inSink {
		panic("engine: event sink called back into the engine that emitted it")
	}
}

func (e *Engine) emit(ev Event) {
	if e.sink == nil {
		return
	}
	e.inSink = true
	defer func() { e.inSink = false }()
	e.sink(ev)
}

// AddPlayer seats a new player, who starts with the table's configured
// buy-in.
func (e *Engine) AddPlayer(id, name string, seat int) error {
	e.guardReentrancy()
	e.mu.Lock()
	defer e.mu.Unlock()

	if seat < 0 || seat >= e.cfg.MaxSeats {
		return ErrInvalidSeat
	}
	if len(e.players) >= e.cfg.MaxSeats {
		return ErrRosterFull
	}
	for _, p := range e.players {
		if p.Seat == seat {
			return ErrSeatTaken
		}
		if p.ID == id {
			return ErrDuplicateID
		}
	}
	e.players = append(e.players, &Player{
		ID:          id,
		Name:        name,
		Seat:        seat,
		Chips:       e.cfg.BuyIn,
		IsConnected: true,
	})
	sort.Slice(e.players, func(i, j int) bool { return e.players[i].Seat < e.players[j].Seat })
	e.logger.Debug("player seated", "id", id, "seat", seat)
	return nil
}

// RemovePlayer takes a player off the table. Between hands this removes
// them from the roster outright. Mid-hand it folds them and marks them
// disconnected; they're purged from the roster at the next hand start.
func (e *Engine) RemovePlayer(id string) {
	e.guardReentrancy()
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.findByID(id)
	if p == nil {
		return
	}
	p.IsConnected = false

	if e.handInProgress && e.isInHand(p) && !p.HasFolded {
		wasActive := e.hand.ActiveSeat != nil && *e.hand.ActiveSeat == p.Seat
		e.foldPlayer(p)
		if wasActive {
			e.afterAction(p)
		} else if e.countNonFolded() <= 1 {
			e.awardSingleWinner()
		}
	}

	if !e.handInProgress {
		e.removeFromRoster(id)
	}
}

// SetConnected updates a player's connection status without removing
// them.
func (e *Engine) SetConnected(id string, connected bool) {
	e.guardReentrancy()
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.findByID(id)
	if p == nil {
		return
	}
	p.IsConnected = connected
}

// CanStartHand reports whether the table has at least two eligible
// players and no hand already in progress.
func (e *Engine) CanStartHand() bool {
	e.guardReentrancy()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canStartHandLocked()
}

func (e *Engine) canStartHandLocked() bool {
	if e.handInProgress {
		return false
	}
	n := 0
	for _, p := range e.players {
		if e.eligibleForNextHand(p) {
			n++
		}
	}
	return n >= 2
}

// eligibleForNextHand decides whether a player is dealt into the next
// hand: they must have chips, be connected, and not be sitting out.
func (e *Engine) eligibleForNextHand(p *Player) bool {
	return p.Chips > 0 && p.IsConnected && !p.IsSittingOut
}

// isInHand reports whether p was dealt into the hand currently in
// progress (distinct from eligibleForNextHand, which looks forward).
func (e *Engine) isInHand(p *Player) bool {
	for _, q := range e.inHand {
		if q == p {
			return true
		}
	}
	return false
}

func (e *Engine) findByID(id string) *Player {
	for _, p := range e.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (e *Engine) removeFromRoster(id string) {
	kept := e.players[:0:0]
	for _, p := range e.players {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	e.players = kept
}

// purgeIneligible drops any disconnected or busted (zero-chip) player
// from the roster entirely, ahead of dealing the next hand. finishHand
// only purges the narrower disconnected-and-busted case, so a connected
// player who busts out still shows up in that hand's hand_end roster;
// this is the point where they're finally dropped.
func (e *Engine) purgeIneligible() {
	kept := e.players[:0:0]
	for _, p := range e.players {
		if p.IsConnected && p.Chips > 0 {
			kept = append(kept, p)
		}
	}
	e.players = kept
}

func (e *Engine) publicRoster() []PublicPlayer {
	out := make([]PublicPlayer, len(e.players))
	for i, p := range e.players {
		out[i] = PublicPlayer{
			ID:         p.ID,
			Name:       p.Name,
			Seat:       p.Seat,
			Chips:      p.Chips,
			CurrentBet: p.CurrentBet,
			HasFolded:  p.HasFolded,
			IsAllIn:    p.IsAllIn,
			LastAction: p.LastAction,
		}
	}
	return out
}

func (e *Engine) countNonFolded() int {
	n := 0
	for _, p := range e.inHand {
		if !p.HasFolded {
			n++
		}
	}
	return n
}

func (e *Engine) countActionable() int {
	n := 0
	for _, p := range e.inHand {
		if !p.HasFolded && !p.IsAllIn {
			n++
		}
	}
	return n
}

func (e *Engine) foldPlayer(p *Player) {
	p.HasFolded = true
	f := Fold
	p.LastAction = &f
	e.emit(PlayerActedEvent{
		PlayerID:       p.ID,
		Action:         Fold,
		Amount:         p.CurrentBet,
		Pot:            e.hand.Pot,
		RemainingChips: p.Chips,
	})
}

// rotatedAfter returns this hand's dealt-in players reordered to start
// with the first seat strictly greater than seat, wrapping around.
func (e *Engine) rotatedAfter(seat int) []*Player {
	return e.rotatedFromIndex(func(p *Player) bool { return p.Seat > seat })
}

func (e *Engine) rotatedFromIndex(match func(*Player) bool) []*Player {
	n := len(e.inHand)
	startIdx := -1
	for i, p := range e.inHand {
		if match(p) {
			startIdx = i
			break
		}
	}
	if startIdx == -1 {
		startIdx = 0
	}
	out := make([]*Player, n)
	for i := 0; i < n; i++ {
		out[i] = e.inHand[(startIdx+i)%n]
	}
	return out
}

func (e *Engine) playerBySeatIn(list []*Player, seat int) *Player {
	for _, p := range list {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// nextSeatAfter finds the next occupied seat after seat among
// participants, wrapping to the lowest seat if none is greater.
func nextSeatAfter(participants []*Player, seat int) int {
	for _, p := range participants {
		if p.Seat > seat {
			return p.Seat
		}
	}
	return participants[0].Seat
}
