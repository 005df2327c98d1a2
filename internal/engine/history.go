package engine

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// HandSummary is one completed hand's append-only record: enough to
// reconstruct who played, what they ended with, and when, without
// replaying the action-by-action event stream. This is distinct from
// historical hand replay (reconstructing a hand's play from its
// history) — HandHistory only records outcomes.
type HandSummary struct {
	HandNumber int                 `json:"hand_number"`
	HandID     string              `json:"hand_id"`
	DealerSeat int                 `json:"dealer_seat"`
	Pot        int                 `json:"pot"`
	EndedAt    time.Time           `json:"ended_at"`
	Players    []HandSummaryPlayer `json:"players"`
}

// HandSummaryPlayer is one player's line in a HandSummary.
type HandSummaryPlayer struct {
	PlayerID     string `json:"player_id"`
	Seat         int    `json:"seat"`
	EndingChips  int    `json:"ending_chips"`
	TotalWagered int    `json:"total_wagered"`
	Folded       bool   `json:"folded"`
}

// HandHistory appends a HandSummary per completed hand to an
// io.Writer, batching writes the way internal/server/hand_history's
// Manager batches flushes, but as a simple in-process encoder rather
// than a background ticker goroutine (the engine has no internal timer
// goroutines). Pending summaries are written when a batch fills and
// when Engine.Destroy is called; nothing else flushes them.
type HandHistory struct {
	mu     sync.Mutex
	out    io.Writer
	logger *log.Logger
	clock  func() time.Time

	pending []HandSummary
	flushAt int
}

// NewHandHistory returns a recorder that batches up to flushAt hands
// before writing them out as newline-delimited JSON. A flushAt of 0
// writes every hand immediately.
func NewHandHistory(out io.Writer, logger *log.Logger, flushAt int) *HandHistory {
	return &HandHistory{
		out:     out,
		logger:  logger,
		clock:   time.Now,
		flushAt: flushAt,
	}
}

func (h *HandHistory) record(hand *HandState, players []*Player) {
	summary := HandSummary{
		HandNumber: hand.HandNumber,
		HandID:     hand.HandID,
		DealerSeat: hand.DealerSeat,
		Pot:        hand.Pot,
		EndedAt:    h.clock(),
	}
	for _, p := range players {
		summary.Players = append(summary.Players, HandSummaryPlayer{
			PlayerID:     p.ID,
			Seat:         p.Seat,
			EndingChips:  p.Chips,
			TotalWagered: p.TotalBet,
			Folded:       p.HasFolded,
		})
	}

	h.mu.Lock()
	h.pending = append(h.pending, summary)
	shouldFlush := len(h.pending) >= h.flushAt
	h.mu.Unlock()

	if shouldFlush {
		h.flush()
	}
}

// flush writes every pending summary out and clears the batch.
func (h *HandHistory) flush() {
	h.mu.Lock()
	batch := h.pending
	h.pending = nil
	h.mu.Unlock()

	enc := json.NewEncoder(h.out)
	for _, s := range batch {
		if err := enc.Encode(s); err != nil {
			h.logger.Warn("hand history write failed", "err", err)
			return
		}
	}
}
