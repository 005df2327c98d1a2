package engine

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingWriter is a concurrency-safe io.Writer for asserting that
// something was written, without caring about the exact bytes.
type capturingWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func newCapturingWriter() *capturingWriter { return &capturingWriter{} }

func (w *capturingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *capturingWriter) len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Len()
}

// Timeout determinism (spec.md §8 item 6): with no action before the
// deadline, exactly one auto-fold event is emitted for the player on
// action, and calling TickTimeout again afterward is a no-op.
func TestTickTimeout_AutoFoldsExactlyOnceAtDeadline(t *testing.T) {
	mockClock := quartz.NewMock(t)
	cfg := DefaultConfig()
	cfg.ActionTimeout = 10 * time.Second
	e, rec := newTestEngine(t, cfg, WithClock(mockClock))
	mustAddPlayer(t, e, "a", "A", 0)
	mustAddPlayer(t, e, "b", "B", 1)
	require.NoError(t, e.StartHand())

	active := e.playerBySeatIn(e.inHand, *e.hand.ActiveSeat)
	deadline := e.hand.ActionDeadline

	e.TickTimeout(mockClock.Now())
	assert.False(t, active.HasFolded, "ticking before the deadline must not fold anyone")

	mockClock.Advance(cfg.ActionTimeout)
	e.TickTimeout(mockClock.Now())
	assert.True(t, active.HasFolded)

	folds := rec.of(func(ev Event) bool {
		pa, ok := ev.(PlayerActedEvent)
		return ok && pa.Action == Fold && pa.PlayerID == active.ID
	})
	assert.Len(t, folds, 1)
	assert.False(t, mockClock.Now().Before(deadline))

	// The hand has moved on (or ended); ticking again with the same or
	// later time must not fold anything a second time.
	foldsBefore := len(folds)
	e.TickTimeout(mockClock.Now())
	foldsAfter := rec.of(func(ev Event) bool {
		pa, ok := ev.(PlayerActedEvent)
		return ok && pa.Action == Fold && pa.PlayerID == active.ID
	})
	assert.Len(t, foldsAfter, foldsBefore)
}

func TestTickTimeout_NoOpWithoutHandInProgress(t *testing.T) {
	mockClock := quartz.NewMock(t)
	e, _ := newTestEngine(t, DefaultConfig(), WithClock(mockClock))
	assert.NotPanics(t, func() { e.TickTimeout(mockClock.Now()) })
}

func TestDestroy_FlushesAttachedHandHistory(t *testing.T) {
	out := newCapturingWriter()
	history := NewHandHistory(out, nil, 1000)
	e := New(DefaultConfig(), WithHandHistory(history))
	mustAddPlayer(t, e, "a", "A", 0)
	mustAddPlayer(t, e, "b", "B", 1)
	require.NoError(t, e.StartHand())

	active := e.playerBySeatIn(e.inHand, *e.hand.ActiveSeat)
	ok, err := e.HandleAction(active.ID, Fold, 0)
	require.NoError(t, err)
	require.True(t, ok)

	e.Destroy()
	assert.True(t, out.len() > 0, "Destroy must flush pending hand history to the writer")
}
