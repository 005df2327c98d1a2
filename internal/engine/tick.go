package engine

import "time"

// TickTimeout auto-folds the player on action once now reaches their
// action deadline. It's a no-op if no hand is in progress, no player is
// on action, or the deadline hasn't passed. The caller is responsible
// for invoking this periodically (or driving it explicitly in tests);
// the engine runs no internal timer goroutine.
func (e *Engine) TickTimeout(now time.Time) {
	e.guardReentrancy()
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.handInProgress || e.hand.ActiveSeat == nil {
		return
	}
	if now.Before(e.hand.ActionDeadline) {
		return
	}

	p := e.playerBySeatIn(e.inHand, *e.hand.ActiveSeat)
	e.logger.Warn("action timed out, auto-folding", "player", p.ID, "hand", e.hand.HandNumber)
	e.foldPlayer(p)
	e.afterAction(p)
}

// Destroy closes the table out, flushing any attached hand history.
// Callers are expected to stop using the Engine afterward; Destroy
// itself does not forbid further calls.
func (e *Engine) Destroy() {
	e.guardReentrancy()
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.history != nil {
		e.history.flush()
	}
}
