package reservation

import (
	"context"
	"time"
)

// startTimerLocked hydrates the hold and starts the countdown. A deadline
// already in the past marks the session expired without starting a clock.
func (e *Engine) startTimerLocked(t *Timer) {
	e.timer = &Timer{StartedAt: t.StartedAt, Deadline: t.Deadline}

	remaining := t.Deadline.Sub(e.cfg.Clock.Now())
	if remaining <= 0 {
		e.markExpiredLocked()
		return
	}

	e.clockGen++
	gen := e.clockGen
	e.countdown = NewCountdown(remaining, e.cfg.TickInterval, func() {
		e.handleExpiry(gen)
	})
	e.countdown.Start()
}

func (e *Engine) stopTimerLocked() {
	if e.countdown != nil {
		e.countdown.Stop()
		e.countdown = nil
	}
	e.clockGen++
}

func (e *Engine) remainingLocked() time.Duration {
	if e.countdown == nil {
		return 0
	}
	return e.countdown.Remaining()
}

// handleExpiry runs on the countdown goroutine. While a submission is in
// flight the expiry is deferred and resolved by the submission outcome.
func (e *Engine) handleExpiry(gen uint64) {
	e.mu.Lock()
	if gen != e.clockGen || e.countdown == nil {
		e.mu.Unlock()
		return
	}
	e.countdown = nil

	switch e.phase {
	case PhaseSubmitting:
		e.expiryDeferred = true
		e.mu.Unlock()
		return
	case PhaseDone:
		e.mu.Unlock()
		return
	}

	e.markExpiredLocked()
	epoch := e.epoch
	e.mu.Unlock()
	e.notifyExpired(epoch)
}

func (e *Engine) markExpiredLocked() {
	e.expired = true
	e.phase = PhaseExpiring
	e.log.LogSessionExpired(context.Background(), e.tripID)
}

func (e *Engine) notifyExpired(epoch uint64) {
	if e.cfg.OnExpired != nil {
		e.cfg.OnExpired(e, epoch)
	}
}
