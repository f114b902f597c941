package reservation

import (
	"context"
	"time"

	"movitex/internal/doclookup"
)

// lookupSlot is the cancellable debounce slot of one passenger index.
type lookupSlot struct {
	gen   uint64
	timer *time.Timer
}

func (s *lookupSlot) cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (e *Engine) slotLocked(index int) *lookupSlot {
	slot, ok := e.slots[index]
	if !ok {
		slot = &lookupSlot{}
		e.slots[index] = slot
	}
	return slot
}

func (e *Engine) cancelLookupsLocked() {
	for _, slot := range e.slots {
		slot.cancel()
	}
}

// SetDocumentNumber updates the field immediately and schedules a debounced
// lookup for a well-formed value, superseding any earlier one for the index.
func (e *Engine) SetDocumentNumber(ctx context.Context, index int, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touchLocked()

	if index < 0 || index >= len(e.passengers) {
		return ErrPassengerIndex
	}

	p := &e.passengers[index]
	previous := p.DocumentNumber
	p.DocumentNumber = value

	slot := e.slotLocked(index)
	slot.cancel()

	if value != previous && value != "" {
		p.FirstName = ""
		p.LastName = ""
	}

	if !doclookup.ValidDocument(value) {
		p.LookupState = LookupIdle
		return e.persistLocked(ctx)
	}

	gen, epoch := slot.gen, e.epoch
	slot.timer = time.AfterFunc(e.cfg.LookupDelay, func() {
		e.runLookup(index, gen, epoch, value)
	})
	return e.persistLocked(ctx)
}

func (e *Engine) lookupCurrentLocked(index int, gen, epoch uint64, value string) bool {
	if e.epoch != epoch || index >= len(e.passengers) {
		return false
	}
	slot, ok := e.slots[index]
	if !ok || slot.gen != gen {
		return false
	}
	return e.passengers[index].DocumentNumber == value
}

func (e *Engine) runLookup(index int, gen, epoch uint64, value string) {
	e.mu.Lock()
	if !e.lookupCurrentLocked(index, gen, epoch, value) {
		e.mu.Unlock()
		return
	}
	e.passengers[index].LookupState = LookupPending
	e.slots[index].timer = nil
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.LookupTimeout)
	defer cancel()

	start := time.Now()
	res, err := e.deps.Lookup.Lookup(ctx, value)
	took := time.Since(start)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.epoch != epoch || index >= len(e.passengers) {
		return
	}

	p := &e.passengers[index]
	outcome := "stale"
	if p.DocumentNumber == value {
		switch {
		case err != nil:
			outcome = "error"
			p.FirstName, p.LastName = "", ""
		case res == nil || !res.Success:
			outcome = "not_found"
			p.FirstName, p.LastName = "", ""
		default:
			outcome = "found"
			p.FirstName, p.LastName = res.FirstName, res.LastName
		}
	}
	if e.slots[index].gen == gen {
		p.LookupState = LookupDone
	}
	e.log.LogDocumentLookup(ctx, index, outcome, took)

	if err := e.persistLocked(context.Background()); err != nil {
		e.log.WithError(err).Warn("failed to persist lookup result", "passenger_index", index)
	}
}
