package reservation

import (
	"sync"
	"time"
)

// Countdown decrements the remaining hold once per interval and calls
// onExpire exactly once when it reaches zero. Stop never blocks.
type Countdown struct {
	mu        sync.Mutex
	remaining time.Duration
	interval  time.Duration
	onExpire  func()
	done      chan struct{}
	stopped   bool
	fired     bool
}

func NewCountdown(remaining, interval time.Duration, onExpire func()) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{
		remaining: remaining,
		interval:  interval,
		onExpire:  onExpire,
		done:      make(chan struct{}),
	}
}

func (c *Countdown) Start() {
	go c.run()
}

func (c *Countdown) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if c.tick() {
				if c.onExpire != nil {
					c.onExpire()
				}
				return
			}
		case <-c.done:
			return
		}
	}
}

// tick reports whether this tick expired the countdown.
func (c *Countdown) tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || c.fired {
		return false
	}
	c.remaining -= c.interval
	if c.remaining <= 0 {
		c.remaining = 0
		c.fired = true
		return true
	}
	return false
}

func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stopped {
		c.stopped = true
		close(c.done)
	}
}

func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}
