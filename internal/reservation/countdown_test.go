package reservation

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountdownTick(t *testing.T) {
	c := NewCountdown(25*time.Millisecond, 10*time.Millisecond, nil)

	assert.False(t, c.tick())
	assert.Equal(t, 15*time.Millisecond, c.Remaining())
	assert.False(t, c.tick())
	assert.True(t, c.tick())
	assert.Zero(t, c.Remaining())
	assert.False(t, c.tick(), "a countdown fires once")
}

func TestCountdownFiresOnce(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(30*time.Millisecond, 10*time.Millisecond, func() { fired.Add(1) })
	c.Start()
	defer c.Stop()

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return fired.Load() > 1 }, 60*time.Millisecond, 10*time.Millisecond)
	assert.Zero(t, c.Remaining())
}

func TestCountdownStop(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(40*time.Millisecond, 10*time.Millisecond, func() { fired.Add(1) })
	c.Start()
	c.Stop()
	c.Stop()

	assert.Never(t, func() bool { return fired.Load() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}
