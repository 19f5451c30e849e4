package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTurnClockExpiresOnce(t *testing.T) {
	c := NewTurnClock(3)
	assert.False(t, c.Tick())
	assert.False(t, c.Tick())
	assert.True(t, c.Tick())
	assert.True(t, c.IsExpired())
	assert.False(t, c.Tick(), "an expired clock must not fire again")
	assert.Equal(t, 0, c.Remaining())

	c.Reset(3)
	assert.False(t, c.IsExpired())
	assert.Equal(t, 3, c.Remaining())
}

func TestTurnClockDisabled(t *testing.T) {
	c := NewTurnClock(0)
	for i := 0; i < 5; i++ {
		assert.False(t, c.Tick())
	}
	assert.False(t, c.Enabled())
	assert.False(t, c.IsExpired())
	assert.False(t, c.Critical())
}

func TestTurnClockCritical(t *testing.T) {
	c := NewTurnClock(5)
	c.Tick()
	assert.Equal(t, 4, c.Remaining())
	assert.False(t, c.Critical())
	c.Tick()
	assert.True(t, c.Critical())

	assert.True(t, IsCritical(3))
	assert.True(t, IsCritical(0))
	assert.False(t, IsCritical(4))
}
