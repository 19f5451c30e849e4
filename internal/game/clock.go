package game

// TurnClock counts down the seconds left in the current turn. It is advanced by
// an external driver and signals expiry once per turn; reacting to expiry and
// resetting is up to the engine.
type TurnClock struct {
	pace      int
	remaining int
	fired     bool
}

func NewTurnClock(pace int) *TurnClock {
	c := &TurnClock{}
	c.Start(pace)
	return c
}

func (c *TurnClock) Start(pace int) {
	if pace < 0 {
		pace = 0
	}
	c.pace = pace
	c.remaining = pace
	c.fired = false
}

func (c *TurnClock) Reset(pace int) { c.Start(pace) }

// Tick removes one unit and reports whether this tick expired the turn.
func (c *TurnClock) Tick() bool {
	if !c.Enabled() || c.fired {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.fired = true
		return true
	}
	return false
}

func (c *TurnClock) Enabled() bool { return c.pace > 0 }

func (c *TurnClock) IsExpired() bool { return c.Enabled() && c.remaining == 0 }

func (c *TurnClock) Remaining() int { return c.remaining }

func (c *TurnClock) Critical() bool { return c.Enabled() && IsCritical(c.remaining) }

func IsCritical(remaining int) bool { return remaining <= CriticalThreshold }
