package game

import "time"

// TickerGen hands out tick channels for turn clocks. Tests substitute a
// generator whose channel they feed by hand.
type TickerGen interface {
	Create(d time.Duration) (ticks <-chan time.Time, stop func())
}

type realTickerGen struct{}

func NewTickerGen() TickerGen { return realTickerGen{} }

func (realTickerGen) Create(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
