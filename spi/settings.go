package spi

import "teensy3-go/x/mathx"

// Settings is an immutable transfer configuration. The CTAR word is
// computed once at construction so starting a transaction only loads it.
type Settings struct {
	maxHz uint32
	order BitOrder
	mode  Mode
	clock Clock
	div   Divisor
	ctar  uint32
}

// NewSettings encodes against DefaultClock, the build target's bus.
func NewSettings(maxHz uint32, order BitOrder, mode Mode) Settings {
	return NewSettingsFor(DefaultClock, maxHz, order, mode)
}

// NewSettingsFor encodes against an explicit clock source.
func NewSettingsFor(clk Clock, maxHz uint32, order BitOrder, mode Mode) Settings {
	d, _ := clk.Table.Select(maxHz, clk.BusHz)
	return Settings{
		maxHz: maxHz,
		order: order,
		mode:  mode,
		clock: clk,
		div:   d,
		ctar:  Encode(maxHz, order, mode, clk.Table, clk.BusHz),
	}
}

func (s Settings) MaxHz() uint32    { return s.maxHz }
func (s Settings) Order() BitOrder  { return s.order }
func (s Settings) Mode() Mode       { return s.mode }
func (s Settings) CTAR() uint32     { return s.ctar }
func (s Settings) Divisor() Divisor { return s.div }

// ActualHz is the SCK rate the selected divisor produces, rounded.
func (s Settings) ActualHz() uint32 {
	return mathx.RoundDiv(s.clock.BusHz, s.div.Div)
}

// With returns settings re-encoded for a different rate, order or mode.
func (s Settings) With(maxHz uint32, order BitOrder, mode Mode) Settings {
	return NewSettingsFor(s.clock, maxHz, order, mode)
}
