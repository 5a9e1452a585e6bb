//go:build !teensy36

package spi

// DefaultClock is the Teensy 3.2 bus at its stock 72 MHz core clock,
// matching the board host builds simulate.
var DefaultClock = Clock{BusHz: 36_000_000, Table: KinetisTable}
