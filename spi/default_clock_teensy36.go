//go:build teensy36

package spi

// DefaultClock is the Teensy 3.6 bus at its stock 180 MHz core clock.
var DefaultClock = Clock{BusHz: 60_000_000, Table: KinetisTable}
