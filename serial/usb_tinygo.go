//go:build tinygo

package serial

import "machine"

// Default is the board's USB CDC serial device.
func Default() *Port { return New(machine.Serial) }
