//go:build !teensy36

package board

// Host builds simulate a Teensy 3.2.
var defaultProfile = Teensy32
